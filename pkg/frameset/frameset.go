// Package frameset manages directories of sequentially numbered frame images.
//
// Frames are stored as frame_%05d.jpg. Order is always taken from the parsed
// index, never from directory listing order.
package frameset

import (
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/user/scribbler/pkg/pipeline"
	"github.com/user/scribbler/pkg/ports"
)

const (
	prefix    = "frame_"
	extension = ".jpg"
)

// Name returns the file name for a frame index.
func Name(index int) string {
	return fmt.Sprintf("%s%05d%s", prefix, index, extension)
}

// Path returns the full path for a frame index inside dir.
func Path(dir string, index int) string {
	return filepath.Join(dir, Name(index))
}

// ParseIndex extracts the index from a frame file name.
func ParseIndex(name string) (int, bool) {
	if !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, extension) {
		return 0, false
	}
	digits := strings.TrimSuffix(strings.TrimPrefix(name, prefix), extension)
	if digits == "" {
		return 0, false
	}
	idx, err := strconv.Atoi(digits)
	if err != nil || idx < 0 {
		return 0, false
	}
	return idx, true
}

// List returns the frames in dir sorted by index. Files that are not frames are ignored.
func List(fs ports.FileSystem, dir string) ([]pipeline.Frame, error) {
	names, err := fs.ListFiles(dir)
	if err != nil {
		return nil, fmt.Errorf("list frames in %s: %w", dir, err)
	}

	frames := make([]pipeline.Frame, 0, len(names))
	for _, name := range names {
		idx, ok := ParseIndex(name)
		if !ok {
			continue
		}
		frames = append(frames, pipeline.Frame{Index: idx, Path: filepath.Join(dir, name)})
	}

	sort.Slice(frames, func(i, j int) bool {
		return frames[i].Index < frames[j].Index
	})
	return frames, nil
}

// Clear removes every file in dir and returns how many were removed.
// A missing directory is not an error.
func Clear(fs ports.FileSystem, dir string) (int, error) {
	names, err := fs.ListFiles(dir)
	if err != nil {
		return 0, fmt.Errorf("list %s: %w", dir, err)
	}
	for i, name := range names {
		if err := fs.Remove(filepath.Join(dir, name)); err != nil {
			return i, fmt.Errorf("remove %s: %w", name, err)
		}
	}
	return len(names), nil
}

// Renumber renames the frames in dir to a contiguous 0..N-1 sequence,
// preserving their relative order. It returns the frame count.
func Renumber(fs ports.FileSystem, dir string) (int, error) {
	frames, err := List(fs, dir)
	if err != nil {
		return 0, err
	}

	// Ascending order is safe: position i never exceeds the old index, and
	// any frame that held index i has already been moved lower or removed.
	for i, f := range frames {
		if f.Index == i {
			continue
		}
		if err := fs.Rename(f.Path, Path(dir, i)); err != nil {
			return 0, fmt.Errorf("rename frame %d to %d: %w", f.Index, i, err)
		}
	}
	return len(frames), nil
}
