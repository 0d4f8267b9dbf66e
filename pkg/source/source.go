// Package source validates input videos and discovers candidates in the
// input directory.
package source

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/ideamans/go-l10n"
	"github.com/user/scribbler/pkg/pipeline"
	"github.com/user/scribbler/pkg/ports"
)

// ErrNoInput indicates the input directory holds no video.
var ErrNoInput = errors.New("no video found in input directory")

// Extensions accepted for an explicit source argument.
var Extensions = []string{".mp4", ".avi", ".mov", ".mkv"}

// DiscoverExtensions are matched when scanning the input directory.
var DiscoverExtensions = []string{".mp4", ".avi", ".mov"}

// Validate checks that path has a supported extension and exists.
func Validate(fs ports.FileSystem, path string) error {
	if !hasExt(path, Extensions) {
		return fmt.Errorf("%w: unsupported file type %q (want %s)",
			pipeline.ErrInvalidRequest, filepath.Ext(path), strings.Join(Extensions, ", "))
	}
	ok, err := fs.Exists(path)
	if err != nil {
		return fmt.Errorf("%w: %w", pipeline.ErrSourceUnreadable, err)
	}
	if !ok {
		return fmt.Errorf("%w: %s does not exist", pipeline.ErrSourceUnreadable, path)
	}
	return nil
}

// Discover returns the videos directly inside dir, sorted by name.
func Discover(fs ports.FileSystem, dir string) ([]string, error) {
	names, err := fs.ListFiles(dir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}
	var videos []string
	for _, name := range names {
		if hasExt(name, DiscoverExtensions) {
			videos = append(videos, filepath.Join(dir, name))
		}
	}
	slices.Sort(videos)
	return videos, nil
}

// Choose picks one of candidates. A single candidate is returned as is;
// several are listed on out and the user answers with a number on in.
func Choose(candidates []string, in io.Reader, out io.Writer) (string, error) {
	switch len(candidates) {
	case 0:
		return "", ErrNoInput
	case 1:
		return candidates[0], nil
	}

	fmt.Fprintln(out, l10n.T("Multiple videos found:"))
	for i, c := range candidates {
		fmt.Fprintf(out, "  %d. %s\n", i+1, filepath.Base(c))
	}

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, l10n.F("Select a video (1-%d): ", len(candidates)))
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return "", err
			}
			return "", fmt.Errorf("%w: no selection made", pipeline.ErrInvalidRequest)
		}
		n, err := strconv.Atoi(strings.TrimSpace(scanner.Text()))
		if err == nil && n >= 1 && n <= len(candidates) {
			return candidates[n-1], nil
		}
		fmt.Fprintln(out, l10n.T("Invalid selection."))
	}
}

func hasExt(path string, exts []string) bool {
	return slices.Contains(exts, strings.ToLower(filepath.Ext(path)))
}
