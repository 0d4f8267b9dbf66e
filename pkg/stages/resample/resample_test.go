package resample

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/user/scribbler/pkg/adapters/logger"
	"github.com/user/scribbler/pkg/frameset"
	"github.com/user/scribbler/pkg/mocks"
	"github.com/user/scribbler/pkg/pipeline"
)

var dir = filepath.Join("temp", "original")

// seed writes n frames whose content names their original index.
func seed(fs *mocks.FileSystem, n int) {
	for i := 0; i < n; i++ {
		fs.WriteFile(frameset.Path(dir, i), []byte(fmt.Sprintf("orig-%d", i)))
	}
}

func TestStage_Execute(t *testing.T) {
	tests := []struct {
		name         string
		frames       int
		skip         int
		wantOriginal []int
	}{
		{name: "skip 1 is identity", frames: 5, skip: 1, wantOriginal: []int{0, 1, 2, 3, 4}},
		{name: "skip 0 is identity", frames: 3, skip: 0, wantOriginal: []int{0, 1, 2}},
		{name: "skip 2", frames: 7, skip: 2, wantOriginal: []int{0, 2, 4, 6}},
		{name: "skip 3", frames: 10, skip: 3, wantOriginal: []int{0, 3, 6, 9}},
		{name: "skip larger than set", frames: 4, skip: 10, wantOriginal: []int{0}},
		{name: "empty set", frames: 0, skip: 2, wantOriginal: []int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := mocks.NewFileSystem()
			seed(fs, tt.frames)
			stage := New(fs, &mocks.Progress{}, logger.NewNoop())

			result, err := stage.Execute(context.Background(), pipeline.ResampleInput{Dir: dir, Skip: tt.skip})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			want := len(tt.wantOriginal)
			if result.RetainedCount != want {
				t.Errorf("RetainedCount = %d, want %d", result.RetainedCount, want)
			}
			if result.Removed != tt.frames-want {
				t.Errorf("Removed = %d, want %d", result.Removed, tt.frames-want)
			}
			if got := fs.FilesIn(dir); got != want {
				t.Errorf("files in dir = %d, want %d", got, want)
			}
			if want != pipeline.RetainedCount(tt.frames, tt.skip) {
				t.Errorf("retained %d disagrees with pipeline.RetainedCount", want)
			}

			for i, orig := range tt.wantOriginal {
				data, ok := fs.GetFile(frameset.Path(dir, i))
				if !ok {
					t.Fatalf("frame %d missing", i)
				}
				if string(data) != fmt.Sprintf("orig-%d", orig) {
					t.Errorf("frame %d = %q, want orig-%d", i, data, orig)
				}
			}
		})
	}
}

func TestStage_Execute_IdentityDoesNotTouchFiles(t *testing.T) {
	fs := mocks.NewFileSystem()
	seed(fs, 4)
	stage := New(fs, &mocks.Progress{}, logger.NewNoop())

	if _, err := stage.Execute(context.Background(), pipeline.ResampleInput{Dir: dir, Skip: 1}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fs.Removed) != 0 || len(fs.Renames) != 0 {
		t.Errorf("identity resample touched files: removed=%v renames=%v", fs.Removed, fs.Renames)
	}
}

func TestStage_Execute_GappedIndices(t *testing.T) {
	fs := mocks.NewFileSystem()
	for _, i := range []int{0, 1, 5, 6, 9} {
		fs.WriteFile(frameset.Path(dir, i), []byte(fmt.Sprintf("orig-%d", i)))
	}
	stage := New(fs, &mocks.Progress{}, logger.NewNoop())

	result, err := stage.Execute(context.Background(), pipeline.ResampleInput{Dir: dir, Skip: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.RetainedCount != 3 {
		t.Fatalf("RetainedCount = %d, want 3", result.RetainedCount)
	}
	for i, orig := range []int{0, 5, 9} {
		data, _ := fs.GetFile(frameset.Path(dir, i))
		if string(data) != fmt.Sprintf("orig-%d", orig) {
			t.Errorf("frame %d = %q, want orig-%d", i, data, orig)
		}
	}
}

func TestStage_Execute_RemoveError(t *testing.T) {
	fs := mocks.NewFileSystem()
	seed(fs, 4)
	fs.RemoveFunc = func(path string) error {
		return errors.New("permission denied")
	}
	stage := New(fs, &mocks.Progress{}, logger.NewNoop())

	if _, err := stage.Execute(context.Background(), pipeline.ResampleInput{Dir: dir, Skip: 2}); err == nil {
		t.Fatal("expected error")
	}
}
