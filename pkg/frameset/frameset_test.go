package frameset

import (
	"path/filepath"
	"reflect"
	"testing"

	"github.com/user/scribbler/pkg/mocks"
)

func TestName(t *testing.T) {
	if got := Name(7); got != "frame_00007.jpg" {
		t.Errorf("Name(7) = %q", got)
	}
	if got := Name(123456); got != "frame_123456.jpg" {
		t.Errorf("Name(123456) = %q", got)
	}
}

func TestParseIndex(t *testing.T) {
	tests := []struct {
		name   string
		want   int
		wantOK bool
	}{
		{"frame_00000.jpg", 0, true},
		{"frame_00042.jpg", 42, true},
		{"frame_100000.jpg", 100000, true},
		{"frame_.jpg", 0, false},
		{"frame_00001.png", 0, false},
		{"thumb_00001.jpg", 0, false},
		{"frame_abc.jpg", 0, false},
	}

	for _, tt := range tests {
		got, ok := ParseIndex(tt.name)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ParseIndex(%q) = %d, %v; want %d, %v", tt.name, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestList_SortsByParsedIndex(t *testing.T) {
	fs := mocks.NewFileSystem()
	dir := "/work/frames"
	// Six digits sort before five lexically; parsed order must still win.
	for _, name := range []string{"frame_100000.jpg", "frame_00002.jpg", "frame_00010.jpg", "notes.txt"} {
		fs.WriteFile(filepath.Join(dir, name), []byte("x"))
	}

	frames, err := List(fs, dir)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}

	var got []int
	for _, f := range frames {
		got = append(got, f.Index)
	}
	if want := []int{2, 10, 100000}; !reflect.DeepEqual(got, want) {
		t.Errorf("indices = %v, want %v", got, want)
	}
	if frames[0].Path != filepath.Join(dir, "frame_00002.jpg") {
		t.Errorf("path = %q", frames[0].Path)
	}
}

func TestClear(t *testing.T) {
	fs := mocks.NewFileSystem()
	fs.WriteFile("/w/frame_00000.jpg", []byte("a"))
	fs.WriteFile("/w/stale.tmp", []byte("b"))
	fs.WriteFile("/other/frame_00000.jpg", []byte("c"))

	n, err := Clear(fs, "/w")
	if err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if n != 2 {
		t.Errorf("removed %d, want 2", n)
	}
	if _, ok := fs.GetFile("/other/frame_00000.jpg"); !ok {
		t.Error("Clear touched another directory")
	}

	n, err = Clear(fs, "/missing")
	if err != nil || n != 0 {
		t.Errorf("Clear(missing) = %d, %v", n, err)
	}
}

func TestRenumber(t *testing.T) {
	fs := mocks.NewFileSystem()
	dir := "/w"
	for _, idx := range []int{0, 3, 6, 9} {
		fs.WriteFile(Path(dir, idx), []byte{byte(idx)})
	}

	n, err := Renumber(fs, dir)
	if err != nil {
		t.Fatalf("Renumber failed: %v", err)
	}
	if n != 4 {
		t.Fatalf("count = %d, want 4", n)
	}

	for i, orig := range []int{0, 3, 6, 9} {
		data, ok := fs.GetFile(Path(dir, i))
		if !ok {
			t.Fatalf("frame %d missing", i)
		}
		if data[0] != byte(orig) {
			t.Errorf("frame %d holds original %d, want %d", i, data[0], orig)
		}
	}
	if _, ok := fs.GetFile(Path(dir, 9)); ok {
		t.Error("old frame 9 still present")
	}
}
