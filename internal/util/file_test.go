package util

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileStem(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/videos/movie.mkv", "movie"},
		{"movie.mkv", "movie"},
		{"movie.tar.gz", "movie.tar"},
		{"movie", "movie"},
		{"/videos/movie (2019).mkv", "movie (2019)"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := FileStem(tt.path); got != tt.want {
				t.Errorf("FileStem(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestFileExtension(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"movie.mkv", "mkv"},
		{"/videos/movie.MP4", "MP4"},
		{"movie", ""},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := FileExtension(tt.path); got != tt.want {
				t.Errorf("FileExtension(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestFileExists(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "present.txt")
	if err := os.WriteFile(file, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	if !FileExists(file) {
		t.Error("expected FileExists to be true for a file")
	}
	if FileExists(dir) {
		t.Error("expected FileExists to be false for a directory")
	}
	if FileExists(filepath.Join(dir, "absent.txt")) {
		t.Error("expected FileExists to be false for a missing path")
	}
}

func TestCopyFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.sofa")
	dst := filepath.Join(dir, "dst.sofa")
	content := []byte("hrtf dataset bytes")

	if err := os.WriteFile(src, content, 0644); err != nil {
		t.Fatal(err)
	}
	if err := CopyFile(src, dst); err != nil {
		t.Fatalf("CopyFile failed: %v", err)
	}

	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != string(content) {
		t.Errorf("copied content mismatch: got %q", got)
	}
}

func TestCopyFileMissingSource(t *testing.T) {
	dir := t.TempDir()
	err := CopyFile(filepath.Join(dir, "missing"), filepath.Join(dir, "out"))
	if err == nil {
		t.Error("expected an error for a missing source file")
	}
}
