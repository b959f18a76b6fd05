package discovery

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func touchFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0644); err != nil {
			t.Fatal(err)
		}
	}
}

func baseNames(paths []string) []string {
	var names []string
	for _, p := range paths {
		names = append(names, filepath.Base(p))
	}
	return names
}

func TestFindCandidates(t *testing.T) {
	dir := t.TempDir()
	touchFiles(t, dir, "b.mkv", "a.mkv", "c.mp4", "notes.txt")

	files, err := FindCandidates(dir, []string{"mkv", "mp4"})
	if err != nil {
		t.Fatalf("FindCandidates failed: %v", err)
	}

	want := []string{"a.mkv", "b.mkv", "c.mp4"}
	if got := baseNames(files); !reflect.DeepEqual(got, want) {
		t.Errorf("FindCandidates = %v, want %v", got, want)
	}
}

func TestFindCandidatesExtensionOrder(t *testing.T) {
	dir := t.TempDir()
	touchFiles(t, dir, "a.mp4", "b.mkv")

	// mp4 listed first, so mp4 matches come first in discovery order.
	files, err := FindCandidates(dir, []string{"mp4", "mkv"})
	if err != nil {
		t.Fatal(err)
	}

	want := []string{"a.mp4", "b.mkv"}
	if got := baseNames(files); !reflect.DeepEqual(got, want) {
		t.Errorf("FindCandidates = %v, want %v", got, want)
	}
}

func TestFindCandidatesCaseInsensitive(t *testing.T) {
	dir := t.TempDir()
	touchFiles(t, dir, "MOVIE.MKV", "clip.mkv")

	files, err := FindCandidates(dir, []string{"mkv"})
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 2 {
		t.Errorf("expected 2 matches, got %v", baseNames(files))
	}
}

func TestFindCandidatesSkipsDirsAndHidden(t *testing.T) {
	dir := t.TempDir()
	touchFiles(t, dir, "visible.mkv", ".hidden.mkv")
	if err := os.Mkdir(filepath.Join(dir, "sub.mkv"), 0755); err != nil {
		t.Fatal(err)
	}
	touchFiles(t, filepath.Join(dir, "sub.mkv"), "nested.mkv")

	files, err := FindCandidates(dir, []string{"mkv"})
	if err != nil {
		t.Fatal(err)
	}

	want := []string{"visible.mkv"}
	if got := baseNames(files); !reflect.DeepEqual(got, want) {
		t.Errorf("FindCandidates = %v, want %v", got, want)
	}
}

func TestFindCandidatesNoMatches(t *testing.T) {
	dir := t.TempDir()
	touchFiles(t, dir, "notes.txt")

	files, err := FindCandidates(dir, []string{"mkv"})
	if err != nil {
		t.Fatalf("no matches should not be an error, got %v", err)
	}
	if len(files) != 0 {
		t.Errorf("expected no matches, got %v", files)
	}
}

func TestFindCandidatesNoDuplicateAcrossExtensions(t *testing.T) {
	dir := t.TempDir()
	touchFiles(t, dir, "movie.mkv")

	files, err := FindCandidates(dir, []string{"mkv", "mkv"})
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 1 {
		t.Errorf("expected a single match for a duplicated extension, got %v", files)
	}
}

func TestFindCandidatesMissingDir(t *testing.T) {
	_, err := FindCandidates(filepath.Join(t.TempDir(), "absent"), []string{"mkv"})
	if err == nil {
		t.Error("expected an error for a missing directory")
	}
}
