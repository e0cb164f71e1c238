package checkpoint_test

import (
	"errors"
	"io/fs"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-ptconv/pkg/checkpoint"
	"github.com/goliatone/go-ptconv/pkg/testsupport"
)

func TestDiscoverFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "model.pt")
	testsupport.WriteFile(t, path, []byte("x"))

	opts := checkpoint.NewLoaderOptions()
	paths, err := checkpoint.Discover(testsupport.Context(), checkpoint.SourceFromFile(path), opts)
	if err != nil {
		t.Fatalf("discover: %v", err)
	}
	if diff := cmp.Diff([]string{path}, paths); diff != "" {
		t.Fatalf("paths mismatch (-want +got):\n%s", diff)
	}
}

func TestDiscoverFileRejectsWrongExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	testsupport.WriteFile(t, path, []byte("x"))

	_, err := checkpoint.Discover(testsupport.Context(), checkpoint.SourceFromFile(path), checkpoint.NewLoaderOptions())
	if err == nil {
		t.Fatal("expected error for non-checkpoint extension")
	}
}

func TestDiscoverMissingPath(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "gone.pt")
	_, err := checkpoint.Discover(testsupport.Context(), checkpoint.SourceFromFile(missing), checkpoint.NewLoaderOptions())
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestDiscoverDir(t *testing.T) {
	dir := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(dir, "b.pt"), []byte("x"))
	testsupport.WriteFile(t, filepath.Join(dir, "a.PT"), []byte("x"))
	testsupport.WriteFile(t, filepath.Join(dir, "c.ckpt"), []byte("x"))
	testsupport.WriteFile(t, filepath.Join(dir, "skip.txt"), []byte("x"))
	testsupport.WriteFile(t, filepath.Join(dir, "nested", "d.pt"), []byte("x"))

	opts := checkpoint.NewLoaderOptions()

	flat, err := checkpoint.Discover(testsupport.Context(), checkpoint.SourceFromDir(dir, false), opts)
	if err != nil {
		t.Fatalf("discover flat: %v", err)
	}
	want := []string{
		filepath.Join(dir, "a.PT"),
		filepath.Join(dir, "b.pt"),
		filepath.Join(dir, "c.ckpt"),
	}
	if diff := cmp.Diff(want, flat); diff != "" {
		t.Fatalf("flat paths mismatch (-want +got):\n%s", diff)
	}

	deep, err := checkpoint.Discover(testsupport.Context(), checkpoint.SourceFromDir(dir, true), opts)
	if err != nil {
		t.Fatalf("discover recursive: %v", err)
	}
	want = append(want, filepath.Join(dir, "nested", "d.pt"))
	if diff := cmp.Diff(want, deep); diff != "" {
		t.Fatalf("recursive paths mismatch (-want +got):\n%s", diff)
	}
}

func TestDiscoverDirWithCustomExtensions(t *testing.T) {
	dir := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(dir, "a.bin"), []byte("x"))
	testsupport.WriteFile(t, filepath.Join(dir, "b.pt"), []byte("x"))

	opts := checkpoint.NewLoaderOptions(checkpoint.WithExtensions("bin"))
	paths, err := checkpoint.Discover(testsupport.Context(), checkpoint.SourceFromDir(dir, false), opts)
	if err != nil {
		t.Fatalf("discover: %v", err)
	}
	if diff := cmp.Diff([]string{filepath.Join(dir, "a.bin")}, paths); diff != "" {
		t.Fatalf("paths mismatch (-want +got):\n%s", diff)
	}
}

func TestDiscoverFS(t *testing.T) {
	fsys := fstest.MapFS{
		"models/emb.pt": &fstest.MapFile{Data: []byte("x")},
	}
	opts := checkpoint.NewLoaderOptions(checkpoint.WithFileSystem(fsys))

	paths, err := checkpoint.Discover(testsupport.Context(), checkpoint.SourceFromFS("models/emb.pt"), opts)
	if err != nil {
		t.Fatalf("discover: %v", err)
	}
	if diff := cmp.Diff([]string{"models/emb.pt"}, paths); diff != "" {
		t.Fatalf("paths mismatch (-want +got):\n%s", diff)
	}

	if _, err := checkpoint.Discover(testsupport.Context(), checkpoint.SourceFromFS("missing.pt"), opts); err == nil {
		t.Fatal("expected error for missing fs entry")
	}
	if _, err := checkpoint.Discover(testsupport.Context(), checkpoint.SourceFromFS("x.pt"), checkpoint.NewLoaderOptions()); err == nil {
		t.Fatal("expected error without a filesystem")
	}
}
