package loader_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-ptconv/internal/checkpoint/loader"
	"github.com/goliatone/go-ptconv/pkg/checkpoint"
	"github.com/goliatone/go-ptconv/pkg/testsupport"
)

func newLoader(options ...checkpoint.LoaderOption) *loader.Loader {
	return loader.New(checkpoint.NewLoaderOptions(options...))
}

func TestLoadRejectsNilSource(t *testing.T) {
	_, err := newLoader().Load(testsupport.Context(), nil)
	require.Error(t, err)
}

func TestLoadRejectsDirectorySource(t *testing.T) {
	_, err := newLoader().Load(testsupport.Context(), checkpoint.SourceFromDir(t.TempDir(), false))
	require.Error(t, err)
	require.Contains(t, err.Error(), "discovered into files first")
}

func TestLoadRejectsWrongExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "weights.txt")
	testsupport.WriteFile(t, path, []byte("x"))

	_, err := newLoader().Load(testsupport.Context(), checkpoint.SourceFromFile(path))
	require.Error(t, err)
	require.Contains(t, err.Error(), "not a checkpoint file")
}

func TestLoadMissingFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "gone.pt")
	_, err := newLoader().Load(testsupport.Context(), checkpoint.SourceFromFile(missing))
	require.Error(t, err)
}

func TestLoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.pt")
	testsupport.WriteFile(t, path, []byte("this is not a checkpoint"))

	_, err := newLoader().Load(testsupport.Context(), checkpoint.SourceFromFile(path))
	require.Error(t, err)
	require.Contains(t, err.Error(), "broken.pt")
}

func TestLoadFSSourceWithoutFilesystem(t *testing.T) {
	_, err := newLoader().Load(testsupport.Context(), checkpoint.SourceFromFS("models/emb.pt"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "requires a filesystem")
}
