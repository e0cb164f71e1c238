// Package loader implements the public checkpoint.Loader contract on the
// gopickle pytorch decoder. It is the only package that touches the pickle
// library's entry points; everything downstream sees checkpoint.Checkpoint.
package loader

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/nlpodyssey/gopickle/pytorch"
	"github.com/pkg/errors"

	pkgcheckpoint "github.com/goliatone/go-ptconv/pkg/checkpoint"
)

// Loader deserializes pickle-based checkpoint files.
type Loader struct {
	opts pkgcheckpoint.LoaderOptions
}

// Ensure the implementation satisfies the public interface.
var _ pkgcheckpoint.Loader = (*Loader)(nil)

// New constructs a Loader from pre-resolved options.
func New(options pkgcheckpoint.LoaderOptions) *Loader {
	if len(options.Extensions) == 0 {
		options = pkgcheckpoint.NewLoaderOptions(
			pkgcheckpoint.WithFileSystem(options.FileSystem),
		)
	}
	return &Loader{opts: options}
}

// Load deserializes the checkpoint the source points at. Directory sources are
// rejected here; callers expand them with checkpoint.Discover first.
func (l *Loader) Load(ctx context.Context, src pkgcheckpoint.Source) (pkgcheckpoint.Checkpoint, error) {
	if src == nil {
		return pkgcheckpoint.Checkpoint{}, errors.New("loader: source is nil")
	}
	if err := ctx.Err(); err != nil {
		return pkgcheckpoint.Checkpoint{}, err
	}

	var path string
	cleanup := func() {}

	switch src.Kind() {
	case pkgcheckpoint.SourceKindFile:
		path = src.Location()
	case pkgcheckpoint.SourceKindFS:
		// The pytorch decoder wants a file path (zip archives need random
		// access), so fs entries are staged through a temp file.
		staged, remove, err := l.stage(src.Location())
		if err != nil {
			return pkgcheckpoint.Checkpoint{}, err
		}
		path = staged
		cleanup = remove
	case pkgcheckpoint.SourceKindDir:
		return pkgcheckpoint.Checkpoint{}, errors.Errorf("loader: directory source %q must be discovered into files first", src.Location())
	default:
		return pkgcheckpoint.Checkpoint{}, errors.Errorf("loader: unsupported source kind %q", src.Kind())
	}
	defer cleanup()

	if !l.opts.MatchesExtension(path) {
		return pkgcheckpoint.Checkpoint{}, errors.Errorf("loader: %q is not a checkpoint file (want %v)", src.Location(), l.opts.Extensions)
	}
	if _, err := os.Stat(path); err != nil {
		return pkgcheckpoint.Checkpoint{}, errors.Wrapf(err, "loader: stat %q", src.Location())
	}

	root, err := pytorch.Load(path)
	if err != nil {
		return pkgcheckpoint.Checkpoint{}, errors.Wrapf(err, "loader: decode %q", src.Location())
	}

	chk, err := pkgcheckpoint.New(src, root)
	if err != nil {
		return pkgcheckpoint.Checkpoint{}, errors.Wrap(err, "loader")
	}
	return chk, nil
}

// stage copies an fs.FS entry into a temp file so the decoder can seek it.
func (l *Loader) stage(name string) (string, func(), error) {
	if l.opts.FileSystem == nil {
		return "", nil, errors.Errorf("loader: fs source %q requires a filesystem", name)
	}
	data, err := fs.ReadFile(l.opts.FileSystem, name)
	if err != nil {
		return "", nil, errors.Wrapf(err, "loader: read %q", name)
	}

	tmp, err := os.CreateTemp("", "ptconv-*"+filepath.Ext(name))
	if err != nil {
		return "", nil, errors.Wrap(err, "loader: stage temp file")
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", nil, errors.Wrapf(err, "loader: stage %q", name)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", nil, errors.Wrapf(err, "loader: stage %q", name)
	}
	return tmp.Name(), func() { os.Remove(tmp.Name()) }, nil
}
