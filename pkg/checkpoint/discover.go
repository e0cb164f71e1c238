package checkpoint

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// Discover expands a source into the concrete file paths a conversion run
// should process. File sources yield exactly themselves, directory sources
// yield every matching file (recursing when the source asks for it), and fs
// sources yield their name after existence checks against the configured
// filesystem. Paths come back sorted so runs are deterministic.
func Discover(ctx context.Context, src Source, opts LoaderOptions) ([]string, error) {
	if src == nil {
		return nil, fmt.Errorf("checkpoint: source is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	switch src.Kind() {
	case SourceKindFile:
		return discoverFile(src.Location(), opts)
	case SourceKindDir:
		recursive := false
		if d, ok := src.(interface{ Recursive() bool }); ok {
			recursive = d.Recursive()
		}
		return discoverDir(ctx, src.Location(), recursive, opts)
	case SourceKindFS:
		if opts.FileSystem == nil {
			return nil, fmt.Errorf("checkpoint: fs source %q requires a filesystem", src.Location())
		}
		if _, err := fs.Stat(opts.FileSystem, src.Location()); err != nil {
			return nil, fmt.Errorf("checkpoint: stat %q: %w", src.Location(), err)
		}
		return []string{src.Location()}, nil
	default:
		return nil, fmt.Errorf("checkpoint: unsupported source kind %q", src.Kind())
	}
}

func discoverFile(path string, opts LoaderOptions) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("checkpoint: stat %q: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("checkpoint: %q is a directory, use a directory source", path)
	}
	if !opts.MatchesExtension(path) {
		return nil, fmt.Errorf("checkpoint: %q is not a checkpoint file (want %v)", path, opts.Extensions)
	}
	return []string{path}, nil
}

func discoverDir(ctx context.Context, dir string, recursive bool, opts LoaderOptions) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("checkpoint: stat %q: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("checkpoint: %q is not a directory", dir)
	}

	var paths []string
	if recursive {
		err = filepath.WalkDir(dir, func(path string, entry fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			if !entry.IsDir() && opts.MatchesExtension(entry.Name()) {
				paths = append(paths, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("checkpoint: walk %q: %w", dir, err)
		}
	} else {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, fmt.Errorf("checkpoint: read dir %q: %w", dir, err)
		}
		for _, entry := range entries {
			if !entry.IsDir() && opts.MatchesExtension(entry.Name()) {
				paths = append(paths, filepath.Join(dir, entry.Name()))
			}
		}
	}

	sort.Strings(paths)
	return paths, nil
}
