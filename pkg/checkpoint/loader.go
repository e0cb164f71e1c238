package checkpoint

import (
	"context"
	"io/fs"
	"strings"
)

// DefaultExtensions lists the file extensions treated as checkpoints when a
// loader or directory scan is constructed without an explicit allow-list.
var DefaultExtensions = []string{".pt", ".ckpt"}

// Loader deserializes checkpoint files into object graphs. The pickle-backed
// implementation lives under internal/checkpoint but satisfies this contract.
type Loader interface {
	Load(ctx context.Context, src Source) (Checkpoint, error)
}

// LoaderOptions configures how a Loader resolves sources.
type LoaderOptions struct {
	// FileSystem backs fs sources; nil disables them.
	FileSystem fs.FS

	// Extensions is the allow-list of file extensions (with leading dot) a
	// loader accepts. Empty means DefaultExtensions.
	Extensions []string
}

// LoaderOption mutates LoaderOptions prior to construction.
type LoaderOption func(*LoaderOptions)

// WithFileSystem injects an fs.FS implementation for fs sources.
func WithFileSystem(files fs.FS) LoaderOption {
	return func(opts *LoaderOptions) {
		opts.FileSystem = files
	}
}

// WithExtensions overrides the checkpoint extension allow-list. Entries gain a
// leading dot when missing and are lowercased.
func WithExtensions(exts ...string) LoaderOption {
	return func(opts *LoaderOptions) {
		if len(exts) == 0 {
			return
		}
		opts.Extensions = normalizeExtensions(exts)
	}
}

// NewLoaderOptions applies a set of LoaderOption values and returns the
// resulting configuration.
func NewLoaderOptions(options ...LoaderOption) LoaderOptions {
	cfg := LoaderOptions{}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}
	if len(cfg.Extensions) == 0 {
		cfg.Extensions = normalizeExtensions(DefaultExtensions)
	}
	return cfg
}

// MatchesExtension reports whether name carries one of the allowed checkpoint
// extensions. The comparison is case-insensitive.
func (o LoaderOptions) MatchesExtension(name string) bool {
	exts := o.Extensions
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	lower := strings.ToLower(name)
	for _, ext := range exts {
		if strings.HasSuffix(lower, strings.ToLower(ext)) {
			return true
		}
	}
	return false
}

func normalizeExtensions(exts []string) []string {
	out := make([]string, 0, len(exts))
	for _, ext := range exts {
		trimmed := strings.ToLower(strings.TrimSpace(ext))
		if trimmed == "" {
			continue
		}
		if !strings.HasPrefix(trimmed, ".") {
			trimmed = "." + trimmed
		}
		out = append(out, trimmed)
	}
	return out
}
