package checkpoint

import "path/filepath"

// Source identifies where checkpoint files originate. Loaders operate on
// files, directories, or fs.FS entries without leaking how each is resolved.
type Source interface {
	Kind() SourceKind
	Location() string
}

// SourceKind enumerates the loader modalities.
type SourceKind string

const (
	SourceKindFile SourceKind = "file"
	SourceKindDir  SourceKind = "dir"
	SourceKindFS   SourceKind = "fs"
)

// fileSource identifies a single on-disk checkpoint.
type fileSource struct {
	path string
}

func (s fileSource) Location() string {
	return s.path
}

func (s fileSource) Kind() SourceKind {
	return SourceKindFile
}

// SourceFromFile returns a Source pointing to a file path.
func SourceFromFile(path string) Source {
	return fileSource{path: filepath.Clean(path)}
}

// dirSource identifies a directory whose matching files are all converted.
type dirSource struct {
	path      string
	recursive bool
}

func (s dirSource) Location() string {
	return s.path
}

func (s dirSource) Kind() SourceKind {
	return SourceKindDir
}

// Recursive reports whether the directory walk descends into subdirectories.
func (s dirSource) Recursive() bool {
	return s.recursive
}

// SourceFromDir returns a Source covering every matching file in a directory.
// When recursive is true the walk descends into subdirectories.
func SourceFromDir(path string, recursive bool) Source {
	return dirSource{path: filepath.Clean(path), recursive: recursive}
}

// fsSource references a path within an fs.FS.
type fsSource struct {
	name string
}

func (s fsSource) Location() string {
	return s.name
}

func (s fsSource) Kind() SourceKind {
	return SourceKindFS
}

// SourceFromFS returns a Source identifying a checkpoint inside an fs.FS.
func SourceFromFS(name string) Source {
	return fsSource{name: name}
}
