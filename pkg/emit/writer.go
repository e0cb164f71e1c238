package emit

import (
	"context"

	"github.com/goliatone/go-ptconv/pkg/tensor"
)

// Writer serializes a tensor mapping into the bytes of a container format.
type Writer interface {
	// Name identifies the writer inside a Registry.
	Name() string

	// Extension is the output file extension (with leading dot) the converter
	// swaps onto input paths.
	Extension() string

	// Write serializes the mapping. Implementations must be deterministic for
	// a given mapping so repeated runs produce identical files.
	Write(ctx context.Context, tensors *tensor.Map, options Options) ([]byte, error)
}

// Options carries per-request instructions writers can honor.
type Options struct {
	// Metadata is merged over the mapping's own metadata before writing.
	// Writer formats without a metadata section ignore unsupported keys.
	Metadata map[string]string
}
