package ptconv

import (
	internalLoader "github.com/goliatone/go-ptconv/internal/checkpoint/loader"
	internalSchema "github.com/goliatone/go-ptconv/internal/schema"
	"github.com/goliatone/go-ptconv/pkg/checkpoint"
	"github.com/goliatone/go-ptconv/pkg/schema"
)

// NewLoader constructs a checkpoint loader using the internal implementation
// while keeping the concrete type hidden from consumers.
func NewLoader(options ...checkpoint.LoaderOption) checkpoint.Loader {
	cfg := checkpoint.NewLoaderOptions(options...)
	return internalLoader.New(cfg)
}

// NewBuilder constructs a schema builder backed by the internal
// implementation.
func NewBuilder() schema.Builder {
	return internalSchema.New()
}
