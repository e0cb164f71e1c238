// Package ptconv converts pickle-based PyTorch checkpoints into safetensors
// containers. The root package re-exports the common entry points; the full
// pipeline lives under pkg/convert with contracts in pkg/checkpoint,
// pkg/schema, pkg/tensor, and pkg/emit.
package ptconv

import (
	"context"
	"fmt"
	"os"

	"github.com/goliatone/go-ptconv/pkg/checkpoint"
	"github.com/goliatone/go-ptconv/pkg/convert"
	"github.com/goliatone/go-ptconv/pkg/schema"
)

// Request describes one conversion request; alias exported via the root
// package for convenience.
type Request = convert.Request

// Result summarises a conversion run.
type Result = convert.Result

// Kind enumerates the supported checkpoint shapes.
type Kind = schema.Kind

// Supported checkpoint shapes.
const (
	KindEmbedding = schema.KindEmbedding
	KindVAE       = schema.KindVAE
)

// ParseKind maps a CLI spelling onto a Kind.
func ParseKind(s string) (Kind, error) {
	return schema.ParseKind(s)
}

// NewConverter exposes the converter constructor from the top-level module.
func NewConverter(options ...convert.Option) *convert.Converter {
	return convert.New(options...)
}

// ConvertPath converts a file or every matching file in a directory, writing
// each output alongside its input. It is the simplest entry point for callers
// that just want the default pipeline.
func ConvertPath(ctx context.Context, path string, kind Kind, options ...convert.Option) (Result, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Result{}, fmt.Errorf("ptconv: stat %q: %w", path, err)
	}

	var src checkpoint.Source
	if info.IsDir() {
		src = checkpoint.SourceFromDir(path, false)
	} else {
		src = checkpoint.SourceFromFile(path)
	}

	conv := convert.New(options...)
	return conv.Convert(ctx, Request{Source: src, Kind: kind})
}
