// Package manifest emits a JSON description of a tensor mapping without the
// tensor payloads: names, dtypes, shapes, element counts, byte sizes, and
// metadata. It backs inspection workflows where only the schema matters.
package manifest

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/goliatone/go-ptconv/pkg/emit"
	"github.com/goliatone/go-ptconv/pkg/tensor"
)

const (
	// WriterName identifies this writer inside an emit.Registry.
	WriterName = "manifest"

	// Extension is the output file extension.
	Extension = ".manifest.json"
)

// Entry describes a single tensor in the manifest.
type Entry struct {
	Name     string `json:"name"`
	DType    string `json:"dtype"`
	Shape    []int  `json:"shape"`
	Elements int    `json:"elements"`
	Bytes    int    `json:"bytes"`
}

// Manifest is the serialized document.
type Manifest struct {
	Tensors  []Entry           `json:"tensors"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Writer implements emit.Writer for the manifest format.
type Writer struct{}

// Ensure the implementation satisfies the public interface.
var _ emit.Writer = (*Writer)(nil)

// New constructs a Writer.
func New() *Writer {
	return &Writer{}
}

// Name reports the writer identifier.
func (w *Writer) Name() string {
	return WriterName
}

// Extension reports the output file extension.
func (w *Writer) Extension() string {
	return Extension
}

// Write serializes the manifest. Entries follow the mapping's sorted name
// order so output is deterministic.
func (w *Writer) Write(ctx context.Context, tensors *tensor.Map, options emit.Options) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if tensors == nil {
		return nil, fmt.Errorf("manifest: tensor map is required")
	}

	doc := Manifest{
		Tensors: make([]Entry, 0, tensors.Len()),
	}
	for _, name := range tensors.Names() {
		t, _ := tensors.Get(name)
		shape := t.Shape
		if shape == nil {
			shape = []int{}
		}
		doc.Tensors = append(doc.Tensors, Entry{
			Name:     name,
			DType:    t.DType.String(),
			Shape:    shape,
			Elements: t.NumElements(),
			Bytes:    len(t.Data),
		})
	}

	metadata := tensors.Metadata()
	for k, v := range options.Metadata {
		metadata[k] = v
	}
	if len(metadata) > 0 {
		doc.Metadata = metadata
	}

	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("manifest: marshal: %w", err)
	}
	return append(out, '\n'), nil
}
