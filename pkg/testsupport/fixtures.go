// Package testsupport provides fixtures shared by the contract tests:
// in-memory checkpoint graphs shaped like the real pickle decoder output, a
// stub loader, and golden-file helpers.
package testsupport

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/nlpodyssey/gopickle/pytorch"
	"github.com/nlpodyssey/gopickle/types"

	"github.com/goliatone/go-ptconv/pkg/checkpoint"
)

// Context returns the context contract tests run under.
func Context() context.Context {
	return context.Background()
}

// FloatTensor builds a contiguous float32 torch tensor over values.
func FloatTensor(values []float32, shape ...int) *pytorch.Tensor {
	return &pytorch.Tensor{
		Source: &pytorch.FloatStorage{
			BaseStorage: pytorch.BaseStorage{Size: len(values), Location: "cpu"},
			Data:        values,
		},
		Size:   shape,
		Stride: RowMajorStride(shape),
	}
}

// HalfTensor builds a contiguous float16 torch tensor over values.
func HalfTensor(values []float32, shape ...int) *pytorch.Tensor {
	return &pytorch.Tensor{
		Source: &pytorch.HalfStorage{
			BaseStorage: pytorch.BaseStorage{Size: len(values), Location: "cpu"},
			Data:        values,
		},
		Size:   shape,
		Stride: RowMajorStride(shape),
	}
}

// RowMajorStride returns the dense row-major stride for shape.
func RowMajorStride(shape []int) []int {
	stride := make([]int, len(shape))
	acc := 1
	for i := len(shape) - 1; i >= 0; i-- {
		stride[i] = acc
		acc *= shape[i]
	}
	return stride
}

// EmbeddingGraph builds the decoded object graph of an embedding bundle the
// way the pickle decoder shapes it: a dict with string_to_param mapping "*"
// to the embedding tensor, plus optional training metadata.
func EmbeddingGraph(embedding *pytorch.Tensor, checkpointName string, step int) *types.Dict {
	inner := types.NewDict()
	inner.Set("*", embedding)

	root := types.NewDict()
	root.Set("string_to_param", inner)
	if checkpointName != "" {
		root.Set("sd_checkpoint_name", checkpointName)
	}
	if step >= 0 {
		root.Set("step", step)
	}
	return root
}

// VAEGraph builds the decoded object graph of a VAE weight dictionary:
// state_dict as an ordered dict of named tensors plus an optional
// global_step counter.
func VAEGraph(tensors map[string]*pytorch.Tensor, globalStep int) *types.Dict {
	state := types.NewOrderedDict()
	for name, t := range tensors {
		state.Set(name, t)
	}

	root := types.NewDict()
	root.Set("state_dict", state)
	if globalStep >= 0 {
		root.Set("global_step", globalStep)
	}
	return root
}

// StubLoader satisfies checkpoint.Loader from in-memory graphs keyed by
// source location. Fallback serves any location not present in Graphs.
type StubLoader struct {
	Graphs   map[string]any
	Fallback any
}

// Load resolves the graph for the source location.
func (l *StubLoader) Load(_ context.Context, src checkpoint.Source) (checkpoint.Checkpoint, error) {
	if src == nil {
		return checkpoint.Checkpoint{}, errors.New("testsupport: source is nil")
	}
	root := l.Fallback
	if g, ok := l.Graphs[src.Location()]; ok {
		root = g
	}
	if root == nil {
		return checkpoint.Checkpoint{}, fmt.Errorf("testsupport: no graph for %q", src.Location())
	}
	return checkpoint.New(src, root)
}

// StubConfirmer satisfies convert.Confirmer with a fixed answer.
type StubConfirmer struct {
	Answer bool

	// Messages records every question asked.
	Messages []string
}

// Confirm records the question and returns the fixed answer.
func (c *StubConfirmer) Confirm(message string, _ bool) (bool, error) {
	c.Messages = append(c.Messages, message)
	return c.Answer, nil
}

// WriteFile writes a fixture file, creating parent directories.
func WriteFile(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
}

// MustReadGolden reads a golden file.
func MustReadGolden(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return data
}

// WriteMaybeGolden rewrites the golden file when UPDATE_GOLDEN is set and
// reports whether it did.
func WriteMaybeGolden(t *testing.T, path string, data []byte) bool {
	t.Helper()
	if os.Getenv("UPDATE_GOLDEN") == "" {
		return false
	}
	WriteFile(t, path, data)
	return true
}

// CompareGolden diffs want against got.
func CompareGolden(want, got string) string {
	return cmp.Diff(want, got)
}
