package schema

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-ptconv/pkg/checkpoint"
	"github.com/goliatone/go-ptconv/pkg/tensor"
)

// Kind enumerates the checkpoint shapes the converter understands.
type Kind string

const (
	// KindEmbedding covers textual-inversion embedding bundles: the tensors
	// live under string_to_param and flatten to a single emb_params entry.
	KindEmbedding Kind = "embedding"

	// KindVAE covers VAE weight dictionaries: state_dict is the mapping and
	// every tensor entry carries over under its own name.
	KindVAE Kind = "vae"
)

// Valid reports whether the kind is one of the supported values.
func (k Kind) Valid() bool {
	return k == KindEmbedding || k == KindVAE
}

func (k Kind) String() string {
	return string(k)
}

// ParseKind maps a CLI spelling onto a Kind.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if !k.Valid() {
		return "", fmt.Errorf("schema: kind %q is not supported (want %q or %q)", s, KindEmbedding, KindVAE)
	}
	return k, nil
}

// Metadata keys a Builder may attach to the produced mapping. Values mirror
// the training fields some checkpoints carry.
const (
	MetadataCheckpointName = "sd_checkpoint_name"
	MetadataStep           = "step"
)

// Builder flattens a decoded checkpoint into a tensor mapping according to
// the declared kind.
type Builder interface {
	Build(ctx context.Context, chk checkpoint.Checkpoint, kind Kind) (*tensor.Map, error)
}
