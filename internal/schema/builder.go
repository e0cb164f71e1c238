// Package schema implements the public schema.Builder contract on top of the
// container types the pickle decoder produces.
package schema

import (
	"context"
	"strconv"

	"github.com/nlpodyssey/gopickle/pytorch"
	"github.com/nlpodyssey/gopickle/types"
	"github.com/pkg/errors"

	"github.com/goliatone/go-ptconv/internal/tensorconv"
	"github.com/goliatone/go-ptconv/pkg/checkpoint"
	pkgschema "github.com/goliatone/go-ptconv/pkg/schema"
	"github.com/goliatone/go-ptconv/pkg/tensor"
)

// EmbeddingTensorName is the key embedding bundles flatten to inside the
// output container.
const EmbeddingTensorName = "emb_params"

// Builder flattens decoded checkpoints according to their declared kind.
type Builder struct{}

// Ensure the implementation satisfies the public interface.
var _ pkgschema.Builder = (*Builder)(nil)

// New constructs a Builder.
func New() *Builder {
	return &Builder{}
}

// Build dispatches on the checkpoint kind.
func (b *Builder) Build(ctx context.Context, chk checkpoint.Checkpoint, kind pkgschema.Kind) (*tensor.Map, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	switch kind {
	case pkgschema.KindEmbedding:
		return b.buildEmbedding(chk)
	case pkgschema.KindVAE:
		return b.buildVAE(chk)
	default:
		return nil, errors.Errorf("schema: kind %q is not supported", kind)
	}
}

// buildEmbedding extracts the single embedding tensor stored under
// string_to_param / "*" and flattens it to emb_params.
func (b *Builder) buildEmbedding(chk checkpoint.Checkpoint) (*tensor.Map, error) {
	node, ok := chk.Lookup("string_to_param", "*")
	if !ok {
		return nil, errors.New(`schema: embedding checkpoint has no string_to_param["*"] entry`)
	}
	tt, ok := node.(*pytorch.Tensor)
	if !ok {
		return nil, errors.Errorf(`schema: string_to_param["*"] is %T, expected a tensor`, node)
	}

	converted, err := tensorconv.FromTorch(tt)
	if err != nil {
		return nil, errors.Wrap(err, "schema: embedding tensor")
	}

	out := tensor.NewMap()
	if err := out.Add(EmbeddingTensorName, converted); err != nil {
		return nil, err
	}

	if name, ok := scalarString(lookup(chk, "sd_checkpoint_name")); ok {
		out.SetMetadata(pkgschema.MetadataCheckpointName, name)
	}
	if step, ok := scalarString(lookup(chk, "step")); ok {
		out.SetMetadata(pkgschema.MetadataStep, step)
	}
	return out, nil
}

// buildVAE flattens state_dict, keeping every tensor entry under its own
// name. Non-tensor entries (optimizer state, nested stats) are skipped.
func (b *Builder) buildVAE(chk checkpoint.Checkpoint) (*tensor.Map, error) {
	node, ok := chk.Lookup("state_dict")
	if !ok {
		return nil, errors.New("schema: VAE checkpoint has no state_dict entry")
	}

	items, err := dictEntries(node)
	if err != nil {
		return nil, errors.Wrap(err, "schema: state_dict")
	}

	out := tensor.NewMap()
	for _, item := range items {
		tt, ok := item.value.(*pytorch.Tensor)
		if !ok {
			continue
		}
		converted, err := tensorconv.FromTorch(tt)
		if err != nil {
			return nil, errors.Wrapf(err, "schema: state_dict[%q]", item.key)
		}
		if err := out.Add(item.key, converted); err != nil {
			return nil, err
		}
	}
	if out.Len() == 0 {
		return nil, errors.New("schema: state_dict holds no tensors")
	}

	step, ok := scalarString(lookup(chk, "step"))
	if !ok {
		step, ok = scalarString(lookup(chk, "global_step"))
	}
	if ok {
		out.SetMetadata(pkgschema.MetadataStep, step)
	}
	return out, nil
}

type dictEntry struct {
	key   string
	value any
}

// dictEntries enumerates a dictionary-like node. Non-string keys are skipped;
// checkpoints key their weight dictionaries by name.
func dictEntries(node any) ([]dictEntry, error) {
	switch d := node.(type) {
	case *types.Dict:
		out := make([]dictEntry, 0, len(*d))
		for _, e := range *d {
			if key, ok := e.Key.(string); ok {
				out = append(out, dictEntry{key: key, value: e.Value})
			}
		}
		return out, nil
	case *types.OrderedDict:
		out := make([]dictEntry, 0, len(d.Map))
		for k, e := range d.Map {
			if key, ok := k.(string); ok {
				out = append(out, dictEntry{key: key, value: e.Value})
			}
		}
		return out, nil
	case map[string]any:
		out := make([]dictEntry, 0, len(d))
		for k, v := range d {
			out = append(out, dictEntry{key: k, value: v})
		}
		return out, nil
	case map[any]any:
		out := make([]dictEntry, 0, len(d))
		for k, v := range d {
			if key, ok := k.(string); ok {
				out = append(out, dictEntry{key: key, value: v})
			}
		}
		return out, nil
	default:
		return nil, errors.Errorf("schema: %T is not dictionary-like", node)
	}
}

func lookup(chk checkpoint.Checkpoint, key string) any {
	v, ok := chk.Lookup(key)
	if !ok {
		return nil
	}
	return v
}

// scalarString renders the scalar values training metadata arrives as.
func scalarString(v any) (string, bool) {
	switch s := v.(type) {
	case nil:
		return "", false
	case string:
		if s == "" {
			return "", false
		}
		return s, true
	case int:
		return strconv.Itoa(s), true
	case int64:
		return strconv.FormatInt(s, 10), true
	case uint64:
		return strconv.FormatUint(s, 10), true
	case float64:
		return strconv.FormatFloat(s, 'g', -1, 64), true
	default:
		return "", false
	}
}
