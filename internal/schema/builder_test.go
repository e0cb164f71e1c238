package schema_test

import (
	"sort"
	"testing"

	"github.com/nlpodyssey/gopickle/pytorch"
	"github.com/nlpodyssey/gopickle/types"
	"github.com/stretchr/testify/require"

	internalschema "github.com/goliatone/go-ptconv/internal/schema"
	"github.com/goliatone/go-ptconv/pkg/checkpoint"
	"github.com/goliatone/go-ptconv/pkg/schema"
	"github.com/goliatone/go-ptconv/pkg/testsupport"
)

func mustCheckpoint(t *testing.T, graph any) checkpoint.Checkpoint {
	t.Helper()
	chk, err := checkpoint.New(checkpoint.SourceFromFile("model.pt"), graph)
	require.NoError(t, err)
	return chk
}

func TestBuildEmbedding(t *testing.T) {
	graph := testsupport.EmbeddingGraph(
		testsupport.FloatTensor([]float32{1, 2, 3, 4, 5, 6, 7, 8}, 1, 8),
		"v1-5-pruned", 500,
	)
	builder := internalschema.New()

	out, err := builder.Build(testsupport.Context(), mustCheckpoint(t, graph), schema.KindEmbedding)
	require.NoError(t, err)

	require.Equal(t, 1, out.Len())
	emb, ok := out.Get(internalschema.EmbeddingTensorName)
	require.True(t, ok, "emb_params present")
	require.Equal(t, []int{1, 8}, emb.Shape)
	require.Len(t, emb.Data, 32)

	meta := out.Metadata()
	require.Equal(t, "v1-5-pruned", meta[schema.MetadataCheckpointName])
	require.Equal(t, "500", meta[schema.MetadataStep])
}

func TestBuildEmbeddingWithoutMetadata(t *testing.T) {
	graph := testsupport.EmbeddingGraph(testsupport.FloatTensor([]float32{1, 2}, 1, 2), "", -1)
	builder := internalschema.New()

	out, err := builder.Build(testsupport.Context(), mustCheckpoint(t, graph), schema.KindEmbedding)
	require.NoError(t, err)
	require.Empty(t, out.Metadata())
}

func TestBuildEmbeddingMissingKey(t *testing.T) {
	root := types.NewDict()
	root.Set("something_else", 1)
	builder := internalschema.New()

	_, err := builder.Build(testsupport.Context(), mustCheckpoint(t, root), schema.KindEmbedding)
	require.Error(t, err)
	require.Contains(t, err.Error(), "string_to_param")
}

func TestBuildEmbeddingNonTensorEntry(t *testing.T) {
	inner := types.NewDict()
	inner.Set("*", "not a tensor")
	root := types.NewDict()
	root.Set("string_to_param", inner)
	builder := internalschema.New()

	_, err := builder.Build(testsupport.Context(), mustCheckpoint(t, root), schema.KindEmbedding)
	require.Error(t, err)
	require.Contains(t, err.Error(), "expected a tensor")
}

func TestBuildVAE(t *testing.T) {
	graph := testsupport.VAEGraph(map[string]*pytorch.Tensor{
		"decoder.conv_in.weight": testsupport.FloatTensor([]float32{1, 2, 3, 4}, 2, 2),
		"decoder.conv_in.bias":   testsupport.FloatTensor([]float32{5, 6}, 2),
	}, 120000)
	builder := internalschema.New()

	out, err := builder.Build(testsupport.Context(), mustCheckpoint(t, graph), schema.KindVAE)
	require.NoError(t, err)

	names := out.Names()
	sort.Strings(names)
	require.Equal(t, []string{"decoder.conv_in.bias", "decoder.conv_in.weight"}, names)

	weight, _ := out.Get("decoder.conv_in.weight")
	require.Equal(t, []int{2, 2}, weight.Shape)

	require.Equal(t, "120000", out.Metadata()[schema.MetadataStep])
}

func TestBuildVAEStepPrecedesGlobalStep(t *testing.T) {
	state := types.NewOrderedDict()
	state.Set("w", testsupport.FloatTensor([]float32{1}, 1))
	root := types.NewDict()
	root.Set("state_dict", state)
	root.Set("step", 7)
	root.Set("global_step", 9)
	builder := internalschema.New()

	out, err := builder.Build(testsupport.Context(), mustCheckpoint(t, root), schema.KindVAE)
	require.NoError(t, err)
	require.Equal(t, "7", out.Metadata()[schema.MetadataStep])
}

func TestBuildVAESkipsNonTensorEntries(t *testing.T) {
	state := types.NewOrderedDict()
	state.Set("w", testsupport.FloatTensor([]float32{1, 2}, 2))
	state.Set("epoch", 12)
	root := types.NewDict()
	root.Set("state_dict", state)
	builder := internalschema.New()

	out, err := builder.Build(testsupport.Context(), mustCheckpoint(t, root), schema.KindVAE)
	require.NoError(t, err)
	require.Equal(t, []string{"w"}, out.Names())
}

func TestBuildVAEMissingStateDict(t *testing.T) {
	root := types.NewDict()
	root.Set("weights", 1)
	builder := internalschema.New()

	_, err := builder.Build(testsupport.Context(), mustCheckpoint(t, root), schema.KindVAE)
	require.Error(t, err)
	require.Contains(t, err.Error(), "state_dict")
}

func TestBuildVAEOnlyNonTensors(t *testing.T) {
	state := types.NewOrderedDict()
	state.Set("epoch", 3)
	root := types.NewDict()
	root.Set("state_dict", state)
	builder := internalschema.New()

	_, err := builder.Build(testsupport.Context(), mustCheckpoint(t, root), schema.KindVAE)
	require.Error(t, err)
	require.Contains(t, err.Error(), "no tensors")
}

func TestBuildUnsupportedKind(t *testing.T) {
	builder := internalschema.New()
	_, err := builder.Build(testsupport.Context(), mustCheckpoint(t, types.NewDict()), schema.Kind("unet"))
	require.Error(t, err)
}

func TestParseKind(t *testing.T) {
	for spelling, want := range map[string]schema.Kind{
		"embedding": schema.KindEmbedding,
		"VAE":       schema.KindVAE,
		" vae ":     schema.KindVAE,
	} {
		got, err := schema.ParseKind(spelling)
		require.NoError(t, err, "spelling %q", spelling)
		require.Equal(t, want, got)
	}

	_, err := schema.ParseKind("unet")
	require.Error(t, err)
}
