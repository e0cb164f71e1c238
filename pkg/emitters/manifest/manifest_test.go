package manifest_test

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-ptconv/pkg/emit"
	"github.com/goliatone/go-ptconv/pkg/emitters/manifest"
	"github.com/goliatone/go-ptconv/pkg/tensor"
	"github.com/goliatone/go-ptconv/pkg/testsupport"
)

func TestWriteManifest(t *testing.T) {
	m := tensor.NewMap()
	if err := m.Add("emb_params", tensor.Tensor{DType: tensor.F32, Shape: []int{1, 4}, Data: make([]byte, 16)}); err != nil {
		t.Fatalf("add: %v", err)
	}
	m.SetMetadata("step", "500")

	w := manifest.New()
	data, err := w.Write(testsupport.Context(), m, emit.Options{Metadata: map[string]string{"kind": "embedding"}})
	if err != nil {
		t.Fatalf("write: %v", err)
	}

	var doc manifest.Manifest
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	want := manifest.Manifest{
		Tensors: []manifest.Entry{
			{Name: "emb_params", DType: "F32", Shape: []int{1, 4}, Elements: 4, Bytes: 16},
		},
		Metadata: map[string]string{"step": "500", "kind": "embedding"},
	}
	if diff := cmp.Diff(want, doc); diff != "" {
		t.Fatalf("manifest mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteManifestRequiresMap(t *testing.T) {
	if _, err := manifest.New().Write(testsupport.Context(), nil, emit.Options{}); err == nil {
		t.Fatal("expected error for nil map")
	}
}

func TestWriterIdentity(t *testing.T) {
	w := manifest.New()
	if w.Name() != manifest.WriterName {
		t.Fatalf("name = %q", w.Name())
	}
	if w.Extension() != manifest.Extension {
		t.Fatalf("extension = %q", w.Extension())
	}
}
