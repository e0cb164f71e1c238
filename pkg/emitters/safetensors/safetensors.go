// Package safetensors emits the safe tensor container format: an 8-byte
// little-endian header length, a JSON header describing dtype, shape, and
// data offsets per tensor (plus optional string metadata), and the raw tensor
// buffers. The layout is flat and memory-mappable and carries no executable
// payloads, unlike the pickle checkpoints it replaces.
package safetensors

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"

	"github.com/goliatone/go-ptconv/pkg/emit"
	"github.com/goliatone/go-ptconv/pkg/tensor"
)

const (
	// WriterName identifies this writer inside an emit.Registry.
	WriterName = "safetensors"

	// Extension is the output file extension.
	Extension = ".safetensors"

	// headerAlign pads the JSON header so the data section starts at an
	// 8-byte boundary, keeping buffers aligned when the file is mapped.
	headerAlign = 8

	// maxHeaderSize guards Decode against corrupt or hostile length prefixes.
	maxHeaderSize = 100 << 20
)

// tensorInfo is the per-tensor header entry.
type tensorInfo struct {
	DType       string    `json:"dtype"`
	Shape       []int     `json:"shape"`
	DataOffsets [2]uint64 `json:"data_offsets"`
}

// Writer implements emit.Writer for the safetensors container.
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

// Write serializes the mapping, merging option metadata over the mapping's
// own metadata.
func (w *Writer) Write(ctx context.Context, tensors *tensor.Map, options emit.Options) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if tensors == nil {
		return nil, fmt.Errorf("safetensors: tensor map is required")
	}

	metadata := tensors.Metadata()
	for k, v := range options.Metadata {
		metadata[k] = v
	}
	return Encode(tensors, metadata)
}

// Encode serializes the mapping into container bytes. Tensors are laid out in
// sorted-name order so encoding is deterministic.
func Encode(tensors *tensor.Map, metadata map[string]string) ([]byte, error) {
	if tensors == nil {
		return nil, fmt.Errorf("safetensors: tensor map is required")
	}
	if tensors.Len() == 0 {
		return nil, fmt.Errorf("safetensors: tensor map is empty")
	}

	header := make(map[string]any, tensors.Len()+1)
	if len(metadata) > 0 {
		header["__metadata__"] = metadata
	}

	var offset uint64
	names := tensors.Names()
	for _, name := range names {
		if name == "__metadata__" {
			return nil, fmt.Errorf("safetensors: tensor name %q collides with the metadata key", name)
		}
		t, _ := tensors.Get(name)
		if err := t.Validate(); err != nil {
			return nil, fmt.Errorf("safetensors: %q: %w", name, err)
		}
		shape := t.Shape
		if shape == nil {
			shape = []int{}
		}
		end := offset + uint64(len(t.Data))
		header[name] = tensorInfo{
			DType:       t.DType.String(),
			Shape:       shape,
			DataOffsets: [2]uint64{offset, end},
		}
		offset = end
	}

	headerJSON, err := json.Marshal(header)
	if err != nil {
		return nil, fmt.Errorf("safetensors: marshal header: %w", err)
	}
	if pad := len(headerJSON) % headerAlign; pad != 0 {
		headerJSON = append(headerJSON, bytes.Repeat([]byte(" "), headerAlign-pad)...)
	}

	out := bytes.NewBuffer(make([]byte, 0, 8+len(headerJSON)+int(offset)))
	var lenBuf [8]byte
	binary.LittleEndian.PutUint64(lenBuf[:], uint64(len(headerJSON)))
	out.Write(lenBuf[:])
	out.Write(headerJSON)
	for _, name := range names {
		t, _ := tensors.Get(name)
		out.Write(t.Data)
	}
	return out.Bytes(), nil
}

// Decode parses container bytes back into a tensor mapping. It exists for
// verification and tests; the converter itself only encodes.
func Decode(data []byte) (*tensor.Map, error) {
	if len(data) < 8 {
		return nil, fmt.Errorf("safetensors: %d bytes is too short for a header", len(data))
	}
	headerLen := binary.LittleEndian.Uint64(data[:8])
	if headerLen > maxHeaderSize {
		return nil, fmt.Errorf("safetensors: header length %d exceeds limit", headerLen)
	}
	if uint64(len(data)-8) < headerLen {
		return nil, fmt.Errorf("safetensors: header length %d overruns %d payload bytes", headerLen, len(data)-8)
	}

	var rawHeader map[string]json.RawMessage
	if err := json.Unmarshal(data[8:8+headerLen], &rawHeader); err != nil {
		return nil, fmt.Errorf("safetensors: parse header: %w", err)
	}

	payload := data[8+headerLen:]
	out := tensor.NewMap()
	for name, raw := range rawHeader {
		if name == "__metadata__" {
			var metadata map[string]string
			if err := json.Unmarshal(raw, &metadata); err != nil {
				return nil, fmt.Errorf("safetensors: parse metadata: %w", err)
			}
			for k, v := range metadata {
				out.SetMetadata(k, v)
			}
			continue
		}

		var info tensorInfo
		if err := json.Unmarshal(raw, &info); err != nil {
			return nil, fmt.Errorf("safetensors: parse entry %q: %w", name, err)
		}
		dtype, err := tensor.ParseDType(info.DType)
		if err != nil {
			return nil, fmt.Errorf("safetensors: entry %q: %w", name, err)
		}
		begin, end := info.DataOffsets[0], info.DataOffsets[1]
		if begin > end || end > uint64(len(payload)) {
			return nil, fmt.Errorf("safetensors: entry %q offsets [%d, %d] overrun %d data bytes",
				name, begin, end, len(payload))
		}
		t := tensor.Tensor{
			DType: dtype,
			Shape: info.Shape,
			Data:  append([]byte(nil), payload[begin:end]...),
		}
		if err := out.Add(name, t); err != nil {
			return nil, fmt.Errorf("safetensors: %w", err)
		}
	}
	return out, nil
}
