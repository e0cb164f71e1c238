// Package tensorconv turns tensors decoded from pickle checkpoints into the
// flat little-endian representation the emitters consume.
package tensorconv

import (
	"encoding/binary"
	"math"

	"github.com/nlpodyssey/gopickle/pytorch"
	"github.com/pkg/errors"
	"github.com/x448/float16"

	"github.com/goliatone/go-ptconv/pkg/tensor"
)

// FromTorch converts a decoded torch tensor into a tensor.Tensor. Only
// contiguous row-major views are supported; strided or transposed views fail
// rather than silently reordering data.
func FromTorch(t *pytorch.Tensor) (tensor.Tensor, error) {
	if t == nil {
		return tensor.Tensor{}, errors.New("tensorconv: nil tensor")
	}
	if t.Source == nil {
		return tensor.Tensor{}, errors.New("tensorconv: tensor has no storage")
	}
	if !contiguous(t.Size, t.Stride) {
		return tensor.Tensor{}, errors.Errorf("tensorconv: non-contiguous tensor (size %v stride %v)", t.Size, t.Stride)
	}

	shape := make([]int, len(t.Size))
	copy(shape, t.Size)

	elems := 1
	for _, dim := range shape {
		if dim < 0 {
			return tensor.Tensor{}, errors.Errorf("tensorconv: negative dimension %d", dim)
		}
		elems *= dim
	}

	out := tensor.Tensor{Shape: shape}

	switch storage := t.Source.(type) {
	case *pytorch.FloatStorage:
		values, err := window(storage.Data, t.StorageOffset, elems)
		if err != nil {
			return tensor.Tensor{}, err
		}
		out.DType = tensor.F32
		out.Data = make([]byte, elems*4)
		for i, v := range values {
			binary.LittleEndian.PutUint32(out.Data[i*4:], math.Float32bits(v))
		}
	case *pytorch.DoubleStorage:
		values, err := window(storage.Data, t.StorageOffset, elems)
		if err != nil {
			return tensor.Tensor{}, err
		}
		out.DType = tensor.F64
		out.Data = make([]byte, elems*8)
		for i, v := range values {
			binary.LittleEndian.PutUint64(out.Data[i*8:], math.Float64bits(v))
		}
	case *pytorch.HalfStorage:
		values, err := window(storage.Data, t.StorageOffset, elems)
		if err != nil {
			return tensor.Tensor{}, err
		}
		out.DType = tensor.F16
		out.Data = make([]byte, elems*2)
		for i, v := range values {
			binary.LittleEndian.PutUint16(out.Data[i*2:], float16.Fromfloat32(v).Bits())
		}
	case *pytorch.BFloat16Storage:
		values, err := window(storage.Data, t.StorageOffset, elems)
		if err != nil {
			return tensor.Tensor{}, err
		}
		out.DType = tensor.BF16
		out.Data = make([]byte, elems*2)
		for i, v := range values {
			binary.LittleEndian.PutUint16(out.Data[i*2:], bfloat16Bits(v))
		}
	case *pytorch.LongStorage:
		values, err := window(storage.Data, t.StorageOffset, elems)
		if err != nil {
			return tensor.Tensor{}, err
		}
		out.DType = tensor.I64
		out.Data = make([]byte, elems*8)
		for i, v := range values {
			binary.LittleEndian.PutUint64(out.Data[i*8:], uint64(v))
		}
	case *pytorch.IntStorage:
		values, err := window(storage.Data, t.StorageOffset, elems)
		if err != nil {
			return tensor.Tensor{}, err
		}
		out.DType = tensor.I32
		out.Data = make([]byte, elems*4)
		for i, v := range values {
			binary.LittleEndian.PutUint32(out.Data[i*4:], uint32(v))
		}
	case *pytorch.ShortStorage:
		values, err := window(storage.Data, t.StorageOffset, elems)
		if err != nil {
			return tensor.Tensor{}, err
		}
		out.DType = tensor.I16
		out.Data = make([]byte, elems*2)
		for i, v := range values {
			binary.LittleEndian.PutUint16(out.Data[i*2:], uint16(v))
		}
	case *pytorch.CharStorage:
		values, err := window(storage.Data, t.StorageOffset, elems)
		if err != nil {
			return tensor.Tensor{}, err
		}
		out.DType = tensor.I8
		out.Data = make([]byte, elems)
		for i, v := range values {
			out.Data[i] = byte(v)
		}
	case *pytorch.ByteStorage:
		values, err := window(storage.Data, t.StorageOffset, elems)
		if err != nil {
			return tensor.Tensor{}, err
		}
		out.DType = tensor.U8
		out.Data = make([]byte, elems)
		copy(out.Data, values)
	case *pytorch.BoolStorage:
		values, err := window(storage.Data, t.StorageOffset, elems)
		if err != nil {
			return tensor.Tensor{}, err
		}
		out.DType = tensor.Bool
		out.Data = make([]byte, elems)
		for i, v := range values {
			if v {
				out.Data[i] = 1
			}
		}
	default:
		return tensor.Tensor{}, errors.Errorf("tensorconv: unsupported storage type %T", t.Source)
	}

	if err := out.Validate(); err != nil {
		return tensor.Tensor{}, errors.Wrap(err, "tensorconv")
	}
	return out, nil
}

// window slices elems entries starting at offset, validating bounds.
func window[T any](data []T, offset, elems int) ([]T, error) {
	if offset < 0 {
		return nil, errors.Errorf("tensorconv: negative storage offset %d", offset)
	}
	if offset+elems > len(data) {
		return nil, errors.Errorf("tensorconv: storage too small: need %d elements at offset %d, have %d",
			elems, offset, len(data))
	}
	return data[offset : offset+elems], nil
}

// contiguous reports whether stride describes a dense row-major layout of
// size. Empty strides (scalars, some legacy checkpoints) count as contiguous.
func contiguous(size, stride []int) bool {
	if len(stride) == 0 {
		return true
	}
	if len(stride) != len(size) {
		return false
	}
	expected := 1
	for i := len(size) - 1; i >= 0; i-- {
		// Dimensions of extent 1 can carry any stride.
		if size[i] != 1 && stride[i] != expected {
			return false
		}
		expected *= size[i]
	}
	return true
}

// bfloat16Bits truncates a float32 to bfloat16 with round-to-nearest-even.
func bfloat16Bits(v float32) uint16 {
	bits := math.Float32bits(v)
	if math.IsNaN(float64(v)) {
		return uint16(bits>>16) | 0x0040
	}
	round := uint32(0x7FFF + ((bits >> 16) & 1))
	return uint16((bits + round) >> 16)
}
