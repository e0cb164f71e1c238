package tensor

import "fmt"

// Tensor is a single named buffer: raw little-endian bytes plus enough shape
// and dtype information to reinterpret them. Data is always contiguous in
// row-major order; loaders are responsible for flattening strided views before
// anything reaches this package.
type Tensor struct {
	DType DType
	Shape []int
	Data  []byte
}

// NumElements returns the product of the shape dimensions. A zero-dimensional
// tensor holds exactly one element.
func (t Tensor) NumElements() int {
	n := 1
	for _, dim := range t.Shape {
		n *= dim
	}
	return n
}

// Validate checks the dtype, shape, and buffer length agree with each other.
func (t Tensor) Validate() error {
	if !t.DType.Valid() {
		return fmt.Errorf("tensor: unknown dtype %q", string(t.DType))
	}
	for i, dim := range t.Shape {
		if dim < 0 {
			return fmt.Errorf("tensor: negative dimension %d at axis %d", dim, i)
		}
	}
	want := t.NumElements() * t.DType.ByteSize()
	if len(t.Data) != want {
		return fmt.Errorf("tensor: buffer is %d bytes, shape %v of %s needs %d",
			len(t.Data), t.Shape, t.DType, want)
	}
	return nil
}
