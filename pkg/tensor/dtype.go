package tensor

import "fmt"

// DType enumerates the element types a Tensor can carry. Names follow the
// safetensors header spelling so emitters can use them verbatim.
type DType string

const (
	F64  DType = "F64"
	F32  DType = "F32"
	F16  DType = "F16"
	BF16 DType = "BF16"
	I64  DType = "I64"
	I32  DType = "I32"
	I16  DType = "I16"
	I8   DType = "I8"
	U8   DType = "U8"
	Bool DType = "BOOL"
)

// ByteSize returns the per-element width in bytes, or 0 for an unknown dtype.
func (d DType) ByteSize() int {
	switch d {
	case F64, I64:
		return 8
	case F32, I32:
		return 4
	case F16, BF16, I16:
		return 2
	case I8, U8, Bool:
		return 1
	default:
		return 0
	}
}

// Valid reports whether the dtype is one of the supported enumeration values.
func (d DType) Valid() bool {
	return d.ByteSize() != 0
}

func (d DType) String() string {
	return string(d)
}

// ParseDType maps a header spelling back to a DType.
func ParseDType(s string) (DType, error) {
	d := DType(s)
	if !d.Valid() {
		return "", fmt.Errorf("tensor: unknown dtype %q", s)
	}
	return d, nil
}
