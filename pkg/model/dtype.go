package model

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/quarrybase/quarry/pkg/errors"
)

// DType describes a fixed-width scalar element type. Element bytes are
// canonically little-endian in memory and in stored chunks; byte order
// transforms are a codec concern.
type DType string

const (
	Int8       DType = "int8"
	Int16      DType = "int16"
	Int32      DType = "int32"
	Int64      DType = "int64"
	Uint8      DType = "uint8"
	Uint16     DType = "uint16"
	Uint32     DType = "uint32"
	Uint64     DType = "uint64"
	Float32    DType = "float32"
	Float64    DType = "float64"
	Bool       DType = "bool"
	Complex64  DType = "complex64"
	Complex128 DType = "complex128"
)

var dtypeSizes = map[DType]int{
	Int8: 1, Int16: 2, Int32: 4, Int64: 8,
	Uint8: 1, Uint16: 2, Uint32: 4, Uint64: 8,
	Float32: 4, Float64: 8,
	Bool:      1,
	Complex64: 8, Complex128: 16,
}

// ParseDType validates a dtype descriptor string.
func ParseDType(s string) (DType, error) {
	dt := DType(s)
	if !dt.Valid() {
		return dt, errors.Newf("dtype %q", s).Wrap(ErrUnsupportedDType)
	}
	return dt, nil
}

// Valid reports whether the descriptor names a supported scalar type.
func (d DType) Valid() bool {
	_, ok := dtypeSizes[d]
	return ok
}

// Size returns the element width in bytes.
func (d DType) Size() int {
	return dtypeSizes[d]
}

// SwapWidth returns the width of the byte-order sensitive unit within an
// element. Complex types swap per floating point half, everything else
// swaps the whole element.
func (d DType) SwapWidth() int {
	switch d {
	case Complex64, Complex128:
		return d.Size() / 2
	default:
		return d.Size()
	}
}

// Sentinel strings accepted as floating point fill values, following the
// usual JSON convention for non-finite numbers.
const (
	FillNaN         = "NaN"
	FillInfinity    = "Infinity"
	FillNegInfinity = "-Infinity"
)

// EncodeValue encodes a single scalar of this dtype into its canonical
// little-endian byte representation. nil encodes as all zero bytes.
//
// Accepted inputs cover both programmatic values (Go numerics, bool,
// complex128) and values produced by JSON decoding (float64, bool, string
// sentinels for non-finite floats, two-element arrays for complex).
func (d DType) EncodeValue(v interface{}) ([]byte, error) {
	if !d.Valid() {
		return nil, errors.Newf("dtype %q", string(d)).Wrap(ErrUnsupportedDType)
	}
	buf := make([]byte, d.Size())
	if v == nil {
		return buf, nil
	}

	switch d {
	case Bool:
		b, ok := v.(bool)
		if !ok {
			return nil, fmt.Errorf("bool fill value must be true or false, got %T", v)
		}
		if b {
			buf[0] = 1
		}
		return buf, nil

	case Complex64, Complex128:
		re, im, err := toComplexParts(v)
		if err != nil {
			return nil, err
		}
		half := d.Size() / 2
		if half == 4 {
			binary.LittleEndian.PutUint32(buf[0:], math.Float32bits(float32(re)))
			binary.LittleEndian.PutUint32(buf[half:], math.Float32bits(float32(im)))
		} else {
			binary.LittleEndian.PutUint64(buf[0:], math.Float64bits(re))
			binary.LittleEndian.PutUint64(buf[half:], math.Float64bits(im))
		}
		return buf, nil
	}

	f, err := toFloat(v)
	if err != nil {
		return nil, err
	}

	switch d {
	case Int8, Int16, Int32, Int64, Uint8, Uint16, Uint32, Uint64:
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, fmt.Errorf("non-finite fill value for integer dtype %q", string(d))
		}
		if f != math.Trunc(f) {
			return nil, fmt.Errorf("fill value %v is not an integer", f)
		}
	}

	switch d {
	case Float32:
		binary.LittleEndian.PutUint32(buf, math.Float32bits(float32(f)))
	case Float64:
		binary.LittleEndian.PutUint64(buf, math.Float64bits(f))
	case Int8, Uint8:
		buf[0] = byte(int64(f))
	case Int16, Uint16:
		binary.LittleEndian.PutUint16(buf, uint16(int64(f)))
	case Int32, Uint32:
		binary.LittleEndian.PutUint32(buf, uint32(int64(f)))
	case Int64, Uint64:
		binary.LittleEndian.PutUint64(buf, uint64(int64(f)))
	}
	return buf, nil
}

func toFloat(v interface{}) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case int:
		return float64(x), nil
	case int32:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case uint64:
		return float64(x), nil
	case string:
		switch x {
		case FillNaN:
			return math.NaN(), nil
		case FillInfinity:
			return math.Inf(1), nil
		case FillNegInfinity:
			return math.Inf(-1), nil
		}
		return 0, fmt.Errorf("unrecognized fill value string %q", x)
	default:
		return 0, fmt.Errorf("unsupported fill value type %T", v)
	}
}

func toComplexParts(v interface{}) (float64, float64, error) {
	switch x := v.(type) {
	case complex128:
		return real(x), imag(x), nil
	case complex64:
		return float64(real(x)), float64(imag(x)), nil
	case []interface{}:
		if len(x) != 2 {
			return 0, 0, fmt.Errorf("complex fill value must have two entries, got %d", len(x))
		}
		re, err := toFloat(x[0])
		if err != nil {
			return 0, 0, err
		}
		im, err := toFloat(x[1])
		if err != nil {
			return 0, 0, err
		}
		return re, im, nil
	default:
		re, err := toFloat(v)
		if err != nil {
			return 0, 0, err
		}
		return re, 0, nil
	}
}
