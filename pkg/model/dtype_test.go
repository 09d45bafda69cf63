package model

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quarrybase/quarry/pkg/errors"
)

func TestParseDType(t *testing.T) {
	dt, err := ParseDType("float32")
	require.NoError(t, err)
	assert.Equal(t, Float32, dt)
	assert.Equal(t, 4, dt.Size())

	_, err = ParseDType("float16")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedDType))
}

func TestDTypeSizes(t *testing.T) {
	assert.Equal(t, 1, Int8.Size())
	assert.Equal(t, 1, Bool.Size())
	assert.Equal(t, 2, Uint16.Size())
	assert.Equal(t, 8, Int64.Size())
	assert.Equal(t, 8, Complex64.Size())
	assert.Equal(t, 16, Complex128.Size())
}

func TestDTypeSwapWidth(t *testing.T) {
	assert.Equal(t, 4, Int32.SwapWidth())
	assert.Equal(t, 4, Complex64.SwapWidth())
	assert.Equal(t, 8, Complex128.SwapWidth())
}

func TestEncodeValueNil(t *testing.T) {
	for _, dt := range []DType{Int8, Int32, Float64, Bool, Complex128} {
		b, err := dt.EncodeValue(nil)
		require.NoError(t, err, dt)
		assert.Len(t, b, dt.Size(), dt)
		for _, x := range b {
			assert.Zero(t, x, dt)
		}
	}
}

func TestEncodeValueIntegers(t *testing.T) {
	b, err := Int32.EncodeValue(float64(-1))
	require.NoError(t, err)
	assert.Equal(t, []byte{0xff, 0xff, 0xff, 0xff}, b)

	b, err = Uint16.EncodeValue(513)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0x02}, b)
}

func TestEncodeValueFloats(t *testing.T) {
	b, err := Float64.EncodeValue(1.5)
	require.NoError(t, err)
	assert.Equal(t, 1.5, math.Float64frombits(binary.LittleEndian.Uint64(b)))

	b, err = Float32.EncodeValue(FillNaN)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(float64(math.Float32frombits(binary.LittleEndian.Uint32(b)))))

	b, err = Float64.EncodeValue(FillNegInfinity)
	require.NoError(t, err)
	assert.True(t, math.IsInf(math.Float64frombits(binary.LittleEndian.Uint64(b)), -1))

	_, err = Float64.EncodeValue("bogus")
	require.Error(t, err)
}

func TestEncodeValueBool(t *testing.T) {
	b, err := Bool.EncodeValue(true)
	require.NoError(t, err)
	assert.Equal(t, []byte{1}, b)

	_, err = Bool.EncodeValue(1.0)
	require.Error(t, err)
}

func TestEncodeValueComplex(t *testing.T) {
	b, err := Complex64.EncodeValue(complex(1, -2))
	require.NoError(t, err)
	require.Len(t, b, 8)
	assert.Equal(t, float32(1), math.Float32frombits(binary.LittleEndian.Uint32(b[:4])))
	assert.Equal(t, float32(-2), math.Float32frombits(binary.LittleEndian.Uint32(b[4:])))

	// JSON shape: two-element array
	b, err = Complex128.EncodeValue([]interface{}{3.0, 4.0})
	require.NoError(t, err)
	assert.Equal(t, 3.0, math.Float64frombits(binary.LittleEndian.Uint64(b[:8])))
	assert.Equal(t, 4.0, math.Float64frombits(binary.LittleEndian.Uint64(b[8:])))

	_, err = Complex128.EncodeValue([]interface{}{1.0})
	require.Error(t, err)
}
