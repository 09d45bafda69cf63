package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quarrybase/quarry/internal/rand"
	"github.com/quarrybase/quarry/pkg/errors"
	"github.com/quarrybase/quarry/pkg/model"
)

func roundTrip(t testing.TB, specs []model.CodecSpec, dt model.DType, raw []byte) {
	t.Helper()

	p, err := NewPipeline(specs, dt)
	require.NoError(t, err)

	enc, err := p.Encode(raw)
	require.NoError(t, err)

	dec, err := p.Decode(enc)
	require.NoError(t, err)
	require.Equal(t, raw, dec)
}

func TestPipelineRoundTripSingleCodecs(t *testing.T) {
	raw := rand.Bytes(64 * 1024)

	for _, spec := range []model.CodecSpec{
		{Name: "gzip"},
		{Name: "gzip", Config: map[string]interface{}{"level": 1}},
		{Name: "zstd"},
		{Name: "zstd", Config: map[string]interface{}{"level": 19}},
		{Name: "lz4"},
		{Name: "lz4", Config: map[string]interface{}{"level": 9}},
		{Name: "shuffle"},
		{Name: "delta"},
		{Name: "endian"},
		{Name: "endian", Config: map[string]interface{}{"endian": "big"}},
		{Name: "crc32c"},
		{Name: "blake2b"},
	} {
		roundTrip(t, []model.CodecSpec{spec}, model.Float64, raw)
	}
}

func TestPipelineRoundTripChain(t *testing.T) {
	raw := rand.Bytes(32 * 1024)
	specs := []model.CodecSpec{
		{Name: "delta"},
		{Name: "shuffle"},
		{Name: "endian", Config: map[string]interface{}{"endian": "big"}},
		{Name: "zstd"},
		{Name: "crc32c"},
	}
	roundTrip(t, specs, model.Int32, raw)
}

func TestPipelineRoundTripEmptyInput(t *testing.T) {
	for _, name := range []string{"gzip", "zstd", "lz4", "shuffle", "delta", "endian", "crc32c", "blake2b"} {
		roundTrip(t, []model.CodecSpec{{Name: name}}, model.Uint8, []byte{})
	}
}

func TestPipelineEmpty(t *testing.T) {
	p, err := NewPipeline(nil, model.Int32)
	require.NoError(t, err)
	assert.True(t, p.Empty())

	raw := []byte{1, 2, 3}
	enc, err := p.Encode(raw)
	require.NoError(t, err)
	assert.Equal(t, raw, enc)

	p, err = NewPipeline([]model.CodecSpec{{Name: "gzip"}}, model.Int32)
	require.NoError(t, err)
	assert.False(t, p.Empty())
}

func TestPipelineUnknownCodec(t *testing.T) {
	_, err := NewPipeline([]model.CodecSpec{{Name: "snappy"}}, model.Int32)
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrUnsupportedCodec))
}

func TestPipelineBadConfig(t *testing.T) {
	for _, spec := range []model.CodecSpec{
		{Name: "gzip", Config: map[string]interface{}{"level": 42}},
		{Name: "gzip", Config: map[string]interface{}{"level": "high"}},
		{Name: "zstd", Config: map[string]interface{}{"level": 0}},
		{Name: "lz4", Config: map[string]interface{}{"level": -1}},
		{Name: "lz4", Config: map[string]interface{}{"level": 10}},
		{Name: "shuffle", Config: map[string]interface{}{"elementsize": 0}},
		{Name: "endian", Config: map[string]interface{}{"endian": "middle"}},
	} {
		_, err := NewPipeline([]model.CodecSpec{spec}, model.Int32)
		require.Error(t, err, spec.Name)
		assert.True(t, errors.Is(err, model.ErrInvalidCodecConfig), spec.Name)
	}
}

func TestDeltaRejectsComplex(t *testing.T) {
	_, err := NewPipeline([]model.CodecSpec{{Name: "delta"}}, model.Complex64)
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrInvalidCodecConfig))
}

func TestDecodeCorruptStream(t *testing.T) {
	for _, name := range []string{"gzip", "zstd", "lz4"} {
		p, err := NewPipeline([]model.CodecSpec{{Name: name}}, model.Int32)
		require.NoError(t, err)

		_, err = p.Decode([]byte("definitely not a compressed stream"))
		require.Error(t, err, name)
		assert.True(t, errors.Is(err, model.ErrCodec), name)
	}
}

func TestChecksumDetectsCorruption(t *testing.T) {
	for _, name := range []string{"crc32c", "blake2b"} {
		p, err := NewPipeline([]model.CodecSpec{{Name: name}}, model.Int32)
		require.NoError(t, err)

		enc, err := p.Encode([]byte("payload under test"))
		require.NoError(t, err)

		enc[3] ^= 0xff
		_, err = p.Decode(enc)
		require.Error(t, err, name)
		assert.True(t, errors.Is(err, model.ErrCodec), name)

		// too short to even carry the trailer
		_, err = p.Decode([]byte{1, 2})
		require.Error(t, err, name)
	}
}

func TestShuffleLayout(t *testing.T) {
	c, err := Build(model.CodecSpec{Name: "shuffle"}, model.Int32)
	require.NoError(t, err)

	raw := []byte{
		0x01, 0x02, 0x03, 0x04,
		0x11, 0x12, 0x13, 0x14,
	}
	enc, err := c.Encode(raw)
	require.NoError(t, err)
	assert.Equal(t, []byte{
		0x01, 0x11,
		0x02, 0x12,
		0x03, 0x13,
		0x04, 0x14,
	}, enc)

	dec, err := c.Decode(enc)
	require.NoError(t, err)
	assert.Equal(t, raw, dec)
}

func TestShuffleRemainderBytes(t *testing.T) {
	c, err := Build(model.CodecSpec{Name: "shuffle", Config: map[string]interface{}{"elementsize": 4}}, model.Uint8)
	require.NoError(t, err)

	raw := rand.Bytes(10) // 2 groups of 4 plus 2 trailing bytes
	enc, err := c.Encode(raw)
	require.NoError(t, err)
	assert.Equal(t, raw[8:], enc[8:])

	dec, err := c.Decode(enc)
	require.NoError(t, err)
	assert.Equal(t, raw, dec)
}

func TestEndianBigSwaps(t *testing.T) {
	c, err := Build(model.CodecSpec{Name: "endian", Config: map[string]interface{}{"endian": "big"}}, model.Uint16)
	require.NoError(t, err)

	enc, err := c.Encode([]byte{0x01, 0x02, 0x03, 0x04})
	require.NoError(t, err)
	assert.Equal(t, []byte{0x02, 0x01, 0x04, 0x03}, enc)

	_, err = c.Encode([]byte{0x01})
	require.Error(t, err)
}

func TestEndianLittleIsIdentity(t *testing.T) {
	c, err := Build(model.CodecSpec{Name: "endian"}, model.Uint16)
	require.NoError(t, err)

	raw := []byte{0x01, 0x02, 0x03, 0x04}
	enc, err := c.Encode(raw)
	require.NoError(t, err)
	assert.Equal(t, raw, enc)
}

func TestDeltaMonotoneInput(t *testing.T) {
	c, err := Build(model.CodecSpec{Name: "delta"}, model.Uint8)
	require.NoError(t, err)

	enc, err := c.Encode([]byte{10, 11, 12, 13})
	require.NoError(t, err)
	assert.Equal(t, []byte{10, 1, 1, 1}, enc)

	dec, err := c.Decode(enc)
	require.NoError(t, err)
	assert.Equal(t, []byte{10, 11, 12, 13}, dec)

	_, err = c.Encode([]byte{1})
	require.NoError(t, err) // width 1 accepts any length
}

func TestDeltaRejectsMisalignedInput(t *testing.T) {
	c, err := Build(model.CodecSpec{Name: "delta"}, model.Int32)
	require.NoError(t, err)

	_, err = c.Encode([]byte{1, 2, 3})
	require.Error(t, err)
}

func TestCompressorsShrinkRepetitiveData(t *testing.T) {
	raw := make([]byte, 64*1024)
	for i := range raw {
		raw[i] = byte(i % 7)
	}
	for _, name := range []string{"gzip", "zstd", "lz4"} {
		p, err := NewPipeline([]model.CodecSpec{{Name: name}}, model.Uint8)
		require.NoError(t, err)

		enc, err := p.Encode(raw)
		require.NoError(t, err)
		assert.Less(t, len(enc), len(raw)/2, name)
	}
}
