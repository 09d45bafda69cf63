package codec

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"

	blake2b "github.com/minio/blake2b-simd"

	"github.com/quarrybase/quarry/pkg/errors"
	"github.com/quarrybase/quarry/pkg/model"
)

func init() {
	Register("crc32c", newCRC32C)
	Register("blake2b", newBlake2b)
}

var castagnoli = crc32.MakeTable(crc32.Castagnoli)

func newCRC32C(_ Config, _ model.DType) (Codec, error) {
	return crc32cCodec{}, nil
}

// crc32cCodec appends a 4-byte little-endian Castagnoli checksum on
// encode; decode verifies and strips it. A mismatch means the stored
// chunk is corrupt and surfaces as a codec failure.
type crc32cCodec struct{}

func (crc32cCodec) Name() string { return "crc32c" }

func (crc32cCodec) Encode(raw []byte) ([]byte, error) {
	out := make([]byte, len(raw)+4)
	copy(out, raw)
	binary.LittleEndian.PutUint32(out[len(raw):], crc32.Checksum(raw, castagnoli))
	return out, nil
}

func (crc32cCodec) Decode(enc []byte) ([]byte, error) {
	if len(enc) < 4 {
		return nil, errors.Newf("crc32c: %d bytes is too short to carry a checksum", len(enc))
	}
	payload := enc[:len(enc)-4]
	want := binary.LittleEndian.Uint32(enc[len(enc)-4:])
	if got := crc32.Checksum(payload, castagnoli); got != want {
		return nil, errors.Newf("crc32c: checksum mismatch: got %08x, want %08x", got, want)
	}
	return payload, nil
}

func newBlake2b(_ Config, _ model.DType) (Codec, error) {
	return blake2bCodec{}, nil
}

// blake2bCodec appends a 64-byte blake2b digest; decode verifies and
// strips it. Stronger than crc32c at the cost of 64 trailing bytes per
// chunk.
type blake2bCodec struct{}

func (blake2bCodec) Name() string { return "blake2b" }

func (blake2bCodec) Encode(raw []byte) ([]byte, error) {
	sum := blake2b.Sum512(raw)
	out := make([]byte, len(raw)+len(sum))
	copy(out, raw)
	copy(out[len(raw):], sum[:])
	return out, nil
}

func (blake2bCodec) Decode(enc []byte) ([]byte, error) {
	if len(enc) < blake2b.Size {
		return nil, errors.Newf("blake2b: %d bytes is too short to carry a digest", len(enc))
	}
	payload := enc[:len(enc)-blake2b.Size]
	want := enc[len(enc)-blake2b.Size:]
	got := blake2b.Sum512(payload)
	if !bytes.Equal(got[:], want) {
		return nil, errors.New("blake2b: digest mismatch")
	}
	return payload, nil
}
