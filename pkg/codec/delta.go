package codec

import (
	"encoding/binary"

	"github.com/quarrybase/quarry/pkg/errors"
	"github.com/quarrybase/quarry/pkg/model"
)

func init() {
	Register("delta", newDelta)
}

func newDelta(_ Config, dt model.DType) (Codec, error) {
	switch dt {
	case model.Complex64, model.Complex128:
		return nil, errors.Newf("delta: dtype %q is not orderable", string(dt)).Wrap(model.ErrInvalidCodecConfig)
	}
	return &deltaCodec{width: dt.Size()}, nil
}

// deltaCodec stores each element as the difference to its predecessor,
// modulo the element width. Wrap-around arithmetic makes the transform
// exactly invertible for signed, unsigned and float bit patterns alike.
// Pure filter: length-preserving.
type deltaCodec struct {
	width int
}

func (d *deltaCodec) Name() string { return "delta" }

func (d *deltaCodec) Encode(raw []byte) ([]byte, error) {
	if len(raw)%d.width != 0 {
		return nil, errors.Newf("delta: %d bytes is not a multiple of element width %d", len(raw), d.width)
	}
	out := make([]byte, len(raw))
	prev := uint64(0)
	for off := 0; off < len(raw); off += d.width {
		cur := d.load(raw[off:])
		d.store(out[off:], cur-prev)
		prev = cur
	}
	return out, nil
}

func (d *deltaCodec) Decode(enc []byte) ([]byte, error) {
	if len(enc)%d.width != 0 {
		return nil, errors.Newf("delta: %d bytes is not a multiple of element width %d", len(enc), d.width)
	}
	out := make([]byte, len(enc))
	acc := uint64(0)
	for off := 0; off < len(enc); off += d.width {
		acc += d.load(enc[off:])
		d.store(out[off:], acc)
	}
	return out, nil
}

func (d *deltaCodec) load(b []byte) uint64 {
	switch d.width {
	case 1:
		return uint64(b[0])
	case 2:
		return uint64(binary.LittleEndian.Uint16(b))
	case 4:
		return uint64(binary.LittleEndian.Uint32(b))
	default:
		return binary.LittleEndian.Uint64(b)
	}
}

func (d *deltaCodec) store(b []byte, v uint64) {
	switch d.width {
	case 1:
		b[0] = byte(v)
	case 2:
		binary.LittleEndian.PutUint16(b, uint16(v))
	case 4:
		binary.LittleEndian.PutUint32(b, uint32(v))
	default:
		binary.LittleEndian.PutUint64(b, v)
	}
}
