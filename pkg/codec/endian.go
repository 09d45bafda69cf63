package codec

import (
	"github.com/quarrybase/quarry/pkg/errors"
	"github.com/quarrybase/quarry/pkg/model"
)

func init() {
	Register("endian", newEndian)
}

func newEndian(cfg Config, dt model.DType) (Codec, error) {
	endian, err := cfg.String("endian", "little")
	if err != nil {
		return nil, errors.Newf("endian: %v", err).Wrap(model.ErrInvalidCodecConfig)
	}
	switch endian {
	case "little", "big":
	default:
		return nil, errors.Newf("endian: %q is neither little nor big", endian).Wrap(model.ErrInvalidCodecConfig)
	}
	return &endianCodec{
		swap:  endian == "big",
		width: dt.SwapWidth(),
	}, nil
}

// endianCodec stores chunk bytes in the configured byte order. In-memory
// order is canonically little-endian, so "little" is the identity and
// "big" swaps bytes within each element on both encode and decode (the
// swap is self-inverse). Pure filter: length-preserving.
type endianCodec struct {
	swap  bool
	width int
}

func (e *endianCodec) Name() string { return "endian" }

func (e *endianCodec) Encode(raw []byte) ([]byte, error) {
	return e.apply(raw)
}

func (e *endianCodec) Decode(enc []byte) ([]byte, error) {
	return e.apply(enc)
}

func (e *endianCodec) apply(b []byte) ([]byte, error) {
	if !e.swap || e.width == 1 {
		return b, nil
	}
	if len(b)%e.width != 0 {
		return nil, errors.Newf("endian: %d bytes is not a multiple of element width %d", len(b), e.width)
	}
	out := make([]byte, len(b))
	for off := 0; off < len(b); off += e.width {
		for j := 0; j < e.width; j++ {
			out[off+j] = b[off+e.width-1-j]
		}
	}
	return out, nil
}
