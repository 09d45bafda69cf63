package codec

import (
	"github.com/quarrybase/quarry/pkg/errors"
	"github.com/quarrybase/quarry/pkg/model"
)

func init() {
	Register("shuffle", newShuffle)
}

func newShuffle(cfg Config, dt model.DType) (Codec, error) {
	width, err := cfg.Int("elementsize", dt.Size())
	if err != nil {
		return nil, errors.Newf("shuffle: %v", err).Wrap(model.ErrInvalidCodecConfig)
	}
	if width < 1 {
		return nil, errors.Newf("shuffle: elementsize %d is not positive", width).Wrap(model.ErrInvalidCodecConfig)
	}
	return &shuffleCodec{width: width}, nil
}

// shuffleCodec transposes chunk bytes by byte position within each
// element: all byte-0s first, then all byte-1s, and so on. Elements of
// similar magnitude end up with their high-order bytes grouped, which the
// downstream compressor exploits. Pure filter: length-preserving.
type shuffleCodec struct {
	width int
}

func (s *shuffleCodec) Name() string { return "shuffle" }

func (s *shuffleCodec) Encode(raw []byte) ([]byte, error) {
	if s.width == 1 {
		return raw, nil
	}
	groups := len(raw) / s.width
	remainder := len(raw) % s.width
	out := make([]byte, len(raw))
	for i := 0; i < groups; i++ {
		for j := 0; j < s.width; j++ {
			out[j*groups+i] = raw[i*s.width+j]
		}
	}
	copy(out[groups*s.width:], raw[groups*s.width:groups*s.width+remainder])
	return out, nil
}

func (s *shuffleCodec) Decode(enc []byte) ([]byte, error) {
	if s.width == 1 {
		return enc, nil
	}
	groups := len(enc) / s.width
	remainder := len(enc) % s.width
	out := make([]byte, len(enc))
	for i := 0; i < groups; i++ {
		for j := 0; j < s.width; j++ {
			out[i*s.width+j] = enc[j*groups+i]
		}
	}
	copy(out[groups*s.width:], enc[groups*s.width:groups*s.width+remainder])
	return out, nil
}
