package codec

import (
	"github.com/klauspost/compress/zstd"

	"github.com/quarrybase/quarry/pkg/errors"
	"github.com/quarrybase/quarry/pkg/model"
)

func init() {
	Register("zstd", newZstd)
}

const defaultZstdLevel = 3

func newZstd(cfg Config, _ model.DType) (Codec, error) {
	level, err := cfg.Int("level", defaultZstdLevel)
	if err != nil {
		return nil, errors.Newf("zstd: %v", err).Wrap(model.ErrInvalidCodecConfig)
	}
	if level < 1 || level > 22 {
		return nil, errors.Newf("zstd: level %d out of range", level).Wrap(model.ErrInvalidCodecConfig)
	}

	// encoder and decoder are safe for concurrent use and reused for the
	// lifetime of the codec
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(level)))
	if err != nil {
		return nil, errors.Newf("zstd: %v", err).Wrap(model.ErrInvalidCodecConfig)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, errors.Newf("zstd: %v", err).Wrap(model.ErrInvalidCodecConfig)
	}
	return &zstdCodec{enc: enc, dec: dec}, nil
}

type zstdCodec struct {
	enc *zstd.Encoder
	dec *zstd.Decoder
}

func (z *zstdCodec) Name() string { return "zstd" }

func (z *zstdCodec) Encode(raw []byte) ([]byte, error) {
	return z.enc.EncodeAll(raw, nil), nil
}

func (z *zstdCodec) Decode(enc []byte) ([]byte, error) {
	return z.dec.DecodeAll(enc, nil)
}
