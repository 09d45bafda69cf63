package codec

import (
	"bytes"
	"io"

	"github.com/pierrec/lz4/v4"

	"github.com/quarrybase/quarry/pkg/errors"
	"github.com/quarrybase/quarry/pkg/model"
)

func init() {
	Register("lz4", newLZ4)
}

var lz4Levels = []lz4.CompressionLevel{
	lz4.Fast,
	lz4.Level1, lz4.Level2, lz4.Level3,
	lz4.Level4, lz4.Level5, lz4.Level6,
	lz4.Level7, lz4.Level8, lz4.Level9,
}

func newLZ4(cfg Config, _ model.DType) (Codec, error) {
	level, err := cfg.Int("level", 0)
	if err != nil {
		return nil, errors.Newf("lz4: %v", err).Wrap(model.ErrInvalidCodecConfig)
	}
	if level < 0 || level >= len(lz4Levels) {
		return nil, errors.Newf("lz4: level %d out of range", level).Wrap(model.ErrInvalidCodecConfig)
	}
	return &lz4Codec{level: lz4Levels[level]}, nil
}

// lz4Codec uses the lz4 frame format: self-describing, so decode needs no
// out-of-band uncompressed size and incompressible input is handled by the
// frame layer.
type lz4Codec struct {
	level lz4.CompressionLevel
}

func (l *lz4Codec) Name() string { return "lz4" }

func (l *lz4Codec) Encode(raw []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := lz4.NewWriter(&buf)
	if err := w.Apply(lz4.CompressionLevelOption(l.level)); err != nil {
		return nil, err
	}
	if _, err := w.Write(raw); err != nil {
		w.Close()
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (l *lz4Codec) Decode(enc []byte) ([]byte, error) {
	return io.ReadAll(lz4.NewReader(bytes.NewReader(enc)))
}
