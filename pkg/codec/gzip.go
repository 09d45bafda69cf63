package codec

import (
	"bytes"
	"io"

	"github.com/klauspost/compress/gzip"

	"github.com/quarrybase/quarry/pkg/errors"
	"github.com/quarrybase/quarry/pkg/model"
)

func init() {
	Register("gzip", newGzip)
}

const defaultGzipLevel = 5

func newGzip(cfg Config, _ model.DType) (Codec, error) {
	level, err := cfg.Int("level", defaultGzipLevel)
	if err != nil {
		return nil, errors.Newf("gzip: %v", err).Wrap(model.ErrInvalidCodecConfig)
	}
	if level < gzip.HuffmanOnly || level > gzip.BestCompression {
		return nil, errors.Newf("gzip: level %d out of range", level).Wrap(model.ErrInvalidCodecConfig)
	}
	return &gzipCodec{level: level}, nil
}

type gzipCodec struct {
	level int
}

func (g *gzipCodec) Name() string { return "gzip" }

func (g *gzipCodec) Encode(raw []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := gzip.NewWriterLevel(&buf, g.level)
	if err != nil {
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

func (g *gzipCodec) Decode(enc []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(enc))
	if err != nil {
		return nil, err
	}
	out, err := io.ReadAll(r)
	if err != nil {
		r.Close()
		return nil, err
	}
	if err := r.Close(); err != nil {
		return nil, err
	}
	return out, nil
}
