// Package codec implements the reversible byte transforms applied to
// chunks: compressors (gzip, zstd, lz4) and filters (shuffle, delta,
// endian) plus trailing checksums (crc32c, blake2b).
//
// Codecs register themselves by identifier in a process-wide registry at
// init time; the registry is read-only afterwards. Lookup fails closed:
// an unknown identifier is an error, never a silent no-op.
package codec

import (
	"github.com/quarrybase/quarry/pkg/errors"
	"github.com/quarrybase/quarry/pkg/model"
)

// Codec is one reversible byte transform. Decode(Encode(x)) == x must
// hold for every valid chunk buffer x. Compressors may change length;
// pure filters preserve it.
type Codec interface {
	Name() string
	Encode([]byte) ([]byte, error)
	Decode([]byte) ([]byte, error)
}

// Config carries the per-codec configuration from the metadata document.
type Config map[string]interface{}

// Int reads an integer entry, tolerating the float64 that JSON decoding
// produces for numbers.
func (c Config) Int(key string, def int) (int, error) {
	v, ok := c[key]
	if !ok {
		return def, nil
	}
	switch x := v.(type) {
	case int:
		return x, nil
	case int64:
		return int(x), nil
	case float64:
		if x != float64(int(x)) {
			return 0, errors.Newf("config %q: %v is not an integer", key, x)
		}
		return int(x), nil
	default:
		return 0, errors.Newf("config %q: unexpected type %T", key, v)
	}
}

// String reads a string entry.
func (c Config) String(key, def string) (string, error) {
	v, ok := c[key]
	if !ok {
		return def, nil
	}
	s, ok := v.(string)
	if !ok {
		return "", errors.Newf("config %q: unexpected type %T", key, v)
	}
	return s, nil
}

// Builder constructs a codec from its configuration. The dtype is passed
// so element-aware filters can derive their width.
type Builder func(cfg Config, dt model.DType) (Codec, error)

var registry = map[string]Builder{}

// Register adds a codec builder under its identifier. It is intended to
// be called from init() only and panics on duplicates.
func Register(name string, b Builder) {
	if _, ok := registry[name]; ok {
		panic("codec: duplicate registration of " + name)
	}
	registry[name] = b
}

// Build resolves one codec spec against the registry.
func Build(spec model.CodecSpec, dt model.DType) (Codec, error) {
	b, ok := registry[spec.Name]
	if !ok {
		return nil, errors.Newf("codec %q", spec.Name).Wrap(model.ErrUnsupportedCodec)
	}
	return b(Config(spec.Config), dt)
}

// Pipeline is a compiled codec chain. Encode applies codecs in metadata
// order; Decode applies the inverses in exactly the reverse order.
type Pipeline struct {
	codecs []Codec
}

// NewPipeline compiles a codec chain. It fails fast on the first unknown
// identifier or malformed configuration.
func NewPipeline(specs []model.CodecSpec, dt model.DType) (*Pipeline, error) {
	p := &Pipeline{codecs: make([]Codec, 0, len(specs))}
	for _, spec := range specs {
		c, err := Build(spec, dt)
		if err != nil {
			return nil, err
		}
		p.codecs = append(p.codecs, c)
	}
	return p, nil
}

// Empty reports whether the pipeline performs no transform at all, in
// which case chunk bytes are stored raw and ranged reads become possible.
func (p *Pipeline) Empty() bool {
	return len(p.codecs) == 0
}

// Encode runs raw chunk bytes through the chain.
func (p *Pipeline) Encode(raw []byte) ([]byte, error) {
	out := raw
	for _, c := range p.codecs {
		var err error
		out, err = c.Encode(out)
		if err != nil {
			return nil, errors.Newf("codec %s: encode: %v", c.Name(), err).Wrap(model.ErrCodec)
		}
	}
	return out, nil
}

// Decode reverses Encode.
func (p *Pipeline) Decode(enc []byte) ([]byte, error) {
	out := enc
	for i := len(p.codecs) - 1; i >= 0; i-- {
		c := p.codecs[i]
		var err error
		out, err = c.Decode(out)
		if err != nil {
			return nil, errors.Newf("codec %s: decode: %v", c.Name(), err).Wrap(model.ErrCodec)
		}
	}
	return out, nil
}
