package model

import (
	jsoniter "github.com/json-iterator/go"

	"github.com/quarrybase/quarry/pkg/errors"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// CurrentFormatVersion is the metadata schema version this engine writes.
const CurrentFormatVersion = 1

// Well-known document names, one per node, living under the node's path.
const (
	ArrayMetaName = "array.json"
	GroupMetaName = "group.json"
)

// Chunk key separators supported by the key scheme.
const (
	SeparatorSlash = "/"
	SeparatorDot   = "."
)

// CodecSpec identifies one codec in a chain together with its configuration.
type CodecSpec struct {
	Name   string                 `json:"name"`
	Config map[string]interface{} `json:"configuration,omitempty"`
}

// ArrayMeta is the metadata document describing one array.
//
// Unknown optional fields encountered on load are preserved opaquely and
// re-emitted on serialization, so third-party extensions round-trip.
type ArrayMeta struct {
	Version    int
	Shape      []int64
	ChunkShape []int64
	DType      DType
	FillValue  interface{}
	Codecs     []CodecSpec
	Separator  string
	Attributes map[string]interface{}

	extra map[string]jsoniter.RawMessage
}

// NewArrayMeta builds and validates array metadata.
//
// Codec configurations are validated structurally here; whether each codec
// identifier resolves is decided by the codec registry when the array is
// bound to an engine.
func NewArrayMeta(shape, chunkShape []int64, dt DType, fill interface{}, codecs []CodecSpec, attrs map[string]interface{}) (*ArrayMeta, error) {
	m := &ArrayMeta{
		Version:    CurrentFormatVersion,
		Shape:      shape,
		ChunkShape: chunkShape,
		DType:      dt,
		FillValue:  fill,
		Codecs:     codecs,
		Separator:  SeparatorSlash,
		Attributes: attrs,
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// Rank is the number of dimensions. Rank 0 arrays are scalars with a
// single implicit chunk.
func (m *ArrayMeta) Rank() int {
	return len(m.Shape)
}

// ChunkElems is the number of elements in one (full-size) chunk.
func (m *ArrayMeta) ChunkElems() int64 {
	n := int64(1)
	for _, c := range m.ChunkShape {
		n *= c
	}
	return n
}

// ChunkBytes is the decoded byte size of one chunk.
func (m *ArrayMeta) ChunkBytes() int64 {
	return m.ChunkElems() * int64(m.DType.Size())
}

// FillBytes returns the canonical byte pattern of one fill element.
func (m *ArrayMeta) FillBytes() ([]byte, error) {
	return m.DType.EncodeValue(m.FillValue)
}

// Validate checks the structural invariants of the metadata.
func (m *ArrayMeta) Validate() error {
	if len(m.Shape) != len(m.ChunkShape) {
		return errors.Newf("shape has %d dimensions but chunk shape has %d",
			len(m.Shape), len(m.ChunkShape)).Wrap(ErrInvalidShape)
	}
	for i, s := range m.Shape {
		if s < 0 {
			return errors.Newf("shape[%d] = %d is negative", i, s).Wrap(ErrInvalidShape)
		}
	}
	for i, c := range m.ChunkShape {
		if c < 1 {
			return errors.Newf("chunk_shape[%d] = %d is not positive", i, c).Wrap(ErrInvalidShape)
		}
	}
	if !m.DType.Valid() {
		return errors.Newf("dtype %q", string(m.DType)).Wrap(ErrUnsupportedDType)
	}
	if m.Separator != SeparatorSlash && m.Separator != SeparatorDot {
		return errors.Newf("separator %q", m.Separator).Wrap(ErrCorruptMetadata)
	}
	if _, err := m.DType.EncodeValue(m.FillValue); err != nil {
		return errors.Newf("fill_value: %v", err).Wrap(ErrCorruptMetadata)
	}
	for i, c := range m.Codecs {
		if c.Name == "" {
			return errors.Newf("codecs[%d] has no name", i).Wrap(ErrInvalidCodecConfig)
		}
	}
	return nil
}

// MarshalJSON emits the metadata document, re-emitting any opaque fields
// preserved from a previous load.
func (m *ArrayMeta) MarshalJSON() ([]byte, error) {
	doc := make(map[string]interface{}, len(m.extra)+8)
	for k, v := range m.extra {
		doc[k] = v
	}
	doc["format_version"] = m.Version
	doc["shape"] = m.Shape
	doc["chunk_shape"] = m.ChunkShape
	doc["dtype"] = string(m.DType)
	doc["fill_value"] = m.FillValue
	doc["separator"] = m.Separator
	if len(m.Codecs) > 0 {
		doc["codecs"] = m.Codecs
	}
	if len(m.Attributes) > 0 {
		doc["attributes"] = m.Attributes
	}
	return json.Marshal(doc)
}

// Serialize produces the document UnmarshalArrayMeta parses back.
func (m *ArrayMeta) Serialize() ([]byte, error) {
	return m.MarshalJSON()
}

// UnmarshalArrayMeta parses and validates an array metadata document.
// It fails fast rather than guessing defaults for required fields.
func UnmarshalArrayMeta(data []byte) (*ArrayMeta, error) {
	var raw map[string]jsoniter.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.Newf("array metadata is not a JSON object: %v", err).Wrap(ErrCorruptMetadata)
	}

	m := &ArrayMeta{Separator: SeparatorSlash}

	if err := requiredField(raw, "format_version", &m.Version); err != nil {
		return nil, err
	}
	if m.Version != CurrentFormatVersion {
		return nil, errors.Newf("format_version %d is not supported", m.Version).Wrap(ErrCorruptMetadata)
	}
	if err := requiredField(raw, "shape", &m.Shape); err != nil {
		return nil, err
	}
	if err := requiredField(raw, "chunk_shape", &m.ChunkShape); err != nil {
		return nil, err
	}
	var dt string
	if err := requiredField(raw, "dtype", &dt); err != nil {
		return nil, err
	}
	m.DType = DType(dt)

	if err := optionalField(raw, "fill_value", &m.FillValue); err != nil {
		return nil, err
	}
	if err := optionalField(raw, "codecs", &m.Codecs); err != nil {
		return nil, err
	}
	if err := optionalField(raw, "separator", &m.Separator); err != nil {
		return nil, err
	}
	if err := optionalField(raw, "attributes", &m.Attributes); err != nil {
		return nil, err
	}

	if len(raw) > 0 {
		m.extra = raw
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

func requiredField(raw map[string]jsoniter.RawMessage, name string, into interface{}) error {
	msg, ok := raw[name]
	if !ok {
		return errors.Newf("missing required field %q", name).Wrap(ErrCorruptMetadata)
	}
	delete(raw, name)
	if err := json.Unmarshal(msg, into); err != nil {
		return errors.Newf("field %q: %v", name, err).Wrap(ErrCorruptMetadata)
	}
	return nil
}

func optionalField(raw map[string]jsoniter.RawMessage, name string, into interface{}) error {
	msg, ok := raw[name]
	if !ok {
		return nil
	}
	delete(raw, name)
	if err := json.Unmarshal(msg, into); err != nil {
		return errors.Newf("field %q: %v", name, err).Wrap(ErrCorruptMetadata)
	}
	return nil
}
