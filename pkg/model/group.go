package model

import (
	jsoniter "github.com/json-iterator/go"

	"github.com/quarrybase/quarry/pkg/errors"
)

// NodeKind discriminates the two node types of the hierarchy.
type NodeKind string

const (
	KindArray NodeKind = "array"
	KindGroup NodeKind = "group"
)

// Child is one directory entry of a group listing.
type Child struct {
	Name string
	Kind NodeKind
}

// GroupMeta is the metadata document describing one group node.
// As with arrays, unknown fields round-trip opaquely.
type GroupMeta struct {
	Version    int
	Attributes map[string]interface{}

	extra map[string]jsoniter.RawMessage
}

// NewGroupMeta builds group metadata.
func NewGroupMeta(attrs map[string]interface{}) *GroupMeta {
	return &GroupMeta{
		Version:    CurrentFormatVersion,
		Attributes: attrs,
	}
}

// MarshalJSON emits the group document.
func (m *GroupMeta) MarshalJSON() ([]byte, error) {
	doc := make(map[string]interface{}, len(m.extra)+2)
	for k, v := range m.extra {
		doc[k] = v
	}
	doc["format_version"] = m.Version
	if len(m.Attributes) > 0 {
		doc["attributes"] = m.Attributes
	}
	return json.Marshal(doc)
}

// Serialize produces the document UnmarshalGroupMeta parses back.
func (m *GroupMeta) Serialize() ([]byte, error) {
	return m.MarshalJSON()
}

// UnmarshalGroupMeta parses and validates a group metadata document.
func UnmarshalGroupMeta(data []byte) (*GroupMeta, error) {
	var raw map[string]jsoniter.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.Newf("group metadata is not a JSON object: %v", err).Wrap(ErrCorruptMetadata)
	}

	m := &GroupMeta{}
	if err := requiredField(raw, "format_version", &m.Version); err != nil {
		return nil, err
	}
	if m.Version != CurrentFormatVersion {
		return nil, errors.Newf("format_version %d is not supported", m.Version).Wrap(ErrCorruptMetadata)
	}
	if err := optionalField(raw, "attributes", &m.Attributes); err != nil {
		return nil, err
	}
	if len(raw) > 0 {
		m.extra = raw
	}
	return m, nil
}
