package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quarrybase/quarry/pkg/errors"
)

func TestGroupMetaRoundTrip(t *testing.T) {
	m := NewGroupMeta(map[string]interface{}{"owner": "climate"})

	doc, err := m.Serialize()
	require.NoError(t, err)

	got, err := UnmarshalGroupMeta(doc)
	require.NoError(t, err)
	assert.Equal(t, CurrentFormatVersion, got.Version)
	assert.Equal(t, "climate", got.Attributes["owner"])
}

func TestGroupMetaPreservesUnknownFields(t *testing.T) {
	doc := []byte(`{"format_version":1,"consolidated":{"depth":2}}`)
	m, err := UnmarshalGroupMeta(doc)
	require.NoError(t, err)

	out, err := m.Serialize()
	require.NoError(t, err)
	assert.Contains(t, string(out), `"consolidated"`)
}

func TestGroupMetaRejects(t *testing.T) {
	_, err := UnmarshalGroupMeta([]byte(`"nope"`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCorruptMetadata))

	_, err = UnmarshalGroupMeta([]byte(`{}`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCorruptMetadata))

	_, err = UnmarshalGroupMeta([]byte(`{"format_version":2}`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCorruptMetadata))
}
