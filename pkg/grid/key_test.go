package grid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkKey(t *testing.T) {
	assert.Equal(t, "grp/arr/c/0/3", ChunkKey("grp/arr", []int64{0, 3}, "/"))
	assert.Equal(t, "grp/arr/c.0.3", ChunkKey("grp/arr", []int64{0, 3}, "."))
	assert.Equal(t, "scalar/c", ChunkKey("scalar", nil, "/"))
	assert.Equal(t, "a/c/12", ChunkKey("a", []int64{12}, "/"))
}

func TestChunkKeyPrefix(t *testing.T) {
	assert.Equal(t, "grp/arr/c", ChunkKeyPrefix("grp/arr"))
}

func TestParseChunkKeyRoundTrip(t *testing.T) {
	for _, sep := range []string{"/", "."} {
		for _, coord := range [][]int64{{0}, {7}, {0, 0}, {3, 0, 12}} {
			key := ChunkKey("grp/arr", coord, sep)
			got, err := ParseChunkKey(key, "grp/arr", sep, len(coord))
			require.NoError(t, err, key)
			assert.Equal(t, coord, got, key)
		}
	}
}

func TestParseChunkKeyRankZero(t *testing.T) {
	got, err := ParseChunkKey("scalar/c", "scalar", "/", 0)
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = ParseChunkKey("scalar/c/0", "scalar", "/", 0)
	require.Error(t, err)
}

func TestParseChunkKeyRejects(t *testing.T) {
	_, err := ParseChunkKey("other/c/0", "grp/arr", "/", 1)
	require.Error(t, err)

	_, err = ParseChunkKey("grp/arr/c/0/1", "grp/arr", "/", 1)
	require.Error(t, err)

	_, err = ParseChunkKey("grp/arr/c/x", "grp/arr", "/", 1)
	require.Error(t, err)

	_, err = ParseChunkKey("grp/arr/c/-1", "grp/arr", "/", 1)
	require.Error(t, err)

	_, err = ParseChunkKey("grp/arr/c.0", "grp/arr", "/", 1)
	require.Error(t, err)
}
