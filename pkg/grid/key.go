package grid

import (
	"strconv"
	"strings"

	"github.com/quarrybase/quarry/pkg/errors"
)

// chunkMarker separates an array's logical path from its chunk namespace.
const chunkMarker = "c"

// ChunkKey maps a chunk coordinate to its storage key:
// "<path>/c<sep><i0><sep><i1>...". Distinct coordinates of the same array
// never collide because the encoding is positional and the separator never
// occurs inside a coordinate. Rank 0 arrays store their single chunk at
// "<path>/c".
func ChunkKey(path string, coord []int64, sep string) string {
	var b strings.Builder
	b.WriteString(path)
	b.WriteString("/")
	b.WriteString(chunkMarker)
	for _, c := range coord {
		b.WriteString(sep)
		b.WriteString(strconv.FormatInt(c, 10))
	}
	return b.String()
}

// ChunkKeyPrefix returns the common prefix of all chunk keys of an array,
// for enumeration via the store's prefix listing.
func ChunkKeyPrefix(path string) string {
	return path + "/" + chunkMarker
}

// ParseChunkKey is the two-sided inverse of ChunkKey. It is used for
// enumeration and diagnostics only, never on the hot read/write path.
func ParseChunkKey(key, path, sep string, rank int) ([]int64, error) {
	prefix := ChunkKeyPrefix(path)
	if !strings.HasPrefix(key, prefix) {
		return nil, errors.Newf("key %q does not belong to array %q", key, path)
	}
	rest := key[len(prefix):]
	if rank == 0 {
		if rest != "" {
			return nil, errors.Newf("key %q: trailing %q on rank 0 chunk key", key, rest)
		}
		return []int64{}, nil
	}
	if !strings.HasPrefix(rest, sep) {
		return nil, errors.Newf("key %q: expected separator %q after chunk marker", key, sep)
	}
	parts := strings.Split(rest[len(sep):], sep)
	if len(parts) != rank {
		return nil, errors.Newf("key %q: got %d coordinates, want %d", key, len(parts), rank)
	}
	coord := make([]int64, rank)
	for i, p := range parts {
		v, err := strconv.ParseInt(p, 10, 64)
		if err != nil || v < 0 {
			return nil, errors.Newf("key %q: bad coordinate %q", key, p)
		}
		coord[i] = v
	}
	return coord, nil
}
