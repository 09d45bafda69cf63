package localfs

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quarrybase/quarry/pkg/errors"
	"github.com/quarrybase/quarry/pkg/storage"
)

func setupStore(t testing.TB) storage.Store {
	t.Helper()

	bs := New(afero.NewMemMapFs())
	ctx := context.Background()
	require.NoError(t, bs.Put(ctx, "sixteentons", bytes.NewBufferString("this is the text")))
	require.NoError(t, bs.Put(ctx, "grp/arr/array.json", bytes.NewBufferString(`{"k":"v"}`)))
	require.NoError(t, bs.Put(ctx, "grp/arr/c/0/0", bytes.NewBufferString("chunkdata")))
	return bs
}

func TestHas(t *testing.T) {
	bs := setupStore(t)
	ctx := context.Background()

	has, err := bs.Has(ctx, "sixteentons")
	require.NoError(t, err)
	require.True(t, has)

	has, err = bs.Has(ctx, "grp/arr/c/0/0")
	require.NoError(t, err)
	require.True(t, has)

	has, err = bs.Has(ctx, "fifteentons")
	require.NoError(t, err)
	require.False(t, has)
}

func TestGet(t *testing.T) {
	bs := setupStore(t)

	rdr, err := bs.Get(context.Background(), "sixteentons")
	require.NoError(t, err)
	b, err := io.ReadAll(rdr)
	require.NoError(t, err)
	require.NoError(t, rdr.Close())
	assert.Equal(t, "this is the text", string(b))

	_, err = bs.Get(context.Background(), "nope")
	require.Error(t, err)
	assert.True(t, errors.Is(err, storage.ErrNotFound))
}

func TestGetRange(t *testing.T) {
	bs := setupStore(t)
	ctx := context.Background()

	_, err := bs.GetRange(ctx, "chunkless", 0, 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, storage.ErrNotFound))

	b, err := bs.GetRange(ctx, "grp/arr/c/0/0", 5, 4)
	require.NoError(t, err)
	assert.Equal(t, "data", string(b))

	b, err = bs.GetRange(ctx, "grp/arr/c/0/0", 0, 9)
	require.NoError(t, err)
	assert.Equal(t, "chunkdata", string(b))

	_, err = bs.GetRange(ctx, "grp/arr/c/0/0", 8, 4)
	require.Error(t, err)

	_, err = bs.GetRange(ctx, "grp/arr/c/0/0", -1, 2)
	require.Error(t, err)
	assert.True(t, errors.Is(err, storage.ErrInvalidRange))
}

func TestPutOverwrites(t *testing.T) {
	bs := setupStore(t)
	ctx := context.Background()

	require.NoError(t, bs.Put(ctx, "sixteentons", bytes.NewBufferString("rewritten")))
	b, err := storage.ReadAll(ctx, bs, "sixteentons")
	require.NoError(t, err)
	assert.Equal(t, "rewritten", string(b))
}

func TestPutRejectsStagingKey(t *testing.T) {
	bs := setupStore(t)
	err := bs.Put(context.Background(), ".put-stage/x", bytes.NewBufferString("no"))
	require.Error(t, err)
}

func TestDeleteIsIdempotent(t *testing.T) {
	bs := setupStore(t)
	ctx := context.Background()

	require.NoError(t, bs.Delete(ctx, "sixteentons"))
	has, err := bs.Has(ctx, "sixteentons")
	require.NoError(t, err)
	require.False(t, has)

	// deleting again is not an error
	require.NoError(t, bs.Delete(ctx, "sixteentons"))
	require.NoError(t, bs.Delete(ctx, "never-existed"))
}

func TestKeysPrefix(t *testing.T) {
	bs := setupStore(t)
	ctx := context.Background()

	keys, err := bs.KeysPrefix(ctx, "grp/arr/")
	require.NoError(t, err)
	assert.Equal(t, []string{"grp/arr/array.json", "grp/arr/c/0/0"}, keys)

	keys, err = bs.KeysPrefix(ctx, "grp/arr/c")
	require.NoError(t, err)
	assert.Equal(t, []string{"grp/arr/c/0/0"}, keys)

	keys, err = bs.KeysPrefix(ctx, "")
	require.NoError(t, err)
	assert.Len(t, keys, 3)

	keys, err = bs.KeysPrefix(ctx, "nothing-here")
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestClear(t *testing.T) {
	bs := setupStore(t)
	ctx := context.Background()

	require.NoError(t, bs.Clear(ctx))
	keys, err := bs.KeysPrefix(ctx, "")
	require.NoError(t, err)
	require.Empty(t, keys)
}

func TestString(t *testing.T) {
	bs := New(afero.NewMemMapFs())
	assert.Equal(t, "localfs", bs.String())
}
