package core

import (
	"bytes"
	"context"

	"github.com/quarrybase/quarry/pkg/errors"
	"github.com/quarrybase/quarry/pkg/grid"
	"github.com/quarrybase/quarry/pkg/model"
	"github.com/quarrybase/quarry/pkg/storage"
)

// readModifyWrite updates part of one chunk: fetch the stored chunk or
// synthesize a fill chunk when absent, let splice mutate it in place,
// re-encode and store the whole chunk. Every mutation of a partially
// covered chunk funnels through here so the preservation of untouched
// bytes has exactly one implementation.
func (a *Array) readModifyWrite(ctx context.Context, x grid.Intersection, splice func(chunk []byte)) error {
	chunk, found, err := a.loadChunkFull(ctx, x.Coord)
	if err != nil {
		return err
	}
	if !found {
		chunk = a.newFillChunk()
	}
	splice(chunk)
	return a.putChunk(ctx, x.Coord, chunk)
}

// loadChunk fetches the decoded bytes backing one intersection. With an
// empty codec pipeline the stored blob is the decoded chunk, so a partial
// overlap only needs the byte window spanning the overlapped rectangle;
// that window is ranged from the store and placed at its offset in a
// chunk-sized buffer. Any codec in the chain forces a full fetch.
func (a *Array) loadChunk(ctx context.Context, x grid.Intersection) ([]byte, bool, error) {
	if !a.pipe.Empty() || a.meta.Rank() == 0 || x.Covers(a.meta.ChunkShape) {
		return a.loadChunkFull(ctx, x.Coord)
	}

	strides := elemStrides(a.meta.ChunkShape)
	first, last := int64(0), int64(0)
	for i, iv := range x.Chunk {
		first += iv[0] * strides[i]
		last += (iv[1] - 1) * strides[i]
	}
	elem := int64(a.meta.DType.Size())
	offset := first * elem
	length := (last - first + 1) * elem

	key := a.chunkKey(x.Coord)
	window, err := a.eng.store.GetRange(ctx, key, offset, length)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, false, nil
		}
		if errors.Is(err, storage.ErrNotSupported) {
			return a.loadChunkFull(ctx, x.Coord)
		}
		return nil, false, errors.Newf("get range %q: %v", key, err).Wrap(model.ErrStoreIO)
	}
	chunk := make([]byte, a.meta.ChunkBytes())
	copy(chunk[offset:], window)
	return chunk, true, nil
}

// loadChunkFull fetches and decodes one whole chunk. found is false when
// the chunk was never written, which readers map to the fill value.
func (a *Array) loadChunkFull(ctx context.Context, coord []int64) ([]byte, bool, error) {
	key := a.chunkKey(coord)
	blob, found, err := a.eng.getBlob(ctx, key)
	if err != nil || !found {
		return nil, false, err
	}
	chunk, err := a.pipe.Decode(blob)
	if err != nil {
		return nil, false, errors.Newf("chunk %q", key).Wrap(err)
	}
	if int64(len(chunk)) != a.meta.ChunkBytes() {
		return nil, false, errors.Newf("chunk %q decoded to %d bytes, want %d",
			key, len(chunk), a.meta.ChunkBytes()).Wrap(model.ErrCodec)
	}
	return chunk, true, nil
}

// putChunk encodes and stores one whole chunk.
func (a *Array) putChunk(ctx context.Context, coord []int64, chunk []byte) error {
	enc, err := a.pipe.Encode(chunk)
	if err != nil {
		return errors.Newf("chunk %q", a.chunkKey(coord)).Wrap(err)
	}
	return a.putBlob(ctx, a.chunkKey(coord), enc)
}

// deleteChunk removes one chunk blob. Deleting an absent chunk is a no-op.
func (a *Array) deleteChunk(ctx context.Context, coord []int64) error {
	key := a.chunkKey(coord)
	if err := a.eng.store.Delete(ctx, key); err != nil {
		return errors.Newf("delete %q: %v", key, err).Wrap(model.ErrStoreIO)
	}
	return nil
}

// putBlob stores a blob, mapping storage errors to the engine taxonomy.
func (a *Array) putBlob(ctx context.Context, key string, b []byte) error {
	if err := a.eng.store.Put(ctx, key, bytes.NewReader(b)); err != nil {
		return errors.Newf("put %q: %v", key, err).Wrap(model.ErrStoreIO)
	}
	return nil
}

// newFillChunk allocates one chunk tiled with the fill value.
func (a *Array) newFillChunk() []byte {
	chunk := make([]byte, a.meta.ChunkBytes())
	grid.FillPattern(chunk, a.fill)
	return chunk
}

// elemStrides is the row-major element stride per dimension.
func elemStrides(shape []int64) []int64 {
	strides := make([]int64, len(shape))
	acc := int64(1)
	for i := len(shape) - 1; i >= 0; i-- {
		strides[i] = acc
		acc *= shape[i]
	}
	return strides
}
