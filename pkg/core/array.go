package core

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/quarrybase/quarry/pkg/codec"
	"github.com/quarrybase/quarry/pkg/errors"
	"github.com/quarrybase/quarry/pkg/grid"
	"github.com/quarrybase/quarry/pkg/model"
)

// Array is a handle on one array node: its metadata, its compiled codec
// pipeline and the engine it is bound to. Handles hold no chunk state and
// are safe for concurrent use; the store remains the source of truth.
type Array struct {
	eng  *Engine
	path string
	meta *model.ArrayMeta
	pipe *codec.Pipeline
	fill []byte
	l    *zap.Logger
}

// Path is the normalized node path of the array.
func (a *Array) Path() string {
	return a.path
}

// Meta exposes the array metadata. Callers must treat it as read-only.
func (a *Array) Meta() *model.ArrayMeta {
	return a.meta
}

// ReadRegion reads a rectangular region into a freshly allocated row-major
// buffer of the region's clamped shape. Regions are clamped to the array
// shape, so reads over the edge return only the in-bounds part. Chunks
// absent from the store read as the fill value; that is a normal state,
// not an error. The result is complete or the call fails, never truncated.
func (a *Array) ReadRegion(ctx context.Context, region grid.Region) ([]byte, error) {
	if region.Rank() != a.meta.Rank() {
		return nil, errors.Newf("region rank %d, array rank %d",
			region.Rank(), a.meta.Rank()).Wrap(model.ErrInvalidShape)
	}
	if err := a.requireLive(ctx); err != nil {
		return nil, err
	}
	region = region.Clamp(a.meta.Shape)

	elem := a.meta.DType.Size()
	buf := make([]byte, region.Elems()*int64(elem))
	grid.FillPattern(buf, a.fill)
	if region.Rank() > 0 && region.Empty() {
		return buf, nil
	}
	bufShape := region.Shape()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.eng.concurrency)
	for _, x := range grid.Intersections(region, a.meta.ChunkShape) {
		x := x
		g.Go(func() error {
			chunk, found, err := a.loadChunk(gctx, x)
			if err != nil {
				return err
			}
			if !found {
				return nil // buf is prefilled with the fill value
			}
			grid.CopyRegion(
				buf, bufShape, regionOrigin(x.Buf),
				chunk, a.meta.ChunkShape, regionOrigin(x.Chunk),
				x.Chunk.Shape(), elem,
			)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return buf, nil
}

// WriteRegion writes a row-major buffer into a rectangular region. The
// region is clamped to the array shape and data must hold exactly the
// clamped region's elements. Chunks fully covered by the region are
// encoded and stored directly; partially covered chunks go through
// readModifyWrite, which preserves every byte outside the written
// rectangle, boundary padding included. Distinct chunks are written
// concurrently; two overlapping WriteRegion calls racing on the same
// chunk are the caller's coordination problem.
func (a *Array) WriteRegion(ctx context.Context, region grid.Region, data []byte) error {
	if region.Rank() != a.meta.Rank() {
		return errors.Newf("region rank %d, array rank %d",
			region.Rank(), a.meta.Rank()).Wrap(model.ErrInvalidShape)
	}
	if err := a.requireLive(ctx); err != nil {
		return err
	}
	region = region.Clamp(a.meta.Shape)

	elem := a.meta.DType.Size()
	if want := region.Elems() * int64(elem); int64(len(data)) != want {
		return errors.Newf("buffer is %d bytes, region needs %d",
			len(data), want).Wrap(model.ErrInvalidShape)
	}
	if region.Rank() > 0 && region.Empty() {
		return nil
	}
	bufShape := region.Shape()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.eng.concurrency)
	for _, x := range grid.Intersections(region, a.meta.ChunkShape) {
		x := x
		g.Go(func() error {
			if x.Covers(a.meta.ChunkShape) {
				chunk := make([]byte, a.meta.ChunkBytes())
				grid.CopyRegion(
					chunk, a.meta.ChunkShape, regionOrigin(x.Chunk),
					data, bufShape, regionOrigin(x.Buf),
					x.Chunk.Shape(), elem,
				)
				return a.putChunk(gctx, x.Coord, chunk)
			}
			return a.readModifyWrite(gctx, x, func(chunk []byte) {
				grid.CopyRegion(
					chunk, a.meta.ChunkShape, regionOrigin(x.Chunk),
					data, bufShape, regionOrigin(x.Buf),
					x.Chunk.Shape(), elem,
				)
			})
		})
	}
	return g.Wait()
}

// DeleteRegion resets a rectangular region to the fill value. Chunks fully
// inside the region are deleted from the store eagerly; boundary chunks
// are rewritten with the overlapped rectangle filled. Chunks already
// absent are left alone.
func (a *Array) DeleteRegion(ctx context.Context, region grid.Region) error {
	if region.Rank() != a.meta.Rank() {
		return errors.Newf("region rank %d, array rank %d",
			region.Rank(), a.meta.Rank()).Wrap(model.ErrInvalidShape)
	}
	if err := a.requireLive(ctx); err != nil {
		return err
	}
	region = region.Clamp(a.meta.Shape)
	if region.Rank() > 0 && region.Empty() {
		return nil
	}

	elem := a.meta.DType.Size()
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.eng.concurrency)
	for _, x := range grid.Intersections(region, a.meta.ChunkShape) {
		x := x
		g.Go(func() error {
			if x.Covers(a.meta.ChunkShape) {
				return a.deleteChunk(gctx, x.Coord)
			}
			exists, err := a.eng.hasBlob(gctx, a.chunkKey(x.Coord))
			if err != nil {
				return err
			}
			if !exists {
				return nil // already reads as fill
			}
			rect := make([]byte, x.Chunk.Elems()*int64(elem))
			grid.FillPattern(rect, a.fill)
			return a.readModifyWrite(gctx, x, func(chunk []byte) {
				grid.CopyRegion(
					chunk, a.meta.ChunkShape, regionOrigin(x.Chunk),
					rect, x.Chunk.Shape(), make([]int64, x.Chunk.Rank()),
					x.Chunk.Shape(), elem,
				)
			})
		})
	}
	return g.Wait()
}

// Resize changes the array shape without moving data. Growing is a pure
// metadata update: new index space reads as fill until written. Shrinking
// eagerly deletes every chunk that falls fully outside the new shape;
// boundary chunks keep their stored bytes and reads clamp them away.
func (a *Array) Resize(ctx context.Context, newShape []int64) error {
	if len(newShape) != a.meta.Rank() {
		return errors.Newf("new shape has rank %d, array rank %d",
			len(newShape), a.meta.Rank()).Wrap(model.ErrInvalidShape)
	}
	for i, s := range newShape {
		if s < 0 {
			return errors.Newf("new shape[%d] = %d is negative", i, s).Wrap(model.ErrInvalidShape)
		}
	}
	if err := a.requireLive(ctx); err != nil {
		return err
	}

	newGrid := grid.GridShape(newShape, a.meta.ChunkShape)
	keys, err := a.eng.store.KeysPrefix(ctx, grid.ChunkKeyPrefix(a.path))
	if err != nil {
		return errors.Newf("resize %q: %v", a.path, err).Wrap(model.ErrStoreIO)
	}
	dropped := 0
	for _, key := range keys {
		coord, err := grid.ParseChunkKey(key, a.path, a.meta.Separator, a.meta.Rank())
		if err != nil {
			continue // not a chunk of this array
		}
		outside := false
		for i, c := range coord {
			if c >= newGrid[i] {
				outside = true
				break
			}
		}
		if !outside {
			continue
		}
		if err := a.eng.store.Delete(ctx, key); err != nil {
			return errors.Newf("resize %q: dropping %q: %v", a.path, key, err).Wrap(model.ErrStoreIO)
		}
		dropped++
	}

	oldShape := a.meta.Shape
	a.meta.Shape = newShape
	doc, err := a.meta.Serialize()
	if err != nil {
		a.meta.Shape = oldShape
		return errors.Newf("resize %q", a.path).Wrap(err)
	}
	if err := a.putBlob(ctx, arrayMetaKey(a.path), doc); err != nil {
		a.meta.Shape = oldShape
		return err
	}
	a.l.Debug("resized array",
		zap.Int64s("from", oldShape),
		zap.Int64s("to", newShape),
		zap.Int("chunks_dropped", dropped),
	)
	return nil
}

// requireLive fails with NotFound once the array node has been deleted
// from under the handle.
func (a *Array) requireLive(ctx context.Context) error {
	ok, err := a.eng.hasBlob(ctx, arrayMetaKey(a.path))
	if err != nil {
		return err
	}
	if !ok {
		return errors.Newf("array %q", a.path).Wrap(model.ErrNotFound)
	}
	return nil
}

// regionOrigin is the low corner of a region, used as a copy origin.
func regionOrigin(r grid.Region) []int64 {
	o := make([]int64, len(r))
	for i, iv := range r {
		o[i] = iv[0]
	}
	return o
}
