package core

import (
	"bytes"
	"context"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/quarrybase/quarry/pkg/codec"
	"github.com/quarrybase/quarry/pkg/errors"
	"github.com/quarrybase/quarry/pkg/grid"
	"github.com/quarrybase/quarry/pkg/model"
)

// CreateGroup creates a group node at path. The empty path creates the
// root group; any other path requires its parent group to exist already.
func (e *Engine) CreateGroup(ctx context.Context, path string, attrs map[string]interface{}) error {
	npath := NormalizePath(path)
	if npath != "" {
		if err := validateName(npath); err != nil {
			return err
		}
		parent, _ := splitPath(npath)
		if err := e.requireGroup(ctx, parent); err != nil {
			return err
		}
	}
	if err := e.requireVacant(ctx, npath); err != nil {
		return err
	}

	doc, err := model.NewGroupMeta(attrs).Serialize()
	if err != nil {
		return errors.Newf("group %q", npath).Wrap(err)
	}
	if err := e.store.Put(ctx, groupMetaKey(npath), bytes.NewReader(doc)); err != nil {
		return errors.Newf("group %q: put metadata: %v", npath, err).Wrap(model.ErrStoreIO)
	}
	e.l.Debug("created group", zap.String("path", npath))
	return nil
}

// CreateArray creates an array node at path from validated metadata and
// returns a handle bound to this engine. The codec chain is compiled
// here, so unknown codecs or malformed configurations fail the creation.
func (e *Engine) CreateArray(ctx context.Context, path string, meta *model.ArrayMeta) (*Array, error) {
	npath := NormalizePath(path)
	if npath == "" {
		return nil, errors.New("the root node must be a group").Wrap(model.ErrNameConflict)
	}
	if err := validateName(npath); err != nil {
		return nil, err
	}
	if err := meta.Validate(); err != nil {
		return nil, err
	}
	pipe, err := codec.NewPipeline(meta.Codecs, meta.DType)
	if err != nil {
		return nil, errors.Newf("array %q", npath).Wrap(err)
	}

	parent, _ := splitPath(npath)
	if err := e.requireGroup(ctx, parent); err != nil {
		return nil, err
	}
	if err := e.requireVacant(ctx, npath); err != nil {
		return nil, err
	}

	doc, err := meta.Serialize()
	if err != nil {
		return nil, errors.Newf("array %q", npath).Wrap(err)
	}
	if err := e.store.Put(ctx, arrayMetaKey(npath), bytes.NewReader(doc)); err != nil {
		return nil, errors.Newf("array %q: put metadata: %v", npath, err).Wrap(model.ErrStoreIO)
	}
	e.l.Debug("created array",
		zap.String("path", npath),
		zap.Int64s("shape", meta.Shape),
		zap.Int64s("chunk_shape", meta.ChunkShape),
		zap.String("dtype", string(meta.DType)),
	)
	return e.bindArray(npath, meta, pipe)
}

// OpenArray loads an existing array's metadata and returns a bound
// handle. Metadata referencing an unregistered codec fails here with no
// partially constructed handle.
func (e *Engine) OpenArray(ctx context.Context, path string) (*Array, error) {
	npath := NormalizePath(path)
	doc, found, err := e.getBlob(ctx, arrayMetaKey(npath))
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, errors.Newf("array %q", npath).Wrap(model.ErrNotFound)
	}
	meta, err := model.UnmarshalArrayMeta(doc)
	if err != nil {
		return nil, errors.Newf("array %q", npath).Wrap(err)
	}
	pipe, err := codec.NewPipeline(meta.Codecs, meta.DType)
	if err != nil {
		return nil, errors.Newf("array %q", npath).Wrap(err)
	}
	return e.bindArray(npath, meta, pipe)
}

// OpenGroup loads an existing group's metadata.
func (e *Engine) OpenGroup(ctx context.Context, path string) (*model.GroupMeta, error) {
	npath := NormalizePath(path)
	doc, found, err := e.getBlob(ctx, groupMetaKey(npath))
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, errors.Newf("group %q", npath).Wrap(model.ErrNotFound)
	}
	meta, err := model.UnmarshalGroupMeta(doc)
	if err != nil {
		return nil, errors.Newf("group %q", npath).Wrap(err)
	}
	return meta, nil
}

// Node resolves a path to its node kind.
func (e *Engine) Node(ctx context.Context, path string) (model.NodeKind, error) {
	npath := NormalizePath(path)
	if ok, err := e.hasBlob(ctx, arrayMetaKey(npath)); err != nil {
		return "", err
	} else if ok {
		return model.KindArray, nil
	}
	if ok, err := e.hasBlob(ctx, groupMetaKey(npath)); err != nil {
		return "", err
	} else if ok {
		return model.KindGroup, nil
	}
	return "", errors.Newf("node %q", npath).Wrap(model.ErrNotFound)
}

// ListChildren enumerates the direct children of a group, ordered by
// name. Arrays and groups share one namespace per parent.
func (e *Engine) ListChildren(ctx context.Context, path string) ([]model.Child, error) {
	npath := NormalizePath(path)
	if err := e.requireGroup(ctx, npath); err != nil {
		return nil, err
	}

	prefix := ""
	if npath != "" {
		prefix = npath + "/"
	}
	keys, err := e.store.KeysPrefix(ctx, prefix)
	if err != nil {
		return nil, errors.Newf("list %q: %v", npath, err).Wrap(model.ErrStoreIO)
	}

	children := make([]model.Child, 0, len(keys))
	for _, key := range keys {
		rel := strings.TrimPrefix(key, prefix)
		segs := strings.Split(rel, "/")
		if len(segs) != 2 {
			continue
		}
		switch segs[1] {
		case model.ArrayMetaName:
			children = append(children, model.Child{Name: segs[0], Kind: model.KindArray})
		case model.GroupMetaName:
			children = append(children, model.Child{Name: segs[0], Kind: model.KindGroup})
		}
	}
	sort.Slice(children, func(i, j int) bool { return children[i].Name < children[j].Name })
	return children, nil
}

// Delete removes a node and, for groups, all its descendants. The policy
// is hard deletion: array chunk blobs are removed from the store eagerly
// together with the metadata, not orphaned.
func (e *Engine) Delete(ctx context.Context, path string) error {
	npath := NormalizePath(path)
	if npath == "" {
		return errors.New("refusing to delete the root group").Wrap(model.ErrNameConflict)
	}
	if _, err := e.Node(ctx, npath); err != nil {
		return err
	}

	keys, err := e.store.KeysPrefix(ctx, npath+"/")
	if err != nil {
		return errors.Newf("delete %q: %v", npath, err).Wrap(model.ErrStoreIO)
	}
	for _, key := range keys {
		if err := e.store.Delete(ctx, key); err != nil {
			return errors.Newf("delete %q: removing %q: %v", npath, key, err).Wrap(model.ErrStoreIO)
		}
	}
	e.l.Debug("deleted node", zap.String("path", npath), zap.Int("keys", len(keys)))
	return nil
}

// requireGroup fails with NotFound unless path resolves to a group.
func (e *Engine) requireGroup(ctx context.Context, path string) error {
	ok, err := e.hasBlob(ctx, groupMetaKey(path))
	if err != nil {
		return err
	}
	if !ok {
		return errors.Newf("group %q", path).Wrap(model.ErrNotFound)
	}
	return nil
}

// requireVacant fails with NameConflict when a node of either kind
// already occupies path.
func (e *Engine) requireVacant(ctx context.Context, path string) error {
	for _, key := range []string{arrayMetaKey(path), groupMetaKey(path)} {
		ok, err := e.hasBlob(ctx, key)
		if err != nil {
			return err
		}
		if ok {
			return errors.Newf("node %q already exists", path).Wrap(model.ErrNameConflict)
		}
	}
	return nil
}

// bindArray attaches a handle to the engine.
func (e *Engine) bindArray(path string, meta *model.ArrayMeta, pipe *codec.Pipeline) (*Array, error) {
	fill, err := meta.FillBytes()
	if err != nil {
		return nil, errors.Newf("array %q: fill_value: %v", path, err).Wrap(model.ErrCorruptMetadata)
	}
	return &Array{
		eng:  e,
		path: path,
		meta: meta,
		pipe: pipe,
		fill: fill,
		l:    e.l.With(zap.String("array", path)),
	}, nil
}

// chunkKey computes the storage key of one chunk coordinate.
func (a *Array) chunkKey(coord []int64) string {
	return grid.ChunkKey(a.path, coord, a.meta.Separator)
}
