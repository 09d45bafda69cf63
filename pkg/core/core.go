// Package core orchestrates metadata, the chunk key scheme, the codec
// pipeline and the store into an N-dimensional chunked array engine with
// region-level reads and writes, plus the group hierarchy around it.
package core

import (
	"context"
	"io"

	"go.uber.org/zap"

	"github.com/quarrybase/quarry/pkg/errors"
	"github.com/quarrybase/quarry/pkg/model"
	"github.com/quarrybase/quarry/pkg/storage"
)

// Engine binds the array and group operations to one backing store.
//
// The engine holds no state of its own besides configuration: the store
// is the sole source of truth, chunk contents are never cached across
// calls (wrap the store with storage.NewCache for that), and an Engine is
// safe for concurrent use.
type Engine struct {
	store       storage.Store
	l           *zap.Logger
	concurrency int
}

// New creates an engine over a store.
func New(store storage.Store, opts ...Option) *Engine {
	e := &Engine{
		store:       store,
		l:           zap.NewNop(),
		concurrency: defaultConcurrency,
	}
	for _, apply := range opts {
		apply(e)
	}
	return e
}

// Store exposes the backing store, mainly for decorating and tests.
func (e *Engine) Store() storage.Store {
	return e.store
}

// getBlob fetches a whole blob, mapping storage errors to the engine
// taxonomy. found is false when the key is absent.
func (e *Engine) getBlob(ctx context.Context, key string) ([]byte, bool, error) {
	rdr, err := e.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, errors.Newf("get %q: %v", key, err).Wrap(model.ErrStoreIO)
	}
	defer rdr.Close()
	b, err := io.ReadAll(rdr)
	if err != nil {
		return nil, false, errors.Newf("read %q: %v", key, err).Wrap(model.ErrStoreIO)
	}
	return b, true, nil
}

// hasBlob probes a key, mapping storage errors to the engine taxonomy.
func (e *Engine) hasBlob(ctx context.Context, key string) (bool, error) {
	ok, err := e.store.Has(ctx, key)
	if err != nil {
		return false, errors.Newf("stat %q: %v", key, err).Wrap(model.ErrStoreIO)
	}
	return ok, nil
}
