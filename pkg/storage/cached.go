package storage

import (
	"bytes"
	"context"
	"io"
	"sync"

	units "github.com/docker/go-units"
	lru "github.com/hashicorp/golang-lru"
)

const (
	// DefaultCacheSize sets the default target LRU cache size in bytes.
	DefaultCacheSize = 64 * units.MiB

	// maxCachedBlobSize caps the size of an individual blob held in cache.
	// Larger blobs are streamed through uncached.
	maxCachedBlobSize = 8 * units.MiB
)

// NewCache decorates a store with a read-through LRU cache over whole blobs.
//
// Caching is strictly a decoration: the inner store remains the source of
// truth and the decorated store honors the same byte-exact contract. Writes
// and deletes invalidate the cached entry before reaching the backend.
func NewCache(store Store, sizeBytes int) (Store, error) {
	if sizeBytes <= 0 {
		sizeBytes = DefaultCacheSize
	}
	entries := sizeBytes / maxCachedBlobSize
	if entries < 16 {
		entries = 16
	}
	c, err := lru.New(entries)
	if err != nil {
		return nil, err
	}
	return &cachedStore{store: store, blobs: c}, nil
}

type cachedStore struct {
	store Store
	blobs *lru.Cache
	mu    sync.Mutex // serializes fill of a given key, not reads
}

func (c *cachedStore) String() string {
	return c.store.String() + "+cache"
}

func (c *cachedStore) Has(ctx context.Context, key string) (bool, error) {
	if _, ok := c.blobs.Get(key); ok {
		return true, nil
	}
	return c.store.Has(ctx, key)
}

func (c *cachedStore) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	if b, ok := c.blobs.Get(key); ok {
		return io.NopCloser(bytes.NewReader(b.([]byte))), nil
	}

	rdr, err := c.store.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	head, err := io.ReadAll(io.LimitReader(rdr, maxCachedBlobSize+1))
	if err != nil {
		rdr.Close()
		return nil, err
	}
	if len(head) > maxCachedBlobSize {
		// too big to cache: hand back what we consumed plus the rest
		return &splicedReader{head: bytes.NewReader(head), tail: rdr}, nil
	}
	if err := rdr.Close(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.blobs.Add(key, head)
	c.mu.Unlock()

	return io.NopCloser(bytes.NewReader(head)), nil
}

func (c *cachedStore) GetRange(ctx context.Context, key string, offset, length int64) ([]byte, error) {
	if b, ok := c.blobs.Get(key); ok {
		blob := b.([]byte)
		if offset < 0 || length < 0 || offset+length > int64(len(blob)) {
			return nil, ErrInvalidRange
		}
		out := make([]byte, length)
		copy(out, blob[offset:offset+length])
		return out, nil
	}
	return c.store.GetRange(ctx, key, offset, length)
}

func (c *cachedStore) Put(ctx context.Context, key string, rdr io.Reader) error {
	c.blobs.Remove(key)
	return c.store.Put(ctx, key, rdr)
}

func (c *cachedStore) Delete(ctx context.Context, key string) error {
	c.blobs.Remove(key)
	return c.store.Delete(ctx, key)
}

func (c *cachedStore) KeysPrefix(ctx context.Context, prefix string) ([]string, error) {
	return c.store.KeysPrefix(ctx, prefix)
}

func (c *cachedStore) Clear(ctx context.Context) error {
	c.blobs.Purge()
	return c.store.Clear(ctx)
}

type splicedReader struct {
	head *bytes.Reader
	tail io.ReadCloser
}

func (s *splicedReader) Read(p []byte) (int, error) {
	if s.head.Len() > 0 {
		return s.head.Read(p)
	}
	return s.tail.Read(p)
}

func (s *splicedReader) Close() error {
	return s.tail.Close()
}
