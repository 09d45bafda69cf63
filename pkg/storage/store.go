package storage

import (
	"context"
	"io"
)

type errString string

func (e errString) Error() string { return string(e) }

const (
	// ErrNotFound is returned when a key has no blob in the store.
	ErrNotFound errString = "not found"

	// ErrNotSupported is returned by backends for operations they cannot provide.
	ErrNotSupported errString = "not supported"

	// ErrInvalidRange is returned when a ranged read falls outside the blob.
	ErrInvalidRange errString = "invalid byte range"
)

// Store implementations know how to persist opaque blobs in a K/V model.
//
// Typically this is something file system-like. Examples are S3, local FS, NFS, ...
// Implementations of this interface are assumed to be fairly simple: a set of
// string keys mapping to byte blobs, byte-exact on the way back out.
type Store interface {
	String() string
	Has(context.Context, string) (bool, error)
	Get(context.Context, string) (io.ReadCloser, error)

	// GetRange reads length bytes starting at offset without fetching
	// the whole blob.
	GetRange(ctx context.Context, key string, offset, length int64) ([]byte, error)

	// Put creates or replaces the blob at key. A blob is never observable
	// in a half-written state.
	Put(context.Context, string, io.Reader) error

	// Delete removes the blob at key. Deleting an absent key is not an error.
	Delete(context.Context, string) error

	// KeysPrefix returns all keys starting with prefix, in lexicographic order.
	KeysPrefix(context.Context, string) ([]string, error)

	Clear(context.Context) error
}

// ReadAll fetches a whole blob into memory.
func ReadAll(ctx context.Context, store Store, key string) ([]byte, error) {
	rdr, err := store.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	defer rdr.Close()
	return io.ReadAll(rdr)
}
