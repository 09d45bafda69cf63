package model

import (
	"github.com/quarrybase/quarry/pkg/errors"
)

// Engine-wide error taxonomy. Callers test against these with errors.Is:
// operational errors built anywhere in the repo wrap exactly one of them.
var (
	// ErrInvalidShape flags a shape or chunk shape with bad arity or entries.
	ErrInvalidShape = errors.New("invalid shape")

	// ErrUnsupportedDType flags an unrecognized data type descriptor.
	ErrUnsupportedDType = errors.New("unsupported dtype")

	// ErrInvalidCodecConfig flags a malformed configuration for a known codec.
	ErrInvalidCodecConfig = errors.New("invalid codec configuration")

	// ErrCorruptMetadata flags a metadata document violating the schema.
	ErrCorruptMetadata = errors.New("corrupt metadata")

	// ErrUnsupportedCodec flags a codec identifier absent from the registry.
	ErrUnsupportedCodec = errors.New("unsupported codec")

	// ErrNameConflict flags a child name already taken under a parent.
	ErrNameConflict = errors.New("name conflict")

	// ErrNotFound flags an array or group that does not resolve.
	// A missing chunk is not an error: the engine substitutes the fill value.
	ErrNotFound = errors.New("not found")

	// ErrCodec flags an encode or decode failure inside the codec pipeline.
	ErrCodec = errors.New("codec failure")

	// ErrStoreIO wraps any backend storage failure.
	ErrStoreIO = errors.New("store i/o failure")
)
