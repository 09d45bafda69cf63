/*
Package quarry provides chunked N-dimensional array storage over pluggable
blob stores.

Arrays are split into fixed-shape chunks, each stored as one independently
encoded blob, so regions of very large arrays can be read and written
without touching the rest. The entry point is pkg/core, which binds array
and group operations to a pkg/storage backend (local file system or S3)
through the pkg/codec compression pipeline.
*/
package quarry
