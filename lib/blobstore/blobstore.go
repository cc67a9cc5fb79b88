// Package blobstore abstracts the two places pipeline artifacts live:
// a directory on local disk and a MinIO bucket. keys are slash-separated
// paths like "trips/indego-trips-2023-4.zip" on both backends.
package blobstore

import (
	"context"
	"io"
)

type Store interface {
	Exists(ctx context.Context, key string) (bool, error)
	// Open returns the contents at key, the caller must close it.
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Write(ctx context.Context, key string, r io.Reader) error
	// Delete is a no-op when the key does not exist.
	Delete(ctx context.Context, key string) error
	// List returns every key under the given prefix.
	List(ctx context.Context, prefix string) ([]string, error)
}
