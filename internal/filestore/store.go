// Package filestore defines the interface generated files are published
// through when the output target is an object store.
//
// All providers implement the Store interface. Callers depend only on this
// package, never on a specific provider package.
//
// Usage:
//
//	cfg := filestore.DefaultConfig("localhost:9000", "minioadmin", "minioadmin")
//	store, err := minio.New(ctx, cfg)
//	if err != nil { ... }
//	defer store.Close()
//
//	err = store.EnsureBucket(ctx, "models")
package filestore

import "context"

// Store is the single interface all object storage providers must implement.
type Store interface {
	// Ping verifies the storage backend is reachable.
	Ping(ctx context.Context) error

	// Close releases any held resources.
	Close() error

	// EnsureBucket creates bucket unless it already exists.
	EnsureBucket(ctx context.Context, bucket string) error

	// PutObject stores data at key inside bucket, replacing any existing object.
	PutObject(ctx context.Context, bucket, key string, data []byte, contentType string) (*ObjectInfo, error)
}
