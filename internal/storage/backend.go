// Package storage provides the uniform key/value persistence contract and
// its three interchangeable implementations: filesystem documents, a
// structured SQLite store, and a flat Badger key-value store.
//
// A backend is selected once at startup by capability probe and never mixed
// with another at runtime. Each Get/Set call is independent; there is no
// cross-key transaction.
package storage

import "context"

// Backend is the uniform persistence contract. Values are opaque bytes;
// callers serialize before writing.
type Backend interface {
	// Name identifies the implementation ("filesystem", "sqlite", "badger").
	Name() string

	// Get retrieves the value for key. The second return is false when the
	// key is absent (absence is not an error).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set writes or overwrites the value for key.
	Set(ctx context.Context, key string, value []byte) error

	// Usage returns the bytes currently stored and the quota ceiling.
	// A zero quota means unbounded.
	Usage(ctx context.Context) (used int64, quota int64, err error)

	// Close releases underlying resources.
	Close() error
}

// DefaultQuota is the assumed storage ceiling for the quota-bounded backends
// (everything except the filesystem backend).
const DefaultQuota = 10 * 1024 * 1024 // 10 MiB
