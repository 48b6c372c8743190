// Package store holds the key-value collaborator that owns every
// collection as one opaque blob per key.  Backends offer an optimistic
// compare-and-swap Update so read-modify-write cycles from concurrent
// requests never overwrite each other.
package store

import (
	"context"
	"errors"
)

// ErrConflict is returned by Update when the key kept changing underneath
// the caller for every allowed attempt.
var ErrConflict = errors.New("store: concurrent update conflict")

// DefaultMaxRetries bounds optimistic Update attempts.
const DefaultMaxRetries = 8

// UpdateFunc receives the current blob (nil when the key is absent) and
// returns the blob to write.  Returning a nil slice leaves the key
// untouched.  Returning an error aborts without writing; the error is
// passed back to the caller of Update unchanged.
type UpdateFunc func(current []byte) ([]byte, error)

// KV is the blob store.  Keys are collection names such as "lessons".
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Update(ctx context.Context, key string, fn UpdateFunc) error
}

// namespaced returns "prefix:key", or key alone without a prefix.
func namespaced(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + ":" + key
}
