package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/iliyamo/lesson-scheduler/internal/store"
)

// Collection keys as seen by the key-value store.
const (
	KeyLessons   = "lessons"
	KeyStudents  = "students"
	KeyTeachers  = "teachers"
	KeyTimeSlots = "timeSlots"
)

// Collection is a JSON array of T stored under one key.  Every read loads
// the whole array and every write replaces it.
type Collection[T any] struct {
	kv  store.KV
	key string
}

// NewCollection binds a collection to its store key.
func NewCollection[T any](kv store.KV, key string) *Collection[T] {
	return &Collection[T]{kv: kv, key: key}
}

// Key returns the store key of the collection.
func (c *Collection[T]) Key() string { return c.key }

// Load returns every element.  An absent key is an empty collection.
func (c *Collection[T]) Load(ctx context.Context) ([]T, error) {
	raw, err := c.kv.Get(ctx, c.key)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w: %w", c.key, ErrStoreUnavailable, err)
	}
	return decode[T](c.key, raw)
}

// Replace overwrites the whole collection.
func (c *Collection[T]) Replace(ctx context.Context, items []T) error {
	raw, err := encode(items)
	if err != nil {
		return fmt.Errorf("encode %s: %w", c.key, err)
	}
	if err := c.kv.Set(ctx, c.key, raw); err != nil {
		return fmt.Errorf("store %s: %w: %w", c.key, ErrStoreUnavailable, err)
	}
	return nil
}

// MutateFunc receives the current elements and returns the next ones plus
// whether anything changed.  It may run more than once when concurrent
// writers collide, so it must not leak state between calls.
type MutateFunc[T any] func(items []T) (next []T, changed bool, err error)

// Mutate runs fn as one compare-and-swap cycle.  Errors returned by fn are
// passed through untouched; store failures are wrapped in
// ErrStoreUnavailable.
func (c *Collection[T]) Mutate(ctx context.Context, fn MutateFunc[T]) error {
	var fnErr error
	err := c.kv.Update(ctx, c.key, func(cur []byte) ([]byte, error) {
		items, err := decode[T](c.key, cur)
		if err != nil {
			fnErr = err
			return nil, err
		}
		next, changed, err := fn(items)
		if err != nil {
			fnErr = err
			return nil, err
		}
		if !changed {
			return nil, nil
		}
		return encode(next)
	})
	if err == nil {
		return nil
	}
	if fnErr != nil && err == fnErr {
		return err
	}
	return fmt.Errorf("update %s: %w: %w", c.key, ErrStoreUnavailable, err)
}

func decode[T any](key string, raw []byte) ([]T, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	return items, nil
}

func encode[T any](items []T) ([]byte, error) {
	if items == nil {
		items = []T{}
	}
	return json.Marshal(items)
}
