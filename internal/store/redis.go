package store

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// Redis stores each collection under "<prefix>:<key>".  Update uses
// WATCH/MULTI/EXEC so the write only lands when nobody touched the key
// since it was read.
type Redis struct {
	rdb        *redis.Client
	prefix     string
	maxRetries int
}

// NewRedis wraps an existing client.  maxRetries <= 0 selects
// DefaultMaxRetries.
func NewRedis(rdb *redis.Client, prefix string, maxRetries int) *Redis {
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}
	return &Redis{rdb: rdb, prefix: prefix, maxRetries: maxRetries}
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	bs, err := r.rdb.Get(ctx, namespaced(r.prefix, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	return bs, err
}

func (r *Redis) Set(ctx context.Context, key string, value []byte) error {
	return r.rdb.Set(ctx, namespaced(r.prefix, key), value, 0).Err()
}

func (r *Redis) Update(ctx context.Context, key string, fn UpdateFunc) error {
	full := namespaced(r.prefix, key)
	txf := func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, full).Bytes()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		next, err := fn(cur)
		if err != nil {
			return err
		}
		if next == nil {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, full, next, 0)
			return nil
		})
		return err
	}
	for i := 0; i < r.maxRetries; i++ {
		err := r.rdb.Watch(ctx, txf, full)
		if errors.Is(err, redis.TxFailedErr) {
			continue // key changed between read and exec
		}
		return err
	}
	return ErrConflict
}
