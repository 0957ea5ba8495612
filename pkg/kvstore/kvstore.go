// Package kvstore provides string-only key/value stores for serialized
// values: a Redis backend and a bounded in-memory backend.
package kvstore

import (
	"context"
	"errors"
)

// ErrMiss is returned by Get when the key does not exist. Callers use
// errors.Is(err, kvstore.ErrMiss) to tell a miss from a backend failure.
var ErrMiss = errors.New("kvstore: miss")

// Store holds string values under string keys.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}
