package kvstore

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Memory is an in-process Store holding at most a fixed number of keys.
// The least recently used key is evicted first. It is safe for concurrent
// use.
type Memory struct {
	cache *lru.Cache[string, string]
}

// NewMemory creates a store holding up to size keys.
func NewMemory(size int) (*Memory, error) {
	c, err := lru.New[string, string](size)
	if err != nil {
		return nil, fmt.Errorf("kvstore: memory store: %w", err)
	}
	return &Memory{cache: c}, nil
}

// Get returns the value for key, or ErrMiss.
func (m *Memory) Get(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	v, ok := m.cache.Get(key)
	if !ok {
		return "", ErrMiss
	}
	return v, nil
}

// Set stores value under key.
func (m *Memory) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.cache.Add(key, value)
	return nil
}

// Delete removes key.
func (m *Memory) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.cache.Remove(key)
	return nil
}

// Len returns the number of keys held.
func (m *Memory) Len() int {
	return m.cache.Len()
}
