package memory

import (
	"bytes"
	"context"
	"sync"

	"github.com/xenking/velostore/internal/domain/cart"
)

var _ cart.Storage = (*KV)(nil)

// KV is an in-process cart storage. Values do not survive a restart.
type KV struct {
	mu     sync.RWMutex
	values map[string][]byte
}

// NewKV creates an empty KV.
func NewKV() *KV {
	return &KV{values: make(map[string][]byte)}
}

// Get implements cart.Storage.
func (kv *KV) Get(_ context.Context, key string) ([]byte, error) {
	kv.mu.RLock()
	defer kv.mu.RUnlock()

	v, ok := kv.values[key]
	if !ok {
		return nil, cart.ErrNotStored
	}
	return bytes.Clone(v), nil
}

// Set implements cart.Storage.
func (kv *KV) Set(_ context.Context, key string, value []byte) error {
	kv.mu.Lock()
	defer kv.mu.Unlock()

	kv.values[key] = bytes.Clone(value)
	return nil
}

// Ping always succeeds.
func (kv *KV) Ping(context.Context) error {
	return nil
}
