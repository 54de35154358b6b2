// Package kv provides the durable key/value collaborator the session store
// persists into. Every Store is scoped to a single namespace; Clear removes
// all keys of that namespace and nothing else.
package kv

import (
	"context"
	"errors"
)

// ErrUnknownDriver is returned by Open for an unsupported driver name.
var ErrUnknownDriver = errors.New("unknown store driver")

// Store is a namespaced string key/value store.
type Store interface {
	// Get returns the value for key and whether it was present.
	Get(ctx context.Context, key string) (string, bool, error)
	// Set writes all values. Backends that support transactions apply them
	// atomically.
	Set(ctx context.Context, values map[string]string) error
	// Clear removes every key in the namespace.
	Clear(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}
