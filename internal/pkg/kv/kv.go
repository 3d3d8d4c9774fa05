// Package kv provides the durable key-value facility that backs per-device
// state such as the logged-in user record. Every backend partitions its data
// by device so two browser profiles never observe each other's entries.
package kv

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound is returned by Store.Get when the key has no value.
var ErrNotFound = errors.New("kv: key not found")

// Store is the key-value view of a single device.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	// Remove deletes key. Removing a missing key is not an error.
	Remove(ctx context.Context, key string) error
}

// Backend hands out device-scoped stores over one shared connection.
type Backend interface {
	ForDevice(deviceID uuid.UUID) Store
	Ping(ctx context.Context) error
	Close() error
}
