// Package cache defines the small document cache used for service metadata.
// Capability documents change rarely but are consulted on every service
// attachment; callers plug in a backend to avoid refetching them.
package cache

import (
	"context"
	"time"
)

// Item is a stored document with its lifetime metadata.
type Item struct {
	Data      []byte
	CreatedAt time.Time
	ExpiresAt *time.Time // nil = no expiration
}

// Expired reports whether the item's lifetime has passed.
func (it *Item) Expired() bool {
	return it.ExpiresAt != nil && time.Now().After(*it.ExpiresAt)
}

// Store is the cache backend contract.
//
// Implementations
//
//	memory : in-process LRU, the default for single-process clients
//	redis  : shared cache for fleets of clients hitting the same services
type Store interface {
	// Get returns the item for key, or nil when absent or expired. Errors
	// are reserved for backend failures.
	Get(ctx context.Context, key string) (*Item, error)

	// Set stores data under key. A zero ttl stores without expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}
