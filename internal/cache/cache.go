// Package cache abstracts the TTL-bounded key-value store that holds
// the serialized conversation history between requests.
package cache

import (
	"context"
	"time"
)

type Cache interface {
	// GetJSON reads key into dst. hit is false on miss or expired entry.
	GetJSON(ctx context.Context, key string, dst any) (hit bool, err error)
	// SetJSON overwrites key with the JSON encoding of val. Whole-value
	// overwrite; concurrent writers race last-write-wins.
	SetJSON(ctx context.Context, key string, val any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}
