// Package cache provides the byte caches used to store analytics results.
//
// Three backends implement [Cache]:
//
//   - [NullCache] never stores anything and disables caching.
//   - [FileCache] keeps entries as files under a directory, for CLI use.
//   - [RedisCache] keeps entries in Redis so several processes share results.
//
// Keys are derived by a [Keyer]. [DefaultKeyer] hashes the graph content and
// the program options; [ScopedKeyer] prefixes keys for namespace isolation.
package cache

import (
	"context"
	"time"
)

// Cache stores opaque byte values under string keys.
//
// Get reports a miss with ok == false and a nil error. Errors are reserved
// for backend failures. A zero ttl means the entry never expires.
type Cache interface {
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}
