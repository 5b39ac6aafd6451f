// Package localcache is the process-local persistent key/value cache that
// holds legacy content written by earlier releases, the migration flag and
// the migration lease. Values are opaque strings.
package localcache

import "time"

// Cache is a string key/value store with localStorage-like semantics:
// reads never fail (a broken backend reads as absent), writes report errors.
type Cache interface {
	GetItem(key string) (string, bool)
	SetItem(key, value string) error
	RemoveItem(key string) error
	Keys() ([]string, error)
}

// Locker is implemented by caches that can store a key atomically only when
// it is absent. A positive ttl expires the key.
type Locker interface {
	SetIfAbsent(key, value string, ttl time.Duration) (bool, error)
}
