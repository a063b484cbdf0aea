/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: ttl.go
Description: Expiring in-memory store for long running extraction services.
*/

package cache

import (
	"time"

	"github.com/FloatTech/ttl"
)

// DefaultTTL is used when no expiry is configured
const DefaultTTL = 24 * time.Hour

type ttlEntry[V any] struct {
	value V
}

// TTLStore forgets entries after a fixed duration. Entries are boxed so that a cached
// zero value is told apart from a miss.
type TTLStore[V any] struct {
	cache *ttl.Cache[string, *ttlEntry[V]]
}

// NewTTLStore creates a store whose entries live for d
func NewTTLStore[V any](d time.Duration) *TTLStore[V] {
	if d <= 0 {
		d = DefaultTTL
	}
	return &TTLStore[V]{cache: ttl.NewCache[string, *ttlEntry[V]](d)}
}

func (s *TTLStore[V]) Get(key string) (V, bool) {
	entry := s.cache.Get(key)
	if entry == nil {
		var zero V
		return zero, false
	}
	return entry.value, true
}

func (s *TTLStore[V]) Set(key string, value V) {
	s.cache.Set(key, &ttlEntry[V]{value: value})
}
