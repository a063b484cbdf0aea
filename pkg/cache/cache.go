/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: cache.go
Description: Key value caches for OCR and translation results. Recomputation is idempotent so
every store is last write wins; all stores are safe for concurrent use.
*/

package cache

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/syndtr/goleveldb/leveldb"
)

// Store caches values by string key
type Store[V any] interface {
	Get(key string) (V, bool)
	Set(key string, value V)
}

// Backend names a store implementation
type Backend string

const (
	BackendMemory  Backend = "memory"
	BackendTTL     Backend = "ttl"
	BackendLevelDB Backend = "leveldb"
	BackendNone    Backend = "none"
)

// ParseBackend validates a backend name
func ParseBackend(s string) (Backend, error) {
	switch b := Backend(strings.ToLower(strings.TrimSpace(s))); b {
	case BackendMemory, BackendTTL, BackendLevelDB, BackendNone:
		return b, nil
	case "":
		return BackendMemory, nil
	default:
		return "", fmt.Errorf("unknown cache backend: %s", s)
	}
}

// MemoryStore is an unbounded map guarded by a RWMutex
type MemoryStore[V any] struct {
	mu    sync.RWMutex
	items map[string]V
}

// NewMemoryStore creates an empty memory store
func NewMemoryStore[V any]() *MemoryStore[V] {
	return &MemoryStore[V]{items: make(map[string]V)}
}

func (s *MemoryStore[V]) Get(key string) (V, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.items[key]
	return v, ok
}

func (s *MemoryStore[V]) Set(key string, value V) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[key] = value
}

// Len returns the number of cached entries
func (s *MemoryStore[V]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// NopStore never remembers anything
type NopStore[V any] struct{}

func (NopStore[V]) Get(string) (V, bool) {
	var zero V
	return zero, false
}

func (NopStore[V]) Set(string, V) {}

// Factory hands out stores of one backend. LevelDB stores share a single database
// and are separated by key namespace.
type Factory struct {
	backend Backend
	ttl     time.Duration
	db      *leveldb.DB
	logger  *logrus.Logger
}

// NewFactory prepares a factory; dir is only used by the leveldb backend
func NewFactory(backend Backend, dir string, ttl time.Duration, logger *logrus.Logger) (*Factory, error) {
	f := &Factory{backend: backend, ttl: ttl, logger: logger}
	if backend == BackendLevelDB {
		if dir == "" {
			return nil, fmt.Errorf("leveldb cache requires a directory")
		}
		db, err := leveldb.OpenFile(dir, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to open cache database: %w", err)
		}
		f.db = db
	}
	return f, nil
}

// Backend returns the backend of the factory
func (f *Factory) Backend() Backend {
	return f.backend
}

// Close releases the underlying database, if any
func (f *Factory) Close() error {
	if f.db == nil {
		return nil
	}
	return f.db.Close()
}

// Make creates a store for namespace
func Make[V any](f *Factory, namespace string) Store[V] {
	switch f.backend {
	case BackendTTL:
		return NewTTLStore[V](f.ttl)
	case BackendLevelDB:
		return NewLevelDBStore[V](f.db, namespace, f.logger)
	case BackendNone:
		return NopStore[V]{}
	default:
		return NewMemoryStore[V]()
	}
}
