// Package cache provides a TTL cache of msgpack-encoded values.
//
// Values are stored encoded so a cached entry can never alias memory owned by
// a caller: every Get decodes a fresh copy.
package cache

import (
	"bytes"
	"fmt"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

type entry struct {
	data []byte
	exp  time.Time
}

// Stats reports cache effectiveness.
type Stats struct {
	Entries int    `json:"entries"`
	Hits    uint64 `json:"hits"`
	Misses  uint64 `json:"misses"`
}

// Cache is a concurrency-safe TTL cache of T values.
type Cache[T any] struct {
	mu     sync.RWMutex
	m      map[string]entry
	ttl    time.Duration
	now    func() time.Time
	hits   uint64
	misses uint64
}

// New creates a cache whose entries expire after ttl.
func New[T any](ttl time.Duration) *Cache[T] {
	return &Cache[T]{
		m:   make(map[string]entry),
		ttl: ttl,
		now: time.Now,
	}
}

// SetClock replaces the clock used for expiry. Intended for tests.
func (c *Cache[T]) SetClock(now func() time.Time) {
	c.mu.Lock()
	c.now = now
	c.mu.Unlock()
}

// Get returns a decoded copy of the value stored under key.
func (c *Cache[T]) Get(key string) (T, bool) {
	var zero T

	c.mu.RLock()
	e, ok := c.m[key]
	now := c.now()
	c.mu.RUnlock()

	if !ok || now.After(e.exp) {
		c.mu.Lock()
		c.misses++
		c.mu.Unlock()
		return zero, false
	}

	var v T
	if err := decode(e.data, &v); err != nil {
		c.mu.Lock()
		delete(c.m, key)
		c.misses++
		c.mu.Unlock()
		return zero, false
	}

	c.mu.Lock()
	c.hits++
	c.mu.Unlock()
	return v, true
}

// Set encodes v and stores it under key.
func (c *Cache[T]) Set(key string, v T) error {
	data, err := encode(v)
	if err != nil {
		return fmt.Errorf("failed to encode cache entry: %w", err)
	}

	c.mu.Lock()
	c.m[key] = entry{data: data, exp: c.now().Add(c.ttl)}
	c.mu.Unlock()
	return nil
}

// Purge drops expired entries and returns how many were removed.
func (c *Cache[T]) Purge() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for key, e := range c.m {
		if now.After(e.exp) {
			delete(c.m, key)
			removed++
		}
	}
	return removed
}

// Stats returns a snapshot of the cache counters.
func (c *Cache[T]) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Stats{Entries: len(c.m), Hits: c.hits, Misses: c.misses}
}

// encode and decode use json struct tags so cached values share field names
// with the HTTP payload.
func encode(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetCustomStructTag("json")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decode(data []byte, v interface{}) error {
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	dec.SetCustomStructTag("json")
	return dec.Decode(v)
}
