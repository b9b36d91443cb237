// Package cache stores generated responses for a fixed time so identical
// requests do not hit the model twice.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// DefaultTTL is how long an entry stays valid.
const DefaultTTL = 10 * time.Minute

// DefaultSize bounds the number of entries held in memory.
const DefaultSize = 1024

// Cache is a key/value store whose entries expire after a TTL fixed by the
// implementation. Implementations must be safe for concurrent use.
type Cache interface {
	Get(key string) (any, bool)
	Set(key string, value any)
}

// MakeKey derives a stable key from ordered parts: the first 32 hex digits
// of sha256 over the parts joined by "||".
func MakeKey(parts ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(parts, "||")))
	return hex.EncodeToString(sum[:])[:32]
}

// Memory is an in-process LRU cache with per-entry expiry.
type Memory struct {
	lru *expirable.LRU[string, any]
}

// NewMemory creates a Memory cache holding at most size entries for ttl each.
// Non-positive arguments fall back to DefaultSize and DefaultTTL.
func NewMemory(size int, ttl time.Duration) *Memory {
	if size <= 0 {
		size = DefaultSize
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Memory{lru: expirable.NewLRU[string, any](size, nil, ttl)}
}

// Get returns the live value stored under key.
func (m *Memory) Get(key string) (any, bool) {
	return m.lru.Get(key)
}

// Set stores value under key, replacing any previous value.
func (m *Memory) Set(key string, value any) {
	m.lru.Add(key, value)
}

// Len returns the number of live entries.
func (m *Memory) Len() int {
	return m.lru.Len()
}

// Nop never stores anything.
type Nop struct{}

func (Nop) Get(string) (any, bool) { return nil, false }
func (Nop) Set(string, any)        {}
