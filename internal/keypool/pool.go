// Package keypool spreads model requests across several API keys.
package keypool

import (
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
)

// Pool hands out API keys using atomic round-robin selection.
type Pool struct {
	keys    []string
	counter atomic.Uint64
}

// New creates a Pool from a list of keys. Blank entries are dropped and at
// least one key is required.
func New(keys []string) (*Pool, error) {
	var clean []string
	for _, k := range keys {
		if k = strings.TrimSpace(k); k != "" {
			clean = append(clean, k)
		}
	}
	if len(clean) == 0 {
		return nil, fmt.Errorf("key pool: at least one API key is required")
	}
	slog.Info("key pool initialised", "keys", len(clean))
	return &Pool{keys: clean}, nil
}

// Next returns the next key. It is safe for concurrent use.
func (p *Pool) Next() string {
	idx := p.counter.Add(1) - 1
	return p.keys[idx%uint64(len(p.keys))]
}

// Len returns the number of keys in the pool.
func (p *Pool) Len() int {
	return len(p.keys)
}
