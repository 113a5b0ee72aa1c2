// Package credential manages the per-backend pools of API keys.
//
// A Pool hands out keys round-robin and drops keys that a backend reported as
// exhausted or invalid. Pools are process-local and rebuilt on every start.
package credential

import (
	"strings"
	"sync"
)

// Pool is an ordered set of unique credentials with a round-robin cursor.
// It is safe for concurrent use.
type Pool struct {
	mu      sync.Mutex
	keys    []string
	current int
}

// Load parses a comma-separated credential list. Entries are trimmed, empty
// entries dropped and duplicates collapsed while keeping the first occurrence.
func Load(source string) *Pool {
	return New(strings.Split(source, ","))
}

// New builds a pool from already split credentials.
func New(keys []string) *Pool {
	seen := make(map[string]struct{}, len(keys))
	p := &Pool{keys: make([]string, 0, len(keys))}
	for _, k := range keys {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		p.keys = append(p.keys, k)
	}
	return p
}

// Next returns the credential under the cursor and advances the cursor.
// It returns false when the pool is empty.
func (p *Pool) Next() (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.keys) == 0 {
		return "", false
	}

	key := p.keys[p.current]
	p.current = (p.current + 1) % len(p.keys)
	return key, true
}

// Evict removes key from the pool. It reports whether the key was present;
// evicting an absent key is a no-op.
func (p *Pool) Evict(key string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i, k := range p.keys {
		if k != key {
			continue
		}
		p.keys = append(p.keys[:i], p.keys[i+1:]...)
		if i < p.current {
			p.current--
		}
		if p.current >= len(p.keys) {
			p.current = 0
		}
		return true
	}
	return false
}

// Len returns the number of usable credentials.
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.keys)
}

// Mask shortens a credential for logging.
func Mask(key string) string {
	if len(key) <= 4 {
		return "****"
	}
	return "…" + key[len(key)-4:]
}
