package cache

import (
	"context"

	gocache "github.com/patrickmn/go-cache"
)

// Memory is an unbounded process-local cache. Entries never expire and are
// only removed by Delete or Close, so memory grows with every distinct key.
type Memory struct {
	c *gocache.Cache
}

func NewMemory() *Memory {
	// a zero cleanup interval disables the janitor goroutine
	return &Memory{c: gocache.New(gocache.NoExpiration, 0)}
}

func (m *Memory) Has(_ context.Context, key string) bool {
	_, ok := m.c.Get(key)
	return ok
}

func (m *Memory) Get(_ context.Context, key string) (string, bool) {
	v, ok := m.c.Get(key)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func (m *Memory) Set(_ context.Context, key, value string) {
	m.c.Set(key, value, gocache.NoExpiration)
}

func (m *Memory) Delete(_ context.Context, keys ...string) {
	for _, k := range keys {
		m.c.Delete(k)
	}
}

// Len reports the number of entries held.
func (m *Memory) Len() int { return m.c.ItemCount() }

func (m *Memory) Close() error {
	m.c.Flush()
	return nil
}
