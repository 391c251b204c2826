package cache

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// LRU bounds the cache to a fixed number of entries, evicting the least
// recently used one on overflow. An evicted key simply misses on the next read.
type LRU struct {
	c *lru.Cache[string, string]
}

func NewLRU(size int) (*LRU, error) {
	c, err := lru.New[string, string](size)
	if err != nil {
		return nil, fmt.Errorf("lru cache: %w", err)
	}
	return &LRU{c: c}, nil
}

func (l *LRU) Has(_ context.Context, key string) bool { return l.c.Contains(key) }

func (l *LRU) Get(_ context.Context, key string) (string, bool) { return l.c.Get(key) }

func (l *LRU) Set(_ context.Context, key, value string) { l.c.Add(key, value) }

func (l *LRU) Delete(_ context.Context, keys ...string) {
	for _, k := range keys {
		l.c.Remove(k)
	}
}

func (l *LRU) Len() int { return l.c.Len() }

func (l *LRU) Close() error {
	l.c.Purge()
	return nil
}
