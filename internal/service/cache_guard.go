package service

import "sync"

// cacheGuard orders cache refills against write-side invalidation. A refill
// captures the key's generation before reading the store of record; an
// invalidation bumps the generation and deletes the key under the key's
// lock. A refill that lost the race observes the bump and skips its write;
// one that already holds the lock finishes first and its value is deleted
// right after. A cached value can therefore never outlive the write that
// invalidated it.
type cacheGuard struct {
	mu      sync.Mutex
	entries map[string]*guardEntry
}

type guardEntry struct {
	mu  sync.Mutex
	gen uint64
}

func newCacheGuard() *cacheGuard {
	return &cacheGuard{
		entries: make(map[string]*guardEntry),
	}
}

func (g *cacheGuard) entry(key string) *guardEntry {
	g.mu.Lock()
	defer g.mu.Unlock()

	e, exists := g.entries[key]
	if !exists {
		e = &guardEntry{}
		g.entries[key] = e
	}
	return e
}

func (g *cacheGuard) generation(key string) uint64 {
	e := g.entry(key)
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.gen
}

// fill runs set only if the key has not been invalidated since gen was
// captured. The key's lock is held across set; it is per cache key, so
// mutations of unrelated posts never contend here.
func (g *cacheGuard) fill(key string, gen uint64, set func()) {
	e := g.entry(key)
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.gen == gen {
		set()
	}
}

// invalidate bumps the key's generation, then runs del under the key's lock.
func (g *cacheGuard) invalidate(key string, del func()) {
	e := g.entry(key)
	e.mu.Lock()
	defer e.mu.Unlock()

	e.gen++
	del()
}
