package booking

import (
	"context"
	"sort"
	"sync"

	"golang.org/x/sync/semaphore"
)

type lockEntry struct {
	sem  *semaphore.Weighted
	refs int
}

// keyedLocks hands out one exclusive lock per key. Entries are dropped once
// nobody holds or waits for them.
type keyedLocks struct {
	mu      sync.Mutex
	entries map[string]*lockEntry
}

func newKeyedLocks() *keyedLocks {
	return &keyedLocks{entries: make(map[string]*lockEntry)}
}

// Acquire locks every key in sorted order. It gives up when ctx is done and
// releases whatever it already holds.
func (l *keyedLocks) Acquire(ctx context.Context, keys ...string) (func(), error) {
	sorted := append([]string(nil), keys...)
	sort.Strings(sorted)

	held := make([]string, 0, len(sorted))
	release := func() {
		for i := len(held) - 1; i >= 0; i-- {
			l.unlock(held[i])
		}
	}

	for _, k := range sorted {
		if len(held) > 0 && held[len(held)-1] == k {
			continue
		}
		if err := l.lock(ctx, k); err != nil {
			release()
			return nil, err
		}
		held = append(held, k)
	}
	return release, nil
}

func (l *keyedLocks) lock(ctx context.Context, key string) error {
	l.mu.Lock()
	e, ok := l.entries[key]
	if !ok {
		e = &lockEntry{sem: semaphore.NewWeighted(1)}
		l.entries[key] = e
	}
	e.refs++
	l.mu.Unlock()

	if err := e.sem.Acquire(ctx, 1); err != nil {
		l.deref(key, e)
		return err
	}
	return nil
}

func (l *keyedLocks) unlock(key string) {
	l.mu.Lock()
	e := l.entries[key]
	l.mu.Unlock()

	e.sem.Release(1)
	l.deref(key, e)
}

func (l *keyedLocks) deref(key string, e *lockEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(l.entries, key)
	}
}

func (l *keyedLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
