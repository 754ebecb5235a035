package engine

import "sync"

// lidLocker serializes same-loyalty-ID requests so the daily counter,
// profile upsert and validation log observe a consistent order. Entries are
// reference counted and dropped as soon as the last holder releases.
type lidLocker struct {
	mu    sync.Mutex
	locks map[string]*lidLock
}

type lidLock struct {
	mu   sync.Mutex
	refs int
}

func newLIDLocker() *lidLocker {
	return &lidLocker{locks: make(map[string]*lidLock)}
}

// Lock blocks until the per-key lock is held and returns the release func.
func (l *lidLocker) Lock(key string) func() {
	l.mu.Lock()
	entry, ok := l.locks[key]
	if !ok {
		entry = &lidLock{}
		l.locks[key] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()

	return func() {
		entry.mu.Unlock()
		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.locks, key)
		}
		l.mu.Unlock()
	}
}
