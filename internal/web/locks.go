package web

import "sync"

// matchLocks serializes mutating operations per match ID. Operations on
// different matches proceed in parallel; operations on the same match take
// turns, keeping each match a single-writer aggregate.
type matchLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newMatchLocks() *matchLocks {
	return &matchLocks{locks: make(map[string]*sync.Mutex)}
}

// lock acquires the mutex for one match ID and returns its unlock func.
func (l *matchLocks) lock(id string) func() {
	l.mu.Lock()
	m, ok := l.locks[id]
	if !ok {
		m = &sync.Mutex{}
		l.locks[id] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
