package application

import "sync"

// dateLocks serializes validate-and-commit operations per calendar date.
//
// Every mutation reads the full per-date collection to decide, then writes;
// two concurrent requests for the same date would race between check and act.
// Operations on different dates hold different locks and proceed in parallel.
//
// Entries are never reaped: the map holds one mutex per distinct date string
// seen over the process lifetime, including dates that fail validation after
// the lock is taken. A mutex is a few dozen bytes, so the retention is
// accepted rather than policed.
type dateLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newDateLocks() *dateLocks {
	return &dateLocks{locks: make(map[string]*sync.Mutex)}
}

func (l *dateLocks) forDate(date string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()

	lock, ok := l.locks[date]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[date] = lock
	}
	return lock
}

// lock acquires the lock for one date and returns the release function.
func (l *dateLocks) lock(date string) func() {
	lock := l.forDate(date)
	lock.Lock()
	return lock.Unlock
}

// lockPair acquires locks for two dates in lexicographic order so that
// concurrent cross-date edits cannot deadlock. Equal dates lock once.
func (l *dateLocks) lockPair(a, b string) func() {
	if a == b {
		return l.lock(a)
	}
	if b < a {
		a, b = b, a
	}
	first := l.forDate(a)
	second := l.forDate(b)
	first.Lock()
	second.Lock()
	return func() {
		second.Unlock()
		first.Unlock()
	}
}
