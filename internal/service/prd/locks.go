package prd

import "sync"

// DocumentLocks serialises writers per document within this process. The
// document and conversation services share one instance so edits and
// exchanges on the same document never interleave.
type DocumentLocks struct {
	mu    sync.Mutex
	locks map[string]*refLock
}

type refLock struct {
	mu   sync.Mutex
	refs int
}

// NewDocumentLocks creates an empty lock set
func NewDocumentLocks() *DocumentLocks {
	return &DocumentLocks{locks: make(map[string]*refLock)}
}

// lock blocks until id is free and returns the matching unlock
func (l *DocumentLocks) lock(id string) func() {
	l.mu.Lock()
	lk, ok := l.locks[id]
	if !ok {
		lk = &refLock{}
		l.locks[id] = lk
	}
	lk.refs++
	l.mu.Unlock()

	lk.mu.Lock()
	return func() {
		lk.mu.Unlock()
		l.mu.Lock()
		lk.refs--
		if lk.refs == 0 {
			delete(l.locks, id)
		}
		l.mu.Unlock()
	}
}
