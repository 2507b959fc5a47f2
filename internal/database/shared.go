package database

import "sync"

// Shared lets several independent pipelines use one pool and each "close"
// it when done. Every holder calls Release exactly once; the pool is closed
// by the last release, and any further calls do nothing.
type Shared struct {
	DB

	mu     sync.Mutex
	refs   int
	closed bool
}

// Share wraps db for the given number of holders. holders < 1 is treated as 1.
func Share(db DB, holders int) *Shared {
	if holders < 1 {
		holders = 1
	}
	return &Shared{DB: db, refs: holders}
}

// Release drops one reference and reports whether this call closed the pool.
func (s *Shared) Release() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false
	}
	s.refs--
	if s.refs > 0 {
		return false
	}
	s.closed = true
	s.DB.Close()
	return true
}

// Close releases every outstanding reference at once.
func (s *Shared) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.refs = 0
	s.closed = true
	s.DB.Close()
}
