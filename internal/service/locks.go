package service

import "sync"

// CajaLocks serializes state-changing operations per physical box. Each caja
// is an independent serialization domain: oficina and cobrador never block
// each other, but open/close/commit/cancel on the same caja must not
// interleave or two commits could both read a stale system total, and two
// opens could race past the one-open-session invariant. Reads (quotes,
// history) never take the lock.
//
// Hold time is bounded by a single ledger write, so a plain mutex per caja is
// enough — no queueing or fairness machinery needed.
type CajaLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewCajaLocks() *CajaLocks {
	return &CajaLocks{locks: make(map[string]*sync.Mutex)}
}

// Of returns the mutex guarding the given caja, creating it on first use.
func (l *CajaLocks) Of(caja string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, ok := l.locks[caja]
	if !ok {
		m = &sync.Mutex{}
		l.locks[caja] = m
	}
	return m
}
