package server

import "sync/atomic"

// Gate admits at most one viewer at a time across every transport. A
// second connection is turned away instead of queued; the display memory
// walk is expensive enough that two concurrent pumps would starve both.
type Gate struct {
	busy atomic.Bool
}

func NewGate() *Gate {
	return &Gate{}
}

// TryAcquire claims the gate. It returns false when a session already
// holds it.
func (g *Gate) TryAcquire() bool {
	return g.busy.CompareAndSwap(false, true)
}

func (g *Gate) Release() {
	g.busy.Store(false)
}
