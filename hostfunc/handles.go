package hostfunc

import (
	"sync"

	"github.com/caffeineduck/hostbind/hostcall"
)

// handleTable hands out a fresh handle for every open. Handles are never
// reused or interned, and InvalidHandle is never issued.
type handleTable[T any] struct {
	mu      sync.Mutex
	next    uint32
	entries map[hostcall.Handle]T
}

func newHandleTable[T any]() *handleTable[T] {
	return &handleTable[T]{entries: make(map[hostcall.Handle]T)}
}

func (t *handleTable[T]) open(v T) (hostcall.Handle, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	h := hostcall.Handle(t.next)
	if !h.Valid() {
		return hostcall.InvalidHandle, false
	}
	t.next++
	t.entries[h] = v
	return h, true
}

func (t *handleTable[T]) get(h hostcall.Handle) (T, bool) {
	t.mu.Lock()
	v, ok := t.entries[h]
	t.mu.Unlock()
	return v, ok
}

// reset invalidates every issued handle. Numbering continues, so a handle
// from before the reset is never issued again.
func (t *handleTable[T]) reset() {
	t.mu.Lock()
	t.entries = make(map[hostcall.Handle]T)
	t.mu.Unlock()
}
