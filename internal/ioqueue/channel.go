package ioqueue

import (
	"sync/atomic"

	"kvfabric/internal/sga"
)

// SharedChannel is a single-slot SPSC hand-off of one *sga.SGA at a time.
// Exactly one goroutine pushes, exactly one pops; the slot is a lock-free
// atomic pointer rather than a mutex-guarded field, matching the spec's
// "lock-free, bounded" requirement for C2.
//
// Ownership transfers from producer to consumer at the moment TryPush
// returns true: the producer must not touch the SGA or its segment
// buffers again.
type SharedChannel struct {
	slot atomic.Pointer[sga.SGA]
}

// NewSharedChannel returns an empty channel.
func NewSharedChannel() *SharedChannel {
	return &SharedChannel{}
}

// TryPush attempts to place s in the slot. It fails (returns false) if an
// element is already present -- the "full" case in the spec.
func (c *SharedChannel) TryPush(s *sga.SGA) bool {
	return c.slot.CompareAndSwap(nil, s)
}

// TryPop attempts to remove whatever is in the slot. It fails (returns
// nil, false) if the slot is empty -- the "empty" case in the spec.
func (c *SharedChannel) TryPop() (*sga.SGA, bool) {
	for {
		cur := c.slot.Load()
		if cur == nil {
			return nil, false
		}
		if c.slot.CompareAndSwap(cur, nil) {
			return cur, true
		}
	}
}
