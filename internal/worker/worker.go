// Package worker implements the abstract setup/dequeue/work lifecycle
// every worker thread runs, and its two concrete specializations:
// NetWorker (speaks TCP, dispatches) and StoreWorker (executes KV
// commands).
package worker

import "kvfabric/internal/ioqueue"

// Worker is the subclass-specified half of the runtime loop. Setup runs
// once; Dequeue/Work alternate until the Runtime is stopped. Returning
// ioqueue.ErrAgain from Dequeue is a legal no-op, not a failure.
type Worker interface {
	Setup(svc *ioqueue.Service) error
	Dequeue(svc *ioqueue.Service) (ioqueue.Result, error)
	Work(svc *ioqueue.Service, res ioqueue.Result) error
}

// PeerSet is a thin handle over a worker's Service, used only at
// topology-construction time by RegisterPeers, before any worker is
// launched.
type PeerSet struct {
	svc *ioqueue.Service
}

// NewPeerSet wraps svc for use with RegisterPeers.
func NewPeerSet(svc *ioqueue.Service) *PeerSet {
	return &PeerSet{svc: svc}
}

// RegisterPeers allocates the two directed shared channels connecting a
// and b, and wires a shared queue descriptor on each side: aQD is a's
// handle to push toward b and pop from b; bQD is the mirror image. This
// breaks the cyclic NetWorker/StoreWorker reference the original
// expressed as raw peer pointers -- each side holds only the channel
// endpoints it uses, neither owns the other.
func RegisterPeers(a, b *PeerSet) (aQD, bQD ioqueue.QD) {
	aInbound := ioqueue.NewSharedChannel() // b pushes here, a pops here
	bInbound := ioqueue.NewSharedChannel() // a pushes here, b pops here

	aQD = a.svc.SharedQueue(bInbound, aInbound)
	bQD = b.svc.SharedQueue(aInbound, bInbound)
	return aQD, bQD
}
