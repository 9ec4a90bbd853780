package worker

import (
	"errors"
	"sync"
	"sync/atomic"

	"kvfabric/internal/ioqueue"
	"kvfabric/internal/logger"
)

// Runtime drives any Worker through launch -> setup() -> loop{dequeue ->
// work} -> exit. It is the generic stand-in for what the original
// expressed as an abstract base class: one driver struct, any Worker
// implementation plugged in via the interface.
type Runtime struct {
	name string
	w    Worker
	svc  *ioqueue.Service

	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
	exited   atomic.Bool
}

// NewRuntime returns a Runtime driving w over svc. svc is created by the
// caller -- rather than by Runtime itself -- because topology
// construction (RegisterPeers) needs each side's Service to exist before
// its Worker can be built with the resulting queue descriptors. Once
// handed to Runtime, svc must never be touched by any other goroutine.
func NewRuntime(name string, svc *ioqueue.Service, w Worker) *Runtime {
	return &Runtime{
		name: name,
		w:    w,
		svc:  svc,
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
}

// Service returns the Runtime's Service, for use by topology-construction
// code (RegisterPeers) before Launch is called.
func (r *Runtime) Service() *ioqueue.Service { return r.svc }

// Launch starts Run on a new goroutine -- the Go stand-in for spawning a
// pinned OS thread; see DESIGN.md for why CPU pinning itself is dropped.
func (r *Runtime) Launch() {
	go r.Run()
}

// Run executes setup() once, then the dequeue/work loop until Stop is
// called. It is exported so tests can run a Worker synchronously without
// a goroutine.
func (r *Runtime) Run() {
	defer close(r.done)
	defer r.exited.Store(true)

	if err := r.w.Setup(r.svc); err != nil {
		logger.Error("worker[%s]: setup failed: %v", r.name, err)
		return
	}

	for {
		select {
		case <-r.stop:
			return
		default:
		}

		res, err := r.w.Dequeue(r.svc)
		if err != nil {
			if errors.Is(err, ioqueue.ErrAgain) {
				continue
			}
			logger.Error("worker[%s]: dequeue error: %v", r.name, err)
			continue
		}

		if err := r.w.Work(r.svc, res); err != nil {
			logger.Error("worker[%s]: work error: %v", r.name, err)
		}
	}
}

// Stop requests the loop exit at its next iteration boundary. Idempotent:
// a second call is a no-op rather than a panic on an already-closed
// channel.
func (r *Runtime) Stop() {
	r.stopOnce.Do(func() { close(r.stop) })
}

// Join blocks until Run has returned.
func (r *Runtime) Join() {
	<-r.done
}

// HasExited reports whether Run has returned.
func (r *Runtime) HasExited() bool {
	return r.exited.Load()
}
