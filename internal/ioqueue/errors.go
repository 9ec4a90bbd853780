package ioqueue

import "errors"

// Sentinel errors surfaced through the queue API. The scheduler absorbs
// none of them: a completed operation's error, ErrConnAborted included,
// is returned from Wait/WaitAny and carried in Result.Err, and the Worker
// decides how to react. The scheduler never returns ErrAgain; a Worker's
// Dequeue returns it when no token completed.
var (
	// ErrAgain means the operation is not yet ready; retry via the scheduler.
	ErrAgain = errors.New("ioqueue: would block")
	// ErrConnAborted means accept or I/O hit a closed/reset connection.
	ErrConnAborted = errors.New("ioqueue: connection aborted")
	// ErrBadFrame means the decoder saw the wrong magic value.
	ErrBadFrame = errors.New("ioqueue: bad frame magic")
	// ErrIOError means a socket error other than would-block occurred.
	ErrIOError = errors.New("ioqueue: io error")
	// ErrNoPeer means push/pop referenced an unregistered queue descriptor.
	ErrNoPeer = errors.New("ioqueue: no such queue descriptor")
	// ErrInvalidToken means Wait/WaitAny was called with an unknown token.
	// This is a programmer error and is never returned normally -- see
	// (*Service).Wait, which panics instead.
	ErrInvalidToken = errors.New("ioqueue: invalid token")
)
