// Package wireclient is a small synchronous client for the same
// length-prefixed frame protocol internal/ioqueue speaks on the server
// side. It exists for the CLI's client subcommand and for integration
// tests; the original never needed an equivalent because its benchmark
// client lived outside the retrieved source.
package wireclient

import (
	"fmt"

	"kvfabric/internal/ioqueue"
	"kvfabric/internal/sga"
)

// Send dials addr, frames one request carrying segments, waits for the
// reply frame, and returns its segments. It drives the same Service and
// framing code the server's NetWorker runs on, just synchronously from a
// single call instead of a dequeue/work loop.
func Send(addr string, segments [][]byte) ([][]byte, error) {
	svc := ioqueue.NewService()
	qd := svc.Socket()

	connTok, err := svc.Connect(qd, addr)
	if err != nil {
		return nil, fmt.Errorf("wireclient: connect: %w", err)
	}
	if _, err := svc.Wait(connTok); err != nil {
		return nil, fmt.Errorf("wireclient: connect: %w", err)
	}

	req := sga.New(segments...)
	pushTok, err := svc.Push(qd, req)
	if err != nil {
		return nil, fmt.Errorf("wireclient: push: %w", err)
	}
	if _, err := svc.Wait(pushTok); err != nil {
		return nil, fmt.Errorf("wireclient: push: %w", err)
	}

	popTok, err := svc.Pop(qd)
	if err != nil {
		return nil, fmt.Errorf("wireclient: pop: %w", err)
	}
	res, err := svc.Wait(popTok)
	if err != nil {
		svc.Close(qd)
		return nil, fmt.Errorf("wireclient: pop: %w", err)
	}
	svc.Close(qd)

	out := make([][]byte, len(res.SGA.Segments))
	for i, seg := range res.SGA.Segments {
		out[i] = seg.Buf
	}
	return out, nil
}
