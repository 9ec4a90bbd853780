package ioqueue

import (
	"net"

	"kvfabric/internal/sga"
)

// Service is C6: the per-worker namespace of queue descriptors and the
// token-minting authority for everything that worker issues. A Service is
// owned by exactly one goroutine for its entire life -- the single
// cooperative scheduler per service unit the spec requires -- so none of
// its bookkeeping is synchronized.
type Service struct {
	nextQD  int
	nextSeq uint64

	queues      map[QD]Queue
	tokenQD     map[Token]QD
	startOffset int // rotated by WaitAny so earlier tokens don't starve later ones
}

// NewService returns an empty Service with no queues and no minted tokens.
func NewService() *Service {
	return &Service{
		queues:  map[QD]Queue{},
		tokenQD: map[Token]QD{},
	}
}

func (s *Service) mintQD() QD {
	s.nextQD++
	return QD(s.nextQD)
}

func (s *Service) mintToken(isPush bool) Token {
	s.nextSeq++
	return newToken(s.nextSeq, isPush)
}

// Socket allocates a queue descriptor for a not-yet-bound network queue.
func (s *Service) Socket() QD {
	qd := s.mintQD()
	s.queues[qd] = newNetworkQueue(qd, s)
	return qd
}

// Bind records the address a socket will later Listen on.
func (s *Service) Bind(qd QD, addr string) error {
	nq, ok := s.queues[qd].(*NetworkQueue)
	if !ok {
		return ErrNoPeer
	}
	return nq.bind(addr)
}

// Listen starts accepting connections on a bound socket.
func (s *Service) Listen(qd QD, backlog int) error {
	nq, ok := s.queues[qd].(*NetworkQueue)
	if !ok {
		return ErrNoPeer
	}
	return nq.listen(backlog)
}

// Connect dials addr synchronously and attaches the resulting connection
// to qd. Go's net.Dial has no non-blocking variant worth reproducing by
// hand here; the completion is reported through the same Wait/WaitAny
// path as every other operation so callers don't special-case it.
func (s *Service) Connect(qd QD, addr string) (Token, error) {
	nq, ok := s.queues[qd].(*NetworkQueue)
	if !ok {
		return 0, ErrNoPeer
	}
	tok := s.mintToken(false)
	err := nq.connect(addr)
	st := &netOpState{opcode: OpConnect, done: true}
	if err != nil {
		st.err = ErrIOError
	}
	nq.ops[tok] = st
	s.tokenQD[tok] = qd
	return tok, nil
}

// Accept issues an accept against a listening socket. The returned token
// completes once a connection lands; the new connection's queue
// descriptor is minted at that moment, not before.
func (s *Service) Accept(qd QD) (Token, error) {
	nq, ok := s.queues[qd].(*NetworkQueue)
	if !ok {
		return 0, ErrNoPeer
	}
	tok := s.mintToken(false)
	nq.enqueue(tok, &netOpState{opcode: OpAccept})
	s.tokenQD[tok] = qd
	return tok, nil
}

func (s *Service) registerAcceptedConn(conn net.Conn) QD {
	qd := s.mintQD()
	nq := newNetworkQueue(qd, s)
	nq.conn = conn
	s.queues[qd] = nq
	return qd
}

// Push enqueues s for writing (network) or hand-off (shared) on qd.
func (s *Service) Push(qd QD, payload *sga.SGA) (Token, error) {
	q, ok := s.queues[qd]
	if !ok {
		return 0, ErrNoPeer
	}
	tok := s.mintToken(true)
	switch v := q.(type) {
	case *NetworkQueue:
		v.enqueue(tok, &netOpState{opcode: OpPush, req: &pendingRequest{isPush: true, sga: payload}})
	case *SharedQueue:
		v.enqueue(tok, &sharedOpState{opcode: OpPush, push: payload})
	}
	s.tokenQD[tok] = qd
	return tok, nil
}

// Pop enqueues a read (network) or hand-off receive (shared) on qd.
func (s *Service) Pop(qd QD) (Token, error) {
	q, ok := s.queues[qd]
	if !ok {
		return 0, ErrNoPeer
	}
	tok := s.mintToken(false)
	switch v := q.(type) {
	case *NetworkQueue:
		v.enqueue(tok, &netOpState{opcode: OpPop, req: &pendingRequest{isPush: false}})
	case *SharedQueue:
		v.enqueue(tok, &sharedOpState{opcode: OpPop})
	}
	s.tokenQD[tok] = qd
	return tok, nil
}

// SharedQueue allocates a queue descriptor wrapping one peer's directed
// pair of channels: out is this side's push target, in is this side's
// pop source.
func (s *Service) SharedQueue(out, in *SharedChannel) QD {
	qd := s.mintQD()
	s.queues[qd] = newSharedQueue(qd, out, in)
	return qd
}

// Close releases qd and abandons any of its still-pending tokens.
func (s *Service) Close(qd QD) error {
	q, ok := s.queues[qd]
	if !ok {
		return ErrNoPeer
	}
	delete(s.queues, qd)
	for tok, owner := range s.tokenQD {
		if owner == qd {
			delete(s.tokenQD, tok)
		}
	}
	return q.Close()
}
