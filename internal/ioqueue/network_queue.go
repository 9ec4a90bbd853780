package ioqueue

import (
	"errors"
	"net"
	"time"

	"kvfabric/internal/sga"
)

// netOpState is one in-flight operation against a NetworkQueue: either an
// accept, a connect, or a push/pop carried by a pendingRequest.
type netOpState struct {
	opcode Opcode
	req    *pendingRequest

	// accept/connect fields (push/pop progress lives in req)
	done bool
	qd   QD
	addr net.Addr
	err  error
}

// NetworkQueue wraps a single net.Conn, or a single net.Listener before
// any connection exists. It is the socket half of C3. A deadline one
// microsecond ahead is set immediately before every syscall, turning the
// runtime netpoller into the readiness facility: a call that would
// otherwise block instead fails fast as a timeout, which
// decodeStep/encodeStep and the accept path treat as "would block" and
// resume on the next poll.
type NetworkQueue struct {
	qd       QD
	addr     string
	conn     net.Conn
	listener net.Listener
	svc      *Service

	workQueue []Token
	ops       map[Token]*netOpState
}

func newNetworkQueue(qd QD, svc *Service) *NetworkQueue {
	return &NetworkQueue{qd: qd, svc: svc, ops: map[Token]*netOpState{}}
}

func (nq *NetworkQueue) QD() QD             { return nq.qd }
func (nq *NetworkQueue) Category() Category { return CategoryNetwork }

func (nq *NetworkQueue) bind(addr string) error {
	nq.addr = addr
	return nil
}

func (nq *NetworkQueue) listen(backlog int) error {
	ln, err := net.Listen("tcp", nq.addr)
	if err != nil {
		return err
	}
	nq.listener = ln
	return nil
}

func (nq *NetworkQueue) connect(addr string) error {
	conn, err := net.DialTimeout("tcp", addr, 5*time.Second)
	if err != nil {
		return err
	}
	nq.conn = conn
	return nil
}

func (nq *NetworkQueue) enqueue(tok Token, st *netOpState) {
	nq.ops[tok] = st
	nq.workQueue = append(nq.workQueue, tok)
	if nq.workQueue[0] == tok {
		nq.poll()
	}
}

// poll services the front-of-work-queue token by one step, leaving an
// incomplete head token in place for the next call to resume.
func (nq *NetworkQueue) poll() {
	if len(nq.workQueue) == 0 {
		return
	}
	tok := nq.workQueue[0]
	st, ok := nq.ops[tok]
	if !ok {
		nq.workQueue = nq.workQueue[1:]
		return
	}

	switch st.opcode {
	case OpAccept:
		nq.stepAccept(st)
	case OpPush:
		encodeStep(nq.conn, st.req)
	case OpPop:
		decodeStep(nq.conn, st.req)
	}

	if nq.opDone(st) {
		nq.workQueue = nq.workQueue[1:]
	}
}

func (nq *NetworkQueue) opDone(st *netOpState) bool {
	if st.req != nil {
		return st.req.done
	}
	return st.done
}

func (nq *NetworkQueue) stepAccept(st *netOpState) {
	if tl, ok := nq.listener.(*net.TCPListener); ok {
		tl.SetDeadline(time.Now().Add(time.Microsecond))
	}
	conn, err := nq.listener.Accept()
	if err != nil {
		if isWouldBlock(err) {
			return
		}
		st.done = true
		if errors.Is(err, net.ErrClosed) {
			st.err = ErrConnAborted
		} else {
			st.err = ErrIOError
		}
		return
	}
	newQD := nq.svc.registerAcceptedConn(conn)
	st.done = true
	st.qd = newQD
	st.addr = conn.RemoteAddr()
}

func (nq *NetworkQueue) status(tok Token) (bool, Result, error, bool) {
	st, ok := nq.ops[tok]
	if !ok {
		return false, Result{}, nil, false
	}

	if st.req == nil { // accept or connect
		if !st.done {
			return false, Result{}, nil, true
		}
		if st.err != nil {
			return true, Result{}, st.err, true
		}
		return true, Result{QD: nq.qd, Token: tok, Opcode: st.opcode, AcceptedQD: st.qd, AcceptedAddr: st.addr}, nil, true
	}

	req := st.req
	if !req.done {
		return false, Result{}, nil, true
	}
	if req.err != nil {
		return true, Result{}, req.err, true
	}
	var s *sga.SGA
	if st.opcode == OpPop {
		s = req.resultSGA
	}
	return true, Result{QD: nq.qd, Token: tok, Opcode: st.opcode, SGA: s}, nil, true
}

func (nq *NetworkQueue) Close() error {
	if nq.conn != nil {
		return nq.conn.Close()
	}
	if nq.listener != nil {
		return nq.listener.Close()
	}
	return nil
}
