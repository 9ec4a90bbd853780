package ioqueue

import "kvfabric/internal/sga"

// sharedOpState is one in-flight push or pop against a SharedQueue. Unlike
// the network variant there is no partial progress: a try_push/try_pop
// either lands in one step or stays pending until the channel has room or
// data, so there are no cursors to carry between polls.
type sharedOpState struct {
	opcode Opcode
	push   *sga.SGA // set for OpPush

	done   bool
	result *sga.SGA // set for OpPop on success
}

// SharedQueue is the shared-channel half of C3: one worker's end of the
// directed channel pair to a single peer. Pushes go into out and pops come
// from in; both channels are always set.
type SharedQueue struct {
	qd  QD
	out *SharedChannel // push target
	in  *SharedChannel // pop source

	workQueue []Token
	ops       map[Token]*sharedOpState
}

func newSharedQueue(qd QD, out, in *SharedChannel) *SharedQueue {
	return &SharedQueue{qd: qd, out: out, in: in, ops: map[Token]*sharedOpState{}}
}

func (sq *SharedQueue) QD() QD             { return sq.qd }
func (sq *SharedQueue) Category() Category { return CategoryShared }

func (sq *SharedQueue) enqueue(tok Token, st *sharedOpState) {
	sq.ops[tok] = st
	sq.workQueue = append(sq.workQueue, tok)
	if sq.workQueue[0] == tok {
		sq.poll()
	}
}

func (sq *SharedQueue) poll() {
	if len(sq.workQueue) == 0 {
		return
	}
	tok := sq.workQueue[0]
	st, ok := sq.ops[tok]
	if !ok {
		sq.workQueue = sq.workQueue[1:]
		return
	}

	switch st.opcode {
	case OpPush:
		if sq.out.TryPush(st.push) {
			st.done = true
		}
	case OpPop:
		if v, ok := sq.in.TryPop(); ok {
			st.done = true
			st.result = v
		}
	}

	if st.done {
		sq.workQueue = sq.workQueue[1:]
	}
}

func (sq *SharedQueue) status(tok Token) (bool, Result, error, bool) {
	st, ok := sq.ops[tok]
	if !ok {
		return false, Result{}, nil, false
	}
	if !st.done {
		return false, Result{}, nil, true
	}
	var s *sga.SGA
	if st.opcode == OpPop {
		s = st.result
	}
	return true, Result{QD: sq.qd, Token: tok, Opcode: st.opcode, SGA: s}, nil, true
}

func (sq *SharedQueue) Close() error {
	return nil
}
