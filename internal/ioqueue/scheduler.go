package ioqueue

import "time"

// pollBudget names a 2ms busy-poll bound. Neither Wait nor WaitAny reads
// it: Wait yields with a one-microsecond sleep every 4096 spins, and
// WaitAny makes a single pass per call.
const pollBudget = 2 * time.Millisecond

// Wait busy-polls tok's owning queue until it completes, then returns its
// Result. It panics if tok was never minted by this Service -- an unknown
// token is a programmer error, never a runtime condition a Worker can hit
// by chance.
func (s *Service) Wait(tok Token) (Result, error) {
	qd, ok := s.tokenQD[tok]
	if !ok {
		panic("ioqueue: Wait on unknown token")
	}
	q := s.queues[qd]

	spins := 0
	for {
		q.poll()
		done, res, err, ok := q.status(tok)
		if !ok {
			panic("ioqueue: Wait on unknown token")
		}
		if done {
			delete(s.tokenQD, tok)
			res.Err = err
			return res, err
		}
		spins++
		if spins%4096 == 0 {
			time.Sleep(time.Microsecond)
		}
	}
}

// WaitAny polls every distinct queue backing toks exactly once, then scans
// toks round-robin starting at the Service's rotating startOffset and
// returns the first token observed complete, moving startOffset past it
// (or one step on when nothing completed) for fairness. It returns
// ok=false if none completed this pass -- callers loop calling WaitAny
// again, which is how the worker runtime's dequeue()/work() cycle stays
// cooperative rather than busy-spinning inside the scheduler itself.
func (s *Service) WaitAny(toks []Token) (Result, error, bool) {
	if len(toks) == 0 {
		return Result{}, nil, false
	}

	polled := map[QD]bool{}
	for _, tok := range toks {
		qd, ok := s.tokenQD[tok]
		if !ok {
			continue
		}
		if !polled[qd] {
			s.queues[qd].poll()
			polled[qd] = true
		}
	}

	n := len(toks)
	s.startOffset %= n
	for i := 0; i < n; i++ {
		tok := toks[(s.startOffset+i)%n]
		qd, ok := s.tokenQD[tok]
		if !ok {
			continue
		}
		done, res, err, ok := s.queues[qd].status(tok)
		if !ok || !done {
			continue
		}
		delete(s.tokenQD, tok)
		s.startOffset = (s.startOffset + i + 1) % n
		res.Err = err
		return res, err, true
	}
	s.startOffset = (s.startOffset + 1) % n
	return Result{}, nil, false
}
