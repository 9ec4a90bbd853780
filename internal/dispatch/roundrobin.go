package dispatch

// RoundRobin cycles through peers in order, wrapping at the end. It is the
// only stateful policy: each call advances an internal offset regardless
// of req's contents. A Policy is owned by a single NetWorker goroutine, so
// the offset needs no synchronization.
type RoundRobin struct {
	offset int
}

func NewRoundRobin() *RoundRobin { return &RoundRobin{} }

func (p *RoundRobin) Next(peers int, req []byte) int {
	if peers <= 0 {
		return 0
	}
	n := p.offset % peers
	p.offset++
	return n
}

func (p *RoundRobin) String() string { return "round-robin" }
