// Package sga implements the scatter-gather array, the universal payload
// type carried across queues, channels, and the wire.
package sga

import "bytes"

// MaxSegments is the nominal segment bound for an SGA. Nothing in this
// module checks it: New, the worker envelopes and the frame decoder
// accept any segment count.
const MaxSegments = 16

// Segment is one contiguous byte range within an SGA.
type Segment struct {
	Buf []byte
}

// SGA is an ordered sequence of segments, optionally backed by a single
// owning allocation.
//
// When Owner is non-nil, every Segments[i].Buf is a sub-slice of Owner and
// is freed as a unit along with it; callers must not retain a segment past
// the SGA's lifetime without copying it. When Owner is nil, each segment
// owns its own backing array independently.
type SGA struct {
	Segments []Segment
	Owner    []byte
}

// New builds an SGA whose segments each own an independent buffer.
func New(bufs ...[]byte) *SGA {
	segs := make([]Segment, len(bufs))
	for i, b := range bufs {
		segs[i] = Segment{Buf: b}
	}
	return &SGA{Segments: segs}
}

// NumSegments returns the segment count.
func (s *SGA) NumSegments() int {
	if s == nil {
		return 0
	}
	return len(s.Segments)
}

// TotalBytes sums the length of every segment.
func (s *SGA) TotalBytes() int {
	if s == nil {
		return 0
	}
	n := 0
	for _, seg := range s.Segments {
		n += len(seg.Buf)
	}
	return n
}

// Equal reports whether two SGAs carry the same segments, byte for byte.
// Ownership (Owner) is not compared, only content.
func (s *SGA) Equal(other *SGA) bool {
	if s == nil || other == nil {
		return s == other
	}
	if len(s.Segments) != len(other.Segments) {
		return false
	}
	for i := range s.Segments {
		if !bytes.Equal(s.Segments[i].Buf, other.Segments[i].Buf) {
			return false
		}
	}
	return true
}
