package ioqueue

import (
	"encoding/binary"
	"errors"
	"net"
	"os"
	"time"

	"kvfabric/internal/sga"
)

// Magic is the three-word frame header's fixed first word. Spelled out as
// the ASCII bytes "KVFABRIC" read big-endian, so a hex dump of a captured
// frame is self-describing.
const Magic uint64 = 0x4B56464142524943

// headerSize is the three 8-byte words: magic, payload length, segment count.
const headerSize = 24

// pendingRequest is the spec's "Pending request": per-token state on a
// network queue. It is always created zero-valued, which guarantees
// PayloadBytes/cursors start at zero even across retries -- the open
// question in spec.md §9 about additive header reuse does not arise here.
type pendingRequest struct {
	isPush bool
	done   bool
	res    int
	err    error

	// decode cursors
	header     [headerSize]byte
	headerRead int
	payload    []byte
	payloadRead int
	numSegs    int

	// encode cursors; builtWire is lazily materialized on first touch from sga.
	sga           *sga.SGA
	builtWire     bool
	outHeader     [headerSize]byte
	headerWritten int
	outPayload    []byte
	payloadWritten int

	// result SGA, filled in by decodeStep
	resultSGA *sga.SGA
}

func isWouldBlock(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var ne net.Error
	if errors.As(err, &ne) {
		return ne.Timeout()
	}
	return false
}

// decodeStep advances a pop's decoder state by at most one non-blocking
// read of the header and one of the payload. It never blocks: each read
// runs under a deadline one microsecond ahead, and a would-block leaves
// the cursor untouched for the next call to resume from.
func decodeStep(conn net.Conn, req *pendingRequest) {
	if req.headerRead < headerSize {
		conn.SetReadDeadline(time.Now().Add(time.Microsecond))
		n, err := conn.Read(req.header[req.headerRead:headerSize])
		req.headerRead += n
		if err != nil {
			if isWouldBlock(err) {
				return
			}
			req.done = true
			req.res = -1
			req.err = ErrIOError
			return
		}
		if req.headerRead < headerSize {
			return
		}

		magic := binary.BigEndian.Uint64(req.header[0:8])
		if magic != Magic {
			req.done = true
			req.res = -1
			req.err = ErrBadFrame
			return
		}
		payloadBytes := binary.BigEndian.Uint64(req.header[8:16])
		req.numSegs = int(binary.BigEndian.Uint64(req.header[16:24]))
		req.payload = make([]byte, payloadBytes)
	}

	if req.payloadRead < len(req.payload) {
		conn.SetReadDeadline(time.Now().Add(time.Microsecond))
		n, err := conn.Read(req.payload[req.payloadRead:])
		req.payloadRead += n
		if err != nil {
			if isWouldBlock(err) {
				return
			}
			req.done = true
			req.res = -1
			req.err = ErrIOError
			return
		}
		if req.payloadRead < len(req.payload) {
			return
		}
	}

	segs := make([]sga.Segment, 0, req.numSegs)
	off := 0
	for i := 0; i < req.numSegs; i++ {
		if off+8 > len(req.payload) {
			req.done = true
			req.res = -1
			req.err = ErrBadFrame
			return
		}
		segLen := int(binary.BigEndian.Uint64(req.payload[off : off+8]))
		off += 8
		if off+segLen > len(req.payload) {
			req.done = true
			req.res = -1
			req.err = ErrBadFrame
			return
		}
		segs = append(segs, sga.Segment{Buf: req.payload[off : off+segLen]})
		off += segLen
	}
	req.resultSGA = &sga.SGA{Segments: segs, Owner: req.payload}
	req.res = len(req.payload) - req.numSegs*8
	req.done = true
}

// buildWire materializes the header and the concatenated
// (length-prefix, data) stream for every segment, once, on first touch.
func buildWire(req *pendingRequest) {
	if req.builtWire {
		return
	}
	n := req.sga.NumSegments()
	payloadBytes := uint64(0)
	for _, seg := range req.sga.Segments {
		payloadBytes += uint64(len(seg.Buf)) + 8
	}
	binary.BigEndian.PutUint64(req.outHeader[0:8], Magic)
	binary.BigEndian.PutUint64(req.outHeader[8:16], payloadBytes)
	binary.BigEndian.PutUint64(req.outHeader[16:24], uint64(n))

	out := make([]byte, payloadBytes)
	off := 0
	for _, seg := range req.sga.Segments {
		binary.BigEndian.PutUint64(out[off:off+8], uint64(len(seg.Buf)))
		off += 8
		copy(out[off:], seg.Buf)
		off += len(seg.Buf)
	}
	req.outPayload = out
	req.builtWire = true
}

// encodeStep advances a push's encoder state by at most one non-blocking
// write of the header and one of the payload, each under a deadline one
// microsecond ahead, resuming exactly where the previous call left off.
func encodeStep(conn net.Conn, req *pendingRequest) {
	buildWire(req)

	if req.headerWritten < headerSize {
		conn.SetWriteDeadline(time.Now().Add(time.Microsecond))
		n, err := conn.Write(req.outHeader[req.headerWritten:headerSize])
		req.headerWritten += n
		if err != nil {
			if isWouldBlock(err) {
				return
			}
			req.done = true
			req.res = -1
			req.err = ErrIOError
			return
		}
		if req.headerWritten < headerSize {
			return
		}
	}

	if req.payloadWritten < len(req.outPayload) {
		conn.SetWriteDeadline(time.Now().Add(time.Microsecond))
		n, err := conn.Write(req.outPayload[req.payloadWritten:])
		req.payloadWritten += n
		if err != nil {
			if isWouldBlock(err) {
				return
			}
			req.done = true
			req.res = -1
			req.err = ErrIOError
			return
		}
		if req.payloadWritten < len(req.outPayload) {
			return
		}
	}

	numSegs := req.sga.NumSegments()
	req.res = len(req.outPayload) - numSegs*8
	req.done = true
}
