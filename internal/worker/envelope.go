package worker

import (
	"encoding/binary"

	"kvfabric/internal/ioqueue"
	"kvfabric/internal/sga"
)

// envelopeHeaderLen is the fixed leading segment every request/response
// crossing a NetWorker<->StoreWorker channel carries: the client's queue
// descriptor (so the reply can find its way back without relying on
// ordering) and a latency entry id (-1 when latency recording is off).
// Channels only ever move one *sga.SGA at a time (C2's contract), so the
// envelope is itself an SGA -- a small binary header segment followed by
// the caller's payload segments -- rather than a distinct wire type.
const envelopeHeaderLen = 16

// KvRequest mirrors the original's KvRequest struct: the command text a
// client sent, tagged with where its reply belongs.
type KvRequest struct {
	ClientQD ioqueue.QD
	EntryID  int
	Payload  *sga.SGA
}

// KvResponse mirrors the original's KvResponse struct. Moved documents
// the original's double-free guard: once a KvResponse's bytes are
// installed into an outbound SGA there is nothing left to double-free in
// Go (no manual delete exists to race against), so the field is never
// read or written -- it exists purely as a note that the invariant it
// guarded still holds by construction.
type KvResponse struct {
	ClientQD ioqueue.QD
	EntryID  int
	Payload  *sga.SGA
	Moved    bool
}

func packHeader(clientQD ioqueue.QD, entryID int) []byte {
	hdr := make([]byte, envelopeHeaderLen)
	binary.BigEndian.PutUint64(hdr[0:8], uint64(clientQD))
	binary.BigEndian.PutUint64(hdr[8:16], uint64(int64(entryID)))
	return hdr
}

func unpackHeader(hdr []byte) (ioqueue.QD, int) {
	clientQD := ioqueue.QD(binary.BigEndian.Uint64(hdr[0:8]))
	entryID := int(int64(binary.BigEndian.Uint64(hdr[8:16])))
	return clientQD, entryID
}

func (r *KvRequest) toSGA() *sga.SGA {
	segs := make([]sga.Segment, 0, 1+len(r.Payload.Segments))
	segs = append(segs, sga.Segment{Buf: packHeader(r.ClientQD, r.EntryID)})
	segs = append(segs, r.Payload.Segments...)
	return &sga.SGA{Segments: segs}
}

func decodeKvRequest(env *sga.SGA) *KvRequest {
	clientQD, entryID := unpackHeader(env.Segments[0].Buf)
	return &KvRequest{
		ClientQD: clientQD,
		EntryID:  entryID,
		Payload:  &sga.SGA{Segments: env.Segments[1:]},
	}
}

func (r *KvResponse) toSGA() *sga.SGA {
	segs := make([]sga.Segment, 0, 1+len(r.Payload.Segments))
	segs = append(segs, sga.Segment{Buf: packHeader(r.ClientQD, r.EntryID)})
	segs = append(segs, r.Payload.Segments...)
	return &sga.SGA{Segments: segs}
}

func decodeKvResponse(env *sga.SGA) *KvResponse {
	clientQD, entryID := unpackHeader(env.Segments[0].Buf)
	return &KvResponse{
		ClientQD: clientQD,
		EntryID:  entryID,
		Payload:  &sga.SGA{Segments: env.Segments[1:]},
	}
}
