package ioqueue

import (
	"bytes"
	"encoding/binary"
	"net"
	"os"
	"time"

	"testing"

	"kvfabric/internal/sga"
)

// fakeConn is a deterministic net.Conn stand-in: Read reports
// os.ErrDeadlineExceeded (would-block) when its buffer is empty instead
// of blocking, so tests can feed bytes in arbitrary chunks without
// depending on goroutine scheduling.
type fakeConn struct {
	readBuf  *bytes.Buffer
	writeBuf *bytes.Buffer
}

func newFakeConn() *fakeConn {
	return &fakeConn{readBuf: &bytes.Buffer{}, writeBuf: &bytes.Buffer{}}
}

func (c *fakeConn) Read(p []byte) (int, error) {
	if c.readBuf.Len() == 0 {
		return 0, os.ErrDeadlineExceeded
	}
	return c.readBuf.Read(p)
}
func (c *fakeConn) Write(p []byte) (int, error)        { return c.writeBuf.Write(p) }
func (c *fakeConn) Close() error                       { return nil }
func (c *fakeConn) LocalAddr() net.Addr                { return nil }
func (c *fakeConn) RemoteAddr() net.Addr               { return nil }
func (c *fakeConn) SetDeadline(t time.Time) error      { return nil }
func (c *fakeConn) SetReadDeadline(t time.Time) error  { return nil }
func (c *fakeConn) SetWriteDeadline(t time.Time) error { return nil }

func wireBytes(t *testing.T, s *sga.SGA) []byte {
	t.Helper()
	req := &pendingRequest{isPush: true, sga: s}
	buildWire(req)
	out := make([]byte, 0, headerSize+len(req.outPayload))
	out = append(out, req.outHeader[:]...)
	out = append(out, req.outPayload...)
	return out
}

func TestDecodeEncodeRoundTrip(t *testing.T) {
	s := sga.New([]byte("hello"), []byte("world!"))
	wire := wireBytes(t, s)

	conn := newFakeConn()
	conn.readBuf.Write(wire)

	decReq := &pendingRequest{}
	for !decReq.done {
		decodeStep(conn, decReq)
	}
	if decReq.err != nil {
		t.Fatalf("decode error: %v", decReq.err)
	}
	if !decReq.resultSGA.Equal(s) {
		t.Fatalf("got %+v want %+v", decReq.resultSGA, s)
	}
}

func TestPartialIOResumability(t *testing.T) {
	s := sga.New([]byte("abcdef"), []byte("ghijklmno"))
	wire := wireBytes(t, s)

	conn := newFakeConn()
	decReq := &pendingRequest{}

	// Feed the first 16 bytes -- less than the 24-byte header -- then
	// pause, mirroring the split-send scenario.
	conn.readBuf.Write(wire[:16])
	decodeStep(conn, decReq)
	if decReq.done {
		t.Fatal("expected decode to still be pending after a partial header")
	}
	if decReq.headerRead != 16 {
		t.Fatalf("expected cursor at 16, got %d", decReq.headerRead)
	}

	conn.readBuf.Write(wire[16:])
	for !decReq.done {
		decodeStep(conn, decReq)
	}
	if decReq.err != nil {
		t.Fatalf("decode error: %v", decReq.err)
	}
	if !decReq.resultSGA.Equal(s) {
		t.Fatalf("split-feed decode differs from atomic decode: got %+v want %+v", decReq.resultSGA, s)
	}
}

func TestDecodeBadMagic(t *testing.T) {
	s := sga.New([]byte("x"))
	wire := wireBytes(t, s)
	binary.BigEndian.PutUint64(wire[0:8], Magic+1)

	conn := newFakeConn()
	conn.readBuf.Write(wire)

	decReq := &pendingRequest{}
	for !decReq.done {
		decodeStep(conn, decReq)
	}
	if decReq.err != ErrBadFrame {
		t.Fatalf("expected ErrBadFrame, got %v", decReq.err)
	}
	if decReq.res >= 0 {
		t.Fatalf("expected negative res on bad frame, got %d", decReq.res)
	}
}

func TestEncodeThenDecodeViaPipe(t *testing.T) {
	c1, c2 := net.Pipe()
	defer c1.Close()
	defer c2.Close()

	s := sga.New([]byte("PUT"), []byte("foo"), []byte("bar"))
	encReq := &pendingRequest{isPush: true, sga: s}
	decReq := &pendingRequest{}

	encDone := make(chan struct{})
	decDone := make(chan struct{})

	go func() {
		for !encReq.done {
			encodeStep(c1, encReq)
		}
		close(encDone)
	}()
	go func() {
		for !decReq.done {
			decodeStep(c2, decReq)
		}
		close(decDone)
	}()

	timeout := time.After(5 * time.Second)
	for i := 0; i < 2; i++ {
		select {
		case <-encDone:
			encDone = nil
		case <-decDone:
			decDone = nil
		case <-timeout:
			t.Fatal("timed out waiting for encode/decode over pipe")
		}
	}

	if decReq.err != nil {
		t.Fatalf("decode error: %v", decReq.err)
	}
	if !decReq.resultSGA.Equal(s) {
		t.Fatalf("got %+v want %+v", decReq.resultSGA, s)
	}
}

func TestIsWouldBlock(t *testing.T) {
	if !isWouldBlock(os.ErrDeadlineExceeded) {
		t.Fatal("expected os.ErrDeadlineExceeded to be would-block")
	}
	if isWouldBlock(nil) {
		t.Fatal("expected nil to not be would-block")
	}
	if isWouldBlock(ErrBadFrame) {
		t.Fatal("expected ErrBadFrame to not be would-block")
	}
}
