package ioqueue

import (
	"testing"

	"kvfabric/internal/sga"
)

func TestSharedChannelPushPop(t *testing.T) {
	c := NewSharedChannel()
	s := sga.New([]byte("hello"))

	if _, ok := c.TryPop(); ok {
		t.Fatal("expected empty channel to fail TryPop")
	}
	if !c.TryPush(s) {
		t.Fatal("expected TryPush to succeed on empty channel")
	}
	if c.TryPush(sga.New([]byte("world"))) {
		t.Fatal("expected TryPush to fail on full channel")
	}
	got, ok := c.TryPop()
	if !ok {
		t.Fatal("expected TryPop to succeed")
	}
	if !got.Equal(s) {
		t.Fatal("popped value differs from pushed value")
	}
	if _, ok := c.TryPop(); ok {
		t.Fatal("expected channel to be empty after one pop")
	}
}

func TestSharedChannelAtMostOneInFlight(t *testing.T) {
	c := NewSharedChannel()
	c.TryPush(sga.New([]byte("a")))
	ok := c.TryPush(sga.New([]byte("b")))
	if ok {
		t.Fatal("second push into a full slot must fail")
	}
}
