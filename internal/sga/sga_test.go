package sga

import "testing"

func TestNewAndEqual(t *testing.T) {
	a := New([]byte("foo"), []byte("bar"))
	b := New([]byte("foo"), []byte("bar"))
	if !a.Equal(b) {
		t.Fatal("expected equal SGAs")
	}
	if a.NumSegments() != 2 {
		t.Fatalf("got %d segments", a.NumSegments())
	}
	if a.TotalBytes() != 6 {
		t.Fatalf("got %d bytes", a.TotalBytes())
	}
}

func TestEqualDiffers(t *testing.T) {
	a := New([]byte("foo"))
	b := New([]byte("bar"))
	if a.Equal(b) {
		t.Fatal("expected unequal SGAs")
	}
}

func TestEqualDifferentSegmentCount(t *testing.T) {
	a := New([]byte("foo"), []byte("bar"))
	b := New([]byte("foo"))
	if a.Equal(b) {
		t.Fatal("expected unequal SGAs with different segment counts")
	}
}

func TestNilSGA(t *testing.T) {
	var s *SGA
	if s.NumSegments() != 0 || s.TotalBytes() != 0 {
		t.Fatal("nil SGA should report zero")
	}
}
