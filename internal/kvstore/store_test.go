package kvstore

import "testing"

func TestPutGetRoundTrip(t *testing.T) {
	s := New()
	if resp, _ := s.Process("PUT alpha hello"); resp != "SUCCESS" {
		t.Fatalf("PUT: got %q", resp)
	}
	if resp, _ := s.Process("GET alpha"); resp != "hello" {
		t.Fatalf("GET: got %q", resp)
	}
}

func TestGetMissingKey(t *testing.T) {
	s := New()
	resp, _ := s.Process("GET missing")
	if resp != "ERR: Bad key missing" {
		t.Fatalf("got %q", resp)
	}
}

func TestPutNoKey(t *testing.T) {
	s := New()
	resp, _ := s.Process("PUT ")
	if resp != "ERR: No key" {
		t.Fatalf("got %q", resp)
	}
}

func TestPutOnReadOnlyStore(t *testing.T) {
	s := New()
	s.writeable = false
	resp, _ := s.Process("PUT alpha hello")
	if resp != "ERR: Not writeable" {
		t.Fatalf("got %q", resp)
	}
}

func TestSzof(t *testing.T) {
	s := New()
	s.Process("PUT alpha hello")
	resp, _ := s.Process("SZOF alpha")
	if resp != "5" {
		t.Fatalf("got %q", resp)
	}
}

func TestSzofMissingKey(t *testing.T) {
	s := New()
	resp, _ := s.Process("SZOF missing")
	if resp != "ERR: Bad key" {
		t.Fatalf("got %q", resp)
	}
}

func TestNnz(t *testing.T) {
	s := New()
	s.Process("PUT n 100200")
	resp, _ := s.Process("NNZ n")
	if resp != "3" {
		t.Fatalf("got %q", resp)
	}
}

func TestGetKeyContainsSpace(t *testing.T) {
	s := New()
	resp, _ := s.Process("GET two words")
	if resp != "ERR: Key contains space" {
		t.Fatalf("got %q", resp)
	}
}

func TestSzofKeyContainsSpace(t *testing.T) {
	s := New()
	resp, _ := s.Process("SZOF two words")
	if resp != "ERR: Key contains space" {
		t.Fatalf("got %q", resp)
	}
}

func TestNnzKeyContainsSpace(t *testing.T) {
	s := New()
	resp, _ := s.Process("NNZ two words")
	if resp != "ERR: Key contains space" {
		t.Fatalf("got %q", resp)
	}
}

func TestUnknownReqtype(t *testing.T) {
	s := New()
	resp, _ := s.Process("FROB x")
	if resp != "ERR: Unknown reqtype" {
		t.Fatalf("got %q", resp)
	}
}

func TestNewFromSeedFileEmptyPathStartsWriteable(t *testing.T) {
	s, err := NewFromSeedFile("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !s.writeable {
		t.Fatal("expected empty-path seed store to remain writeable")
	}
}

func TestNewFromSeedFileMissingFileStartsWriteable(t *testing.T) {
	s, err := NewFromSeedFile("/nonexistent/path/to/seed.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !s.writeable {
		t.Fatal("expected missing-file seed store to remain writeable")
	}
}
