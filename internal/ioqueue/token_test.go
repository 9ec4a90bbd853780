package ioqueue

import "testing"

func TestTokenIsPushBit(t *testing.T) {
	push := newToken(7, true)
	pop := newToken(7, false)
	if !push.IsPush() {
		t.Fatal("expected push token to report IsPush")
	}
	if pop.IsPush() {
		t.Fatal("expected pop token to not report IsPush")
	}
	if push.Sequence() != 7 || pop.Sequence() != 7 {
		t.Fatalf("sequence mismatch: push=%d pop=%d", push.Sequence(), pop.Sequence())
	}
}

func TestTokenUniquenessAcrossSequence(t *testing.T) {
	seen := map[Token]bool{}
	for i := uint64(0); i < 1000; i++ {
		for _, isPush := range []bool{true, false} {
			tok := newToken(i, isPush)
			if seen[tok] {
				t.Fatalf("duplicate token %d", tok)
			}
			seen[tok] = true
		}
	}
}

func TestOpcodeString(t *testing.T) {
	cases := map[Opcode]string{
		OpAccept:  "accept",
		OpConnect: "connect",
		OpPush:    "push",
		OpPop:     "pop",
		Opcode(99): "unknown",
	}
	for op, want := range cases {
		if got := op.String(); got != want {
			t.Fatalf("Opcode(%d).String() = %q, want %q", op, got, want)
		}
	}
}
