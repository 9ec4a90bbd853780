package latency

import (
	"os"
	"strings"
	"testing"
)

func TestRecordEntryExitAndDump(t *testing.T) {
	r := NewRecorder()
	id := r.RecordEntry()
	r.RecordExit(id)

	f, err := os.CreateTemp(t.TempDir(), "lat-*.tsv")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()

	if err := r.Dump(f.Name()); err != nil {
		t.Fatalf("Dump: %v", err)
	}

	data, err := os.ReadFile(f.Name())
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected a header line plus one data line, got %q", lines)
	}
	parts := strings.Split(lines[1], "\t")
	if len(parts) != 2 {
		t.Fatalf("expected 2 tab-separated fields, got %q", lines[1])
	}
}

func TestDumpWritesHeaderRow(t *testing.T) {
	r := NewRecorder()

	f, err := os.CreateTemp(t.TempDir(), "lat-*.tsv")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()

	if err := r.Dump(f.Name()); err != nil {
		t.Fatalf("Dump: %v", err)
	}

	data, err := os.ReadFile(f.Name())
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(string(data), "\n")
	if lines[0] != "entry\texit" {
		t.Fatalf("got header %q, want %q", lines[0], "entry\texit")
	}
}

func TestRecordExitIgnoresUnknownID(t *testing.T) {
	r := NewRecorder()
	r.RecordExit(99) // must not panic
}
