// Package latency records per-request entry/exit timestamps for the
// optional latency log enabled by the server's --record-lat flag.
package latency

import (
	"bufio"
	"fmt"
	"os"
	"sync"
	"time"
)

// Recorder tracks entry and exit times for in-flight requests, keyed by a
// small integer id handed back from RecordEntry. It is touched from the
// single NetWorker goroutine in normal operation, so the mutex here is
// defensive rather than load-bearing -- it exists for the Dump call,
// which may run from a signal handler goroutine at shutdown.
type Recorder struct {
	mu      sync.Mutex
	start   time.Time
	entries []time.Duration
	exits   []time.Duration
}

// NewRecorder returns an empty Recorder. Its clock starts at the first
// RecordEntry call.
func NewRecorder() *Recorder {
	return &Recorder{start: time.Now()}
}

// RecordEntry marks the start of a request and returns an id to pass to
// RecordExit once it completes.
func (r *Recorder) RecordEntry() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.entries) == 0 {
		r.start = time.Now()
	}
	r.entries = append(r.entries, time.Since(r.start))
	r.exits = append(r.exits, -1)
	return len(r.entries) - 1
}

// RecordExit marks the completion of the request identified by id.
func (r *Recorder) RecordExit(id int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if id < 0 || id >= len(r.exits) {
		return
	}
	r.exits[id] = time.Since(r.start)
}

// Dump writes one "entry\texit" line per request, in nanoseconds since
// the first recorded entry, to path.
func (r *Recorder) Dump(path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("latency: creating %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	fmt.Fprint(w, "entry\texit\n")
	for i, entry := range r.entries {
		exit := r.exits[i]
		fmt.Fprintf(w, "%d\t%d\n", entry.Nanoseconds(), exit.Nanoseconds())
	}
	return w.Flush()
}
