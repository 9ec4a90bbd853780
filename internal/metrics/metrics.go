// Package metrics exposes the dispatch fabric's counters through
// VictoriaMetrics/metrics, either scraped via an optional debug HTTP
// listener or written out on demand.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/VictoriaMetrics/metrics"

	"kvfabric/internal/logger"
)

var (
	requestsDispatched = metrics.NewCounter(`kvfabric_requests_dispatched_total`)
	requestsCompleted  = metrics.NewCounter(`kvfabric_requests_completed_total`)
	acceptsTotal       = metrics.NewCounter(`kvfabric_accepts_total`)
	frameErrorsTotal   = metrics.NewCounter(`kvfabric_frame_errors_total`)
	waitAnyEmptyTotal  = metrics.NewCounter(`kvfabric_waitany_empty_total`)
)

// RequestDispatched increments the count of requests a NetWorker has
// routed to a store peer.
func RequestDispatched() { requestsDispatched.Inc() }

// RequestCompleted increments the count of responses a NetWorker has
// written back to a client.
func RequestCompleted() { requestsCompleted.Inc() }

// Accepted increments the count of accepted client connections.
func Accepted() { acceptsTotal.Inc() }

// FrameError increments the count of malformed frames observed by the
// decoder.
func FrameError() { frameErrorsTotal.Inc() }

// WaitAnyEmpty increments the count of WaitAny passes that completed no
// token, a rough measure of scheduler idle spin.
func WaitAnyEmpty() { waitAnyEmptyTotal.Inc() }

// Server exposes /metrics in Prometheus text format on addr until the
// returned stop function is called. A zero addr disables the listener
// entirely -- callers treat that as "metrics collected but not served".
func Server(addr string) (stop func(context.Context) error, err error) {
	if addr == "" {
		return func(context.Context) error { return nil }, nil
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/metrics", func(w http.ResponseWriter, r *http.Request) {
		metrics.WritePrometheus(w, true)
	})
	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics: listener on %s stopped: %v", addr, err)
		}
	}()
	logger.Info("metrics: serving Prometheus text format on %s/metrics", addr)

	return func(ctx context.Context) error {
		shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("metrics: shutdown: %w", err)
		}
		return nil
	}, nil
}
