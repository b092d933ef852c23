// Package metrics exposes the Prometheus metrics of the catalogue client.
// All metrics are defined in their respective packages (graphql, listing,
// fetch, debounce, ratelimit, pagination) via promauto; this package serves
// them over HTTP and documents them.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

// Registry is the default Prometheus registry used by the catalogue client.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Handler returns a mux serving /health and /metrics.
func Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthHandler)
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "OK")
}

// Serve runs the metrics server on addr until ctx is cancelled.
func Serve(ctx context.Context, addr string) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("Starting metrics server")
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("metrics server: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("metrics server shutdown: %w", err)
		}
		<-errCh
		log.Info().Msg("Metrics server stopped")
		return nil
	}
}

// Metrics Documentation
//
// Request Metrics (pkg/graphql):
//   - catalogue_graphql_requests_total{operation, status} (Counter)
//   - catalogue_graphql_request_duration_seconds{operation} (Histogram)
//   - catalogue_graphql_errors_total{kind} (Counter): transport, decode, graphql
//
// Retry Metrics (pkg/graphql):
//   - catalogue_graphql_retries_total{error_class} (Counter)
//   - catalogue_graphql_retry_backoff_seconds{error_class} (Histogram)
//   - catalogue_graphql_retry_exhausted_total{error_class} (Counter)
//
// Rate Limit Metrics (pkg/ratelimit):
//   - catalogue_api_requests_remaining (Gauge)
//   - catalogue_rate_limit_blocks_total (Counter)
//   - catalogue_rate_limit_throttles_total (Counter)
//
// Listing Metrics (pkg/listing, pkg/fetch, pkg/debounce):
//   - catalogue_listing_fetch_duration_seconds{result} (Histogram)
//   - catalogue_listing_stale_responses_total (Counter)
//   - catalogue_fetch_transitions_total{status} (Counter)
//   - catalogue_debounce_commits_total (Counter)
//   - catalogue_debounce_cancels_total (Counter)
//
// Batch Metrics (pkg/pagination):
//   - catalogue_batch_pages_total{result} (Counter)
//
// Example Prometheus Queries:
//
//   # GraphQL error rate by kind
//   sum by (kind) (rate(catalogue_graphql_errors_total[5m]))
//
//   # Share of listing responses dropped as stale
//   rate(catalogue_listing_stale_responses_total[5m]) /
//   sum(rate(catalogue_listing_fetch_duration_seconds_count[5m]))
//
//   # P95 request latency
//   histogram_quantile(0.95, rate(catalogue_graphql_request_duration_seconds_bucket[5m]))
