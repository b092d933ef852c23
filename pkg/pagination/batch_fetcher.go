package pagination

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/Sternrassler/thoth-catalogue/pkg/listing"
)

var pagesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "catalogue_batch_pages_total",
	Help: "Total listing windows fetched by the batch fetcher by result",
}, []string{"result"})

// Config holds batch fetcher configuration
type Config struct {
	// MaxConcurrency is the maximum number of parallel requests
	MaxConcurrency int
	// Timeout per window fetch
	Timeout time.Duration
	// PageSize is the limit of every window
	PageSize int
}

// DefaultConfig returns a configuration that stays well inside the API budget
func DefaultConfig() Config {
	return Config{
		MaxConcurrency: 4,
		Timeout:        30 * time.Second,
		PageSize:       100,
	}
}

// Result is the outcome of a batch fetch.
type Result[T any] struct {
	// Items of the fetched windows in offset order.
	Items []T
	// TotalCount reported by the first window.
	TotalCount int
	// Windows is the number of windows the listing spans.
	Windows int
	// Fetched is the number of windows that arrived.
	Fetched int
}

// Complete reports whether every window was fetched.
func (r Result[T]) Complete() bool {
	return r.Fetched == r.Windows
}

// BatchFetcher fetches every window of a listing in parallel
type BatchFetcher[T any, F comparable] struct {
	source listing.Source[T, F]
	config Config
}

// NewBatchFetcher creates a new batch fetcher
func NewBatchFetcher[T any, F comparable](source listing.Source[T, F], config Config) *BatchFetcher[T, F] {
	if config.MaxConcurrency <= 0 {
		config.MaxConcurrency = 4
	}
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}
	if config.PageSize <= 0 {
		config.PageSize = 100
	}

	return &BatchFetcher[T, F]{
		source: source,
		config: config,
	}
}

// FetchAll fetches every window of the listing described by base (filter,
// order and publishers; limit and offset are overwritten).
//
// The first window is fetched alone to learn the total count. The remaining
// windows are distributed over a worker pool. On the first worker error the
// pool stops and the windows fetched so far are returned with the error.
func (bf *BatchFetcher[T, F]) FetchAll(ctx context.Context, base listing.Query[F]) (Result[T], error) {
	start := time.Now()
	size := bf.config.PageSize

	first, err := bf.fetch(ctx, base, 0)
	if err != nil {
		return Result[T]{}, fmt.Errorf("failed to fetch first window: %w", err)
	}

	windows := 1
	if first.TotalCount > size {
		windows = (first.TotalCount + size - 1) / size
	}

	log.Info().
		Str("filter", base.Filter).
		Int("total_count", first.TotalCount).
		Int("windows", windows).
		Msg("Starting parallel listing fetch")

	pages := make([][]T, windows)
	pages[0] = first.Items
	fetched := 1

	if windows > 1 {
		queue := make(chan int, windows-1)
		for w := 1; w < windows; w++ {
			queue <- w
		}
		close(queue)

		type windowResult struct {
			index int
			items []T
		}
		results := make(chan windowResult, windows-1)

		g, gctx := errgroup.WithContext(ctx)
		for i := 0; i < bf.config.MaxConcurrency && i < windows-1; i++ {
			workerID := i
			g.Go(func() error {
				processed := 0
				for index := range queue {
					if err := gctx.Err(); err != nil {
						return err
					}
					page, err := bf.fetch(gctx, base, index*size)
					if err != nil {
						log.Warn().
							Err(err).
							Int("worker_id", workerID).
							Int("offset", index*size).
							Msg("Window fetch failed")
						return fmt.Errorf("window at offset %d: %w", index*size, err)
					}
					results <- windowResult{index: index, items: page.Items}
					processed++
				}
				log.Debug().
					Int("worker_id", workerID).
					Int("windows_processed", processed).
					Msg("Worker completed")
				return nil
			})
		}

		err = g.Wait()
		close(results)
		for r := range results {
			pages[r.index] = r.items
			fetched++
		}

		if err != nil {
			log.Warn().
				Err(err).
				Int("fetched_windows", fetched).
				Int("total_windows", windows).
				Msg("Worker error - returning partial results")
			return bf.assemble(pages, first.TotalCount, windows, fetched),
				fmt.Errorf("worker error (partial data: %d/%d windows): %w", fetched, windows, err)
		}
	}

	log.Info().
		Int("windows", fetched).
		Int("total_count", first.TotalCount).
		Dur("duration", time.Since(start)).
		Msg("Fetch complete")

	return bf.assemble(pages, first.TotalCount, windows, fetched), nil
}

// fetch retrieves one window with the per-window timeout
func (bf *BatchFetcher[T, F]) fetch(ctx context.Context, base listing.Query[F], offset int) (listing.Page[T], error) {
	q := base
	q.Limit = bf.config.PageSize
	q.Offset = offset

	windowCtx, cancel := context.WithTimeout(ctx, bf.config.Timeout)
	defer cancel()

	page, err := bf.source.Fetch(windowCtx, q)
	if err != nil {
		pagesTotal.WithLabelValues("error").Inc()
		return listing.Page[T]{}, err
	}
	pagesTotal.WithLabelValues("success").Inc()
	return page, nil
}

func (bf *BatchFetcher[T, F]) assemble(pages [][]T, total, windows, fetched int) Result[T] {
	items := make([]T, 0, max(total, 0))
	for _, p := range pages {
		items = append(items, p...)
	}
	return Result[T]{Items: items, TotalCount: total, Windows: windows, Fetched: fetched}
}
