package listing

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Sternrassler/thoth-catalogue/pkg/debounce"
)

var (
	fetchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "catalogue_listing_fetch_duration_seconds",
		Help:    "Duration of list fetches issued by the runner",
		Buckets: prometheus.DefBuckets,
	}, []string{"result"})

	staleResponsesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "catalogue_listing_stale_responses_total",
		Help: "Total number of responses that arrived after a newer request was issued",
	})
)

// ErrNilSource is returned by NewRunner when no source is given.
var ErrNilSource = errors.New("listing: source must not be nil")

// eventBuffer is the capacity of the runner event queue.
const eventBuffer = 64

// Runner hosts a Controller on its own goroutine and executes its effects:
// fetches run against a Source and debounced search commits run on a timer.
//
// All methods are safe for concurrent use.
type Runner[T any, F comparable] struct {
	ctl       *Controller[T, F]
	source    Source[T, F]
	debouncer *debounce.Debouncer[uint64]
	events    chan Event
	logger    zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	stateMu sync.RWMutex
	state   State[T, F]

	subMu  sync.Mutex
	subs   map[int]func(State[T, F])
	nextID int

	busyMu          sync.Mutex
	outstanding     int
	idle            chan struct{}
	debouncePending bool
}

// NewRunner starts a runner for source. The runner stops when ctx is
// cancelled or Close is called. Dispatch Initialize to load the first page.
func NewRunner[T any, F comparable](ctx context.Context, cfg Config, order Order[F], source Source[T, F]) (*Runner[T, F], error) {
	if source == nil {
		return nil, ErrNilSource
	}

	ctx, cancel := context.WithCancel(ctx)
	r := &Runner[T, F]{
		ctl:    NewController[T](cfg, order),
		source: source,
		events: make(chan Event, eventBuffer),
		logger: log.With().Str("component", "listing-runner").Logger(),
		ctx:    ctx,
		cancel: cancel,
		subs:   make(map[int]func(State[T, F])),
		idle:   make(chan struct{}),
	}
	r.state = r.ctl.State()
	r.debouncer = debounce.New(cfg.debounceDelay(), r.commitSearch)

	r.wg.Add(1)
	go r.loop()

	return r, nil
}

// Dispatch queues ev. It returns false when the runner is closed.
func (r *Runner[T, F]) Dispatch(ev Event) bool {
	if r.ctx.Err() != nil {
		return false
	}

	r.add(1)
	select {
	case r.events <- ev:
		return true
	case <-r.ctx.Done():
		r.add(-1)
		return false
	}
}

// Initialize loads the first page.
func (r *Runner[T, F]) Initialize() bool { return r.Dispatch(Initialize{}) }

// Search records typed text; the fetch follows after the debounce delay.
func (r *Runner[T, F]) Search(text string) bool { return r.Dispatch(SearchChanged{Text: text}) }

// Sort toggles the order on field.
func (r *Runner[T, F]) Sort(field F) bool { return r.Dispatch(SortClicked[F]{Field: field}) }

// Next moves one page forward.
func (r *Runner[T, F]) Next() bool { return r.Dispatch(NextPage{}) }

// Previous moves one page back.
func (r *Runner[T, F]) Previous() bool { return r.Dispatch(PreviousPage{}) }

// Reload re-issues the current query.
func (r *Runner[T, F]) Reload() bool { return r.Dispatch(Reload{}) }

// Snapshot returns the latest state.
func (r *Runner[T, F]) Snapshot() State[T, F] {
	r.stateMu.RLock()
	defer r.stateMu.RUnlock()
	return r.state
}

// Subscribe registers fn to be called with every new state.
// fn runs on the runner goroutine and must not block. The returned
// function removes the subscription.
func (r *Runner[T, F]) Subscribe(fn func(State[T, F])) func() {
	r.subMu.Lock()
	id := r.nextID
	r.nextID++
	r.subs[id] = fn
	r.subMu.Unlock()

	return func() {
		r.subMu.Lock()
		delete(r.subs, id)
		r.subMu.Unlock()
	}
}

// WaitIdle blocks until no event is queued, no fetch is in flight and no
// search commit is pending, or until ctx is done.
func (r *Runner[T, F]) WaitIdle(ctx context.Context) error {
	for {
		r.busyMu.Lock()
		if r.outstanding == 0 {
			r.busyMu.Unlock()
			return nil
		}
		ch := r.idle
		r.busyMu.Unlock()

		select {
		case <-ch:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Close stops the runner and waits for in-flight fetches to return.
func (r *Runner[T, F]) Close() {
	r.debouncer.Cancel()
	r.cancel()
	r.wg.Wait()
}

func (r *Runner[T, F]) loop() {
	defer r.wg.Done()

	for {
		select {
		case <-r.ctx.Done():
			return
		case ev := <-r.events:
			r.handle(ev)
			r.add(-1)
		}
	}
}

func (r *Runner[T, F]) handle(ev Event) {
	if res, ok := ev.(Resolved[T]); ok && res.Seq != r.ctl.State().RequestSeq() {
		staleResponsesTotal.Inc()
		r.logger.Debug().
			Uint64("seq", res.Seq).
			Uint64("latest", r.ctl.State().RequestSeq()).
			Msg("Stale response")
	}

	effects := r.ctl.Apply(ev)
	next := r.ctl.State()

	r.stateMu.Lock()
	r.state = next
	r.stateMu.Unlock()

	for _, eff := range effects {
		switch e := eff.(type) {
		case FetchEffect[F]:
			r.startFetch(e)
		case ScheduleCommitEffect:
			r.scheduleCommit(e)
		}
	}

	r.subMu.Lock()
	subs := make([]func(State[T, F]), 0, len(r.subs))
	for _, fn := range r.subs {
		subs = append(subs, fn)
	}
	r.subMu.Unlock()

	for _, fn := range subs {
		fn(next)
	}
}

func (r *Runner[T, F]) startFetch(e FetchEffect[F]) {
	r.add(1)
	r.wg.Add(1)

	go func() {
		defer r.wg.Done()
		defer r.add(-1)

		start := time.Now()
		page, err := r.source.Fetch(r.ctx, e.Query)

		result := "success"
		if err != nil {
			result = "error"
			if r.ctx.Err() == nil {
				r.logger.Warn().
					Err(err).
					Uint64("seq", e.Seq).
					Int("offset", e.Query.Offset).
					Str("filter", e.Query.Filter).
					Msg("List fetch failed")
			}
		}
		fetchDuration.WithLabelValues(result).Observe(time.Since(start).Seconds())

		r.Dispatch(Resolved[T]{Seq: e.Seq, Page: page, Err: err})
	}()
}

func (r *Runner[T, F]) scheduleCommit(e ScheduleCommitEffect) {
	r.busyMu.Lock()
	if !r.debouncePending {
		r.debouncePending = true
		r.outstanding++
	}
	r.busyMu.Unlock()

	r.debouncer.Input(e.Token)
}

// commitSearch runs on the debounce timer goroutine.
func (r *Runner[T, F]) commitSearch(token uint64) {
	r.busyMu.Lock()
	wasPending := r.debouncePending
	r.debouncePending = false
	r.busyMu.Unlock()

	// Queue the commit before releasing the pending slot so the runner never
	// looks idle in between.
	r.Dispatch(SearchCommitted{Token: token})
	if wasPending {
		r.add(-1)
	}
}

func (r *Runner[T, F]) add(delta int) {
	r.busyMu.Lock()
	defer r.busyMu.Unlock()

	r.outstanding += delta
	if r.outstanding == 0 {
		close(r.idle)
		r.idle = make(chan struct{})
	}
}
