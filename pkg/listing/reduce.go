package listing

import (
	"time"

	"github.com/Sternrassler/thoth-catalogue/pkg/fetch"
	"github.com/Sternrassler/thoth-catalogue/pkg/graphql"
)

// Event is an input to the reducer.
type Event interface {
	event()
}

// Initialize sets up the first window and issues the first fetch.
type Initialize struct{}

// SearchChanged records typed search text and schedules a debounced commit.
type SearchChanged struct {
	Text string
}

// SearchCommitted is delivered by the host when the debounce delay for Token elapsed.
type SearchCommitted struct {
	Token uint64
}

// SortClicked is a click on a sortable column.
type SortClicked[F comparable] struct {
	Field F
}

// NextPage moves one window forward.
type NextPage struct{}

// PreviousPage moves one window back.
type PreviousPage struct{}

// Reload re-issues the query for the current window.
type Reload struct{}

// Resolved is delivered by the host when the fetch Seq completed.
type Resolved[T any] struct {
	Seq  uint64
	Page Page[T]
	Err  error
}

func (Initialize) event() {}
func (SearchChanged) event() {}
func (SearchCommitted) event() {}
func (SortClicked[F]) event() {}
func (NextPage) event() {}
func (PreviousPage) event() {}
func (Reload) event() {}
func (Resolved[T]) event() {}

// Effect is work requested by the reducer.
type Effect interface {
	effect()
}

// FetchEffect asks the host to execute Query and deliver Resolved{Seq: Seq}.
type FetchEffect[F comparable] struct {
	Seq   uint64
	Query Query[F]
}

// ScheduleCommitEffect asks the host to deliver SearchCommitted{Token} after Delay.
// A newer ScheduleCommitEffect supersedes older ones.
type ScheduleCommitEffect struct {
	Token uint64
	Delay time.Duration
}

func (FetchEffect[F]) effect() {}
func (ScheduleCommitEffect) effect() {}

// Reduce applies ev to s and returns the new state and the effects to run.
// It performs no I/O and never blocks.
func Reduce[T any, F comparable](cfg Config, s State[T, F], ev Event) (State[T, F], []Effect) {
	switch e := ev.(type) {
	case Initialize:
		size := cfg.pageSize()
		s.Window = Window{Limit: size, Offset: 0, PageSize: size}
		s.Initialized = true
		return issue(cfg, s)

	case SearchChanged:
		s.Search = e.Text
		s.Window.Offset = 0
		s.searchToken++
		return s, []Effect{ScheduleCommitEffect{Token: s.searchToken, Delay: cfg.debounceDelay()}}

	case SearchCommitted:
		if e.Token != s.searchToken {
			return s, nil
		}
		return issue(cfg, s)

	case SortClicked[F]:
		s.Order = Toggle(s.Order, e.Field)
		s.Window.Offset = 0
		return issue(cfg, s)

	case NextPage:
		if !s.CanNext() {
			return s, nil
		}
		s.Window.Offset += s.Window.PageSize
		return issue(cfg, s)

	case PreviousPage:
		if !s.CanPrevious() {
			return s, nil
		}
		s.Window.Offset -= s.Window.PageSize
		if s.Window.Offset < 0 {
			s.Window.Offset = 0
		}
		return issue(cfg, s)

	case Reload:
		if !s.CanReload() {
			return s, nil
		}
		return issue(cfg, s)

	case Resolved[T]:
		return resolve(cfg, s, e), nil
	}

	return s, nil
}

// issue starts a new request for the current window.
func issue[T any, F comparable](cfg Config, s State[T, F]) (State[T, F], []Effect) {
	if s.Window.PageSize <= 0 {
		s.Window.PageSize = cfg.pageSize()
	}
	s.Window.Limit = s.Window.PageSize
	s.requestSeq++
	s.Fetch = s.Fetch.Apply(fetch.Reset[Page[T]]()).Apply(fetch.Start[Page[T]](s.requestSeq))
	return s, []Effect{FetchEffect[F]{Seq: s.requestSeq, Query: s.query(cfg)}}
}

// resolve applies a completed fetch. Responses of superseded requests are
// dropped unless cfg.AcceptStale is set. Errors are stored normalized.
func resolve[T any, F comparable](cfg Config, s State[T, F], r Resolved[T]) State[T, F] {
	if r.Seq == 0 || r.Seq > s.requestSeq {
		return s
	}
	if r.Seq != s.requestSeq && !cfg.AcceptStale {
		return s
	}

	if r.Err != nil {
		s.Fetch = s.Fetch.Apply(fetch.Fail[Page[T]](r.Seq, graphql.Normalize(r.Err)))
		s.Items = nil
		s.TotalCount = 0
		return s
	}

	s.Fetch = s.Fetch.Apply(fetch.Succeed(r.Seq, r.Page))
	s.Items = r.Page.Items
	s.TotalCount = r.Page.TotalCount
	return s
}
