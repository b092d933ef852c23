// Package listing implements the paginated, searchable, sortable list controller.
//
// The controller is an explicit state value plus a pure reducer:
//
//	state, effects := listing.Reduce(cfg, state, listing.NextPage{})
//
// Effects describe the work a host must perform (issue a fetch, schedule a
// debounced search commit). The host feeds the outcome back as events
// (Resolved, SearchCommitted). Runner is a headless host; the terminal UI is
// another.
package listing

import (
	"time"

	"github.com/Sternrassler/thoth-catalogue/pkg/debounce"
	"github.com/Sternrassler/thoth-catalogue/pkg/fetch"
)

// DefaultPageSize is the number of items per page.
const DefaultPageSize = 20

// Config holds controller settings.
type Config struct {
	// PageSize is the window size used for limit and offset steps.
	PageSize int

	// Debounce is the quiet period before a search text is committed.
	Debounce time.Duration

	// Publishers restricts every query to these publisher IDs (nil = all).
	Publishers []string

	// AcceptStale applies responses of superseded requests when they arrive.
	// Default false: only the response of the latest request is applied.
	AcceptStale bool
}

// DefaultConfig returns the default controller configuration.
func DefaultConfig() Config {
	return Config{
		PageSize: DefaultPageSize,
		Debounce: debounce.DefaultDelay,
	}
}

func (c Config) pageSize() int {
	if c.PageSize <= 0 {
		return DefaultPageSize
	}
	return c.PageSize
}

func (c Config) debounceDelay() time.Duration {
	if c.Debounce <= 0 {
		return debounce.DefaultDelay
	}
	return c.Debounce
}

// Window is the offset/limit window of the current page.
// Offset is always a non-negative multiple of PageSize.
type Window struct {
	Limit    int
	Offset   int
	PageSize int
}

// Query is the request built from the controller state.
// Its JSON form is the variables object of the list query.
type Query[F comparable] struct {
	Limit      int      `json:"limit"`
	Offset     int      `json:"offset"`
	Filter     string   `json:"filter"`
	Order      Order[F] `json:"order"`
	Publishers []string `json:"publishers"`
}

// Page is one window of results. It is replaced wholesale on each fetch.
type Page[T any] struct {
	Items      []T
	TotalCount int
}

// Range is the "Displaying X–Y of Z" triple.
type Range struct {
	First int
	Last  int
	Total int
}

// State is everything the controller owns.
type State[T any, F comparable] struct {
	Window Window

	// Search is the text as typed; queries always use it as filter.
	Search string

	Order Order[F]
	Fetch fetch.State[Page[T]]

	// Items and TotalCount mirror the last applied response.
	Items      []T
	TotalCount int

	Initialized bool

	searchToken uint64
	requestSeq  uint64
}

// NewState returns the state before Initialize, sorted by order.
func NewState[T any, F comparable](order Order[F]) State[T, F] {
	if order.Direction == "" {
		order.Direction = Asc
	}
	return State[T, F]{
		Order: order,
		Fetch: fetch.Idle[Page[T]](),
	}
}

// SearchToken identifies the latest scheduled search commit.
func (s State[T, F]) SearchToken() uint64 {
	return s.searchToken
}

// RequestSeq identifies the latest issued fetch.
func (s State[T, F]) RequestSeq() uint64 {
	return s.requestSeq
}

// DisplayRange returns the 1-based range shown to the user.
//
// First is 1 when the offset is 0 and there are results, otherwise the raw
// offset; Last is min(limit+offset, total).
func (s State[T, F]) DisplayRange() Range {
	first := s.Window.Offset
	if s.Window.Offset == 0 && s.TotalCount > 0 {
		first = 1
	}
	last := s.Window.Limit + s.Window.Offset
	if last > s.TotalCount {
		last = s.TotalCount
	}
	return Range{First: first, Last: last, Total: s.TotalCount}
}

// CanNext reports whether NextPage would move the window.
// It is false at the last page and while a request is in flight.
func (s State[T, F]) CanNext() bool {
	if s.Fetch.IsLoading() {
		return false
	}
	return s.Window.Limit+s.Window.Offset < s.TotalCount
}

// CanPrevious reports whether PreviousPage would move the window.
func (s State[T, F]) CanPrevious() bool {
	return s.Window.Offset > 0
}

// CanReload reports whether a manual reload is offered.
// Reload is available when nothing is loaded yet and after a failure.
func (s State[T, F]) CanReload() bool {
	switch s.Fetch.Status() {
	case fetch.NotFetching, fetch.Failed:
		return true
	default:
		return false
	}
}

// query builds the request for the current state.
func (s State[T, F]) query(cfg Config) Query[F] {
	return Query[F]{
		Limit:      s.Window.Limit,
		Offset:     s.Window.Offset,
		Filter:     s.Search,
		Order:      s.Order,
		Publishers: cfg.Publishers,
	}
}
