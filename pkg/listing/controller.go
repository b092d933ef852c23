package listing

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Source executes list queries for items of type T sorted by fields of type F.
type Source[T any, F comparable] interface {
	Fetch(ctx context.Context, q Query[F]) (Page[T], error)
}

// SourceFunc adapts a function to Source.
type SourceFunc[T any, F comparable] func(ctx context.Context, q Query[F]) (Page[T], error)

// Fetch calls f.
func (f SourceFunc[T, F]) Fetch(ctx context.Context, q Query[F]) (Page[T], error) {
	return f(ctx, q)
}

// Controller owns a State and applies events to it through Reduce.
// It is not safe for concurrent use; drive it from one event loop.
type Controller[T any, F comparable] struct {
	cfg    Config
	state  State[T, F]
	logger zerolog.Logger
}

// NewController creates a controller sorted by order. Call Initialize to issue the first fetch.
func NewController[T any, F comparable](cfg Config, order Order[F]) *Controller[T, F] {
	return &Controller[T, F]{
		cfg:    cfg,
		state:  NewState[T](order),
		logger: log.With().Str("component", "listing").Logger(),
	}
}

// Config returns the controller configuration.
func (c *Controller[T, F]) Config() Config {
	return c.cfg
}

// State returns the current state.
func (c *Controller[T, F]) State() State[T, F] {
	return c.state
}

// Apply reduces ev into the state and returns the effects to execute.
func (c *Controller[T, F]) Apply(ev Event) []Effect {
	next, effects := Reduce(c.cfg, c.state, ev)
	c.state = next

	LogEvent[T, F](c.logger.Debug(), ev).
		Int("offset", next.Window.Offset).
		Str("fetch", next.Fetch.Status().String()).
		Int("effects", len(effects)).
		Msg("Listing event applied")

	return effects
}

// Initialize sets offset 0 and limit to the page size and issues the first fetch.
func (c *Controller[T, F]) Initialize() []Effect {
	return c.Apply(Initialize{})
}

// ChangeSearch stores text, resets the offset and schedules a debounced commit.
func (c *Controller[T, F]) ChangeSearch(text string) []Effect {
	return c.Apply(SearchChanged{Text: text})
}

// CommitSearch delivers an elapsed debounce timer.
func (c *Controller[T, F]) CommitSearch(token uint64) []Effect {
	return c.Apply(SearchCommitted{Token: token})
}

// ChangeSort toggles the order on field, resets the offset and fetches.
func (c *Controller[T, F]) ChangeSort(field F) []Effect {
	return c.Apply(SortClicked[F]{Field: field})
}

// NextPage advances one page unless the last page is shown.
func (c *Controller[T, F]) NextPage() []Effect {
	return c.Apply(NextPage{})
}

// PreviousPage goes back one page unless the first page is shown.
func (c *Controller[T, F]) PreviousPage() []Effect {
	return c.Apply(PreviousPage{})
}

// Reload re-issues the current query when a reload is offered.
func (c *Controller[T, F]) Reload() []Effect {
	return c.Apply(Reload{})
}

// Resolve applies the outcome of fetch seq.
func (c *Controller[T, F]) Resolve(seq uint64, page Page[T], err error) {
	c.Apply(Resolved[T]{Seq: seq, Page: page, Err: err})
}

// DisplayRange returns the current "Displaying X–Y of Z" triple.
func (c *Controller[T, F]) DisplayRange() Range {
	return c.state.DisplayRange()
}

// LogEvent adds the name of ev to e, with the clicked field of a sort click
// and the sequence number of a fetch result.
func LogEvent[T any, F comparable](e *zerolog.Event, ev Event) *zerolog.Event {
	switch ev := ev.(type) {
	case Initialize:
		return e.Str("event", "initialize")
	case SearchChanged:
		return e.Str("event", "search_changed")
	case SearchCommitted:
		return e.Str("event", "search_committed")
	case NextPage:
		return e.Str("event", "next_page")
	case PreviousPage:
		return e.Str("event", "previous_page")
	case Reload:
		return e.Str("event", "reload")
	case SortClicked[F]:
		return e.Str("event", "sort_clicked").Str("field", fmt.Sprint(ev.Field))
	case Resolved[T]:
		e = e.Str("event", "resolved").Uint64("seq", ev.Seq)
		if ev.Err != nil {
			e = e.AnErr("fetch_error", ev.Err)
		}
		return e
	default:
		return e.Str("event", fmt.Sprintf("%T", ev))
	}
}
