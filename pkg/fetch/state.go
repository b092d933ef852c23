// Package fetch wraps a single in-flight API request in a tagged lifecycle state.
//
// A State moves through NotFetching, Fetching, Fetched and Failed. Every new
// request supersedes the previous state completely: payloads and errors of an
// older request are never merged with a newer one.
package fetch

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for fetch state transitions.
var (
	transitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalogue_fetch_transitions_total",
		Help: "Total fetch state transitions by target status",
	}, []string{"status"})
)

// Status is the tag of a fetch lifecycle state.
type Status int

const (
	// NotFetching means no request has been issued, or the state was reset.
	NotFetching Status = iota

	// Fetching means a request is in flight.
	Fetching

	// Fetched means the last request succeeded and a payload is available.
	Fetched

	// Failed means the last request failed.
	Failed
)

// String returns the lower-case name of the status.
func (s Status) String() string {
	switch s {
	case NotFetching:
		return "not_fetching"
	case Fetching:
		return "fetching"
	case Fetched:
		return "fetched"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// State is the lifecycle state of one request producing a payload of type T.
// The zero value is NotFetching.
type State[T any] struct {
	status  Status
	seq     uint64
	payload T
	err     error

	// last successful payload, kept across later failures
	last    T
	hasLast bool
}

// Idle returns a NotFetching state.
func Idle[T any]() State[T] {
	return State[T]{}
}

// Status returns the state tag.
func (s State[T]) Status() Status {
	return s.status
}

// Seq returns the sequence number of the request this state belongs to.
func (s State[T]) Seq() uint64 {
	return s.seq
}

// Payload returns the payload when the state is Fetched.
func (s State[T]) Payload() (T, bool) {
	if s.status != Fetched {
		var zero T
		return zero, false
	}
	return s.payload, true
}

// Err returns the failure when the state is Failed, nil otherwise.
func (s State[T]) Err() error {
	if s.status != Failed {
		return nil
	}
	return s.err
}

// Last returns the last payload that was successfully fetched by this wrapper.
func (s State[T]) Last() (T, bool) {
	return s.last, s.hasLast
}

// IsLoading reports whether a request is in flight.
func (s State[T]) IsLoading() bool {
	return s.status == Fetching
}

// Action is a requested transition. Use Reset, Start, Succeed or Fail to build one.
type Action[T any] struct {
	to      Status
	seq     uint64
	payload T
	err     error
}

// Reset returns an action that moves the state back to NotFetching.
func Reset[T any]() Action[T] {
	return Action[T]{to: NotFetching}
}

// Start returns an action marking request seq as in flight.
func Start[T any](seq uint64) Action[T] {
	return Action[T]{to: Fetching, seq: seq}
}

// Succeed returns an action resolving request seq with payload.
func Succeed[T any](seq uint64, payload T) Action[T] {
	return Action[T]{to: Fetched, seq: seq, payload: payload}
}

// Fail returns an action resolving request seq with err.
func Fail[T any](seq uint64, err error) Action[T] {
	return Action[T]{to: Failed, seq: seq, err: err}
}

// Apply performs the transition described by a and returns the new state.
//
// Applying the same action twice yields the same state. The new state never
// carries the payload or error of a previous request.
func (s State[T]) Apply(a Action[T]) State[T] {
	next := State[T]{
		status:  a.to,
		seq:     a.seq,
		last:    s.last,
		hasLast: s.hasLast,
	}

	switch a.to {
	case Fetched:
		next.payload = a.payload
		next.last = a.payload
		next.hasLast = true
	case Failed:
		next.err = a.err
	}

	if next.status != s.status || next.seq != s.seq {
		transitionsTotal.WithLabelValues(next.status.String()).Inc()
	}

	return next
}
