package statemachine

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"time"
)

// State is the canonical string form of an entity's state value.
type State string

func (s State) String() string {
	return string(s)
}

// StateField binds a machine to the entity attribute that holds its state.
// Name is informational ("status", "stage"); Get may return any value that
// Normalize understands and Set receives the canonical form.
type StateField struct {
	Name string
	Get  func() any
	Set  func(State)
}

// EntityRef is the stable reference used in audit rows, notifications and logs.
type EntityRef struct {
	Type string
	ID   string
	Name string
}

// Args carries the caller's per-call context into validators, handlers and hooks.
type Args struct {
	Actor   any
	Comment string
	Values  map[string]any
}

// Value returns the named value passed with WithValue.
func (a Args) Value(key string) (any, bool) {
	v, ok := a.Values[key]
	return v, ok
}

// String returns the named value when it is a string, "" otherwise.
func (a Args) String(key string) string {
	s, _ := a.Values[key].(string)
	return s
}

// CallOption configures a single TransitionTo call.
type CallOption func(*Args)

// WithActor sets the caller that is checked against permission and role requirements.
func WithActor(actor any) CallOption {
	return func(a *Args) { a.Actor = actor }
}

// WithComment attaches a free-text comment stored in history and audit rows.
func WithComment(comment string) CallOption {
	return func(a *Args) { a.Comment = comment }
}

// WithValue attaches a named value available to handlers and recorded in history.
func WithValue(key string, value any) CallOption {
	return func(a *Args) {
		if a.Values == nil {
			a.Values = make(map[string]any)
		}
		a.Values[key] = value
	}
}

// WithValues merges values into the call arguments.
func WithValues(values map[string]any) CallOption {
	return func(a *Args) {
		if len(values) == 0 {
			return
		}
		if a.Values == nil {
			a.Values = make(map[string]any, len(values))
		}
		maps.Copy(a.Values, values)
	}
}

func newArgs(opts []CallOption) Args {
	var a Args
	for _, opt := range opts {
		if opt != nil {
			opt(&a)
		}
	}
	return a
}

// Handler runs the business logic of a transition. Returning an error aborts
// the transition before the state field is written.
type Handler func(ctx context.Context, from, to State, args Args) error

// Validator decides whether a transition may run. It must be pure: the engine
// calls it once while checking and once more right before the handler.
type Validator func(ctx context.Context, from, to State) error

// Hook runs around every transition of a machine. Hook errors and panics are
// logged and never abort the transition.
type Hook func(ctx context.Context, from, to State, args Args) error

// Action adapts a context-only function to the Handler shape.
func Action(fn func(ctx context.Context) error) Handler {
	return func(ctx context.Context, _, _ State, _ Args) error {
		return fn(ctx)
	}
}

// Effect adapts a function that only needs the call arguments.
func Effect(fn func(ctx context.Context, args Args) error) Handler {
	return func(ctx context.Context, _, _ State, args Args) error {
		return fn(ctx, args)
	}
}

// HookFunc adapts a function that only observes the states to the Hook shape.
func HookFunc(fn func(ctx context.Context, from, to State)) Hook {
	return func(ctx context.Context, from, to State, _ Args) error {
		fn(ctx, from, to)
		return nil
	}
}

// Require builds a Validator from a predicate and the reason reported when it fails.
func Require(pred func() bool, reason string) Validator {
	return func(context.Context, State, State) error {
		if !pred() {
			return errors.New(reason)
		}
		return nil
	}
}

// HistoryEntry is appended for every successful transition.
type HistoryEntry struct {
	From      State
	To        State
	Timestamp time.Time
	Actor     any
	Comment   string
	Values    map[string]any
}

// Normalize converts a stored state value to its canonical string form.
// Enumerated types are supported through fmt.Stringer or a Name() method.
func Normalize(v any) State {
	switch s := v.(type) {
	case nil:
		return ""
	case State:
		return s
	case string:
		return State(s)
	case *State:
		if s == nil {
			return ""
		}
		return *s
	case *string:
		if s == nil {
			return ""
		}
		return State(*s)
	case interface{ Name() string }:
		return State(s.Name())
	case fmt.Stringer:
		return State(s.String())
	default:
		return State(fmt.Sprint(s))
	}
}
