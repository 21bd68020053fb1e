package statemachine

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"time"

	"github.com/dmitrymomot/transitionkit/pkg/audit"
	"github.com/dmitrymomot/transitionkit/pkg/authz"
	"github.com/dmitrymomot/transitionkit/pkg/logger"
	"github.com/dmitrymomot/transitionkit/pkg/notifications"
)

// Machine wraps one entity's state field with a registry of legal
// transitions. A machine is request-scoped and not safe for concurrent use;
// the caller's unit of work guards concurrent transitions on the same entity.
type Machine struct {
	name   string
	field  StateField
	entity EntityRef

	transitions map[transitionKey]Definition
	order       []transitionKey
	before      []Hook
	after       []Hook
	history     []HistoryEntry

	authorizer Authorizer
	auditor    Auditor
	notifier   Notifier
	recipients notifications.RecipientResolver
	observer   Observer
	logger     *slog.Logger
	now        func() time.Time
}

// New creates a machine around field and applies opts in order, so
// transitions and hooks keep their declaration order.
func New(field StateField, opts ...Option) (*Machine, error) {
	if field.Get == nil || field.Set == nil {
		return nil, ErrInvalidStateField
	}

	m := &Machine{
		field:       field,
		transitions: make(map[transitionKey]Definition),
		authorizer:  authz.Checker{},
		logger:      logger.Discard(),
		now:         time.Now,
	}

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(m); err != nil {
			return nil, err
		}
	}

	if m.name == "" {
		m.name = m.entity.Type
	}
	if m.name == "" {
		m.name = field.Name
	}

	return m, nil
}

// MustNew is like New but panics on configuration errors.
func MustNew(field StateField, opts ...Option) *Machine {
	m, err := New(field, opts...)
	if err != nil {
		panic(fmt.Sprintf("failed to create state machine: %v", err))
	}
	return m
}

// Register adds a definition. At most one definition may exist per
// (from, to) pair; several sources may lead to the same target.
func (m *Machine) Register(def Definition) error {
	if def.From == "" || def.To == "" {
		return ErrInvalidDefinition
	}
	if def.Name == "" {
		def.Name = string(def.From) + "->" + string(def.To)
	}

	key := transitionKey{from: def.From, to: def.To}
	if existing, ok := m.transitions[key]; ok {
		return fmt.Errorf("%w: %s->%s (handler %q)", ErrDuplicateTransition, def.From, def.To, existing.Name)
	}

	m.transitions[key] = def.clone()
	m.order = append(m.order, key)
	return nil
}

// Name returns the machine name used in logs and metrics.
func (m *Machine) Name() string {
	return m.name
}

// Entity returns the reference of the wrapped entity.
func (m *Machine) Entity() EntityRef {
	return m.entity
}

// StateFieldName returns the name of the managed state attribute.
func (m *Machine) StateFieldName() string {
	return m.field.Name
}

// CurrentState reads and normalizes the entity's state field.
func (m *Machine) CurrentState() State {
	return Normalize(m.field.Get())
}

// CanTransitionTo reports whether target is reachable from the current state
// right now, with a human-readable reason when it is not.
func (m *Machine) CanTransitionTo(ctx context.Context, target State) (bool, string) {
	from := m.CurrentState()

	def, reason, ok := m.lookup(from, target)
	if !ok {
		return false, reason
	}

	if err := m.validate(ctx, def, from, target); err != nil {
		return false, "validation failed: " + err.Error()
	}

	return true, ""
}

// TransitionTo moves the entity to target. The state field is written only
// after the structural check, authorization, validation and the handler all
// succeed. Hook, audit and notification failures are logged and never
// returned.
func (m *Machine) TransitionTo(ctx context.Context, target State, opts ...CallOption) (err error) {
	args := newArgs(opts)
	from := m.CurrentState()
	started := m.now()

	outcome := OutcomeFailed
	defer func() {
		if m.observer != nil {
			m.observer.ObserveTransition(m.name, from, target, outcome, m.now().Sub(started))
		}
	}()

	def, reason, ok := m.lookup(from, target)
	if !ok {
		outcome = OutcomeInvalid
		return &InvalidStateTransitionError{From: from, To: target, Reason: reason}
	}
	if verr := m.validate(ctx, def, from, target); verr != nil {
		outcome = OutcomeRejected
		return newValidationError(from, target, verr)
	}

	if def.Permission != "" || def.Role != "" {
		if allowed, why := m.authorizer.Check(args.Actor, def.Permission, def.Role); !allowed {
			outcome = OutcomeDenied
			return &PermissionDeniedError{
				From:       from,
				To:         target,
				Permission: def.Permission,
				Role:       def.Role,
				Reason:     why,
			}
		}
	}

	m.runHooks(ctx, "before", m.before, from, target, args)

	if verr := m.validate(ctx, def, from, target); verr != nil {
		outcome = OutcomeRejected
		return newValidationError(from, target, verr)
	}

	if def.Handler != nil {
		if err := def.Handler(ctx, from, target, args); err != nil {
			return err
		}
	}

	m.field.Set(target)
	m.history = append(m.history, HistoryEntry{
		From:      from,
		To:        target,
		Timestamp: m.now(),
		Actor:     args.Actor,
		Comment:   args.Comment,
		Values:    maps.Clone(args.Values),
	})

	actorID, _ := authz.Identify(args.Actor)
	m.logger.DebugContext(ctx, "state transition completed",
		logger.Machine(m.name),
		logger.Entity(m.entity.Type, m.entity.ID),
		logger.Transition(string(from), string(target)),
		logger.ActorID(actorID),
		logger.Duration(m.now().Sub(started)),
		slog.String("handler", def.Name),
	)

	m.record(ctx, def, from, target, args)
	m.notify(ctx, def, from, target, args)
	m.runHooks(ctx, "after", m.after, from, target, args)

	outcome = OutcomeSuccess
	return nil
}

// AllowedTransitions lists the targets registered from the current state, in
// declaration order. Validators are not evaluated.
func (m *Machine) AllowedTransitions() []State {
	current := m.CurrentState()
	var out []State
	for _, key := range m.order {
		if key.from == current {
			out = append(out, key.to)
		}
	}
	return out
}

// History returns a copy of the transitions performed by this instance.
func (m *Machine) History() []HistoryEntry {
	return slices.Clone(m.history)
}

// Definitions returns the registered transition table in declaration order.
func (m *Machine) Definitions() []Definition {
	out := make([]Definition, 0, len(m.order))
	for _, key := range m.order {
		out = append(out, m.transitions[key].clone())
	}
	return out
}

// Definition returns the rule registered for from -> to.
func (m *Machine) Definition(from, to State) (Definition, bool) {
	d, ok := m.transitions[transitionKey{from: from, to: to}]
	if !ok {
		return Definition{}, false
	}
	return d.clone(), true
}

// States returns every state mentioned by the transition table, sorted.
func (m *Machine) States() []State {
	seen := make(map[State]struct{}, len(m.order)*2)
	for _, key := range m.order {
		seen[key.from] = struct{}{}
		seen[key.to] = struct{}{}
	}
	return slices.Sorted(maps.Keys(seen))
}

func (m *Machine) lookup(from, to State) (Definition, string, bool) {
	if from == to {
		return Definition{}, "already target state", false
	}
	def, ok := m.transitions[transitionKey{from: from, to: to}]
	if !ok {
		return Definition{}, fmt.Sprintf("no rule defined from %s to %s", from, to), false
	}
	return def, "", true
}

// validate runs the definition's validator, turning panics into errors.
func (m *Machine) validate(ctx context.Context, def Definition, from, to State) (err error) {
	if def.Validator == nil {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return def.Validator(ctx, from, to)
}

func (m *Machine) runHooks(ctx context.Context, kind string, hooks []Hook, from, to State, args Args) {
	for i, h := range hooks {
		if err := safeCall(func() error { return h(ctx, from, to, args) }); err != nil {
			m.logger.WarnContext(ctx, "state machine hook failed",
				logger.Machine(m.name),
				logger.Hook(kind, i),
				logger.Entity(m.entity.Type, m.entity.ID),
				logger.Transition(string(from), string(to)),
				logger.Error(err),
			)
		}
	}
}

func (m *Machine) record(ctx context.Context, def Definition, from, to State, args Args) {
	if def.ActionType == "" || m.auditor == nil {
		return
	}

	err := safeCall(func() error {
		actorID, actorName := authz.Identify(args.Actor)
		return m.auditor.Record(ctx, audit.Entry{
			EntityType:   m.entity.Type,
			EntityID:     m.entity.ID,
			FromState:    string(from),
			ToState:      string(to),
			OperatorID:   actorID,
			OperatorName: actorName,
			ActionType:   def.ActionType,
			Comment:      args.Comment,
			ExtraData:    maps.Clone(args.Values),
		})
	})
	if err != nil {
		m.logger.ErrorContext(ctx, "failed to record transition audit entry",
			logger.Machine(m.name),
			logger.Entity(m.entity.Type, m.entity.ID),
			logger.Transition(string(from), string(to)),
			logger.ActionType(def.ActionType),
			logger.Error(err),
		)
	}
}

func (m *Machine) notify(ctx context.Context, def Definition, from, to State, args Args) {
	if len(def.NotifyUsers) == 0 || m.notifier == nil {
		return
	}
	if m.recipients == nil {
		m.logger.WarnContext(ctx, "transition declares recipients but machine has no resolver",
			logger.Machine(m.name),
			logger.Transition(string(from), string(to)),
		)
		return
	}

	var delivered bool
	err := safeCall(func() error {
		actorID, actorName := authz.Identify(args.Actor)
		req := notifications.Request{
			Roles:    slices.Clone(def.NotifyUsers),
			Template: def.NotificationTemplate,
			Resolver: m.recipients,
			Message: notifications.Message{
				EntityType: m.entity.Type,
				EntityID:   m.entity.ID,
				EntityName: m.entity.Name,
				From:       string(from),
				To:         string(to),
				ActorID:    actorID,
				ActorName:  actorName,
				Comment:    args.Comment,
				Data:       maps.Clone(args.Values),
			},
		}

		var derr error
		delivered, derr = m.notifier.Dispatch(ctx, req)
		return derr
	})
	if err != nil || !delivered {
		m.logger.WarnContext(ctx, "transition notifications were not fully delivered",
			logger.Machine(m.name),
			logger.Entity(m.entity.Type, m.entity.ID),
			logger.Transition(string(from), string(to)),
			logger.Error(err),
		)
	}
}

// safeCall runs fn and converts a panic into an error.
func safeCall(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn()
}
