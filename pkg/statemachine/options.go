package statemachine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dmitrymomot/transitionkit/pkg/audit"
	"github.com/dmitrymomot/transitionkit/pkg/notifications"
)

// Authorizer evaluates a transition's permission and role requirements
// against the caller. authz.Checker is the default implementation.
type Authorizer interface {
	Check(actor any, permission, role string) (bool, string)
}

// Auditor stages an audit row for a completed transition.
type Auditor interface {
	Record(ctx context.Context, entry audit.Entry) error
}

// Notifier fans a transition out to the entity's interested parties.
type Notifier interface {
	Dispatch(ctx context.Context, req notifications.Request) (bool, error)
}

// Outcome classifies a TransitionTo call for observers.
type Outcome string

const (
	OutcomeSuccess  Outcome = "success"
	OutcomeInvalid  Outcome = "invalid"
	OutcomeRejected Outcome = "rejected"
	OutcomeDenied   Outcome = "denied"
	OutcomeFailed   Outcome = "failed"
)

// Observer receives one call per TransitionTo attempt.
type Observer interface {
	ObserveTransition(machine string, from, to State, outcome Outcome, elapsed time.Duration)
}

// Option configures a machine during construction.
type Option func(*Machine) error

// TransitionOption configures the metadata of a single transition definition.
type TransitionOption func(*Definition)

// WithName sets the machine name used in logs and metrics. Defaults to the
// entity type, then to the state field name.
func WithName(name string) Option {
	return func(m *Machine) error {
		m.name = name
		return nil
	}
}

// WithEntity sets the reference recorded in audit rows and notifications.
func WithEntity(ref EntityRef) Option {
	return func(m *Machine) error {
		m.entity = ref
		return nil
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(m *Machine) error {
		if l != nil {
			m.logger = l
		}
		return nil
	}
}

func WithAuthorizer(a Authorizer) Option {
	return func(m *Machine) error {
		if a != nil {
			m.authorizer = a
		}
		return nil
	}
}

func WithAuditor(a Auditor) Option {
	return func(m *Machine) error {
		m.auditor = a
		return nil
	}
}

func WithNotifier(n Notifier) Option {
	return func(m *Machine) error {
		m.notifier = n
		return nil
	}
}

// WithRecipients sets the resolver that maps recipient roles to user ids
// for this machine's entity.
func WithRecipients(r notifications.RecipientResolver) Option {
	return func(m *Machine) error {
		m.recipients = r
		return nil
	}
}

func WithObserver(o Observer) Option {
	return func(m *Machine) error {
		m.observer = o
		return nil
	}
}

// WithClock overrides the time source used for history timestamps.
func WithClock(now func() time.Time) Option {
	return func(m *Machine) error {
		if now != nil {
			m.now = now
		}
		return nil
	}
}

// WithTransition registers a transition from -> to handled by handler.
func WithTransition(from, to State, handler Handler, opts ...TransitionOption) Option {
	return func(m *Machine) error {
		return m.Register(NewDefinition(from, to, handler, opts...))
	}
}

// WithDefinitions registers prepared definitions in order.
func WithDefinitions(defs ...Definition) Option {
	return func(m *Machine) error {
		for i, d := range defs {
			if err := m.Register(d); err != nil {
				return fmt.Errorf("failed to add transition[%d] %s->%s: %w", i, d.From, d.To, err)
			}
		}
		return nil
	}
}

// BeforeHook appends a hook run before every transition's handler.
func BeforeHook(h Hook) Option {
	return func(m *Machine) error {
		if h != nil {
			m.before = append(m.before, h)
		}
		return nil
	}
}

// AfterHook appends a hook run after every successful transition.
func AfterHook(h Hook) Option {
	return func(m *Machine) error {
		if h != nil {
			m.after = append(m.after, h)
		}
		return nil
	}
}

// Named sets the handler name used in logs, history graphs and audit metadata.
func Named(name string) TransitionOption {
	return func(d *Definition) { d.Name = name }
}

func WithValidator(v Validator) TransitionOption {
	return func(d *Definition) { d.Validator = v }
}

// RequirePermission makes the transition require the caller to hold permission.
func RequirePermission(permission string) TransitionOption {
	return func(d *Definition) { d.Permission = permission }
}

// RequireRole makes the transition require the caller to hold role.
func RequireRole(role string) TransitionOption {
	return func(d *Definition) { d.Role = role }
}

// WithActionType sets the audit action tag. Transitions without one are not audited.
func WithActionType(action string) TransitionOption {
	return func(d *Definition) { d.ActionType = action }
}

// NotifyUsers sets the recipient roles notified after the transition.
func NotifyUsers(roles ...string) TransitionOption {
	return func(d *Definition) { d.NotifyUsers = append(d.NotifyUsers, roles...) }
}

func WithNotificationTemplate(name string) TransitionOption {
	return func(d *Definition) { d.NotificationTemplate = name }
}
