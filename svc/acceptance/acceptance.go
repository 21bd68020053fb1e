package acceptance

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrymomot/transitionkit/pkg/authz"
	"github.com/dmitrymomot/transitionkit/pkg/notifications"
	"github.com/dmitrymomot/transitionkit/pkg/statemachine"
)

const EntityType = "acceptance_order"

const (
	StatusDraft     statemachine.State = "DRAFT"
	StatusSubmitted statemachine.State = "SUBMITTED"
	StatusAccepted  statemachine.State = "ACCEPTED"
	StatusRejected  statemachine.State = "REJECTED"
)

const (
	PermissionSubmit = "acceptance.submit"
	PermissionReview = "acceptance.review"
)

var (
	ErrEmptyChecklist   = errors.New("acceptance checklist is empty")
	ErrRejectionReason  = errors.New("rejection reason is required")
	ErrInvoiceRequestID = errors.New("invoice service returned an empty request id")
)

// ChecklistItem is one acceptance criterion.
type ChecklistItem struct {
	ID        string
	Title     string
	Required  bool
	Completed bool
}

// Order is the customer's acceptance of delivered work.
type Order struct {
	ID               string
	Number           string
	Status           string
	ProjectID        string
	ProjectManagerID string
	CustomerID       string
	CreatedByID      string
	ReviewerID       string
	AmountCents      int64
	Checklist        []ChecklistItem
	RejectionReason  string
	AcceptedByID     string
	InvoiceRequestID string
	SubmittedAt      *time.Time
	AcceptedAt       *time.Time
}

// PendingRequired returns the titles of required items not yet completed.
func (o *Order) PendingRequired() []string {
	var out []string
	for _, item := range o.Checklist {
		if item.Required && !item.Completed {
			out = append(out, item.Title)
		}
	}
	return out
}

// Invoicer opens an invoice request for an accepted order and returns its id.
type Invoicer interface {
	CreateInvoiceRequest(ctx context.Context, order *Order) (string, error)
}

type Deps struct {
	Invoicer Invoicer
	Now      func() time.Time
}

// Machine drives an acceptance order.
type Machine struct {
	*statemachine.Machine
	order    *Order
	invoicer Invoicer
	now      func() time.Time
}

func New(order *Order, deps Deps, opts ...statemachine.Option) (*Machine, error) {
	m := &Machine{order: order, invoicer: deps.Invoicer, now: deps.Now}
	if m.now == nil {
		m.now = time.Now
	}

	sm, err := statemachine.NewBuilder(statemachine.StateField{
		Name: "status",
		Get:  func() any { return order.Status },
		Set:  func(s statemachine.State) { order.Status = string(s) },
	}).
		Entity(statemachine.EntityRef{Type: EntityType, ID: order.ID, Name: order.Number}).
		With(statemachine.WithRecipients(notifications.ParticipantsFunc(m.participants))).
		Transition(StatusDraft, StatusSubmitted, m.submit,
			statemachine.Named("submit"),
			statemachine.WithValidator(m.requireChecklist),
			statemachine.RequirePermission(PermissionSubmit),
			statemachine.WithActionType("submit"),
			statemachine.NotifyUsers(notifications.RoleReporter, notifications.RoleProjectManager),
		).
		Transition(StatusSubmitted, StatusAccepted, m.accept,
			statemachine.Named("accept"),
			statemachine.WithValidator(m.requireCompletedChecklist),
			statemachine.RequirePermission(PermissionReview),
			statemachine.WithActionType("accept"),
			statemachine.NotifyUsers(notifications.RoleCreator, notifications.RoleProjectManager),
			statemachine.WithNotificationTemplate("acceptance_accepted"),
		).
		Transition(StatusSubmitted, StatusRejected, nil,
			statemachine.Named("reject"),
			statemachine.WithValidator(func(context.Context, statemachine.State, statemachine.State) error {
				if strings.TrimSpace(order.RejectionReason) == "" {
					return ErrRejectionReason
				}
				return nil
			}),
			statemachine.RequirePermission(PermissionReview),
			statemachine.WithActionType("reject"),
			statemachine.NotifyUsers(notifications.RoleCreator),
		).
		Transition(StatusRejected, StatusDraft, m.reopen,
			statemachine.Named("reopen"),
			statemachine.RequirePermission(PermissionSubmit),
			statemachine.WithActionType("reopen"),
		).
		With(opts...).
		Build()
	if err != nil {
		return nil, err
	}
	m.Machine = sm
	return m, nil
}

func (m *Machine) Submit(ctx context.Context, opts ...statemachine.CallOption) error {
	return m.TransitionTo(ctx, StatusSubmitted, opts...)
}

// Accept requires every required checklist item to be completed and opens
// an invoice request for the order.
func (m *Machine) Accept(ctx context.Context, opts ...statemachine.CallOption) error {
	return m.TransitionTo(ctx, StatusAccepted, opts...)
}

// Reject requires RejectionReason to be set on the order.
func (m *Machine) Reject(ctx context.Context, opts ...statemachine.CallOption) error {
	return m.TransitionTo(ctx, StatusRejected, opts...)
}

func (m *Machine) Reopen(ctx context.Context, opts ...statemachine.CallOption) error {
	return m.TransitionTo(ctx, StatusDraft, opts...)
}

func (m *Machine) requireChecklist(context.Context, statemachine.State, statemachine.State) error {
	if len(m.order.Checklist) == 0 {
		return ErrEmptyChecklist
	}
	return nil
}

func (m *Machine) requireCompletedChecklist(context.Context, statemachine.State, statemachine.State) error {
	if pending := m.order.PendingRequired(); len(pending) > 0 {
		return fmt.Errorf("pending required checklist items: %s", strings.Join(pending, ", "))
	}
	return nil
}

func (m *Machine) submit(context.Context, statemachine.State, statemachine.State, statemachine.Args) error {
	now := m.now()
	m.order.SubmittedAt = &now
	return nil
}

func (m *Machine) accept(ctx context.Context, _, _ statemachine.State, args statemachine.Args) error {
	if m.invoicer != nil {
		id, err := m.invoicer.CreateInvoiceRequest(ctx, m.order)
		if err != nil {
			return fmt.Errorf("create invoice request: %w", err)
		}
		if id == "" {
			return ErrInvoiceRequestID
		}
		m.order.InvoiceRequestID = id
	}
	now := m.now()
	m.order.AcceptedAt = &now
	m.order.AcceptedByID, _ = authz.Identify(args.Actor)
	return nil
}

func (m *Machine) reopen(context.Context, statemachine.State, statemachine.State, statemachine.Args) error {
	m.order.RejectionReason = ""
	m.order.SubmittedAt = nil
	return nil
}

func (m *Machine) participants() notifications.Participants {
	p := notifications.Participants{
		CreatedByID: m.order.CreatedByID,
		ReporterID:  m.order.CustomerID,
		AssigneeID:  m.order.ReviewerID,
	}
	if m.order.ProjectManagerID != "" {
		p.Project = &notifications.ProjectRef{ID: m.order.ProjectID, ManagerID: m.order.ProjectManagerID}
	}
	return p
}
