package dispatch

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dmitrymomot/transitionkit/pkg/notifications"
	"github.com/dmitrymomot/transitionkit/pkg/statemachine"
)

const EntityType = "installation_dispatch"

const (
	StatusPending    statemachine.State = "PENDING"
	StatusAssigned   statemachine.State = "ASSIGNED"
	StatusInProgress statemachine.State = "IN_PROGRESS"
	StatusCompleted  statemachine.State = "COMPLETED"
	StatusCancelled  statemachine.State = "CANCELLED"
)

const (
	PermissionAssign  = "dispatch.assign"
	PermissionExecute = "dispatch.execute"
	PermissionCancel  = "dispatch.cancel"
)

var (
	ErrNoAssignee   = errors.New("an assignee is required")
	ErrCancelReason = errors.New("cancel reason is required")
	ErrNotStarted   = errors.New("execution start is not recorded")
)

// Ticket is an installation crew dispatch.
type Ticket struct {
	ID               string
	Number           string
	Status           string
	OrderID          string
	ProjectID        string
	ProjectManagerID string
	CreatedByID      string
	ReporterID       string
	AssigneeID       string
	CrewIDs          []string
	CancelReason     string
	ScheduledAt      *time.Time
	ExecutionStart   *time.Time
	ExecutionEnd     *time.Time
}

// Crew books and releases technicians.
type Crew interface {
	Reserve(ctx context.Context, t *Ticket) error
	Release(ctx context.Context, t *Ticket) error
}

type Deps struct {
	Crew Crew
	Now  func() time.Time
}

type Machine struct {
	*statemachine.Machine
	ticket *Ticket
	crew   Crew
	now    func() time.Time
}

func New(t *Ticket, deps Deps, opts ...statemachine.Option) (*Machine, error) {
	m := &Machine{ticket: t, crew: deps.Crew, now: deps.Now}
	if m.now == nil {
		m.now = time.Now
	}

	cancelReason := func(context.Context, statemachine.State, statemachine.State) error {
		if strings.TrimSpace(t.CancelReason) == "" {
			return ErrCancelReason
		}
		return nil
	}

	sm, err := statemachine.NewBuilder(statemachine.StateField{
		Name: "status",
		Get:  func() any { return t.Status },
		Set:  func(s statemachine.State) { t.Status = string(s) },
	}).
		Entity(statemachine.EntityRef{Type: EntityType, ID: t.ID, Name: t.Number}).
		With(statemachine.WithRecipients(notifications.ParticipantsFunc(m.participants))).
		Transition(StatusPending, StatusAssigned, m.assign,
			statemachine.Named("assign"),
			statemachine.WithValidator(statemachine.Require(func() bool { return t.AssigneeID != "" }, ErrNoAssignee.Error())),
			statemachine.RequirePermission(PermissionAssign),
			statemachine.WithActionType("assign"),
			statemachine.NotifyUsers(notifications.RoleAssignee, notifications.RoleTeamMembers),
			statemachine.WithNotificationTemplate("dispatch_assigned"),
		).
		Transition(StatusAssigned, StatusPending, m.unassign,
			statemachine.Named("unassign"),
			statemachine.RequirePermission(PermissionAssign),
			statemachine.WithActionType("unassign"),
			statemachine.NotifyUsers(notifications.RoleAssignee),
		).
		Transition(StatusAssigned, StatusInProgress, m.start,
			statemachine.Named("start"),
			statemachine.RequirePermission(PermissionExecute),
			statemachine.WithActionType("start"),
			statemachine.NotifyUsers(notifications.RoleReporter),
		).
		Transition(StatusInProgress, StatusCompleted, m.complete,
			statemachine.Named("complete"),
			statemachine.WithValidator(statemachine.Require(func() bool { return t.ExecutionStart != nil }, ErrNotStarted.Error())),
			statemachine.RequirePermission(PermissionExecute),
			statemachine.WithActionType("complete"),
			statemachine.NotifyUsers(notifications.RoleCreator, notifications.RoleReporter, notifications.RoleProjectManager),
			statemachine.WithNotificationTemplate("dispatch_completed"),
		).
		Transition(StatusAssigned, StatusCancelled, m.cancel,
			statemachine.Named("cancel_assigned"),
			statemachine.WithValidator(cancelReason),
			statemachine.RequirePermission(PermissionCancel),
			statemachine.WithActionType("cancel"),
			statemachine.NotifyUsers(notifications.RoleAssignee),
		).
		Transition(StatusInProgress, StatusCancelled, m.cancel,
			statemachine.Named("cancel_in_progress"),
			statemachine.WithValidator(cancelReason),
			statemachine.RequirePermission(PermissionCancel),
			statemachine.WithActionType("cancel"),
			statemachine.NotifyUsers(notifications.RoleAssignee, notifications.RoleProjectManager),
		).
		With(opts...).
		Build()
	if err != nil {
		return nil, err
	}
	m.Machine = sm
	return m, nil
}

// Assign hands the ticket to assigneeID. The assignee is restored if the
// transition fails.
func (m *Machine) Assign(ctx context.Context, assigneeID string, opts ...statemachine.CallOption) error {
	prev := m.ticket.AssigneeID
	m.ticket.AssigneeID = assigneeID
	if err := m.TransitionTo(ctx, StatusAssigned, opts...); err != nil {
		m.ticket.AssigneeID = prev
		return err
	}
	return nil
}

// Unassign returns an assigned ticket to the queue.
func (m *Machine) Unassign(ctx context.Context, opts ...statemachine.CallOption) error {
	return m.TransitionTo(ctx, StatusPending, opts...)
}

func (m *Machine) Start(ctx context.Context, opts ...statemachine.CallOption) error {
	return m.TransitionTo(ctx, StatusInProgress, opts...)
}

func (m *Machine) Complete(ctx context.Context, opts ...statemachine.CallOption) error {
	return m.TransitionTo(ctx, StatusCompleted, opts...)
}

// Cancel stops an assigned or running ticket. CancelReason must be set.
func (m *Machine) Cancel(ctx context.Context, opts ...statemachine.CallOption) error {
	return m.TransitionTo(ctx, StatusCancelled, opts...)
}

func (m *Machine) assign(ctx context.Context, _, _ statemachine.State, _ statemachine.Args) error {
	if m.crew != nil {
		return m.crew.Reserve(ctx, m.ticket)
	}
	return nil
}

func (m *Machine) unassign(ctx context.Context, _, _ statemachine.State, _ statemachine.Args) error {
	if m.crew != nil {
		if err := m.crew.Release(ctx, m.ticket); err != nil {
			return err
		}
	}
	m.ticket.AssigneeID = ""
	return nil
}

func (m *Machine) start(context.Context, statemachine.State, statemachine.State, statemachine.Args) error {
	now := m.now()
	m.ticket.ExecutionStart = &now
	return nil
}

func (m *Machine) complete(ctx context.Context, _, _ statemachine.State, _ statemachine.Args) error {
	if m.crew != nil {
		if err := m.crew.Release(ctx, m.ticket); err != nil {
			return err
		}
	}
	now := m.now()
	m.ticket.ExecutionEnd = &now
	return nil
}

func (m *Machine) cancel(ctx context.Context, from, _ statemachine.State, _ statemachine.Args) error {
	if m.crew != nil {
		if err := m.crew.Release(ctx, m.ticket); err != nil {
			return err
		}
	}
	if from == StatusInProgress {
		now := m.now()
		m.ticket.ExecutionEnd = &now
	}
	return nil
}

func (m *Machine) participants() notifications.Participants {
	p := notifications.Participants{
		CreatedByID: m.ticket.CreatedByID,
		ReporterID:  m.ticket.ReporterID,
		AssigneeID:  m.ticket.AssigneeID,
	}
	for _, id := range m.ticket.CrewIDs {
		p.TeamMembers = append(p.TeamMembers, notifications.Ref{ID: id})
	}
	if m.ticket.ProjectManagerID != "" {
		p.Project = &notifications.ProjectRef{ID: m.ticket.ProjectID, ManagerID: m.ticket.ProjectManagerID}
	}
	return p
}
