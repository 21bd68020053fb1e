package milestone

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrymomot/transitionkit/pkg/notifications"
	"github.com/dmitrymomot/transitionkit/pkg/statemachine"
)

const EntityType = "project_milestone"

const (
	StatusNotStarted statemachine.State = "NOT_STARTED"
	StatusInProgress statemachine.State = "IN_PROGRESS"
	StatusCompleted  statemachine.State = "COMPLETED"
	StatusDelayed    statemachine.State = "DELAYED"
)

const PermissionManage = "milestone.manage"

var ErrDelayReason = errors.New("delay reason is required")

// Milestone is one stage of a project plan.
type Milestone struct {
	ID           string
	Name         string
	Status       string
	ProjectID    string
	ManagerID    string
	OwnerID      string
	Progress     int
	DelayReason  string
	PlannedStart *time.Time
	PlannedEnd   *time.Time
	ActualStart  *time.Time
	ActualEnd    *time.Time
	ResumedAt    *time.Time
	DelayedAt    *time.Time
}

// ProjectStages advances the owning project once a milestone completes.
type ProjectStages interface {
	AdvanceStage(ctx context.Context, projectID, milestoneID string) error
}

type Deps struct {
	Stages ProjectStages
	Now    func() time.Time
}

type Machine struct {
	*statemachine.Machine
	ms     *Milestone
	stages ProjectStages
	now    func() time.Time
}

func New(ms *Milestone, deps Deps, opts ...statemachine.Option) (*Machine, error) {
	m := &Machine{ms: ms, stages: deps.Stages, now: deps.Now}
	if m.now == nil {
		m.now = time.Now
	}

	sm, err := statemachine.NewBuilder(statemachine.StateField{
		Name: "status",
		Get:  func() any { return ms.Status },
		Set:  func(s statemachine.State) { ms.Status = string(s) },
	}).
		Entity(statemachine.EntityRef{Type: EntityType, ID: ms.ID, Name: ms.Name}).
		With(statemachine.WithRecipients(notifications.ParticipantsFunc(m.participants))).
		Transition(StatusNotStarted, StatusInProgress, m.start,
			statemachine.Named("start"),
			statemachine.RequirePermission(PermissionManage),
			statemachine.WithActionType("start"),
		).
		Transition(StatusInProgress, StatusCompleted, m.complete,
			statemachine.Named("complete"),
			statemachine.RequirePermission(PermissionManage),
			statemachine.WithActionType("complete"),
			statemachine.NotifyUsers(notifications.RoleProjectManager, notifications.RoleAssignee),
		).
		Transition(StatusInProgress, StatusDelayed, m.delay,
			statemachine.Named("delay"),
			statemachine.WithValidator(func(context.Context, statemachine.State, statemachine.State) error {
				if strings.TrimSpace(ms.DelayReason) == "" {
					return ErrDelayReason
				}
				return nil
			}),
			statemachine.RequirePermission(PermissionManage),
			statemachine.WithActionType("delay"),
			statemachine.NotifyUsers(notifications.RoleProjectManager),
			statemachine.WithNotificationTemplate("milestone_delayed"),
		).
		Transition(StatusDelayed, StatusInProgress, m.resume,
			statemachine.Named("resume"),
			statemachine.RequirePermission(PermissionManage),
			statemachine.WithActionType("resume"),
			statemachine.NotifyUsers(notifications.RoleProjectManager),
		).
		With(opts...).
		Build()
	if err != nil {
		return nil, err
	}
	m.Machine = sm
	return m, nil
}

func (m *Machine) Start(ctx context.Context, opts ...statemachine.CallOption) error {
	return m.TransitionTo(ctx, StatusInProgress, opts...)
}

// Complete finishes the milestone and advances the project to its next stage.
func (m *Machine) Complete(ctx context.Context, opts ...statemachine.CallOption) error {
	return m.TransitionTo(ctx, StatusCompleted, opts...)
}

// Delay pauses the milestone with reason.
func (m *Machine) Delay(ctx context.Context, reason string, opts ...statemachine.CallOption) error {
	prev := m.ms.DelayReason
	m.ms.DelayReason = reason
	if err := m.TransitionTo(ctx, StatusDelayed, opts...); err != nil {
		m.ms.DelayReason = prev
		return err
	}
	return nil
}

// Resume returns a delayed milestone to work and clears its delay reason.
func (m *Machine) Resume(ctx context.Context, opts ...statemachine.CallOption) error {
	return m.TransitionTo(ctx, StatusInProgress, opts...)
}

func (m *Machine) start(context.Context, statemachine.State, statemachine.State, statemachine.Args) error {
	now := m.now()
	m.ms.ActualStart = &now
	return nil
}

func (m *Machine) complete(ctx context.Context, _, _ statemachine.State, _ statemachine.Args) error {
	if m.stages != nil {
		if err := m.stages.AdvanceStage(ctx, m.ms.ProjectID, m.ms.ID); err != nil {
			return fmt.Errorf("advance project stage: %w", err)
		}
	}
	now := m.now()
	m.ms.Progress = 100
	m.ms.ActualEnd = &now
	return nil
}

func (m *Machine) delay(context.Context, statemachine.State, statemachine.State, statemachine.Args) error {
	now := m.now()
	m.ms.DelayedAt = &now
	return nil
}

func (m *Machine) resume(context.Context, statemachine.State, statemachine.State, statemachine.Args) error {
	now := m.now()
	m.ms.DelayReason = ""
	m.ms.ResumedAt = &now
	return nil
}

func (m *Machine) participants() notifications.Participants {
	p := notifications.Participants{AssigneeID: m.ms.OwnerID}
	if m.ms.ManagerID != "" {
		p.Project = &notifications.ProjectRef{ID: m.ms.ProjectID, ManagerID: m.ms.ManagerID}
	}
	return p
}
