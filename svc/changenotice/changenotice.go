package changenotice

import (
	"context"
	"strings"
	"time"

	"github.com/dmitrymomot/transitionkit/pkg/authz"
	"github.com/dmitrymomot/transitionkit/pkg/notifications"
	"github.com/dmitrymomot/transitionkit/pkg/statemachine"
)

// EntityType tags change notices in audit rows and notifications.
const EntityType = "change_notice"

const (
	StatusDraft         statemachine.State = "DRAFT"
	StatusPendingReview statemachine.State = "PENDING_REVIEW"
	StatusApproved      statemachine.State = "APPROVED"
	StatusRejected      statemachine.State = "REJECTED"
	StatusImplemented   statemachine.State = "IMPLEMENTED"
	StatusClosed        statemachine.State = "CLOSED"
	StatusCancelled     statemachine.State = "CANCELLED"
)

const (
	PermissionSubmit    = "change_notice.submit"
	PermissionApprove   = "change_notice.approve"
	PermissionImplement = "change_notice.implement"
	PermissionClose     = "change_notice.close"
	PermissionCancel    = "change_notice.cancel"
)

// ChangeNotice is a request to change project scope, design or schedule.
type ChangeNotice struct {
	ID               string
	Number           string
	Title            string
	Description      string
	Reason           string
	Impact           string
	Status           string
	ApprovalNote     string
	RejectionReason  string
	CreatedByID      string
	ApproverIDs      []string
	ApprovedByID     string
	ProjectID        string
	ProjectManagerID string
	SubmittedAt      *time.Time
	ReviewedAt       *time.Time
	ImplementedAt    *time.Time
	ClosedAt         *time.Time
}

// Implementer applies an approved change to the project it targets.
type Implementer interface {
	Implement(ctx context.Context, cn *ChangeNotice) error
}

// Deps are the collaborators a change notice machine calls into. Nil
// collaborators are skipped.
type Deps struct {
	Implementer Implementer
	Now         func() time.Time
}

// Machine drives a single change notice through its review lifecycle.
type Machine struct {
	*statemachine.Machine
	cn          *ChangeNotice
	implementer Implementer
	now         func() time.Time
}

// New builds the machine for cn. opts are applied after the transition
// table, so callers can add auditors, notifiers and hooks.
func New(cn *ChangeNotice, deps Deps, opts ...statemachine.Option) (*Machine, error) {
	m := &Machine{cn: cn, implementer: deps.Implementer, now: deps.Now}
	if m.now == nil {
		m.now = time.Now
	}

	b := statemachine.NewBuilder(statemachine.StateField{
		Name: "status",
		Get:  func() any { return cn.Status },
		Set:  func(s statemachine.State) { cn.Status = string(s) },
	}).
		Entity(statemachine.EntityRef{Type: EntityType, ID: cn.ID, Name: cn.Number}).
		With(statemachine.WithRecipients(notifications.ParticipantsFunc(m.participants))).
		Transition(StatusDraft, StatusPendingReview, m.submit,
			statemachine.Named("submit_for_review"),
			statemachine.WithValidator(m.requireContent),
			statemachine.RequirePermission(PermissionSubmit),
			statemachine.WithActionType("submit"),
			statemachine.NotifyUsers(notifications.RoleApprovers, notifications.RoleProjectManager),
			statemachine.WithNotificationTemplate("change_notice_submitted"),
		).
		Transition(StatusPendingReview, StatusApproved, m.approve,
			statemachine.Named("approve"),
			statemachine.WithValidator(statemachine.Require(
				func() bool { return strings.TrimSpace(cn.ApprovalNote) != "" },
				"approval note is required",
			)),
			statemachine.RequirePermission(PermissionApprove),
			statemachine.WithActionType("approve"),
			statemachine.NotifyUsers(notifications.RoleCreator),
			statemachine.WithNotificationTemplate("change_notice_approved"),
		).
		Transition(StatusPendingReview, StatusRejected, m.reject,
			statemachine.Named("reject"),
			statemachine.WithValidator(statemachine.Require(
				func() bool { return strings.TrimSpace(cn.RejectionReason) != "" },
				"rejection reason is required",
			)),
			statemachine.RequirePermission(PermissionApprove),
			statemachine.WithActionType("reject"),
			statemachine.NotifyUsers(notifications.RoleCreator),
			statemachine.WithNotificationTemplate("change_notice_rejected"),
		).
		Transition(StatusRejected, StatusDraft, m.revise,
			statemachine.Named("revise"),
			statemachine.RequirePermission(PermissionSubmit),
			statemachine.WithActionType("revise"),
		).
		Transition(StatusApproved, StatusImplemented, m.implement,
			statemachine.Named("implement"),
			statemachine.RequirePermission(PermissionImplement),
			statemachine.WithActionType("implement"),
			statemachine.NotifyUsers(notifications.RoleCreator, notifications.RoleProjectManager),
		).
		Transition(StatusImplemented, StatusClosed, m.close,
			statemachine.Named("close"),
			statemachine.RequirePermission(PermissionClose),
			statemachine.WithActionType("close"),
			statemachine.NotifyUsers(notifications.RoleCreator),
		).
		Transition(StatusDraft, StatusCancelled, nil,
			statemachine.Named("cancel_draft"),
			statemachine.RequirePermission(PermissionCancel),
			statemachine.WithActionType("cancel"),
		).
		Transition(StatusPendingReview, StatusCancelled, nil,
			statemachine.Named("cancel_review"),
			statemachine.RequirePermission(PermissionCancel),
			statemachine.WithActionType("cancel"),
			statemachine.NotifyUsers(notifications.RoleApprovers),
		).
		With(opts...)

	sm, err := b.Build()
	if err != nil {
		return nil, err
	}
	m.Machine = sm
	return m, nil
}

// SubmitForReview moves a draft to review. Title, description, reason and
// impact must be filled in.
func (m *Machine) SubmitForReview(ctx context.Context, opts ...statemachine.CallOption) error {
	return m.TransitionTo(ctx, StatusPendingReview, opts...)
}

// Approve requires ApprovalNote to be set on the notice.
func (m *Machine) Approve(ctx context.Context, opts ...statemachine.CallOption) error {
	return m.TransitionTo(ctx, StatusApproved, opts...)
}

// Reject requires RejectionReason to be set on the notice.
func (m *Machine) Reject(ctx context.Context, opts ...statemachine.CallOption) error {
	return m.TransitionTo(ctx, StatusRejected, opts...)
}

// Revise returns a rejected notice to draft.
func (m *Machine) Revise(ctx context.Context, opts ...statemachine.CallOption) error {
	return m.TransitionTo(ctx, StatusDraft, opts...)
}

func (m *Machine) Implement(ctx context.Context, opts ...statemachine.CallOption) error {
	return m.TransitionTo(ctx, StatusImplemented, opts...)
}

func (m *Machine) Close(ctx context.Context, opts ...statemachine.CallOption) error {
	return m.TransitionTo(ctx, StatusClosed, opts...)
}

// Cancel withdraws a notice that is still a draft or under review.
func (m *Machine) Cancel(ctx context.Context, opts ...statemachine.CallOption) error {
	return m.TransitionTo(ctx, StatusCancelled, opts...)
}

func (m *Machine) requireContent(context.Context, statemachine.State, statemachine.State) error {
	var missing []string
	for _, f := range []struct{ name, value string }{
		{"title", m.cn.Title},
		{"description", m.cn.Description},
		{"reason", m.cn.Reason},
		{"impact", m.cn.Impact},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return &MissingFieldsError{Fields: missing}
	}
	return nil
}

func (m *Machine) submit(context.Context, statemachine.State, statemachine.State, statemachine.Args) error {
	now := m.now()
	m.cn.SubmittedAt = &now
	m.cn.RejectionReason = ""
	return nil
}

func (m *Machine) approve(_ context.Context, _, _ statemachine.State, args statemachine.Args) error {
	now := m.now()
	m.cn.ReviewedAt = &now
	m.cn.ApprovedByID, _ = authz.Identify(args.Actor)
	return nil
}

func (m *Machine) reject(context.Context, statemachine.State, statemachine.State, statemachine.Args) error {
	now := m.now()
	m.cn.ReviewedAt = &now
	m.cn.ApprovalNote = ""
	return nil
}

func (m *Machine) revise(context.Context, statemachine.State, statemachine.State, statemachine.Args) error {
	m.cn.SubmittedAt = nil
	m.cn.ReviewedAt = nil
	return nil
}

func (m *Machine) implement(ctx context.Context, _, _ statemachine.State, _ statemachine.Args) error {
	if m.implementer != nil {
		if err := m.implementer.Implement(ctx, m.cn); err != nil {
			return err
		}
	}
	now := m.now()
	m.cn.ImplementedAt = &now
	return nil
}

func (m *Machine) close(context.Context, statemachine.State, statemachine.State, statemachine.Args) error {
	now := m.now()
	m.cn.ClosedAt = &now
	return nil
}

func (m *Machine) participants() notifications.Participants {
	p := notifications.Participants{
		CreatedByID: m.cn.CreatedByID,
		ApproverIDs: m.cn.ApproverIDs,
	}
	if m.cn.ProjectManagerID != "" {
		p.Project = &notifications.ProjectRef{ID: m.cn.ProjectID, ManagerID: m.cn.ProjectManagerID}
	}
	return p
}
