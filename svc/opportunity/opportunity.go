package opportunity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrymomot/transitionkit/pkg/notifications"
	"github.com/dmitrymomot/transitionkit/pkg/statemachine"
)

const EntityType = "sales_opportunity"

const (
	PermissionAdvance = "opportunity.advance"
	PermissionClose   = "opportunity.close"
)

var (
	ErrUnknownStage = errors.New("unknown opportunity stage")
	ErrLostReason   = errors.New("lost reason is required")
	ErrNoAmount     = errors.New("estimated amount is required before a proposal")
)

// Opportunity is a deal in the sales pipeline.
type Opportunity struct {
	ID             string
	Name           string
	Stage          Stage
	OwnerID        string
	CreatedByID    string
	CustomerID     string
	AmountCents    int64
	Score          int
	RiskLevel      RiskLevel
	LostReason     string
	StageChangedAt *time.Time
	ClosedAt       *time.Time
}

// Scorer rates an opportunity's health for the stage it is moving to.
type Scorer interface {
	Score(ctx context.Context, opp *Opportunity, stage Stage) (int, error)
}

type Deps struct {
	Scorer Scorer
	Now    func() time.Time
}

type Machine struct {
	*statemachine.Machine
	opp    *Opportunity
	scorer Scorer
	now    func() time.Time
}

func New(opp *Opportunity, deps Deps, opts ...statemachine.Option) (*Machine, error) {
	m := &Machine{opp: opp, scorer: deps.Scorer, now: deps.Now}
	if m.now == nil {
		m.now = time.Now
	}

	b := statemachine.NewBuilder(statemachine.StateField{
		Name: "stage",
		Get:  func() any { return opp.Stage },
		Set: func(s statemachine.State) {
			if st, err := ParseStage(string(s)); err == nil {
				opp.Stage = st
			}
		},
	}).
		Entity(statemachine.EntityRef{Type: EntityType, ID: opp.ID, Name: opp.Name}).
		With(statemachine.WithRecipients(notifications.ParticipantsFunc(m.participants))).
		Transition(state(StageLead), state(StageQualified), m.move,
			statemachine.Named("qualify"),
			statemachine.RequirePermission(PermissionAdvance),
			statemachine.WithActionType("qualify"),
		).
		Transition(state(StageQualified), state(StageProposal), m.move,
			statemachine.Named("propose"),
			statemachine.WithValidator(statemachine.Require(func() bool { return opp.AmountCents > 0 }, ErrNoAmount.Error())),
			statemachine.RequirePermission(PermissionAdvance),
			statemachine.WithActionType("propose"),
		).
		Transition(state(StageProposal), state(StageNegotiation), m.move,
			statemachine.Named("negotiate"),
			statemachine.RequirePermission(PermissionAdvance),
			statemachine.WithActionType("negotiate"),
		).
		Transition(state(StageNegotiation), state(StageWon), m.close,
			statemachine.Named("win"),
			statemachine.RequirePermission(PermissionClose),
			statemachine.WithActionType("win"),
			statemachine.NotifyUsers(notifications.RoleAssignee, notifications.RoleCreator),
			statemachine.WithNotificationTemplate("opportunity_won"),
		)

	requireLostReason := statemachine.WithValidator(func(context.Context, statemachine.State, statemachine.State) error {
		if strings.TrimSpace(opp.LostReason) == "" {
			return ErrLostReason
		}
		return nil
	})
	for s := StageLead; s.Open(); s++ {
		b = b.Transition(state(s), state(StageLost), m.close,
			statemachine.Named("lose_from_"+strings.ToLower(s.String())),
			requireLostReason,
			statemachine.RequirePermission(PermissionClose),
			statemachine.WithActionType("lose"),
			statemachine.NotifyUsers(notifications.RoleAssignee),
		)
	}

	sm, err := b.With(opts...).Build()
	if err != nil {
		return nil, err
	}
	m.Machine = sm
	return m, nil
}

func state(s Stage) statemachine.State {
	return statemachine.State(s.String())
}

// MoveTo advances the opportunity to stage.
func (m *Machine) MoveTo(ctx context.Context, stage Stage, opts ...statemachine.CallOption) error {
	return m.TransitionTo(ctx, state(stage), opts...)
}

func (m *Machine) Qualify(ctx context.Context, opts ...statemachine.CallOption) error {
	return m.MoveTo(ctx, StageQualified, opts...)
}

func (m *Machine) Propose(ctx context.Context, opts ...statemachine.CallOption) error {
	return m.MoveTo(ctx, StageProposal, opts...)
}

func (m *Machine) Negotiate(ctx context.Context, opts ...statemachine.CallOption) error {
	return m.MoveTo(ctx, StageNegotiation, opts...)
}

func (m *Machine) Win(ctx context.Context, opts ...statemachine.CallOption) error {
	return m.MoveTo(ctx, StageWon, opts...)
}

// Lose closes an open opportunity with reason.
func (m *Machine) Lose(ctx context.Context, reason string, opts ...statemachine.CallOption) error {
	prev := m.opp.LostReason
	m.opp.LostReason = reason
	if err := m.MoveTo(ctx, StageLost, opts...); err != nil {
		m.opp.LostReason = prev
		return err
	}
	return nil
}

// move rescores the opportunity for the target stage.
func (m *Machine) move(ctx context.Context, _, to statemachine.State, _ statemachine.Args) error {
	target, err := ParseStage(string(to))
	if err != nil {
		return err
	}

	score := defaultScore(target)
	if m.scorer != nil {
		if score, err = m.scorer.Score(ctx, m.opp, target); err != nil {
			return fmt.Errorf("score opportunity: %w", err)
		}
	}

	now := m.now()
	m.opp.Score = score
	m.opp.RiskLevel = RiskFromScore(score)
	m.opp.StageChangedAt = &now
	return nil
}

func (m *Machine) close(ctx context.Context, from, to statemachine.State, args statemachine.Args) error {
	if err := m.move(ctx, from, to, args); err != nil {
		return err
	}
	m.opp.ClosedAt = m.opp.StageChangedAt
	return nil
}

func (m *Machine) participants() notifications.Participants {
	return notifications.Participants{
		CreatedByID: m.opp.CreatedByID,
		AssigneeID:  m.opp.OwnerID,
		ReporterID:  m.opp.CustomerID,
	}
}
