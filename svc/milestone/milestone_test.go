package milestone_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/transitionkit/pkg/audit"
	"github.com/dmitrymomot/transitionkit/pkg/statemachine"
	"github.com/dmitrymomot/transitionkit/svc/milestone"
)

// MockStages is a mock implementation of milestone.ProjectStages.
type MockStages struct {
	mock.Mock
}

func (m *MockStages) AdvanceStage(ctx context.Context, projectID, milestoneID string) error {
	return m.Called(ctx, projectID, milestoneID).Error(0)
}

type manager struct{}

func (manager) ActorID() string   { return "pm-1" }
func (manager) ActorName() string { return "Pat" }
func (manager) HasPermission(p string) bool {
	return p == milestone.PermissionManage
}

var now = time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)

func newMilestone(status statemachine.State) *milestone.Milestone {
	return &milestone.Milestone{
		ID:        "ms-1",
		Name:      "Foundation",
		Status:    string(status),
		ProjectID: "prj-1",
		ManagerID: "pm-1",
		Progress:  40,
	}
}

func TestMilestone_StartAndComplete(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	ms := newMilestone(milestone.StatusNotStarted)

	stages := new(MockStages)
	stages.On("AdvanceStage", mock.Anything, "prj-1", "ms-1").Return(nil).Once()

	m, err := milestone.New(ms, milestone.Deps{Stages: stages, Now: func() time.Time { return now }})
	require.NoError(t, err)

	require.NoError(t, m.Start(ctx, statemachine.WithActor(manager{})))
	require.NotNil(t, ms.ActualStart)
	assert.Equal(t, now, *ms.ActualStart)

	require.NoError(t, m.Complete(ctx, statemachine.WithActor(manager{})))
	assert.Equal(t, "COMPLETED", ms.Status)
	assert.Equal(t, 100, ms.Progress)
	require.NotNil(t, ms.ActualEnd)
	stages.AssertExpectations(t)
}

func TestMilestone_AdvanceFailureKeepsState(t *testing.T) {
	t.Parallel()

	ms := newMilestone(milestone.StatusInProgress)
	stages := new(MockStages)
	stages.On("AdvanceStage", mock.Anything, "prj-1", "ms-1").Return(errors.New("project locked")).Once()

	m, err := milestone.New(ms, milestone.Deps{Stages: stages})
	require.NoError(t, err)

	err = m.Complete(context.Background(), statemachine.WithActor(manager{}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "project locked")
	assert.Equal(t, "IN_PROGRESS", ms.Status)
	assert.Equal(t, 40, ms.Progress)
	assert.Nil(t, ms.ActualEnd)
}

func TestMilestone_DelayAndResume(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	ms := newMilestone(milestone.StatusInProgress)
	m, err := milestone.New(ms, milestone.Deps{})
	require.NoError(t, err)

	err = m.Delay(ctx, "  ", statemachine.WithActor(manager{}))
	assert.ErrorIs(t, err, milestone.ErrDelayReason)
	assert.Empty(t, ms.DelayReason)
	assert.Equal(t, "IN_PROGRESS", ms.Status)

	require.NoError(t, m.Delay(ctx, "concrete supplier late", statemachine.WithActor(manager{})))
	assert.Equal(t, "DELAYED", ms.Status)
	assert.Equal(t, "concrete supplier late", ms.DelayReason)
	assert.NotNil(t, ms.DelayedAt)

	require.NoError(t, m.Resume(ctx, statemachine.WithActor(manager{})))
	assert.Equal(t, "IN_PROGRESS", ms.Status)
	assert.Empty(t, ms.DelayReason)
	assert.NotNil(t, ms.ResumedAt)
}

func TestMilestone_CannotCompleteFromDelayed(t *testing.T) {
	t.Parallel()

	ms := newMilestone(milestone.StatusDelayed)
	m, err := milestone.New(ms, milestone.Deps{})
	require.NoError(t, err)

	ok, reason := m.CanTransitionTo(context.Background(), milestone.StatusCompleted)
	assert.False(t, ok)
	assert.Equal(t, "no rule defined from DELAYED to COMPLETED", reason)
	assert.Equal(t, []statemachine.State{milestone.StatusInProgress}, m.AllowedTransitions())
}

func TestMilestone_RecordsAuditTrail(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	session := audit.NewMemorySession()
	ms := newMilestone(milestone.StatusNotStarted)

	m, err := milestone.New(ms, milestone.Deps{},
		statemachine.WithAuditor(audit.NewRecorder(session)),
	)
	require.NoError(t, err)

	require.NoError(t, m.Start(ctx, statemachine.WithActor(manager{}), statemachine.WithComment("kickoff")))

	pending := session.Pending()
	require.Len(t, pending, 1)
	assert.Equal(t, milestone.EntityType, pending[0].EntityType)
	assert.Equal(t, "NOT_STARTED", pending[0].FromState)
	assert.Equal(t, "IN_PROGRESS", pending[0].ToState)
	assert.Equal(t, "start", pending[0].ActionType)
	assert.Equal(t, "pm-1", pending[0].OperatorID)
	assert.Equal(t, "kickoff", pending[0].Comment)
}
