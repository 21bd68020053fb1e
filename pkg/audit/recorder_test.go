package audit_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/transitionkit/pkg/audit"
)

var fixedNow = time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)

func newEntry() audit.Entry {
	return audit.Entry{
		EntityType:   "change_notice",
		EntityID:     "cn-1",
		FromState:    "PENDING_REVIEW",
		ToState:      "APPROVED",
		OperatorID:   "u-1",
		OperatorName: "Alice",
		ActionType:   "approve",
		Comment:      "looks good",
		ExtraData:    map[string]any{"approval_note": "ok", "password": "hunter2"},
	}
}

func TestRecorder_Record(t *testing.T) {
	t.Parallel()

	session := audit.NewMemorySession()
	rec := audit.NewRecorder(session,
		audit.WithClock(func() time.Time { return fixedNow }),
		audit.WithIDGenerator(func() string { return "entry-1" }),
	)

	in := newEntry()
	require.NoError(t, rec.Record(context.Background(), in))

	pending := session.Pending()
	require.Len(t, pending, 1)
	got := pending[0]
	assert.Equal(t, "entry-1", got.ID)
	assert.Equal(t, fixedNow, got.CreatedAt)
	assert.Equal(t, "approve", got.ActionType)
	assert.Equal(t, "ok", got.ExtraData["approval_note"])
	assert.NotContains(t, got.ExtraData, "password")

	// input map untouched
	assert.Equal(t, "hunter2", in.ExtraData["password"])

	// the recorder never commits
	assert.Empty(t, session.Committed())
	session.Commit()
	assert.Len(t, session.Committed(), 1)
	assert.Empty(t, session.Pending())
}

func TestRecorder_GeneratesUUID(t *testing.T) {
	t.Parallel()

	session := audit.NewMemorySession()
	rec := audit.NewRecorder(session)

	require.NoError(t, rec.Record(context.Background(), newEntry()))
	require.Len(t, session.Pending(), 1)
	assert.Len(t, session.Pending()[0].ID, 36)
	assert.False(t, session.Pending()[0].CreatedAt.IsZero())
}

func TestRecorder_NilSessionIsTolerated(t *testing.T) {
	t.Parallel()

	rec := audit.NewRecorder(nil)
	assert.NoError(t, rec.Record(context.Background(), newEntry()))
}

func TestRecorder_InvalidEntry(t *testing.T) {
	t.Parallel()

	session := new(MockSession)
	rec := audit.NewRecorder(session)

	e := newEntry()
	e.ActionType = ""
	err := rec.Record(context.Background(), e)
	require.ErrorIs(t, err, audit.ErrInvalidEntry)
	session.AssertNotCalled(t, "Stage", mock.Anything, mock.Anything)
}

func TestRecorder_StageError(t *testing.T) {
	t.Parallel()

	session := new(MockSession)
	session.On("Stage", mock.Anything, mock.MatchedBy(func(e audit.Entry) bool {
		return e.EntityID == "cn-1"
	})).Return(errors.New("tx aborted")).Once()

	rec := audit.NewRecorder(session)
	err := rec.Record(context.Background(), newEntry())
	require.ErrorIs(t, err, audit.ErrStageFailed)
	assert.Contains(t, err.Error(), "tx aborted")
	session.AssertExpectations(t)
}

func TestRecorder_WithoutFilter(t *testing.T) {
	t.Parallel()

	session := audit.NewMemorySession()
	rec := audit.NewRecorder(session, audit.WithFilter(nil))

	require.NoError(t, rec.Record(context.Background(), newEntry()))
	assert.Equal(t, "hunter2", session.Pending()[0].ExtraData["password"])
}

func TestMemorySession_Rollback(t *testing.T) {
	t.Parallel()

	session := audit.NewMemorySession()
	require.NoError(t, session.Stage(context.Background(), newEntry()))
	session.Rollback()
	assert.Empty(t, session.Pending())
	assert.Empty(t, session.Committed())
}

func TestSessionFunc(t *testing.T) {
	t.Parallel()

	var staged []audit.Entry
	rec := audit.NewRecorder(audit.SessionFunc(func(_ context.Context, e audit.Entry) error {
		staged = append(staged, e)
		return nil
	}))

	require.NoError(t, rec.Record(context.Background(), newEntry()))
	assert.Len(t, staged, 1)
}
