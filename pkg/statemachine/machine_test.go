package statemachine_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/transitionkit/pkg/audit"
	"github.com/dmitrymomot/transitionkit/pkg/authz"
	"github.com/dmitrymomot/transitionkit/pkg/notifications"
	"github.com/dmitrymomot/transitionkit/pkg/statemachine"
)

const (
	open     statemachine.State = "OPEN"
	review   statemachine.State = "REVIEW"
	done     statemachine.State = "DONE"
	rejected statemachine.State = "REJECTED"
)

type ticket struct {
	ID        string
	Status    string
	CreatedBy string
	Approved  bool
}

func (t *ticket) field() statemachine.StateField {
	return statemachine.StateField{
		Name: "status",
		Get:  func() any { return t.Status },
		Set:  func(s statemachine.State) { t.Status = string(s) },
	}
}

type staff struct {
	id    string
	perms []string
}

func (s staff) ActorID() string       { return s.id }
func (s staff) ActorName() string     { return "Staff " + s.id }
func (s staff) Permissions() []string { return s.perms }

// MockAuditor is a mock implementation of statemachine.Auditor.
type MockAuditor struct {
	mock.Mock
}

func (m *MockAuditor) Record(ctx context.Context, entry audit.Entry) error {
	return m.Called(ctx, entry).Error(0)
}

// MockNotifier is a mock implementation of statemachine.Notifier.
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Dispatch(ctx context.Context, req notifications.Request) (bool, error) {
	args := m.Called(ctx, req)
	return args.Bool(0), args.Error(1)
}

type observed struct {
	from, to statemachine.State
	outcome  statemachine.Outcome
}

type recordingObserver struct{ calls []observed }

func (o *recordingObserver) ObserveTransition(_ string, from, to statemachine.State, outcome statemachine.Outcome, _ time.Duration) {
	o.calls = append(o.calls, observed{from, to, outcome})
}

func newTicketMachine(t *testing.T, tk *ticket, opts ...statemachine.Option) *statemachine.Machine {
	t.Helper()

	base := []statemachine.Option{
		statemachine.WithEntity(statemachine.EntityRef{Type: "ticket", ID: tk.ID, Name: "T-" + tk.ID}),
		statemachine.WithTransition(open, review, nil,
			statemachine.Named("submit"),
			statemachine.WithActionType("submit"),
		),
		statemachine.WithTransition(review, done,
			func(context.Context, statemachine.State, statemachine.State, statemachine.Args) error { return nil },
			statemachine.Named("approve"),
			statemachine.WithValidator(statemachine.Require(func() bool { return tk.Approved }, "approval is missing")),
			statemachine.RequirePermission("ticket.approve"),
			statemachine.WithActionType("approve"),
			statemachine.NotifyUsers(notifications.RoleCreator),
		),
		statemachine.WithTransition(review, rejected, nil, statemachine.Named("reject")),
		statemachine.WithTransition(rejected, open, nil, statemachine.Named("reopen")),
	}

	m, err := statemachine.New(tk.field(), append(base, opts...)...)
	require.NoError(t, err)
	return m
}

func TestNew_InvalidStateField(t *testing.T) {
	t.Parallel()

	_, err := statemachine.New(statemachine.StateField{Name: "status"})
	assert.ErrorIs(t, err, statemachine.ErrInvalidStateField)

	assert.Panics(t, func() { statemachine.MustNew(statemachine.StateField{}) })
}

func TestNew_DuplicateTransition(t *testing.T) {
	t.Parallel()

	tk := &ticket{Status: "OPEN"}
	_, err := statemachine.New(tk.field(),
		statemachine.WithTransition(open, review, nil),
		statemachine.WithTransition(open, review, nil, statemachine.Named("again")),
	)
	assert.ErrorIs(t, err, statemachine.ErrDuplicateTransition)

	_, err = statemachine.New(tk.field(), statemachine.WithTransition("", review, nil))
	assert.ErrorIs(t, err, statemachine.ErrInvalidDefinition)
}

func TestNew_NameDefaults(t *testing.T) {
	t.Parallel()

	tk := &ticket{ID: "1", Status: "OPEN"}
	assert.Equal(t, "ticket", newTicketMachine(t, tk).Name())

	m, err := statemachine.New(tk.field())
	require.NoError(t, err)
	assert.Equal(t, "status", m.Name())
	assert.Equal(t, "status", m.StateFieldName())

	m, err = statemachine.New(tk.field(), statemachine.WithName("tickets"))
	require.NoError(t, err)
	assert.Equal(t, "tickets", m.Name())
}

func TestMachine_NoRuleDefined(t *testing.T) {
	t.Parallel()

	tk := &ticket{ID: "1", Status: "OPEN"}
	m := newTicketMachine(t, tk)

	for _, target := range []statemachine.State{done, rejected, "UNKNOWN"} {
		ok, reason := m.CanTransitionTo(context.Background(), target)
		assert.False(t, ok)
		assert.Contains(t, reason, "no rule defined")

		err := m.TransitionTo(context.Background(), target)
		require.Error(t, err)
		assert.ErrorIs(t, err, statemachine.ErrInvalidStateTransition)
		assert.True(t, statemachine.IsInvalidTransition(err))
		assert.Equal(t, "OPEN", tk.Status)
	}
	assert.Empty(t, m.History())
}

func TestMachine_SameState(t *testing.T) {
	t.Parallel()

	tk := &ticket{ID: "1", Status: "OPEN"}
	m := newTicketMachine(t, tk)

	ok, reason := m.CanTransitionTo(context.Background(), open)
	assert.False(t, ok)
	assert.Equal(t, "already target state", reason)

	err := m.TransitionTo(context.Background(), open)
	require.Error(t, err)
	var invalid *statemachine.InvalidStateTransitionError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "already target state", invalid.Reason)
	assert.Equal(t, "OPEN", tk.Status)
	assert.Empty(t, m.History())
}

func TestMachine_SuccessfulTransition(t *testing.T) {
	t.Parallel()

	tk := &ticket{ID: "7", Status: "OPEN"}
	now := time.Date(2025, 2, 3, 4, 5, 6, 0, time.UTC)
	m := newTicketMachine(t, tk, statemachine.WithClock(func() time.Time { return now }))

	ok, reason := m.CanTransitionTo(context.Background(), review)
	assert.True(t, ok)
	assert.Empty(t, reason)

	actor := staff{id: "u-1"}
	require.NoError(t, m.TransitionTo(context.Background(), review,
		statemachine.WithActor(actor),
		statemachine.WithComment("ready"),
		statemachine.WithValue("priority", "high"),
	))

	assert.Equal(t, "REVIEW", tk.Status)
	assert.Equal(t, review, m.CurrentState())

	history := m.History()
	require.Len(t, history, 1)
	assert.Equal(t, open, history[0].From)
	assert.Equal(t, review, history[0].To)
	assert.Equal(t, now, history[0].Timestamp)
	assert.Equal(t, actor, history[0].Actor)
	assert.Equal(t, "ready", history[0].Comment)
	assert.Equal(t, "high", history[0].Values["priority"])
}

func TestMachine_ValidatorRejection(t *testing.T) {
	t.Parallel()

	tk := &ticket{ID: "1", Status: "REVIEW"}
	m := newTicketMachine(t, tk)

	ok, reason := m.CanTransitionTo(context.Background(), done)
	assert.False(t, ok)
	assert.Equal(t, "validation failed: approval is missing", reason)

	err := m.TransitionTo(context.Background(), done, statemachine.WithActor(staff{perms: []string{"ticket.approve"}}))
	require.Error(t, err)
	assert.ErrorIs(t, err, statemachine.ErrValidation)
	assert.True(t, statemachine.IsValidationError(err))
	assert.Contains(t, err.Error(), "approval is missing")
	assert.Equal(t, "REVIEW", tk.Status)
	assert.Empty(t, m.History())
}

func TestMachine_ValidatorPanicIsRejection(t *testing.T) {
	t.Parallel()

	tk := &ticket{Status: "OPEN"}
	m, err := statemachine.New(tk.field(),
		statemachine.WithTransition(open, review, nil, statemachine.WithValidator(
			func(context.Context, statemachine.State, statemachine.State) error { panic("nil relation") },
		)),
	)
	require.NoError(t, err)

	err = m.TransitionTo(context.Background(), review)
	assert.ErrorIs(t, err, statemachine.ErrValidation)
	assert.Equal(t, "OPEN", tk.Status)
}

func TestMachine_HandlerError(t *testing.T) {
	t.Parallel()

	businessErr := errors.New("invoice service unavailable")
	tk := &ticket{Status: "OPEN"}
	m, err := statemachine.New(tk.field(),
		statemachine.WithTransition(open, review, statemachine.Action(func(context.Context) error {
			return businessErr
		})),
	)
	require.NoError(t, err)

	err = m.TransitionTo(context.Background(), review)
	assert.ErrorIs(t, err, businessErr)
	assert.False(t, statemachine.IsValidationError(err))
	assert.Equal(t, http.StatusInternalServerError, statemachine.HTTPStatus(err))
	assert.Equal(t, "OPEN", tk.Status)
	assert.Empty(t, m.History())
}

func TestMachine_PermissionDenied(t *testing.T) {
	t.Parallel()

	tk := &ticket{ID: "1", Status: "REVIEW", Approved: true}
	called := false
	m, err := statemachine.New(tk.field(),
		statemachine.WithTransition(review, done,
			statemachine.Action(func(context.Context) error { called = true; return nil }),
			statemachine.RequirePermission("ticket.approve"),
		),
	)
	require.NoError(t, err)

	tests := []struct {
		name   string
		actor  any
		reason string
	}{
		{"no actor", nil, authz.ReasonNoActor},
		{"missing permission", staff{id: "u-2", perms: []string{"ticket.read"}}, `missing permission "ticket.approve"`},
		{"unsupported shape", struct{}{}, authz.ReasonUnsupportedShape},
	}
	for _, tt := range tests {
		err := m.TransitionTo(context.Background(), done, statemachine.WithActor(tt.actor))
		require.Error(t, err, tt.name)
		var denied *statemachine.PermissionDeniedError
		require.ErrorAs(t, err, &denied, tt.name)
		assert.Equal(t, tt.reason, denied.Reason, tt.name)
		assert.Equal(t, "ticket.approve", denied.Permission)
		assert.ErrorIs(t, err, statemachine.ErrPermissionDenied)
		assert.Equal(t, http.StatusForbidden, statemachine.HTTPStatus(err))
	}

	assert.False(t, called)
	assert.Equal(t, "REVIEW", tk.Status)
	assert.Empty(t, m.History())

	require.NoError(t, m.TransitionTo(context.Background(), done,
		statemachine.WithActor(staff{id: "u-1", perms: []string{"ticket.*"}}),
	))
	assert.True(t, called)
	assert.Equal(t, "DONE", tk.Status)
}

func TestMachine_SideChannelFailuresDoNotAbort(t *testing.T) {
	t.Parallel()

	tk := &ticket{ID: "9", Status: "REVIEW", Approved: true, CreatedBy: "creator-1"}

	auditor := new(MockAuditor)
	auditor.On("Record", mock.Anything, mock.MatchedBy(func(e audit.Entry) bool {
		return e.EntityType == "ticket" && e.EntityID == "9" &&
			e.FromState == "REVIEW" && e.ToState == "DONE" &&
			e.OperatorID == "u-1" && e.OperatorName == "Staff u-1" &&
			e.ActionType == "approve" && e.Comment == "ship it"
	})).Return(errors.New("audit table missing")).Once()

	notifier := new(MockNotifier)
	notifier.On("Dispatch", mock.Anything, mock.MatchedBy(func(r notifications.Request) bool {
		return len(r.Roles) == 1 && r.Roles[0] == notifications.RoleCreator &&
			r.Message.EntityName == "T-9" && r.Message.ActorID == "u-1" &&
			r.Message.From == "REVIEW" && r.Message.To == "DONE"
	})).Return(false, errors.New("smtp down")).Once()

	m := newTicketMachine(t, tk,
		statemachine.WithAuditor(auditor),
		statemachine.WithNotifier(notifier),
		statemachine.WithRecipients(notifications.Participants{CreatedByID: tk.CreatedBy}),
		statemachine.BeforeHook(func(context.Context, statemachine.State, statemachine.State, statemachine.Args) error {
			return errors.New("before hook failed")
		}),
		statemachine.AfterHook(func(context.Context, statemachine.State, statemachine.State, statemachine.Args) error {
			panic("after hook exploded")
		}),
	)

	err := m.TransitionTo(context.Background(), done,
		statemachine.WithActor(staff{id: "u-1", perms: []string{"ticket.approve"}}),
		statemachine.WithComment("ship it"),
	)
	require.NoError(t, err)
	assert.Equal(t, "DONE", tk.Status)
	assert.Len(t, m.History(), 1)

	auditor.AssertExpectations(t)
	notifier.AssertExpectations(t)
}

func TestMachine_SideChannelPanicsDoNotAbort(t *testing.T) {
	t.Parallel()

	tk := &ticket{ID: "1", Status: "OPEN"}
	m := newTicketMachine(t, tk,
		statemachine.WithAuditor(auditorFunc(func(context.Context, audit.Entry) error { panic("db gone") })),
	)

	require.NoError(t, m.TransitionTo(context.Background(), review))
	assert.Equal(t, "REVIEW", tk.Status)
}

func TestMachine_TypedNilActor(t *testing.T) {
	t.Parallel()

	var nobody *authz.Actor

	t.Run("side channels see an anonymous actor", func(t *testing.T) {
		t.Parallel()

		tk := &ticket{ID: "4", Status: "OPEN", CreatedBy: "creator-1"}
		session := audit.NewMemorySession()
		storage := notifications.NewMemoryStorage()
		m, err := statemachine.New(tk.field(),
			statemachine.WithEntity(statemachine.EntityRef{Type: "ticket", ID: tk.ID}),
			statemachine.WithAuditor(audit.NewRecorder(session)),
			statemachine.WithNotifier(notifications.NewDispatcher(notifications.NewManager(storage, nil))),
			statemachine.WithRecipients(notifications.Participants{CreatedByID: tk.CreatedBy}),
			statemachine.WithTransition(open, review, nil,
				statemachine.WithActionType("submit"),
				statemachine.NotifyUsers(notifications.RoleCreator),
			),
		)
		require.NoError(t, err)

		require.NotPanics(t, func() {
			require.NoError(t, m.TransitionTo(context.Background(), review, statemachine.WithActor(nobody)))
		})
		assert.Equal(t, "REVIEW", tk.Status)
		require.Len(t, m.History(), 1)

		pending := session.Pending()
		require.Len(t, pending, 1)
		assert.Empty(t, pending[0].OperatorID)
		assert.Empty(t, pending[0].OperatorName)

		list, err := storage.List(context.Background(), "creator-1", notifications.ListOptions{})
		require.NoError(t, err)
		assert.Len(t, list, 1)
	})

	t.Run("role requirement is denied", func(t *testing.T) {
		t.Parallel()

		tk := &ticket{ID: "5", Status: "OPEN"}
		m, err := statemachine.New(tk.field(),
			statemachine.WithTransition(open, review, nil, statemachine.RequireRole("admin")),
		)
		require.NoError(t, err)

		var err2 error
		require.NotPanics(t, func() {
			err2 = m.TransitionTo(context.Background(), review, statemachine.WithActor(nobody))
		})
		require.True(t, statemachine.IsPermissionDenied(err2))

		var denied *statemachine.PermissionDeniedError
		require.ErrorAs(t, err2, &denied)
		assert.Equal(t, authz.ReasonNoActor, denied.Reason)
		assert.Equal(t, "OPEN", tk.Status)
		assert.Empty(t, m.History())
	})
}

// flakyStaff loses its identity mid-request.
type flakyStaff struct{ staff }

func (flakyStaff) ActorID() string { panic("session expired") }

func TestMachine_PanickingIdentityDoesNotAbort(t *testing.T) {
	t.Parallel()

	tk := &ticket{ID: "6", Status: "REVIEW", Approved: true, CreatedBy: "creator-1"}
	session := audit.NewMemorySession()

	notifier := new(MockNotifier)
	notifier.On("Dispatch", mock.Anything, mock.MatchedBy(func(r notifications.Request) bool {
		return r.Message.ActorID == "" && r.Message.To == "DONE"
	})).Return(true, nil).Once()

	m := newTicketMachine(t, tk,
		statemachine.WithAuditor(audit.NewRecorder(session)),
		statemachine.WithNotifier(notifier),
		statemachine.WithRecipients(notifications.Participants{CreatedByID: tk.CreatedBy}),
	)

	actor := flakyStaff{staff{id: "u-1", perms: []string{"ticket.approve"}}}
	require.NotPanics(t, func() {
		require.NoError(t, m.TransitionTo(context.Background(), done, statemachine.WithActor(actor)))
	})
	assert.Equal(t, "DONE", tk.Status)
	require.Len(t, session.Pending(), 1)
	assert.Empty(t, session.Pending()[0].OperatorID)
	notifier.AssertExpectations(t)
}

func TestMachine_CompletionLog(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	tk := &ticket{ID: "7", Status: "OPEN"}
	m := newTicketMachine(t, tk, statemachine.WithLogger(log))
	require.NoError(t, m.TransitionTo(context.Background(), review,
		statemachine.WithActor(staff{id: "u-9"}),
	))

	out := buf.String()
	assert.Contains(t, out, `"msg":"state transition completed"`)
	assert.Contains(t, out, `"actor_id":"u-9"`)
	assert.Contains(t, out, `"duration":`)
}

type auditorFunc func(context.Context, audit.Entry) error

func (f auditorFunc) Record(ctx context.Context, e audit.Entry) error { return f(ctx, e) }

func TestMachine_AuditOnlyWithActionType(t *testing.T) {
	t.Parallel()

	tk := &ticket{ID: "1", Status: "REVIEW"}
	session := audit.NewMemorySession()
	m := newTicketMachine(t, tk, statemachine.WithAuditor(audit.NewRecorder(session)))

	// reject declares no action type
	require.NoError(t, m.TransitionTo(context.Background(), rejected))
	assert.Empty(t, session.Pending())

	require.NoError(t, m.TransitionTo(context.Background(), open))
	require.NoError(t, m.TransitionTo(context.Background(), review, statemachine.WithComment("second try")))

	pending := session.Pending()
	require.Len(t, pending, 1)
	assert.Equal(t, "submit", pending[0].ActionType)
	assert.Equal(t, "second try", pending[0].Comment)
	assert.Empty(t, session.Committed(), "the engine never commits")
}

func TestMachine_NotificationsEndToEnd(t *testing.T) {
	t.Parallel()

	tk := &ticket{ID: "3", Status: "REVIEW", Approved: true, CreatedBy: "creator-1"}
	storage := notifications.NewMemoryStorage()
	dispatcher := notifications.NewDispatcher(notifications.NewManager(storage, nil))

	m := newTicketMachine(t, tk,
		statemachine.WithNotifier(dispatcher),
		statemachine.WithRecipients(notifications.ParticipantsFunc(func() notifications.Participants {
			return notifications.Participants{CreatedByID: tk.CreatedBy}
		})),
	)

	require.NoError(t, m.TransitionTo(context.Background(), done,
		statemachine.WithActor(staff{id: "u-1", perms: []string{"ticket.approve"}}),
	))

	list, err := storage.List(context.Background(), "creator-1", notifications.ListOptions{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Ticket: T-3 changed REVIEW → DONE", list[0].Content)
	assert.Equal(t, "ticket", list[0].SourceType)
}

func TestMachine_HookOrder(t *testing.T) {
	t.Parallel()

	var calls []string
	record := func(name string) statemachine.Hook {
		return func(_ context.Context, from, to statemachine.State, _ statemachine.Args) error {
			calls = append(calls, name+":"+string(from)+">"+string(to))
			return nil
		}
	}

	tk := &ticket{Status: "OPEN"}
	m, err := statemachine.NewBuilder(tk.field()).
		Before(record("before-1")).
		Before(record("before-2")).
		After(record("after-1")).
		After(record("after-2")).
		Transition(open, review, statemachine.Effect(func(_ context.Context, args statemachine.Args) error {
			calls = append(calls, "handler:"+args.Comment)
			return nil
		})).
		Build()
	require.NoError(t, err)

	require.NoError(t, m.TransitionTo(context.Background(), review, statemachine.WithComment("go")))
	assert.Equal(t, []string{
		"before-1:OPEN>REVIEW",
		"before-2:OPEN>REVIEW",
		"handler:go",
		"after-1:OPEN>REVIEW",
		"after-2:OPEN>REVIEW",
	}, calls)
}

func TestMachine_FailedTransitionSkipsAfterHooks(t *testing.T) {
	t.Parallel()

	afterCalled := false
	tk := &ticket{Status: "OPEN"}
	m, err := statemachine.NewBuilder(tk.field()).
		After(statemachine.HookFunc(func(context.Context, statemachine.State, statemachine.State) { afterCalled = true })).
		Transition(open, review, statemachine.Action(func(context.Context) error { return errors.New("nope") })).
		Build()
	require.NoError(t, err)

	require.Error(t, m.TransitionTo(context.Background(), review))
	assert.False(t, afterCalled)
}

func TestMachine_AllowedTransitions(t *testing.T) {
	t.Parallel()

	tk := &ticket{ID: "1", Status: "REVIEW"}
	m := newTicketMachine(t, tk)

	// validators are not evaluated here
	assert.Equal(t, []statemachine.State{done, rejected}, m.AllowedTransitions())

	tk.Status = "DONE"
	assert.Empty(t, m.AllowedTransitions())
}

func TestMachine_Introspection(t *testing.T) {
	t.Parallel()

	tk := &ticket{ID: "1", Status: "OPEN"}
	m := newTicketMachine(t, tk)

	defs := m.Definitions()
	require.Len(t, defs, 4)
	assert.Equal(t, "submit", defs[0].Name)
	assert.Equal(t, "approve", defs[1].Name)
	assert.True(t, defs[1].Guarded())
	assert.False(t, defs[0].Guarded())

	def, ok := m.Definition(review, done)
	require.True(t, ok)
	assert.Equal(t, "ticket.approve", def.Permission)
	assert.Equal(t, []string{notifications.RoleCreator}, def.NotifyUsers)

	def.NotifyUsers[0] = "mutated"
	again, _ := m.Definition(review, done)
	assert.Equal(t, notifications.RoleCreator, again.NotifyUsers[0])

	_, ok = m.Definition(done, open)
	assert.False(t, ok)

	assert.Equal(t, []statemachine.State{done, open, rejected, review}, m.States())
	assert.Equal(t, statemachine.EntityRef{Type: "ticket", ID: "1", Name: "T-1"}, m.Entity())
}

func TestMachine_Observer(t *testing.T) {
	t.Parallel()

	obs := &recordingObserver{}
	tk := &ticket{ID: "1", Status: "OPEN"}
	m := newTicketMachine(t, tk, statemachine.WithObserver(obs))

	_ = m.TransitionTo(context.Background(), done)
	_ = m.TransitionTo(context.Background(), review)
	_ = m.TransitionTo(context.Background(), done)
	_ = m.TransitionTo(context.Background(), done, statemachine.WithActor(staff{perms: []string{"ticket.approve"}}))
	tk.Approved = true
	_ = m.TransitionTo(context.Background(), done, statemachine.WithActor(staff{}))

	assert.Equal(t, []observed{
		{open, done, statemachine.OutcomeInvalid},
		{open, review, statemachine.OutcomeSuccess},
		{review, done, statemachine.OutcomeRejected},
		{review, done, statemachine.OutcomeRejected},
		{review, done, statemachine.OutcomeDenied},
	}, obs.calls)
}

func TestHTTPStatus(t *testing.T) {
	t.Parallel()

	assert.Equal(t, http.StatusOK, statemachine.HTTPStatus(nil))
	assert.Equal(t, http.StatusBadRequest, statemachine.HTTPStatus(&statemachine.InvalidStateTransitionError{}))
	assert.Equal(t, http.StatusBadRequest, statemachine.HTTPStatus(&statemachine.ValidationError{Err: errors.New("x")}))
	assert.Equal(t, http.StatusForbidden, statemachine.HTTPStatus(&statemachine.PermissionDeniedError{}))
	assert.Equal(t, http.StatusInternalServerError, statemachine.HTTPStatus(errors.New("boom")))
}
