package audit_test

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/mock"

	"github.com/dmitrymomot/transitionkit/pkg/audit"
)

// MockSession is a mock implementation of audit.Session.
type MockSession struct {
	mock.Mock
}

func (m *MockSession) Stage(ctx context.Context, entry audit.Entry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

// MockExecer is a mock implementation of audit.Execer.
type MockExecer struct {
	mock.Mock
}

func (m *MockExecer) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	args := m.Called(ctx, sql, arguments)
	return pgconn.NewCommandTag(args.String(0)), args.Error(1)
}

// savepointTx is a pgx.Tx double that opens nested transactions. Only the
// methods TxSession touches are implemented.
type savepointTx struct {
	pgx.Tx

	execErr    error
	args       []any
	committed  int
	rolledBack int
	nested     []*savepointTx
}

func (f *savepointTx) Begin(context.Context) (pgx.Tx, error) {
	sp := &savepointTx{execErr: f.execErr}
	f.nested = append(f.nested, sp)
	return sp, nil
}

func (f *savepointTx) Exec(_ context.Context, _ string, args ...any) (pgconn.CommandTag, error) {
	f.args = args
	if f.execErr != nil {
		return pgconn.CommandTag{}, f.execErr
	}
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func (f *savepointTx) Commit(context.Context) error {
	f.committed++
	return nil
}

func (f *savepointTx) Rollback(context.Context) error {
	f.rolledBack++
	return nil
}
