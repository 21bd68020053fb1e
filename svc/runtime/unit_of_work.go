package runtime

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dmitrymomot/transitionkit/pkg/audit"
	"github.com/dmitrymomot/transitionkit/pkg/authz"
	"github.com/dmitrymomot/transitionkit/pkg/statemachine"
)

// Tx is the part of pgx.Tx a unit of work needs.
type Tx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// UnitOfWork binds state machines to one database transaction: audit rows
// are staged on the transaction and become visible only when the caller
// commits. Notifications are sent as transitions happen and are not rolled
// back.
type UnitOfWork struct {
	tx       Tx
	rt       *Runtime
	recorder *audit.Recorder
}

// Begin starts a transaction on the runtime's pool.
func (r *Runtime) Begin(ctx context.Context) (*UnitOfWork, error) {
	if r.pool == nil {
		return nil, ErrNoPool
	}
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, errors.Join(ErrBeginTx, err)
	}
	return r.Bind(tx), nil
}

// Bind wraps a transaction the caller already opened.
func (r *Runtime) Bind(tx Tx) *UnitOfWork {
	ropts := []audit.RecorderOption{audit.WithLogger(r.log)}
	if r.filter != nil {
		ropts = append(ropts, audit.WithFilter(r.filter))
	}
	return &UnitOfWork{
		tx:       tx,
		rt:       r,
		recorder: audit.NewRecorder(audit.NewTxSession(tx), ropts...),
	}
}

// Options returns the machine options every machine in this unit of work
// should be built with.
func (u *UnitOfWork) Options() []statemachine.Option {
	opts := []statemachine.Option{
		statemachine.WithLogger(u.rt.log),
		statemachine.WithAuditor(u.recorder),
	}
	if u.rt.observer != nil {
		opts = append(opts, statemachine.WithObserver(u.rt.observer))
	}
	if u.rt.dispatcher != nil {
		opts = append(opts, statemachine.WithNotifier(u.rt.dispatcher))
	}
	return opts
}

// Actor builds a policy-backed actor. It returns nil when no roles file was
// loaded.
func (u *UnitOfWork) Actor(id, name string, roles ...string) *authz.Actor {
	if u.rt.policy == nil {
		return nil
	}
	return u.rt.policy.Actor(id, name, roles...)
}

func (u *UnitOfWork) Tx() Tx { return u.tx }

func (u *UnitOfWork) Commit(ctx context.Context) error {
	return u.tx.Commit(ctx)
}

func (u *UnitOfWork) Rollback(ctx context.Context) error {
	return u.tx.Rollback(ctx)
}
