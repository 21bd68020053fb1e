// Package runtime wires the state machines to their infrastructure.
//
//	cfg := config.MustLoad[runtime.Config]()
//	rt, err := runtime.New(ctx, cfg)
//	defer rt.Close()
//
//	uow, err := rt.Begin(ctx)
//	defer uow.Rollback(ctx)
//	m, err := changenotice.New(cn, deps, uow.Options()...)
//	err = m.Approve(ctx, statemachine.WithActor(uow.Actor(userID, name, "manager")))
//	err = uow.Commit(ctx)
//
// Transactions stay with the caller: a machine never commits or rolls back.
package runtime
