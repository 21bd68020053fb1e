// Package audit records state transitions into a persistent audit log.
//
// A Recorder turns the facts of one successful transition into an Entry,
// strips sensitive values from its extra data with a MetadataFilter and
// stages it on a Session. The session is the caller's unit of work: the
// recorder never commits, so the audit row lands or disappears together
// with the entity change.
//
// Two sessions ship with the package. MemorySession keeps entries in memory
// and is meant for tests and local tooling. TxSession stages an INSERT into
// the transition_audit_log table inside a caller-owned pgx transaction.
// Store reads the log back.
//
//	tx, _ := pool.Begin(ctx)
//	rec := audit.NewRecorder(audit.NewTxSession(tx), audit.WithLogger(log))
//	machine, _ := changenotice.New(cn, deps, statemachine.WithAuditor(rec))
//	// ... transitions ...
//	_ = tx.Commit(ctx)
//
// The table schema lives in Migrations and is applied with pg.Migrate.
package audit
