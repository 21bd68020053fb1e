package audit

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Execer is satisfied by pgx.Tx, *pgxpool.Pool and *pgx.Conn.
type Execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// Nester is satisfied by pgx.Tx. Begin on a transaction opens a savepoint.
type Nester interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Querier is satisfied by pgx.Tx, *pgxpool.Pool and *pgx.Conn.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

const insertEntrySQL = `INSERT INTO transition_audit_log (
	id, entity_type, entity_id, from_state, to_state,
	operator_id, operator_name, action_type, comment, extra_data, created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

const listByEntitySQL = `SELECT
	id, entity_type, entity_id, from_state, to_state,
	operator_id, operator_name, action_type, comment, extra_data, created_at
FROM transition_audit_log
WHERE entity_type = $1 AND entity_id = $2
ORDER BY created_at ASC, id ASC
LIMIT $3`

// TxSession stages entries inside a caller-owned transaction. The row
// becomes visible only when the caller commits. When the transaction
// supports nesting, the insert runs in a savepoint so that a rejected row
// leaves the caller's transaction usable.
type TxSession struct {
	tx Execer
}

func NewTxSession(tx Execer) *TxSession {
	return &TxSession{tx: tx}
}

func (s *TxSession) Stage(ctx context.Context, e Entry) error {
	if s == nil || s.tx == nil {
		return ErrStorageNotAvailable
	}

	args := entryArgs(e)

	nester, ok := s.tx.(Nester)
	if !ok {
		if _, err := s.tx.Exec(ctx, insertEntrySQL, args...); err != nil {
			return fmt.Errorf("insert audit entry: %w", err)
		}
		return nil
	}

	sp, err := nester.Begin(ctx)
	if err != nil {
		return fmt.Errorf("open audit savepoint: %w", err)
	}
	if _, err := sp.Exec(ctx, insertEntrySQL, args...); err != nil {
		if rbErr := sp.Rollback(ctx); rbErr != nil {
			return errors.Join(fmt.Errorf("insert audit entry: %w", err), fmt.Errorf("rollback audit savepoint: %w", rbErr))
		}
		return fmt.Errorf("insert audit entry: %w", err)
	}
	if err := sp.Commit(ctx); err != nil {
		return fmt.Errorf("release audit savepoint: %w", err)
	}
	return nil
}

func entryArgs(e Entry) []any {
	extra, _ := cleanValue(e.ExtraData).(map[string]any)
	if extra == nil {
		extra = map[string]any{}
	}
	return []any{
		e.ID,
		cleanText(e.EntityType),
		cleanText(e.EntityID),
		cleanText(e.FromState),
		cleanText(e.ToState),
		cleanText(e.OperatorID),
		cleanText(e.OperatorName),
		cleanText(e.ActionType),
		cleanText(e.Comment),
		extra,
		e.CreatedAt,
	}
}

// cleanText drops NUL bytes and replaces invalid UTF-8, neither of which
// Postgres accepts in text or jsonb columns.
func cleanText(s string) string {
	return strings.ToValidUTF8(strings.ReplaceAll(s, "\x00", ""), "\uFFFD")
}

func cleanValue(v any) any {
	switch t := v.(type) {
	case string:
		return cleanText(t)
	case map[string]any:
		if t == nil {
			return t
		}
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[cleanText(k)] = cleanValue(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = cleanValue(val)
		}
		return out
	case []string:
		out := make([]string, len(t))
		for i, val := range t {
			out[i] = cleanText(val)
		}
		return out
	default:
		return v
	}
}

// Store reads the audit log back.
type Store struct {
	db Querier
}

func NewStore(db Querier) *Store {
	return &Store{db: db}
}

// DefaultListLimit caps ListByEntity when limit is not positive.
const DefaultListLimit = 100

// ListByEntity returns the entries of one entity, oldest first.
func (s *Store) ListByEntity(ctx context.Context, entityType, entityID string, limit int) ([]Entry, error) {
	if s == nil || s.db == nil {
		return nil, ErrStorageNotAvailable
	}
	if limit <= 0 {
		limit = DefaultListLimit
	}

	rows, err := s.db.Query(ctx, listByEntitySQL, entityType, entityID, limit)
	if err != nil {
		return nil, errors.Join(ErrListFailed, err)
	}

	entries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Entry, error) {
		var e Entry
		err := row.Scan(
			&e.ID,
			&e.EntityType,
			&e.EntityID,
			&e.FromState,
			&e.ToState,
			&e.OperatorID,
			&e.OperatorName,
			&e.ActionType,
			&e.Comment,
			&e.ExtraData,
			&e.CreatedAt,
		)
		return e, err
	})
	if err != nil {
		return nil, errors.Join(ErrListFailed, err)
	}
	return entries, nil
}
