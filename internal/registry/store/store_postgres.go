package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	"impactledger/internal/registry/models"
	id "impactledger/pkg/domain"
	"impactledger/pkg/platform/sentinel"
)

const (
	pgUniqueViolation      = "23505"
	pgForeignKeyViolation  = "23503"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
)

// PostgresStore persists the ledger in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed ledger store. Call Migrate first.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) RunInTx(ctx context.Context, fn func(tx Tx) error) error {
	sqlTx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return fmt.Errorf("begin ledger transaction: %w", err)
	}
	if err := fn(&postgresTx{tx: sqlTx}); err != nil {
		_ = sqlTx.Rollback()
		return err
	}
	if err := sqlTx.Commit(); err != nil {
		return translate(err, "commit ledger transaction")
	}
	return nil
}

func (s *PostgresStore) FindDelegate(ctx context.Context, delegateID id.DelegateID) (*models.Delegate, error) {
	row := s.db.QueryRowContext(ctx, selectDelegate+` WHERE id = $1`, int64(delegateID))
	return scanDelegate(row)
}

func (s *PostgresStore) ListDelegates(ctx context.Context) ([]*models.Delegate, error) {
	rows, err := s.db.QueryContext(ctx, selectDelegate+` ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list delegates: %w", err)
	}
	defer rows.Close()

	var out []*models.Delegate
	for rows.Next() {
		d, err := scanDelegate(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list delegates: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) FindCredential(ctx context.Context, credentialID id.CredentialID) (*models.Credential, error) {
	row := s.db.QueryRowContext(ctx, selectCredential+` WHERE id = $1`, int64(credentialID))
	return scanCredential(row)
}

func (s *PostgresStore) ListCredentialsByDelegate(ctx context.Context, delegateID id.DelegateID) ([]*models.Credential, error) {
	var exists bool
	if err := s.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM delegates WHERE id = $1)`, int64(delegateID)).Scan(&exists); err != nil {
		return nil, fmt.Errorf("check delegate: %w", err)
	}
	if !exists {
		return nil, ErrNotFound
	}

	rows, err := s.db.QueryContext(ctx, selectCredential+` WHERE delegate_id = $1 ORDER BY id`, int64(delegateID))
	if err != nil {
		return nil, fmt.Errorf("list credentials: %w", err)
	}
	defer rows.Close()

	out := []*models.Credential{}
	for rows.Next() {
		c, err := scanCredential(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list credentials: %w", err)
	}
	return out, nil
}

// TotalImpacts reads all requested totals in one round trip.
func (s *PostgresStore) TotalImpacts(ctx context.Context, delegateIDs []id.DelegateID) (map[id.DelegateID]uint64, error) {
	out := make(map[id.DelegateID]uint64, len(delegateIDs))
	if len(delegateIDs) == 0 {
		return out, nil
	}
	ids := make([]int64, len(delegateIDs))
	for i, delegateID := range delegateIDs {
		ids[i] = int64(delegateID)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, total_impact::text FROM delegates WHERE id = ANY($1::bigint[])`, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("read total impacts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			delegateID int64
			total      string
		)
		if err := rows.Scan(&delegateID, &total); err != nil {
			return nil, fmt.Errorf("scan total impact: %w", err)
		}
		n, err := parseNumeric(total)
		if err != nil {
			return nil, err
		}
		out[id.DelegateID(delegateID)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read total impacts: %w", err)
	}
	return out, nil
}

type postgresTx struct {
	tx *sql.Tx
}

func (t *postgresTx) NextDelegateID(ctx context.Context) (id.DelegateID, error) {
	n, err := t.next(ctx, "delegate")
	return id.DelegateID(n), err
}

func (t *postgresTx) NextCredentialID(ctx context.Context) (id.CredentialID, error) {
	n, err := t.next(ctx, "credential")
	return id.CredentialID(n), err
}

// next bumps a counter row. The row stays locked until the transaction ends,
// serializing allocation for that sequence.
func (t *postgresTx) next(ctx context.Context, name string) (uint64, error) {
	var value int64
	err := t.tx.QueryRowContext(ctx,
		`UPDATE ledger_counters SET value = value + 1 WHERE name = $1 RETURNING value`, name).Scan(&value)
	if err != nil {
		return 0, translate(err, "allocate "+name+" id")
	}
	return uint64(value), nil
}

func (t *postgresTx) InsertDelegate(ctx context.Context, d *models.Delegate) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO delegates (id, name, specialization, total_impact, registered_by, registered_at)
		VALUES ($1, $2, $3, $4::numeric, $5, $6)`,
		int64(d.ID), d.Name, d.Specialization, formatNumeric(d.TotalImpact), string(d.RegisteredBy), d.RegisteredAt)
	if err != nil {
		return translate(err, "insert delegate")
	}
	return nil
}

func (t *postgresTx) InsertCredential(ctx context.Context, c *models.Credential) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO credentials (id, delegate_id, title, description, impact_score, issued_by, issued_at)
		VALUES ($1, $2, $3, $4, $5::numeric, $6, $7)`,
		int64(c.ID), int64(c.DelegateID), c.Title, c.Description, formatNumeric(c.ImpactScore), string(c.IssuedBy), c.IssuedAt)
	if err != nil {
		return translate(err, "insert credential")
	}
	return nil
}

func (t *postgresTx) FindDelegate(ctx context.Context, delegateID id.DelegateID) (*models.Delegate, error) {
	row := t.tx.QueryRowContext(ctx, selectDelegate+` WHERE id = $1 FOR UPDATE`, int64(delegateID))
	return scanDelegate(row)
}

func (t *postgresTx) UpdateTotalImpact(ctx context.Context, delegateID id.DelegateID, total uint64) error {
	res, err := t.tx.ExecContext(ctx,
		`UPDATE delegates SET total_impact = $2::numeric WHERE id = $1`, int64(delegateID), formatNumeric(total))
	if err != nil {
		return translate(err, "update total impact")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update total impact: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

const selectDelegate = `
	SELECT id, name, specialization, total_impact::text, registered_by, registered_at
	FROM delegates`

const selectCredential = `
	SELECT id, delegate_id, title, description, impact_score::text, issued_by, issued_at
	FROM credentials`

type scanner interface {
	Scan(dest ...any) error
}

func scanDelegate(row scanner) (*models.Delegate, error) {
	var (
		d            models.Delegate
		delegateID   int64
		total        string
		registeredBy string
	)
	if err := row.Scan(&delegateID, &d.Name, &d.Specialization, &total, &registeredBy, &d.RegisteredAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan delegate: %w", err)
	}
	n, err := parseNumeric(total)
	if err != nil {
		return nil, err
	}
	d.ID = id.DelegateID(delegateID)
	d.TotalImpact = n
	d.RegisteredBy = id.AccountID(registeredBy)
	return &d, nil
}

func scanCredential(row scanner) (*models.Credential, error) {
	var (
		c            models.Credential
		credentialID int64
		delegateID   int64
		score        string
		issuedBy     string
	)
	if err := row.Scan(&credentialID, &delegateID, &c.Title, &c.Description, &score, &issuedBy, &c.IssuedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan credential: %w", err)
	}
	n, err := parseNumeric(score)
	if err != nil {
		return nil, err
	}
	c.ID = id.CredentialID(credentialID)
	c.DelegateID = id.DelegateID(delegateID)
	c.ImpactScore = n
	c.IssuedBy = id.AccountID(issuedBy)
	return &c, nil
}

func formatNumeric(n uint64) string {
	return strconv.FormatUint(n, 10)
}

func parseNumeric(s string) (uint64, error) {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse numeric %q: %w", s, err)
	}
	return n, nil
}

// translate maps Postgres error codes onto sentinel errors.
func translate(err error, op string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation, pgSerializationFailure, pgDeadlockDetected:
			return fmt.Errorf("%s: %w", op, sentinel.ErrConflict)
		case pgForeignKeyViolation:
			return fmt.Errorf("%s: %w", op, ErrNotFound)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
