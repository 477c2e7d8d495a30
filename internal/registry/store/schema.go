package store

import (
	"context"
	"database/sql"
	"fmt"
)

// Counters live in their own rows so that allocating an ID is an UPDATE that
// rolls back with the transaction; sequences would leave gaps on failure.
// Scores and totals are NUMERIC(20,0) so the full uint64 range round-trips.
const schema = `
CREATE TABLE IF NOT EXISTS ledger_counters (
	name  TEXT PRIMARY KEY,
	value BIGINT NOT NULL
);

INSERT INTO ledger_counters (name, value)
VALUES ('delegate', 0), ('credential', 0)
ON CONFLICT (name) DO NOTHING;

CREATE TABLE IF NOT EXISTS delegates (
	id             BIGINT PRIMARY KEY,
	name           TEXT NOT NULL,
	specialization TEXT NOT NULL,
	total_impact   NUMERIC(20,0) NOT NULL DEFAULT 0 CHECK (total_impact >= 0),
	registered_by  TEXT NOT NULL,
	registered_at  TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS credentials (
	id           BIGINT PRIMARY KEY,
	delegate_id  BIGINT NOT NULL REFERENCES delegates (id),
	title        TEXT NOT NULL,
	description  TEXT NOT NULL,
	impact_score NUMERIC(20,0) NOT NULL CHECK (impact_score >= 0),
	issued_by    TEXT NOT NULL,
	issued_at    TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS credentials_delegate_id_idx ON credentials (delegate_id, id);
`

// Migrate creates the ledger schema if it does not exist.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrate ledger schema: %w", err)
	}
	return nil
}
