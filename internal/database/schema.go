package database

import (
	"context"
	"fmt"
)

const schema = `
CREATE TABLE IF NOT EXISTS search_runs (
	id           UUID PRIMARY KEY,
	site         TEXT NOT NULL,
	query        TEXT NOT NULL,
	scraped      INTEGER NOT NULL DEFAULT 0,
	dropped      INTEGER NOT NULL DEFAULT 0,
	from_cache   BOOLEAN NOT NULL DEFAULT FALSE,
	started_at   TIMESTAMPTZ NOT NULL,
	duration_ms  BIGINT NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_search_runs_started_at ON search_runs (started_at DESC);

CREATE TABLE IF NOT EXISTS search_items (
	run_id                        UUID NOT NULL REFERENCES search_runs (id) ON DELETE CASCADE,
	position                      INTEGER NOT NULL,
	title                         TEXT NOT NULL,
	price_dollars                 DOUBLE PRECISION,
	rating_average                DOUBLE PRECISION,
	positive_feedback_percentage  DOUBLE PRECISION,
	quantity_sold                 TEXT,
	quantity_sold_value           BIGINT,
	item_url                      TEXT,
	PRIMARY KEY (run_id, position)
);
`

// EnsureSchema creates the history tables when they are missing.
func (db *DB) EnsureSchema(ctx context.Context) error {
	if _, err := db.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
