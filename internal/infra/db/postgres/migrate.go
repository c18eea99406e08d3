package postgres

import (
	"context"
	"database/sql"
	"fmt"
)

// Migrate ensures the schema exists (idempotent DDL, no history).
func Migrate(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS access_codes (
  id           TEXT PRIMARY KEY,
  code         TEXT NOT NULL UNIQUE,
  note         TEXT NOT NULL,
  duration     INTEGER NOT NULL,
  subject_id   TEXT NOT NULL,
  created_at   TIMESTAMPTZ NOT NULL,
  expires_at   TIMESTAMPTZ NOT NULL,
  active       BOOLEAN NOT NULL DEFAULT TRUE,
  used_count   INTEGER NOT NULL DEFAULT 0
);`,
		`CREATE INDEX IF NOT EXISTS idx_access_codes_expires ON access_codes (expires_at);`,
		`CREATE INDEX IF NOT EXISTS idx_access_codes_active ON access_codes (active);`,
		`CREATE TABLE IF NOT EXISTS scan_results (
  id                  TEXT PRIMARY KEY,
  subject_id          TEXT NOT NULL,
  results             JSONB NOT NULL,
  overall_win_rate    DOUBLE PRECISION NOT NULL DEFAULT 0,
  top_game            TEXT NOT NULL DEFAULT '',
  top_game_rate       DOUBLE PRECISION NOT NULL DEFAULT 0,
  bottom_game         TEXT NOT NULL DEFAULT '',
  bottom_game_rate    DOUBLE PRECISION NOT NULL DEFAULT 0,
  recommendation      TEXT NOT NULL DEFAULT '',
  success_probability DOUBLE PRECISION NOT NULL DEFAULT 0,
  accuracy            DOUBLE PRECISION NOT NULL DEFAULT 0,
  scanned_at          TIMESTAMPTZ NOT NULL
);`,
		`CREATE INDEX IF NOT EXISTS idx_scan_results_subject ON scan_results (subject_id);`,
		`CREATE INDEX IF NOT EXISTS idx_scan_results_scanned ON scan_results (scanned_at);`,
		`CREATE TABLE IF NOT EXISTS users (
  id            TEXT PRIMARY KEY,
  username      TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  role          TEXT NOT NULL DEFAULT 'user',
  is_active     BOOLEAN NOT NULL DEFAULT TRUE,
  last_login    TIMESTAMPTZ NULL,
  created_at    TIMESTAMPTZ NOT NULL
);`,
	}
	for _, q := range stmts {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
