package mysql

import (
	"context"
	"database/sql"
	"fmt"
)

// Migrate ensures the schema exists. The DDL is idempotent; there is
// no migration history to track at this scale.
func Migrate(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS access_codes (
  id           VARCHAR(36)  PRIMARY KEY,
  code         VARCHAR(12)  NOT NULL UNIQUE,
  note         TEXT         NOT NULL,
  duration     INT          NOT NULL,
  subject_id   VARCHAR(255) NOT NULL,
  created_at   DATETIME(3)  NOT NULL,
  expires_at   DATETIME(3)  NOT NULL,
  active       TINYINT(1)   NOT NULL DEFAULT 1,
  used_count   INT          NOT NULL DEFAULT 0,
  INDEX idx_access_codes_expires (expires_at),
  INDEX idx_access_codes_active (active)
);`,
		`CREATE TABLE IF NOT EXISTS scan_results (
  id                  VARCHAR(36)  PRIMARY KEY,
  subject_id          VARCHAR(255) NOT NULL,
  results             JSON         NOT NULL,
  overall_win_rate    DOUBLE       NOT NULL DEFAULT 0,
  top_game            VARCHAR(255) NOT NULL DEFAULT '',
  top_game_rate       DOUBLE       NOT NULL DEFAULT 0,
  bottom_game         VARCHAR(255) NOT NULL DEFAULT '',
  bottom_game_rate    DOUBLE       NOT NULL DEFAULT 0,
  recommendation      TEXT         NOT NULL,
  success_probability DOUBLE       NOT NULL DEFAULT 0,
  accuracy            DOUBLE       NOT NULL DEFAULT 0,
  scanned_at          DATETIME(3)  NOT NULL,
  INDEX idx_scan_results_subject (subject_id),
  INDEX idx_scan_results_scanned (scanned_at)
);`,
		`CREATE TABLE IF NOT EXISTS users (
  id            VARCHAR(36)  PRIMARY KEY,
  username      VARCHAR(100) NOT NULL UNIQUE,
  password_hash VARCHAR(100) NOT NULL,
  role          VARCHAR(20)  NOT NULL DEFAULT 'user',
  is_active     TINYINT(1)   NOT NULL DEFAULT 1,
  last_login    DATETIME(3)  NULL,
  created_at    DATETIME(3)  NOT NULL
);`,
	}
	for _, q := range stmts {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
