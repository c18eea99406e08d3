package mysql

import (
	"context"
	"database/sql"
	"time"

	domain "github.com/realscan/realscan/internal/domain/codes"
)

type CodeRepository struct {
	db *sql.DB
}

func NewCodeRepository(db *sql.DB) *CodeRepository {
	return &CodeRepository{db: db}
}

const codeColumns = `id, code, note, duration, subject_id, created_at, expires_at, active, used_count`

// Save insert AccessCode record (codes are never updated through Save;
// the active flag has its own statements)
func (r *CodeRepository) Save(ctx context.Context, c *domain.AccessCode) error {
	const q = `
INSERT INTO access_codes
(id, code, note, duration, subject_id, created_at, expires_at, active, used_count)
VALUES (?,?,?,?,?,?,?,?,?);
`
	_, err := r.db.ExecContext(ctx, q,
		c.ID, c.Code, c.Note, c.Duration, c.SubjectID,
		c.CreatedAt, c.ExpiresAt, c.Active, c.UsedCount,
	)
	return err
}

func (r *CodeRepository) Get(ctx context.Context, id domain.CodeID) (*domain.AccessCode, error) {
	const q = `SELECT ` + codeColumns + ` FROM access_codes WHERE id=? LIMIT 1;`
	c, err := scanCode(r.db.QueryRowContext(ctx, q, id))
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	return c, err
}

// List semua codes, terbaru dulu
func (r *CodeRepository) List(ctx context.Context) ([]*domain.AccessCode, error) {
	const q = `SELECT ` + codeColumns + ` FROM access_codes ORDER BY created_at DESC;`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.AccessCode
	for rows.Next() {
		c, err := scanCode(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Deactivate flips active to false. The UPDATE is unconditional on the
// current flag so revoking twice stays a no-op success; only a missing
// row is an error.
func (r *CodeRepository) Deactivate(ctx context.Context, id domain.CodeID) error {
	res, err := r.db.ExecContext(ctx, `UPDATE access_codes SET active=0 WHERE id=?;`, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		return nil
	}
	// MySQL reports 0 affected when the value did not change, so
	// distinguish "already inactive" from "missing".
	var exists int
	err = r.db.QueryRowContext(ctx, `SELECT 1 FROM access_codes WHERE id=? LIMIT 1;`, id).Scan(&exists)
	if err == sql.ErrNoRows {
		return domain.ErrNotFound
	}
	return err
}

// DeactivateExpired is the sweep statement: one atomic UPDATE, safe to
// overlap with concurrent issue/revoke.
func (r *CodeRepository) DeactivateExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE access_codes SET active=0 WHERE active=1 AND expires_at < ?;`, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *CodeRepository) CountAll(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM access_codes;`).Scan(&n)
	return n, err
}

func (r *CodeRepository) CountActive(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM access_codes WHERE active=1;`).Scan(&n)
	return n, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCode(row rowScanner) (*domain.AccessCode, error) {
	var c domain.AccessCode
	if err := row.Scan(
		&c.ID, &c.Code, &c.Note, &c.Duration, &c.SubjectID,
		&c.CreatedAt, &c.ExpiresAt, &c.Active, &c.UsedCount,
	); err != nil {
		return nil, err
	}
	return &c, nil
}
