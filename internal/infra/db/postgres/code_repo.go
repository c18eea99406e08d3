package postgres

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

func (r *CodeRepository) Save(ctx context.Context, c *domain.AccessCode) error {
	const q = `
INSERT INTO access_codes
(id, code, note, duration, subject_id, created_at, expires_at, active, used_count)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9);
`
	_, err := r.db.ExecContext(ctx, q,
		c.ID, c.Code, c.Note, c.Duration, c.SubjectID,
		c.CreatedAt, c.ExpiresAt, c.Active, c.UsedCount,
	)
	return err
}

func (r *CodeRepository) Get(ctx context.Context, id domain.CodeID) (*domain.AccessCode, error) {
	const q = `SELECT ` + codeColumns + ` FROM access_codes WHERE id=$1 LIMIT 1;`
	c, err := scanCode(r.db.QueryRowContext(ctx, q, id))
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	return c, err
}

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

// Deactivate: lib/pq reports matched rows, so zero affected always
// means the id does not exist.
func (r *CodeRepository) Deactivate(ctx context.Context, id domain.CodeID) error {
	res, err := r.db.ExecContext(ctx, `UPDATE access_codes SET active=FALSE WHERE id=$1;`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *CodeRepository) DeactivateExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE access_codes SET active=FALSE WHERE active AND expires_at < $1;`, now)
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
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM access_codes WHERE active;`).Scan(&n)
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
