package mysql

import (
	"context"
	"database/sql"
	"time"

	domain "github.com/realscan/realscan/internal/domain/users"
)

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Save(ctx context.Context, u *domain.User) error {
	const q = `
INSERT INTO users (id, username, password_hash, role, is_active, last_login, created_at)
VALUES (?,?,?,?,?,?,?);
`
	_, err := r.db.ExecContext(ctx, q,
		u.ID, u.Username, u.PasswordHash, u.Role, u.IsActive, u.LastLogin, u.CreatedAt)
	return err
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	const q = `
SELECT id, username, password_hash, role, is_active, last_login, created_at
FROM users WHERE username=? LIMIT 1;
`
	var u domain.User
	var last sql.NullTime
	err := r.db.QueryRowContext(ctx, q, username).Scan(
		&u.ID, &u.Username, &u.PasswordHash, &u.Role, &u.IsActive, &last, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if last.Valid {
		u.LastLogin = &last.Time
	}
	return &u, nil
}

func (r *UserRepository) UpdateLastLogin(ctx context.Context, id string, t time.Time) error {
	_, err := r.db.ExecContext(ctx, `UPDATE users SET last_login=? WHERE id=?;`, t, id)
	return err
}
