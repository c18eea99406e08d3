package users

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("user not found")

// Store port: generic credential store this server delegates to.
type Store interface {
	Save(ctx context.Context, u *User) error

	// FindByUsername returns ErrNotFound when no such user exists.
	FindByUsername(ctx context.Context, username string) (*User, error)

	UpdateLastLogin(ctx context.Context, id string, t time.Time) error
}
