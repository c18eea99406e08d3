package codes

import (
	"context"
	"time"
)

// Repository port (interface untuk persistence)
//
// The store is the only serialization point: every write is an atomic
// single-row statement, so callers need no application-level locking.
type Repository interface {
	Save(ctx context.Context, c *AccessCode) error
	Get(ctx context.Context, id CodeID) (*AccessCode, error)

	// List returns all codes ordered by createdAt descending.
	List(ctx context.Context) ([]*AccessCode, error)

	// Deactivate flips active to false. Returns ErrNotFound when no
	// record has that id; deactivating an already-inactive code is a
	// no-op success.
	Deactivate(ctx context.Context, id CodeID) error

	// DeactivateExpired flips active to false on every record with
	// expiresAt < now, returning how many were deactivated.
	DeactivateExpired(ctx context.Context, now time.Time) (int64, error)

	CountAll(ctx context.Context) (int64, error)
	CountActive(ctx context.Context) (int64, error)
}
