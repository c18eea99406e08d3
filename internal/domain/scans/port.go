package scans

import "context"

// Repository port (interface untuk persistence)
//
// ScanResults are append-only: Save inserts, nothing updates or
// deletes within this server.
type Repository interface {
	Save(ctx context.Context, s *ScanResult) error

	// Paginate returns results newest first, optionally filtered by
	// subject id (empty string means all subjects).
	Paginate(ctx context.Context, subjectID string, page, pageSize int) (PaginatedResult, error)

	// Recent returns the N most recent results across all subjects.
	Recent(ctx context.Context, limit int) ([]*ScanResult, error)

	Count(ctx context.Context) (int64, error)
}
