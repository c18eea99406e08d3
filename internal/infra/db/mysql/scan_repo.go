package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math"

	domain "github.com/realscan/realscan/internal/domain/scans"
)

type ScanRepository struct {
	db *sql.DB
}

func NewScanRepository(db *sql.DB) *ScanRepository {
	return &ScanRepository{db: db}
}

const scanColumns = `id, subject_id, results, overall_win_rate, top_game, top_game_rate,
       bottom_game, bottom_game_rate, recommendation, success_probability, accuracy, scanned_at`

// Save insert ScanResult record; the per-game results go into a JSON
// column since nothing queries inside them.
func (r *ScanRepository) Save(ctx context.Context, s *domain.ScanResult) error {
	results := s.Results
	if results == nil {
		results = []domain.GameResult{}
	}
	payload, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("marshal results: %w", err)
	}

	const q = `
INSERT INTO scan_results
(id, subject_id, results, overall_win_rate, top_game, top_game_rate,
 bottom_game, bottom_game_rate, recommendation, success_probability, accuracy, scanned_at)
VALUES (?,?,?,?,?,?,?,?,?,?,?,?);
`
	_, err = r.db.ExecContext(ctx, q,
		s.ID, s.SubjectID, payload,
		s.OverallWinRate, s.TopGame, s.TopGameRate,
		s.BottomGame, s.BottomGameRate,
		s.Recommendation, s.SuccessProbability, s.Accuracy,
		s.Timestamp,
	)
	return err
}

// Paginate offset + limit (classic pagination), newest first,
// optional subject filter
func (r *ScanRepository) Paginate(ctx context.Context, subjectID string, page, pageSize int) (domain.PaginatedResult, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 10
	}
	offset := (page - 1) * pageSize

	query := `SELECT ` + scanColumns + ` FROM scan_results`
	args := []any{}
	if subjectID != "" {
		query += ` WHERE subject_id = ?`
		args = append(args, subjectID)
	}
	query += ` ORDER BY scanned_at DESC LIMIT ? OFFSET ?`
	args = append(args, pageSize, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return domain.PaginatedResult{}, fmt.Errorf("querying scan results: %w", err)
	}
	defer rows.Close()

	results := []*domain.ScanResult{}
	for rows.Next() {
		s, err := scanResult(rows)
		if err != nil {
			return domain.PaginatedResult{}, fmt.Errorf("scanning row: %w", err)
		}
		results = append(results, s)
	}
	if err = rows.Err(); err != nil {
		return domain.PaginatedResult{}, fmt.Errorf("iterating rows: %w", err)
	}

	total, err := r.count(ctx, subjectID)
	if err != nil {
		return domain.PaginatedResult{}, fmt.Errorf("getting total count: %w", err)
	}

	return domain.PaginatedResult{
		Results:     results,
		CurrentPage: page,
		PageSize:    pageSize,
		Total:       total,
		TotalPages:  int(math.Ceil(float64(total) / float64(pageSize))),
	}, nil
}

// Recent ambil N hasil scan terakhir lintas subject
func (r *ScanRepository) Recent(ctx context.Context, limit int) ([]*domain.ScanResult, error) {
	if limit <= 0 {
		limit = 5
	}
	const q = `SELECT ` + scanColumns + ` FROM scan_results ORDER BY scanned_at DESC LIMIT ?;`
	rows, err := r.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.ScanResult
	for rows.Next() {
		s, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *ScanRepository) Count(ctx context.Context) (int64, error) {
	return r.count(ctx, "")
}

func (r *ScanRepository) count(ctx context.Context, subjectID string) (int64, error) {
	query := `SELECT COUNT(*) FROM scan_results`
	args := []any{}
	if subjectID != "" {
		query += ` WHERE subject_id = ?`
		args = append(args, subjectID)
	}
	var n int64
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&n)
	return n, err
}

func scanResult(row rowScanner) (*domain.ScanResult, error) {
	var s domain.ScanResult
	var payload []byte
	if err := row.Scan(
		&s.ID, &s.SubjectID, &payload,
		&s.OverallWinRate, &s.TopGame, &s.TopGameRate,
		&s.BottomGame, &s.BottomGameRate,
		&s.Recommendation, &s.SuccessProbability, &s.Accuracy,
		&s.Timestamp,
	); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(payload, &s.Results); err != nil {
		return nil, fmt.Errorf("unmarshal results: %w", err)
	}
	return &s, nil
}
