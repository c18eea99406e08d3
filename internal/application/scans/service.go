package scans

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/realscan/realscan/internal/application"
	domain "github.com/realscan/realscan/internal/domain/scans"
)

// Notifier pushes activity events to connected dashboard sessions.
// Delivery is fire-and-forget: at-most-once, no buffering, no replay.
type Notifier interface {
	Activity(message, typ string)
}

// ActivityLog is the append-only textual scan journal.
type ActivityLog interface {
	Append(message string) error
}

// Service implements use-cases untuk ScanResult: record hasil scan
// yang dikirim client, broadcast ke dashboard, listing paginated.
type Service struct {
	Repo     domain.Repository
	Notifier Notifier
	Activity ActivityLog
	Clock    application.Clock
	Logger   *log.Logger
}

// Command for a completed scan reported by a remote scanning client.
// All derived fields are opaque pass-through data.
type CompletedCommand struct {
	SubjectID          string
	Results            []domain.GameResult
	OverallWinRate     float64
	TopGame            string
	TopGameRate        float64
	BottomGame         string
	BottomGameRate     float64
	Recommendation     string
	SuccessProbability float64
	Accuracy           float64
}

// Started handles a scan-started event: broadcast + journal only,
// nothing is persisted until the scan completes.
func (s *Service) Started(ctx context.Context, subjectID string) {
	msg := fmt.Sprintf("Scan started for subject ID: %s", subjectID)
	s.appendActivity(msg)
	s.Notifier.Activity(msg, "info")
}

// Completed handles a scan-completed event: persist the result with
// timestamp = receipt time (client clocks are not trusted), broadcast
// a success activity, then journal best-effort.
func (s *Service) Completed(ctx context.Context, cmd CompletedCommand) (*domain.ScanResult, error) {
	res := &domain.ScanResult{
		ID:                 domain.ScanID(uuid.New().String()),
		SubjectID:          cmd.SubjectID,
		Results:            cmd.Results,
		OverallWinRate:     cmd.OverallWinRate,
		TopGame:            cmd.TopGame,
		TopGameRate:        cmd.TopGameRate,
		BottomGame:         cmd.BottomGame,
		BottomGameRate:     cmd.BottomGameRate,
		Recommendation:     cmd.Recommendation,
		SuccessProbability: cmd.SuccessProbability,
		Accuracy:           cmd.Accuracy,
		Timestamp:          s.Clock.Now(),
	}
	if err := s.Repo.Save(ctx, res); err != nil {
		return nil, err
	}

	msg := fmt.Sprintf("Scan completed for subject ID: %s", cmd.SubjectID)
	s.Notifier.Activity(msg, "success")

	// The journal line carries the full result payload, not a summary.
	results := res.Results
	if results == nil {
		results = []domain.GameResult{}
	}
	payload, _ := json.Marshal(results)
	s.appendActivity(fmt.Sprintf("%s, results: %s", msg, payload))

	return res, nil
}

// ListPage ambil hasil scan paginated, filter subjectID opsional
func (s *Service) ListPage(ctx context.Context, subjectID string, page, pageSize int) (domain.PaginatedResult, error) {
	return s.Repo.Paginate(ctx, subjectID, page, pageSize)
}

// appendActivity journals best-effort: a failed append must never
// fail the scan handler.
func (s *Service) appendActivity(msg string) {
	if s.Activity == nil {
		return
	}
	if err := s.Activity.Append(msg); err != nil && s.Logger != nil {
		s.Logger.Printf("scan activity log append error: %v", err)
	}
}
