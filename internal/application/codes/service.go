package codes

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/realscan/realscan/internal/application"
	domain "github.com/realscan/realscan/internal/domain/codes"
)

// Service implements use-cases untuk AccessCode lifecycle:
// issue, revoke, list, sweep. Safe for concurrent use; the repository
// is the only serialization point.
type Service struct {
	Repo  domain.Repository
	Clock application.Clock

	// MinDuration/MaxDuration in minutes; zero values fall back to
	// the domain defaults (5 and 1440).
	MinDuration int
	MaxDuration int
}

// Command untuk issue access code
type IssueCommand struct {
	SubjectID string
	Duration  int // minutes
	Note      string
}

func (s *Service) limits() (int, int) {
	min, max := s.MinDuration, s.MaxDuration
	if min <= 0 {
		min = domain.MinDurationMinutes
	}
	if max <= 0 {
		max = domain.MaxDurationMinutes
	}
	return min, max
}

// Issue validates the command, generates a unique token and persists
// the new code. Broadcasting is the caller's responsibility.
func (s *Service) Issue(ctx context.Context, cmd IssueCommand) (*domain.AccessCode, error) {
	if strings.TrimSpace(cmd.SubjectID) == "" {
		return nil, &domain.ValidationError{Field: "subjectId", Reason: "required"}
	}
	min, max := s.limits()
	if cmd.Duration < min || cmd.Duration > max {
		return nil, &domain.ValidationError{
			Field:  "duration",
			Reason: fmt.Sprintf("must be between %d and %d minutes", min, max),
		}
	}

	now := s.Clock.Now()
	code := &domain.AccessCode{
		ID:        domain.CodeID(uuid.New().String()),
		Code:      GenerateToken(),
		Note:      cmd.Note,
		Duration:  cmd.Duration,
		SubjectID: cmd.SubjectID,
		CreatedAt: now,
		ExpiresAt: now.Add(time.Duration(cmd.Duration) * time.Minute),
		Active:    true,
	}
	if err := s.Repo.Save(ctx, code); err != nil {
		return nil, err
	}
	return code, nil
}

// Revoke deactivates a code. Revoking an already-revoked code is a
// no-op success; an unknown id returns domain.ErrNotFound.
func (s *Service) Revoke(ctx context.Context, id domain.CodeID) error {
	return s.Repo.Deactivate(ctx, id)
}

// List ambil semua codes, terbaru dulu
func (s *Service) List(ctx context.Context) ([]*domain.AccessCode, error) {
	return s.Repo.List(ctx)
}

// SweepExpired deactivates every active code whose expiry has passed
// and returns how many it deactivated. Deactivation is monotonic, so
// overlapping with Issue/Revoke needs no coordination beyond the
// store's atomic update.
func (s *Service) SweepExpired(ctx context.Context) (int64, error) {
	return s.Repo.DeactivateExpired(ctx, s.Clock.Now())
}

// GenerateToken cuts a 12-char uppercase token from a dash-stripped
// UUID, matching the shareable code format.
func GenerateToken() string {
	raw := strings.ReplaceAll(uuid.New().String(), "-", "")
	return strings.ToUpper(raw[:domain.TokenLength])
}
