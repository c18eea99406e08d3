package codes

import (
	"time"
)

// ID tipe untuk AccessCode
type CodeID string

// Length of the shareable token, cut from a dash-stripped UUID.
const TokenLength = 12

// Duration bounds in minutes (max = 24 jam)
const (
	MinDurationMinutes = 5
	MaxDurationMinutes = 1440
)

// Aggregate Root: AccessCode
//
// Active is monotonic: it starts true and only ever flips to false
// (revoke or sweep). Records are never deleted, only deactivated.
type AccessCode struct {
	ID        CodeID    `json:"id"`
	Code      string    `json:"code"`
	Note      string    `json:"note,omitempty"`
	Duration  int       `json:"duration"` // minutes
	SubjectID string    `json:"subjectId"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
	Active    bool      `json:"active"`
	// UsedCount is tracked but never incremented by this server;
	// redemption counting belongs to an external client.
	UsedCount int `json:"usedCount"`
}

// Expired reports whether the code has passed its expiry at t.
func (c *AccessCode) Expired(t time.Time) bool {
	return c.ExpiresAt.Before(t)
}
