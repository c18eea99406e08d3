package realtime

import (
	"encoding/json"
	"time"

	domain "github.com/realscan/realscan/internal/domain/scans"
)

// Wire event names. Inbound events come from scanning clients and the
// admin dashboard; scan-activity is the only outbound event.
const (
	EventJoinAdmin     = "join-admin"
	EventScanStarted   = "scan-started"
	EventScanCompleted = "scan-completed"
	EventScanActivity  = "scan-activity"
)

// Envelope is the framing for every realtime message.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type ScanStartedData struct {
	SubjectID string `json:"subjectId"`
}

// ScanCompletedData carries the client-computed payload. Derived
// fields are opaque pass-through, stored without validation.
type ScanCompletedData struct {
	SubjectID          string              `json:"subjectId"`
	Results            []domain.GameResult `json:"results"`
	OverallWinRate     float64             `json:"overallWinRate"`
	TopGame            string              `json:"topGame"`
	TopGameRate        float64             `json:"topGameRate"`
	BottomGame         string              `json:"bottomGame"`
	BottomGameRate     float64             `json:"bottomGameRate"`
	Recommendation     string              `json:"recommendation"`
	SuccessProbability float64             `json:"successProbability"`
	Accuracy           float64             `json:"accuracy"`
}

type ActivityData struct {
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Type      string    `json:"type"` // info | success | warning | error
}

func marshalEvent(event string, data any) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Event: event, Data: raw})
}
