package scans

import (
	"time"
)

// ID tipe untuk ScanResult
type ScanID string

// GameResult value object, satu baris hasil per game
type GameResult struct {
	Name       string  `json:"name"`
	Rate       float64 `json:"rate"`
	Volatility string  `json:"volatility,omitempty"`
}

// Aggregate Root: ScanResult
//
// The derived summary fields (overall/top/bottom rates, recommendation,
// probability, accuracy) are caller-supplied and stored as-is; the
// server computes nothing from Results. Timestamp is always the server
// receipt time, never the client clock.
type ScanResult struct {
	ID                 ScanID       `json:"id"`
	SubjectID          string       `json:"subjectId"`
	Results            []GameResult `json:"results"`
	OverallWinRate     float64      `json:"overallWinRate,omitempty"`
	TopGame            string       `json:"topGame,omitempty"`
	TopGameRate        float64      `json:"topGameRate,omitempty"`
	BottomGame         string       `json:"bottomGame,omitempty"`
	BottomGameRate     float64      `json:"bottomGameRate,omitempty"`
	Recommendation     string       `json:"recommendation,omitempty"`
	SuccessProbability float64      `json:"successProbability,omitempty"`
	Accuracy           float64      `json:"accuracy,omitempty"`
	Timestamp          time.Time    `json:"timestamp"`
}
