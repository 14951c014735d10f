// Package model defines shared data structures.
package model

import "time"

// DefaultLength is the practice text length in characters.
const DefaultLength = 100

// Config defines practice settings.
type Config struct {
	Length   int
	Adaptive bool
	Seed     int64
}

// Keystroke is a single typed character within a session.
type Keystroke struct {
	Expected rune
	Typed    rune
	Elapsed  time.Duration
	Correct  bool
}

// NewKeystroke builds a keystroke and derives its correctness.
func NewKeystroke(expected, typed rune, elapsed time.Duration) Keystroke {
	return Keystroke{
		Expected: expected,
		Typed:    typed,
		Elapsed:  elapsed,
		Correct:  expected == typed,
	}
}

// SessionInput is a completed session handed over by the capture layer.
type SessionInput struct {
	ID              string
	Lesson          string
	StartedAt       time.Time
	EndedAt         time.Time
	Keystrokes      []Keystroke
	TotalKeystrokes int
}

// KeystrokeCount returns the reported keystroke count, falling back to the log length.
func (s SessionInput) KeystrokeCount() int {
	if s.TotalKeystrokes > 0 {
		return s.TotalKeystrokes
	}
	return len(s.Keystrokes)
}

// SessionSummary records a merged session in the aggregate history.
type SessionSummary struct {
	ID            string    `json:"id"`
	Lesson        string    `json:"lesson"`
	EndedAt       time.Time `json:"ended_at"`
	DurationMs    int64     `json:"duration_ms"`
	Keystrokes    int       `json:"keystrokes"`
	Errors        int       `json:"errors"`
	WPM           float64   `json:"wpm"`
	Accuracy      float64   `json:"accuracy"`
	WeakChars     []string  `json:"weak_chars"`
	ImprovedChars []string  `json:"improved_chars"`
}

// LessonID names a lesson the recommendation engine can offer.
type LessonID string

const (
	LessonFundamentals LessonID = "fundamentals"
	LessonWeakChars    LessonID = "weak-chars"
	LessonWeakPairs    LessonID = "weak-pairs"
	LessonExpansion    LessonID = "expansion"
)

// Recommendation names the next lesson to offer.
type Recommendation struct {
	Lesson     LessonID
	Reason     string
	Confidence float64
	Focus      []string
}
