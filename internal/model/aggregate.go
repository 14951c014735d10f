package model

import (
	"sort"
	"time"
)

// CharPerformance aggregates statistics for one character across sessions.
type CharPerformance struct {
	Char            string         `json:"char"`
	TotalAttempts   int            `json:"attempts"`
	CorrectAttempts int            `json:"correct"`
	ErrorCount      int            `json:"errors"`
	TotalTimeMs     int64          `json:"time_ms"`
	Mistypes        map[string]int `json:"mistypes"`
	LastPracticed   *time.Time     `json:"last_practiced"`
	Mastery         MasteryLevel   `json:"mastery"`
}

// Accuracy returns the percentage of correct attempts.
func (c CharPerformance) Accuracy() float64 {
	return percent(c.CorrectAttempts, c.TotalAttempts)
}

// ErrorRate returns the percentage of attempts that were errors.
func (c CharPerformance) ErrorRate() float64 {
	return percent(c.ErrorCount, c.TotalAttempts)
}

// AverageLatencyMs returns the mean accumulated time per correct attempt.
func (c CharPerformance) AverageLatencyMs() float64 {
	if c.CorrectAttempts == 0 {
		return 0
	}
	return float64(c.TotalTimeMs) / float64(c.CorrectAttempts)
}

// PairPerformance aggregates statistics for two characters typed in a row.
type PairPerformance struct {
	Pair            string     `json:"pair"`
	TotalAttempts   int        `json:"attempts"`
	CorrectAttempts int        `json:"correct"`
	TotalTimeMs     int64      `json:"time_ms"`
	LastPracticed   *time.Time `json:"last_practiced"`
}

// Accuracy returns the percentage of correct attempts.
func (p PairPerformance) Accuracy() float64 {
	return percent(p.CorrectAttempts, p.TotalAttempts)
}

// AverageLatencyMs returns the mean transition time per correct attempt.
func (p PairPerformance) AverageLatencyMs() float64 {
	if p.CorrectAttempts == 0 {
		return 0
	}
	return float64(p.TotalTimeMs) / float64(p.CorrectAttempts)
}

// Aggregate is the long-lived performance store for one user.
type Aggregate struct {
	Chars           map[string]*CharPerformance `json:"chars"`
	Pairs           map[string]*PairPerformance `json:"pairs"`
	History         []SessionSummary            `json:"session_history"`
	TotalSessions   int                         `json:"total_sessions"`
	TotalKeystrokes int                         `json:"total_keystrokes"`
}

// NewAggregate returns an empty aggregate.
func NewAggregate() *Aggregate {
	return &Aggregate{
		Chars:   map[string]*CharPerformance{},
		Pairs:   map[string]*PairPerformance{},
		History: []SessionSummary{},
	}
}

// CharEntry returns the entry for ch, inserting an empty one if missing.
func (a *Aggregate) CharEntry(ch string) *CharPerformance {
	if a.Chars == nil {
		a.Chars = map[string]*CharPerformance{}
	}
	entry, ok := a.Chars[ch]
	if !ok {
		entry = &CharPerformance{Char: ch, Mistypes: map[string]int{}}
		a.Chars[ch] = entry
	}
	if entry.Mistypes == nil {
		entry.Mistypes = map[string]int{}
	}
	return entry
}

// PairEntry returns the entry for pair, inserting an empty one if missing.
func (a *Aggregate) PairEntry(pair string) *PairPerformance {
	if a.Pairs == nil {
		a.Pairs = map[string]*PairPerformance{}
	}
	entry, ok := a.Pairs[pair]
	if !ok {
		entry = &PairPerformance{Pair: pair}
		a.Pairs[pair] = entry
	}
	return entry
}

// SortedChars returns tracked characters in lexical order.
func (a *Aggregate) SortedChars() []string {
	keys := make([]string, 0, len(a.Chars))
	for ch := range a.Chars {
		keys = append(keys, ch)
	}
	sort.Strings(keys)
	return keys
}

// SortedPairs returns tracked pairs in lexical order.
func (a *Aggregate) SortedPairs() []string {
	keys := make([]string, 0, len(a.Pairs))
	for p := range a.Pairs {
		keys = append(keys, p)
	}
	sort.Strings(keys)
	return keys
}

func percent(part, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}
