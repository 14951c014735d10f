// Package spacedrep decides when a character should be practiced again.
package spacedrep

import (
	"sort"
	"time"

	"github.com/verte-zerg/adaptype/internal/model"
)

// Fixed review delays per mastery level.
const (
	LearningShortInterval   = 30 * time.Minute
	LearningLongInterval    = 2 * time.Hour
	ProficientShortInterval = 24 * time.Hour
	ProficientLongInterval  = 3 * 24 * time.Hour
	MasteredInterval        = 7 * 24 * time.Hour
)

// NextInterval returns the minimum delay before a character at the given
// level and accuracy (percent) should be practiced again.
func NextInterval(level model.MasteryLevel, accuracy float64) time.Duration {
	switch level {
	case model.Learning:
		if accuracy < 80 {
			return LearningShortInterval
		}
		return LearningLongInterval
	case model.Proficient:
		if accuracy < 90 {
			return ProficientShortInterval
		}
		return ProficientLongInterval
	case model.Mastered:
		return MasteredInterval
	default:
		return 0
	}
}

// DueAt returns when the character becomes due. The boolean is false when
// it was never practiced, which means it is due immediately.
func DueAt(c model.CharPerformance) (time.Time, bool) {
	if c.LastPracticed == nil {
		return time.Time{}, false
	}
	return c.LastPracticed.Add(NextInterval(c.Mastery, c.Accuracy())), true
}

// NeedsPractice reports whether the character is due at now.
func NeedsPractice(c model.CharPerformance, now time.Time) bool {
	if c.LastPracticed == nil {
		return true
	}
	return now.Sub(*c.LastPracticed) >= NextInterval(c.Mastery, c.Accuracy())
}

// DueChars returns characters that need practice, most overdue first.
func DueChars(agg *model.Aggregate, now time.Time) []string {
	if agg == nil {
		return nil
	}
	type dueChar struct {
		ch      string
		overdue time.Duration
		never   bool
	}
	var due []dueChar
	for ch, c := range agg.Chars {
		if !NeedsPractice(*c, now) {
			continue
		}
		at, ok := DueAt(*c)
		due = append(due, dueChar{ch: ch, overdue: now.Sub(at), never: !ok})
	}
	sort.Slice(due, func(i, j int) bool {
		if due[i].never != due[j].never {
			return due[i].never
		}
		if due[i].overdue != due[j].overdue {
			return due[i].overdue > due[j].overdue
		}
		return due[i].ch < due[j].ch
	})
	out := make([]string, len(due))
	for i, d := range due {
		out[i] = d.ch
	}
	return out
}
