// Package analytics turns keystroke logs into performance deltas and merges
// them into the long-lived aggregate.
package analytics

import (
	"time"

	"github.com/verte-zerg/adaptype/internal/model"
)

// CharDelta holds one character's performance within a single session.
type CharDelta struct {
	TotalAttempts   int
	CorrectAttempts int
	Timings         []time.Duration
	Errors          []rune
}

// PairDelta holds one pair's performance within a single session.
type PairDelta struct {
	TotalAttempts   int
	CorrectAttempts int
	Timings         []time.Duration
}

// SessionDelta is the per-session result of Analyze.
type SessionDelta struct {
	Chars map[string]*CharDelta
	Pairs map[string]*PairDelta
}

// Analyze walks the keystroke log once and collects per-character and
// per-pair deltas. Pairs are only counted when both keystrokes are correct.
func Analyze(keystrokes []model.Keystroke) SessionDelta {
	delta := SessionDelta{
		Chars: map[string]*CharDelta{},
		Pairs: map[string]*PairDelta{},
	}
	for i, ks := range keystrokes {
		key := string(ks.Expected)
		cd, ok := delta.Chars[key]
		if !ok {
			cd = &CharDelta{}
			delta.Chars[key] = cd
		}
		cd.TotalAttempts++
		if ks.Correct {
			cd.CorrectAttempts++
			cd.Timings = append(cd.Timings, ks.Elapsed)
		} else {
			cd.Errors = append(cd.Errors, ks.Typed)
		}

		if i == 0 {
			continue
		}
		prev := keystrokes[i-1]
		if !prev.Correct || !ks.Correct {
			continue
		}
		pair := string([]rune{prev.Expected, ks.Expected})
		pd, ok := delta.Pairs[pair]
		if !ok {
			pd = &PairDelta{}
			delta.Pairs[pair] = pd
		}
		pd.TotalAttempts++
		pd.CorrectAttempts++
		// Out-of-order timestamps count the attempt but carry no timing.
		if diff := ks.Elapsed - prev.Elapsed; diff >= 0 {
			pd.Timings = append(pd.Timings, diff)
		}
	}
	return delta
}

// SessionMetrics computes words per minute and accuracy (percent) for a session.
func SessionMetrics(keystrokes, errors int, durationMs int64) (wpm, accuracy float64) {
	if keystrokes > 0 {
		accuracy = float64(keystrokes-errors) / float64(keystrokes) * 100
	}
	if durationMs <= 0 {
		return 0, accuracy
	}
	minutes := float64(durationMs) / 60000.0
	wpm = (float64(keystrokes) / 5.0) / minutes
	return wpm, accuracy
}

func sumMs(timings []time.Duration) int64 {
	var total int64
	for _, d := range timings {
		total += d.Milliseconds()
	}
	return total
}
