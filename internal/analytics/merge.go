package analytics

import (
	"sort"

	"github.com/verte-zerg/adaptype/internal/mastery"
	"github.com/verte-zerg/adaptype/internal/model"
	"github.com/verte-zerg/adaptype/internal/stats"
)

const (
	adaptiveMinSessions   = 10
	adaptiveMinKeystrokes = 100
)

// Merge folds a completed session into the aggregate and returns the summary
// appended to its history. It is the only operation that mutates an
// aggregate; the result depends only on the aggregate and the input.
func Merge(agg *model.Aggregate, in model.SessionInput) model.SessionSummary {
	if agg == nil {
		return model.SessionSummary{}
	}
	delta := Analyze(in.Keystrokes)
	practiced := in.EndedAt.UTC().Round(0)

	errors := 0
	improved := []string{}
	for _, ch := range sortedKeys(delta.Chars) {
		d := delta.Chars[ch]
		entry := agg.CharEntry(ch)
		before := entry.Mastery

		entry.TotalAttempts += d.TotalAttempts
		entry.CorrectAttempts += d.CorrectAttempts
		entry.ErrorCount += len(d.Errors)
		entry.TotalTimeMs += sumMs(d.Timings)
		for _, typed := range d.Errors {
			entry.Mistypes[string(typed)]++
		}
		ts := practiced
		entry.LastPracticed = &ts
		entry.Mastery = mastery.ClassifyChar(*entry)

		if entry.Mastery > before {
			improved = append(improved, ch)
		}
		errors += len(d.Errors)
	}

	for _, pair := range sortedKeys(delta.Pairs) {
		d := delta.Pairs[pair]
		entry := agg.PairEntry(pair)
		entry.TotalAttempts += d.TotalAttempts
		entry.CorrectAttempts += d.CorrectAttempts
		entry.TotalTimeMs += sumMs(d.Timings)
		ts := practiced
		entry.LastPracticed = &ts
	}

	agg.TotalSessions++
	agg.TotalKeystrokes += in.KeystrokeCount()

	durationMs := in.EndedAt.Sub(in.StartedAt).Milliseconds()
	if durationMs < 0 {
		durationMs = 0
	}
	wpm, acc := SessionMetrics(len(in.Keystrokes), errors, durationMs)
	summary := model.SessionSummary{
		ID:            in.ID,
		Lesson:        in.Lesson,
		EndedAt:       practiced,
		DurationMs:    durationMs,
		Keystrokes:    len(in.Keystrokes),
		Errors:        errors,
		WPM:           wpm,
		Accuracy:      acc,
		WeakChars:     stats.WeakChars(agg, stats.WeakCharThreshold),
		ImprovedChars: improved,
	}
	agg.History = append(agg.History, summary)
	return summary
}

// ShouldOfferAdaptive reports whether enough data exists to personalize practice.
func ShouldOfferAdaptive(agg *model.Aggregate) bool {
	if agg == nil {
		return false
	}
	return agg.TotalSessions >= adaptiveMinSessions && agg.TotalKeystrokes >= adaptiveMinKeystrokes
}

func sortedKeys[T any](m map[string]T) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
