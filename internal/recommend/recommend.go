// Package recommend picks the next lesson to offer from the aggregate.
package recommend

import (
	"fmt"
	"strings"

	"github.com/verte-zerg/adaptype/internal/model"
	"github.com/verte-zerg/adaptype/internal/stats"
)

const minSessions = 10

// Next returns exactly one recommendation for the aggregate.
func Next(agg *model.Aggregate) model.Recommendation {
	sessions := 0
	if agg != nil {
		sessions = agg.TotalSessions
	}
	if sessions < minSessions {
		return model.Recommendation{
			Lesson:     model.LessonFundamentals,
			Reason:     fmt.Sprintf("Build accuracy on fundamentals (%d/%d sessions before personalization)", sessions, minSessions),
			Confidence: 0.90,
		}
	}
	if weak := stats.WeakChars(agg, stats.WeakCharThreshold); len(weak) > 0 {
		return model.Recommendation{
			Lesson:     model.LessonWeakChars,
			Reason:     fmt.Sprintf("Focus on weak characters: %s", formatFocus(weak)),
			Confidence: 0.85,
			Focus:      weak,
		}
	}
	if pairs := stats.WeakPairs(agg); len(pairs) > 0 {
		return model.Recommendation{
			Lesson:     model.LessonWeakPairs,
			Reason:     fmt.Sprintf("Practice weak character pairs: %s", formatFocus(pairs)),
			Confidence: 0.80,
			Focus:      pairs,
		}
	}
	return model.Recommendation{
		Lesson:     model.LessonExpansion,
		Reason:     "No weak areas found; expand to new symbols and content",
		Confidence: 0.75,
	}
}

func formatFocus(items []string) string {
	quoted := make([]string, len(items))
	for i, item := range items {
		if item == " " {
			item = "<space>"
		}
		quoted[i] = fmt.Sprintf("'%s'", item)
	}
	return strings.Join(quoted, ", ")
}
