package stats

import (
	"math"
	"strings"

	"github.com/verte-zerg/adaptype/internal/model"
)

const sparkChars = " .:-=+*#%@"

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	if window <= 1 {
		copy(out, values)
		return out
	}
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal, maxVal := values[0], values[0]
	for _, v := range values[1:] {
		minVal = math.Min(minVal, v)
		maxVal = math.Max(maxVal, v)
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		idx = max(0, min(idx, len(sparkChars)-1))
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// Trend holds smoothed per-session series taken from the history.
type Trend struct {
	WPM      []float64
	Accuracy []float64
}

// HistoryTrend smooths the last limit sessions of history. A limit of zero
// keeps every session.
func HistoryTrend(history []model.SessionSummary, window, limit int) Trend {
	if limit > 0 && len(history) > limit {
		history = history[len(history)-limit:]
	}
	wpms := make([]float64, len(history))
	accs := make([]float64, len(history))
	for i, s := range history {
		wpms[i] = s.WPM
		accs[i] = s.Accuracy
	}
	return Trend{
		WPM:      MovingAverage(wpms, window),
		Accuracy: MovingAverage(accs, window),
	}
}
