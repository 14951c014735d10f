// Package stats contains statistics calculations and reporting.
package stats

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/verte-zerg/adaptype/internal/model"
	"github.com/verte-zerg/adaptype/internal/spacedrep"
)

const (
	defaultTrendWindow = 5
	defaultTrendWidth  = 40
	reportMistypes     = 3
)

// ReportOptions controls RenderReport.
type ReportOptions struct {
	Now time.Time
	// MaxChars limits the character table to the most attempted characters.
	MaxChars       int
	TrendWindow    int
	TrendWidth     int
	Recommendation *model.Recommendation
}

// RenderReport prints the full statistics report for the aggregate.
func RenderReport(w io.Writer, agg *model.Aggregate, opts ReportOptions) error {
	if agg == nil {
		agg = model.NewAggregate()
	}
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}
	if opts.TrendWindow <= 0 {
		opts.TrendWindow = defaultTrendWindow
	}
	if opts.TrendWidth <= 0 {
		opts.TrendWidth = defaultTrendWidth
	}

	if err := RenderSummary(w, agg, opts); err != nil {
		return err
	}
	if err := RenderCharTable(w, agg, opts.Now, opts.MaxChars); err != nil {
		return err
	}
	if err := RenderFocus(w, agg, opts.Now); err != nil {
		return err
	}
	if opts.Recommendation != nil {
		rec := opts.Recommendation
		if _, err := fmt.Fprintf(w, "Next lesson: %s (%.0f%% confidence)\n%s\n", rec.Lesson, rec.Confidence*100, rec.Reason); err != nil {
			return err
		}
	}
	return nil
}

// RenderSummary prints totals and recent session performance.
func RenderSummary(w io.Writer, agg *model.Aggregate, opts ReportOptions) error {
	if _, err := fmt.Fprintln(w, "Summary"); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Sessions: %s\n", humanize.Comma(int64(agg.TotalSessions))); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Keystrokes: %s\n", humanize.Comma(int64(agg.TotalKeystrokes))); err != nil {
		return err
	}
	if len(agg.History) == 0 {
		_, err := fmt.Fprint(w, "No sessions found.\n\n")
		return err
	}

	var totalWPM, totalAcc, bestWPM float64
	for _, s := range agg.History {
		totalWPM += s.WPM
		totalAcc += s.Accuracy
		bestWPM = max(bestWPM, s.WPM)
	}
	count := float64(len(agg.History))
	last := agg.History[len(agg.History)-1]
	lines := []string{
		fmt.Sprintf("Last session: %.2f WPM, %.2f%% accuracy (%s)", last.WPM, last.Accuracy, humanize.RelTime(last.EndedAt, opts.Now, "ago", "from now")),
		fmt.Sprintf("Avg WPM: %.2f", totalWPM/count),
		fmt.Sprintf("Best WPM: %.2f", bestWPM),
		fmt.Sprintf("Avg Accuracy: %.2f%%", totalAcc/count),
	}
	if len(agg.History) > 1 {
		trend := HistoryTrend(agg.History, opts.TrendWindow, opts.TrendWidth)
		lines = append(lines,
			fmt.Sprintf("WPM trend:      %s", Sparkline(trend.WPM)),
			fmt.Sprintf("Accuracy trend: %s", Sparkline(trend.Accuracy)),
		)
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// CharTableHeaders names the columns of CharTableRows.
var CharTableHeaders = []string{"Char", "Mastery", "Accuracy", "Avg Latency (ms)", "Attempts", "Next Practice"}

// CharTableRows formats per-character performance, lowest accuracy first.
// A positive maxChars keeps only the most attempted characters.
func CharTableRows(agg *model.Aggregate, now time.Time, maxChars int) [][]string {
	chars := agg.SortedChars()
	if maxChars > 0 {
		chars = TopCharsByFrequency(agg, maxChars)
	}
	sort.Slice(chars, func(i, j int) bool {
		ai, aj := agg.Chars[chars[i]].Accuracy(), agg.Chars[chars[j]].Accuracy()
		if ai == aj {
			return chars[i] < chars[j]
		}
		return ai < aj
	})

	rows := make([][]string, 0, len(chars))
	for _, ch := range chars {
		c := agg.Chars[ch]
		rows = append(rows, []string{
			charLabel(ch),
			c.Mastery.String(),
			fmt.Sprintf("%.2f%%", c.Accuracy()),
			fmt.Sprintf("%.1f", c.AverageLatencyMs()),
			humanize.Comma(int64(c.TotalAttempts)),
			nextPractice(*c, now),
		})
	}
	return rows
}

// RenderCharTable prints per-character performance, lowest accuracy first.
func RenderCharTable(w io.Writer, agg *model.Aggregate, now time.Time, maxChars int) error {
	if len(agg.Chars) == 0 {
		_, err := fmt.Fprint(w, "No character stats found.\n\n")
		return err
	}
	if _, err := fmt.Fprintln(w, "Per-Character"); err != nil {
		return err
	}
	rightAlign := map[int]bool{2: true, 3: true, 4: true}
	for _, line := range formatTable(CharTableHeaders, CharTableRows(agg, now, maxChars), rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

func nextPractice(c model.CharPerformance, now time.Time) string {
	if spacedrep.NeedsPractice(c, now) {
		return "due"
	}
	due, _ := spacedrep.DueAt(c)
	return humanize.RelTime(now, due, "from now", "ago")
}

// RenderFocus lists weak, slow and due characters plus common mistypes.
func RenderFocus(w io.Writer, agg *model.Aggregate, now time.Time) error {
	weak := WeakChars(agg, WeakCharThreshold)
	lines := []string{
		"Weak characters: " + joinLabels(weak),
		"Slow characters: " + joinLabels(SlowChars(agg, SlowCharPercentile)),
		"Weak pairs: " + joinLabels(WeakPairs(agg)),
		"Due for review: " + joinLabels(spacedrep.DueChars(agg, now)),
	}
	for _, ch := range weak {
		mistypes := TopMistypes(*agg.Chars[ch], reportMistypes)
		if len(mistypes) == 0 {
			continue
		}
		parts := make([]string, len(mistypes))
		for i, m := range mistypes {
			parts[i] = fmt.Sprintf("%s (%d)", charLabel(m.Typed), m.Count)
		}
		lines = append(lines, fmt.Sprintf("  %s typed as: %s", charLabel(ch), strings.Join(parts, ", ")))
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

func joinLabels(items []string) string {
	if len(items) == 0 {
		return "none"
	}
	labels := make([]string, len(items))
	for i, item := range items {
		if len([]rune(item)) > 1 {
			labels[i] = strings.ReplaceAll(item, " ", "␣")
			continue
		}
		labels[i] = charLabel(item)
	}
	return strings.Join(labels, ", ")
}
