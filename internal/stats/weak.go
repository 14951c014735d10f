package stats

import (
	"sort"

	"github.com/verte-zerg/adaptype/internal/model"
)

const (
	// WeakCharThreshold is the accuracy below which a character counts as weak
	// for recommendations and adaptive content.
	WeakCharThreshold  = 80.0
	// SlowCharPercentile selects the slowest quarter of characters.
	SlowCharPercentile = 0.75

	maxWeak           = 5
	minWeakAttempts   = 10
	minSlowCorrect    = 5
	minPairAttempts   = 5
	weakPairThreshold = 85.0
)

// WeakChars returns up to five characters with enough attempts whose accuracy
// is below threshold, worst error rate first.
func WeakChars(agg *model.Aggregate, threshold float64) []string {
	if agg == nil {
		return []string{}
	}
	type candidate struct {
		ch   string
		rate float64
	}
	var candidates []candidate
	for _, ch := range agg.SortedChars() {
		c := agg.Chars[ch]
		if c.TotalAttempts < minWeakAttempts || c.Accuracy() >= threshold {
			continue
		}
		candidates = append(candidates, candidate{ch: ch, rate: c.ErrorRate()})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].rate > candidates[j].rate
	})
	if len(candidates) > maxWeak {
		candidates = candidates[:maxWeak]
	}
	out := make([]string, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, c.ch)
	}
	return out
}

// SlowChars returns characters whose average latency is strictly above the
// latency found at the given percentile of all eligible characters.
func SlowChars(agg *model.Aggregate, percentile float64) []string {
	if agg == nil {
		return []string{}
	}
	type timing struct {
		ch      string
		latency float64
	}
	var timings []timing
	for _, ch := range agg.SortedChars() {
		c := agg.Chars[ch]
		if c.CorrectAttempts < minSlowCorrect {
			continue
		}
		timings = append(timings, timing{ch: ch, latency: c.AverageLatencyMs()})
	}
	if len(timings) == 0 {
		return []string{}
	}
	latencies := make([]float64, len(timings))
	for i, t := range timings {
		latencies[i] = t.latency
	}
	sort.Float64s(latencies)
	idx := int(float64(len(latencies)) * percentile)
	if idx < 0 {
		idx = 0
	}
	if idx > len(latencies)-1 {
		idx = len(latencies) - 1
	}
	threshold := latencies[idx]

	out := []string{}
	for _, t := range timings {
		if t.latency > threshold {
			out = append(out, t.ch)
		}
	}
	return out
}

// WeakPairs returns up to five pairs with enough attempts and accuracy below
// 85%, lowest accuracy first.
func WeakPairs(agg *model.Aggregate) []string {
	if agg == nil {
		return []string{}
	}
	type candidate struct {
		pair string
		acc  float64
	}
	var candidates []candidate
	for _, pair := range agg.SortedPairs() {
		p := agg.Pairs[pair]
		if p.TotalAttempts < minPairAttempts || p.Accuracy() >= weakPairThreshold {
			continue
		}
		candidates = append(candidates, candidate{pair: pair, acc: p.Accuracy()})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].acc < candidates[j].acc
	})
	if len(candidates) > maxWeak {
		candidates = candidates[:maxWeak]
	}
	out := make([]string, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, c.pair)
	}
	return out
}

// FocusChars merges weak and slow characters, keeping first-seen order.
func FocusChars(agg *model.Aggregate) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, group := range [][]string{
		WeakChars(agg, WeakCharThreshold),
		SlowChars(agg, SlowCharPercentile),
	} {
		for _, ch := range group {
			if _, ok := seen[ch]; ok {
				continue
			}
			seen[ch] = struct{}{}
			out = append(out, ch)
		}
	}
	return out
}

// Mistype counts how often a character was typed in place of another.
type Mistype struct {
	Typed string
	Count int
}

// TopMistypes returns the n most frequent substitutions for a character.
func TopMistypes(c model.CharPerformance, n int) []Mistype {
	if n <= 0 || len(c.Mistypes) == 0 {
		return nil
	}
	out := make([]Mistype, 0, len(c.Mistypes))
	for typed, count := range c.Mistypes {
		out = append(out, Mistype{Typed: typed, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count == out[j].Count {
			return out[i].Typed < out[j].Typed
		}
		return out[i].Count > out[j].Count
	})
	if n > len(out) {
		n = len(out)
	}
	return out[:n]
}
