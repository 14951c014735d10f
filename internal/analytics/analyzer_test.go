package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/adaptype/internal/model"
)

func ks(expected, typed rune, ms int) model.Keystroke {
	return model.NewKeystroke(expected, typed, time.Duration(ms)*time.Millisecond)
}

func TestAnalyzeAllCorrect(t *testing.T) {
	log := []model.Keystroke{
		ks('t', 't', 100),
		ks('e', 'e', 250),
		ks('s', 's', 400),
		ks('t', 't', 550),
	}
	delta := Analyze(log)

	require.Len(t, delta.Chars, 3)
	assert.Equal(t, 2, delta.Chars["t"].TotalAttempts)
	assert.Equal(t, 2, delta.Chars["t"].CorrectAttempts)
	assert.Equal(t, []time.Duration{100 * time.Millisecond, 550 * time.Millisecond}, delta.Chars["t"].Timings)
	assert.Equal(t, 1, delta.Chars["e"].TotalAttempts)
	assert.Equal(t, 1, delta.Chars["s"].TotalAttempts)

	require.Len(t, delta.Pairs, 3)
	for _, pair := range []string{"te", "es", "st"} {
		require.Contains(t, delta.Pairs, pair)
		assert.Equal(t, 1, delta.Pairs[pair].TotalAttempts)
		assert.Equal(t, 1, delta.Pairs[pair].CorrectAttempts)
		assert.Equal(t, []time.Duration{150 * time.Millisecond}, delta.Pairs[pair].Timings)
	}
}

func TestAnalyzeErrorBreaksPairs(t *testing.T) {
	log := []model.Keystroke{
		ks('a', 'a', 100),
		ks('b', 'x', 200),
		ks('c', 'c', 300),
		ks('d', 'd', 450),
	}
	delta := Analyze(log)

	assert.Equal(t, 0, delta.Chars["b"].CorrectAttempts)
	assert.Equal(t, []rune{'x'}, delta.Chars["b"].Errors)
	assert.Empty(t, delta.Chars["b"].Timings)

	require.Len(t, delta.Pairs, 1)
	assert.Contains(t, delta.Pairs, "cd")
	assert.NotContains(t, delta.Pairs, "ab")
	assert.NotContains(t, delta.Pairs, "bc")
}

func TestAnalyzeEdgeCases(t *testing.T) {
	empty := Analyze(nil)
	assert.Empty(t, empty.Chars)
	assert.Empty(t, empty.Pairs)

	single := Analyze([]model.Keystroke{ks('q', 'q', 10)})
	assert.Len(t, single.Chars, 1)
	assert.Empty(t, single.Pairs)
}

func TestAnalyzeIsIdempotent(t *testing.T) {
	log := []model.Keystroke{ks('a', 'a', 10), ks('b', 'b', 30), ks('a', 's', 60)}
	assert.Equal(t, Analyze(log), Analyze(log))
}

func TestAnalyzeDropsNegativePairTiming(t *testing.T) {
	delta := Analyze([]model.Keystroke{ks('a', 'a', 300), ks('b', 'b', 100), ks('c', 'c', 250)})
	require.Contains(t, delta.Pairs, "ab")
	assert.Equal(t, 1, delta.Pairs["ab"].TotalAttempts)
	assert.Empty(t, delta.Pairs["ab"].Timings)
	assert.Equal(t, []time.Duration{150 * time.Millisecond}, delta.Pairs["bc"].Timings)
}

func TestSessionMetrics(t *testing.T) {
	wpm, acc := SessionMetrics(100, 20, 60000)
	assert.InDelta(t, 20.0, wpm, 0.01)
	assert.InDelta(t, 80.0, acc, 0.01)

	wpm, acc = SessionMetrics(50, 0, 0)
	assert.Zero(t, wpm)
	assert.InDelta(t, 100.0, acc, 0.01)

	wpm, acc = SessionMetrics(0, 0, 1000)
	assert.Zero(t, wpm)
	assert.Zero(t, acc)
}
