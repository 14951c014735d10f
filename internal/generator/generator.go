// Package generator builds typing text sequences.
package generator

import (
	"math/rand"
	"strings"
	"time"

	"github.com/verte-zerg/adaptype/internal/mastery"
	"github.com/verte-zerg/adaptype/internal/model"
	"github.com/verte-zerg/adaptype/internal/stats"
)

// BalancedPhrase is used when there is nothing to focus on.
const BalancedPhrase = "The quick brown fox jumps over the lazy dog"

const minBucketAttempts = 10

// Generator produces randomized typing text.
type Generator struct {
	rnd *rand.Rand
}

// New returns a Generator seeded with the current time.
func New() *Generator {
	return NewWithSeed(time.Now().UnixNano())
}

// NewWithSeed returns a Generator with reproducible output.
func NewWithSeed(seed int64) *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(seed))}
}

// Adaptive returns at most length runes of drills biased toward characters
// with low mastery. Without weak or slow characters it returns Balanced.
func (g *Generator) Adaptive(agg *model.Aggregate, length int) string {
	if length <= 0 {
		return ""
	}
	focus := stats.FocusChars(agg)
	if len(focus) == 0 {
		return Balanced(length)
	}

	buckets := bucketByMastery(agg)
	var b strings.Builder
	written := 0
	for written < length {
		keys := pickBucket(buckets, g.rnd.Float64())
		if len(keys) == 0 {
			keys = focus
		}
		if written > 0 {
			b.WriteByte(' ')
			written++
		}
		token := g.pattern(keys)
		b.WriteString(token)
		written += len([]rune(token))
	}
	return truncate(b.String(), length)
}

// Balanced cycles the characters of BalancedPhrase back to back and cuts the
// result to length runes.
func Balanced(length int) string {
	if length <= 0 {
		return ""
	}
	var b strings.Builder
	for b.Len() < length {
		b.WriteString(BalancedPhrase)
	}
	return truncate(b.String(), length)
}

func bucketByMastery(agg *model.Aggregate) map[model.MasteryLevel][]string {
	buckets := make(map[model.MasteryLevel][]string, len(model.MasteryLevels))
	if agg == nil {
		return buckets
	}
	for _, ch := range agg.SortedChars() {
		c := agg.Chars[ch]
		if c.TotalAttempts < minBucketAttempts {
			continue
		}
		level := mastery.ClassifyChar(*c)
		buckets[level] = append(buckets[level], ch)
	}
	return buckets
}

// pickBucket selects the bucket whose cumulative weight range holds u and
// falls back from Beginner upward when it is empty.
func pickBucket(buckets map[model.MasteryLevel][]string, u float64) []string {
	if keys := buckets[mastery.Select(u)]; len(keys) > 0 {
		return keys
	}
	for _, level := range model.MasteryLevels {
		if keys := buckets[level]; len(keys) > 0 {
			return keys
		}
	}
	return nil
}

func (g *Generator) pattern(keys []string) string {
	pick := func() string { return keys[g.rnd.Intn(len(keys))] }
	switch g.rnd.Intn(3) {
	case 0:
		k := pick()
		if g.rnd.Intn(2) == 0 {
			return k + k
		}
		return k + k + " " + k + k
	case 1:
		if len(keys) < 2 {
			return keys[0] + keys[0]
		}
		k1, k2 := pick(), pick()
		return k1 + k2 + " " + k1 + k2
	default:
		switch {
		case len(keys) >= 3:
			return pick() + pick() + pick()
		case len(keys) == 2:
			return pick() + pick()
		default:
			return keys[0] + keys[0]
		}
	}
}

func truncate(s string, length int) string {
	runes := []rune(s)
	if len(runes) <= length {
		return s
	}
	return string(runes[:length])
}
