package recommend

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/adaptype/internal/model"
)

func withChar(agg *model.Aggregate, ch string, total, correct int) {
	c := agg.CharEntry(ch)
	c.TotalAttempts = total
	c.CorrectAttempts = correct
	c.ErrorCount = total - correct
}

func TestFoundationalBelowTenSessions(t *testing.T) {
	agg := model.NewAggregate()
	agg.TotalSessions = 5
	withChar(agg, "d", 50, 10)

	rec := Next(agg)
	assert.Equal(t, model.LessonFundamentals, rec.Lesson)
	assert.InDelta(t, 0.90, rec.Confidence, 1e-9)
}

func TestNilAggregateIsFoundational(t *testing.T) {
	assert.Equal(t, model.LessonFundamentals, Next(nil).Lesson)
}

func TestWeakCharsRecommendation(t *testing.T) {
	agg := model.NewAggregate()
	agg.TotalSessions = 12
	withChar(agg, "d", 50, 35)
	withChar(agg, "f", 50, 48)

	rec := Next(agg)
	require.Equal(t, model.LessonWeakChars, rec.Lesson)
	assert.InDelta(t, 0.85, rec.Confidence, 1e-9)
	assert.Equal(t, []string{"d"}, rec.Focus)
	assert.True(t, strings.Contains(rec.Reason, "'d'"), rec.Reason)
}

func TestWeakPairsRecommendation(t *testing.T) {
	agg := model.NewAggregate()
	agg.TotalSessions = 12
	withChar(agg, "f", 50, 48)
	p := agg.PairEntry("dk")
	p.TotalAttempts = 20
	p.CorrectAttempts = 15

	rec := Next(agg)
	require.Equal(t, model.LessonWeakPairs, rec.Lesson)
	assert.InDelta(t, 0.80, rec.Confidence, 1e-9)
	assert.Equal(t, []string{"dk"}, rec.Focus)
}

func TestExpansionWhenNothingWeak(t *testing.T) {
	agg := model.NewAggregate()
	agg.TotalSessions = 30
	withChar(agg, "f", 50, 48)

	rec := Next(agg)
	assert.Equal(t, model.LessonExpansion, rec.Lesson)
	assert.InDelta(t, 0.75, rec.Confidence, 1e-9)
	assert.GreaterOrEqual(t, rec.Confidence, 0.0)
	assert.LessOrEqual(t, rec.Confidence, 1.0)
}
