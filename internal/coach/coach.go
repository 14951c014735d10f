// Package coach owns the performance aggregate and ties sessions, storage and
// practice content together.
package coach

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/verte-zerg/adaptype/internal/analytics"
	"github.com/verte-zerg/adaptype/internal/generator"
	"github.com/verte-zerg/adaptype/internal/model"
	"github.com/verte-zerg/adaptype/internal/recommend"
	"github.com/verte-zerg/adaptype/internal/stats"
)

// Store persists the aggregate.
type Store interface {
	LoadAggregate(ctx context.Context) (*model.Aggregate, error)
	SaveAggregate(ctx context.Context, agg *model.Aggregate) error
}

// Coach is the single writer of the aggregate.
type Coach struct {
	store  Store
	gen    *generator.Generator
	logger *log.Logger
	agg    *model.Aggregate
}

// New loads the aggregate from st. A load failure is logged and the coach
// starts from an empty aggregate.
func New(ctx context.Context, st Store, gen *generator.Generator, logger *log.Logger) (*Coach, error) {
	if st == nil {
		return nil, fmt.Errorf("store is nil")
	}
	if gen == nil {
		gen = generator.New()
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	agg, err := st.LoadAggregate(ctx)
	if err != nil {
		logger.Warn("starting from empty stats", "err", err)
		agg = model.NewAggregate()
	}
	if agg == nil {
		agg = model.NewAggregate()
	}
	logger.Debug("stats loaded", "sessions", agg.TotalSessions, "chars", len(agg.Chars))
	return &Coach{store: st, gen: gen, logger: logger, agg: agg}, nil
}

// Complete merges a finished session and persists the aggregate. The merge is
// kept in memory even when saving fails.
func (c *Coach) Complete(ctx context.Context, in model.SessionInput) (model.SessionSummary, error) {
	summary := analytics.Merge(c.agg, in)
	c.logger.Debug("session merged",
		"id", summary.ID,
		"keystrokes", summary.Keystrokes,
		"wpm", summary.WPM,
		"accuracy", summary.Accuracy,
	)
	if len(summary.ImprovedChars) > 0 {
		c.logger.Info("mastery improved", "chars", summary.ImprovedChars)
	}
	if err := c.store.SaveAggregate(ctx, c.agg); err != nil {
		return summary, fmt.Errorf("failed to save stats: %w", err)
	}
	return summary, nil
}

// PracticeText returns adaptive drills when requested and enough data
// exists, otherwise the balanced phrase.
func (c *Coach) PracticeText(length int, adaptive bool) string {
	if adaptive && c.AdaptiveAvailable() {
		return c.gen.Adaptive(c.agg, length)
	}
	return generator.Balanced(length)
}

// Recommendation returns the next lesson to offer.
func (c *Coach) Recommendation() model.Recommendation {
	return recommend.Next(c.agg)
}

// AdaptiveAvailable reports whether adaptive mode can be offered.
func (c *Coach) AdaptiveAvailable() bool {
	return analytics.ShouldOfferAdaptive(c.agg)
}

// WeakChars returns the current weak characters.
func (c *Coach) WeakChars() []string {
	return stats.WeakChars(c.agg, stats.WeakCharThreshold)
}

// Aggregate exposes the aggregate for read-only use.
func (c *Coach) Aggregate() *model.Aggregate {
	return c.agg
}
