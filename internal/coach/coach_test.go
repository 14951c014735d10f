package coach

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/adaptype/internal/generator"
	"github.com/verte-zerg/adaptype/internal/model"
	"github.com/verte-zerg/adaptype/internal/store"
)

type memStore struct {
	agg     *model.Aggregate
	loadErr error
	saveErr error
	saves   int
}

func (m *memStore) LoadAggregate(context.Context) (*model.Aggregate, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	if m.agg == nil {
		return model.NewAggregate(), nil
	}
	return m.agg, nil
}

func (m *memStore) SaveAggregate(_ context.Context, agg *model.Aggregate) error {
	m.saves++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.agg = agg
	return nil
}

func typedSession(id, text string, start time.Time) model.SessionInput {
	keys := make([]model.Keystroke, 0, len(text))
	for i, r := range []rune(text) {
		keys = append(keys, model.NewKeystroke(r, r, time.Duration(i+1)*150*time.Millisecond))
	}
	return model.SessionInput{
		ID:         id,
		Lesson:     string(model.LessonFundamentals),
		StartedAt:  start,
		EndedAt:    start.Add(time.Duration(len(keys)) * 150 * time.Millisecond),
		Keystrokes: keys,
	}
}

func TestNewRequiresStore(t *testing.T) {
	_, err := New(context.Background(), nil, nil, nil)
	assert.Error(t, err)
}

func TestNewFallsBackOnLoadError(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(&buf)
	c, err := New(context.Background(), &memStore{loadErr: errors.New("corrupt")}, generator.NewWithSeed(1), logger)
	require.NoError(t, err)
	assert.Equal(t, model.NewAggregate(), c.Aggregate())
	assert.Contains(t, buf.String(), "corrupt")
}

func TestCompleteMergesAndSaves(t *testing.T) {
	st := &memStore{}
	c, err := New(context.Background(), st, generator.NewWithSeed(1), nil)
	require.NoError(t, err)

	summary, err := c.Complete(context.Background(), typedSession("s1", "asdf", time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)))
	require.NoError(t, err)
	assert.Equal(t, "s1", summary.ID)
	assert.Equal(t, 1, st.saves)
	assert.Equal(t, 1, c.Aggregate().TotalSessions)
	assert.Equal(t, 4, c.Aggregate().TotalKeystrokes)
}

func TestCompleteKeepsMergeOnSaveError(t *testing.T) {
	st := &memStore{saveErr: errors.New("disk full")}
	c, err := New(context.Background(), st, generator.NewWithSeed(1), nil)
	require.NoError(t, err)

	_, err = c.Complete(context.Background(), typedSession("s1", "jk", time.Now()))
	require.Error(t, err)
	assert.ErrorIs(t, err, st.saveErr)
	assert.Equal(t, 1, c.Aggregate().TotalSessions)
}

func TestPracticeTextGate(t *testing.T) {
	agg := model.NewAggregate()
	d := agg.CharEntry("d")
	d.TotalAttempts, d.CorrectAttempts, d.ErrorCount = 50, 35, 15
	f := agg.CharEntry("f")
	f.TotalAttempts, f.CorrectAttempts, f.ErrorCount = 50, 48, 2
	agg.TotalSessions = 5
	agg.TotalKeystrokes = 500

	c, err := New(context.Background(), &memStore{agg: agg}, generator.NewWithSeed(3), nil)
	require.NoError(t, err)

	assert.False(t, c.AdaptiveAvailable())
	assert.Equal(t, generator.Balanced(40), c.PracticeText(40, true))
	assert.Equal(t, model.LessonFundamentals, c.Recommendation().Lesson)

	agg.TotalSessions = 12
	assert.True(t, c.AdaptiveAvailable())
	text := c.PracticeText(40, true)
	assert.Len(t, []rune(text), 40)
	assert.NotContains(t, text, "quick")
	assert.Equal(t, generator.Balanced(40), c.PracticeText(40, false))
	assert.Equal(t, model.LessonWeakChars, c.Recommendation().Lesson)
	assert.Equal(t, []string{"d"}, c.WeakChars())
}

func TestCoachWithSQLiteStore(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "adaptype.db")
	st, err := store.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	c, err := New(ctx, st, generator.NewWithSeed(1), nil)
	require.NoError(t, err)
	start := time.Date(2025, 6, 2, 7, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		_, err := c.Complete(ctx, typedSession("s", "the lazy dog", start.Add(time.Duration(i)*time.Minute)))
		require.NoError(t, err)
	}

	reopened, err := New(ctx, st, generator.NewWithSeed(1), nil)
	require.NoError(t, err)
	assert.Equal(t, c.Aggregate(), reopened.Aggregate())
	assert.Equal(t, 3, reopened.Aggregate().TotalSessions)
}

func TestCoachRecoversFromCorruptRow(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "adaptype.db")
	st, err := store.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	c, err := New(ctx, st, generator.NewWithSeed(1), nil)
	require.NoError(t, err)
	start := time.Date(2025, 6, 2, 7, 0, 0, 0, time.UTC)
	for i := 0; i < 4; i++ {
		_, err := c.Complete(ctx, typedSession("s", "the lazy dog", start.Add(time.Duration(i)*time.Minute)))
		require.NoError(t, err)
	}

	raw, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	_, err = raw.ExecContext(ctx, `UPDATE char_stats SET mastery = 'bogus' WHERE char = 't'`)
	require.NoError(t, err)
	require.NoError(t, raw.Close())
	_, err = st.LoadAggregate(ctx)
	require.Error(t, err)

	var buf bytes.Buffer
	recovered, err := New(ctx, st, generator.NewWithSeed(1), log.New(&buf))
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "starting from empty stats")
	_, err = recovered.Complete(ctx, typedSession("r1", "dog", start.Add(time.Hour)))
	require.NoError(t, err)

	loaded, err := st.LoadAggregate(ctx)
	require.NoError(t, err)
	assert.Equal(t, recovered.Aggregate(), loaded)
	assert.NotContains(t, loaded.Chars, "t")

	reopened, err := New(ctx, st, generator.NewWithSeed(1), nil)
	require.NoError(t, err)
	_, err = reopened.Complete(ctx, typedSession("r2", "dog", start.Add(2*time.Hour)))
	require.NoError(t, err)
	assert.Equal(t, 2, reopened.Aggregate().TotalSessions)
	require.Len(t, reopened.Aggregate().History, 2)
	assert.Equal(t, 2, reopened.Aggregate().Chars["d"].TotalAttempts)
}
