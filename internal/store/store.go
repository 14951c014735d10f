// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/verte-zerg/adaptype/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

const (
	counterSessions   = "total_sessions"
	counterKeystrokes = "total_keystrokes"
)

// Store wraps SQLite access for the performance aggregate.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS char_stats (
			char TEXT PRIMARY KEY,
			total_attempts INTEGER NOT NULL,
			correct_attempts INTEGER NOT NULL,
			error_count INTEGER NOT NULL,
			total_time_ms INTEGER NOT NULL,
			mistypes TEXT NOT NULL,
			last_practiced TEXT,
			mastery TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS pair_stats (
			pair TEXT PRIMARY KEY,
			total_attempts INTEGER NOT NULL,
			correct_attempts INTEGER NOT NULL,
			total_time_ms INTEGER NOT NULL,
			last_practiced TEXT
		);`,
		`CREATE TABLE IF NOT EXISTS sessions (
			seq INTEGER PRIMARY KEY,
			id TEXT NOT NULL,
			lesson TEXT NOT NULL,
			ended_at TEXT NOT NULL,
			duration_ms INTEGER NOT NULL,
			keystrokes INTEGER NOT NULL,
			errors INTEGER NOT NULL,
			wpm REAL NOT NULL,
			accuracy REAL NOT NULL,
			weak_chars TEXT NOT NULL,
			improved_chars TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS counters (
			name TEXT PRIMARY KEY,
			value INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_ended_at ON sessions(ended_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// LoadAggregate reads the whole aggregate. An empty database yields an empty
// aggregate.
func (s *Store) LoadAggregate(ctx context.Context) (*model.Aggregate, error) {
	agg := model.NewAggregate()
	if err := s.loadChars(ctx, agg); err != nil {
		return nil, fmt.Errorf("failed to load char stats: %w", err)
	}
	if err := s.loadPairs(ctx, agg); err != nil {
		return nil, fmt.Errorf("failed to load pair stats: %w", err)
	}
	if err := s.loadHistory(ctx, agg); err != nil {
		return nil, fmt.Errorf("failed to load session history: %w", err)
	}
	if err := s.loadCounters(ctx, agg); err != nil {
		return nil, fmt.Errorf("failed to load counters: %w", err)
	}
	return agg, nil
}

func (s *Store) loadChars(ctx context.Context, agg *model.Aggregate) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT char, total_attempts, correct_attempts, error_count, total_time_ms, mistypes, last_practiced, mastery
		 FROM char_stats`)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	for rows.Next() {
		var (
			c        model.CharPerformance
			mistypes string
			last     sql.NullString
			mastery  string
		)
		if err := rows.Scan(&c.Char, &c.TotalAttempts, &c.CorrectAttempts, &c.ErrorCount, &c.TotalTimeMs, &mistypes, &last, &mastery); err != nil {
			return err
		}
		c.Mistypes = map[string]int{}
		if err := json.Unmarshal([]byte(mistypes), &c.Mistypes); err != nil {
			return fmt.Errorf("mistypes for %q: %w", c.Char, err)
		}
		if c.Mistypes == nil {
			c.Mistypes = map[string]int{}
		}
		if c.LastPracticed, err = parseNullTime(last); err != nil {
			return err
		}
		if c.Mastery, err = model.ParseMasteryLevel(mastery); err != nil {
			return err
		}
		agg.Chars[c.Char] = &c
	}
	return rows.Err()
}

func (s *Store) loadPairs(ctx context.Context, agg *model.Aggregate) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT pair, total_attempts, correct_attempts, total_time_ms, last_practiced FROM pair_stats`)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	for rows.Next() {
		var (
			p    model.PairPerformance
			last sql.NullString
		)
		if err := rows.Scan(&p.Pair, &p.TotalAttempts, &p.CorrectAttempts, &p.TotalTimeMs, &last); err != nil {
			return err
		}
		if p.LastPracticed, err = parseNullTime(last); err != nil {
			return err
		}
		agg.Pairs[p.Pair] = &p
	}
	return rows.Err()
}

func (s *Store) loadHistory(ctx context.Context, agg *model.Aggregate) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, lesson, ended_at, duration_ms, keystrokes, errors, wpm, accuracy, weak_chars, improved_chars
		 FROM sessions
		 ORDER BY seq ASC`)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	for rows.Next() {
		var (
			sum            model.SessionSummary
			endedAt        string
			weak, improved string
		)
		if err := rows.Scan(&sum.ID, &sum.Lesson, &endedAt, &sum.DurationMs, &sum.Keystrokes, &sum.Errors, &sum.WPM, &sum.Accuracy, &weak, &improved); err != nil {
			return err
		}
		parsed, err := time.Parse(time.RFC3339Nano, endedAt)
		if err != nil {
			return err
		}
		sum.EndedAt = parsed
		if sum.WeakChars, err = decodeList(weak); err != nil {
			return err
		}
		if sum.ImprovedChars, err = decodeList(improved); err != nil {
			return err
		}
		agg.History = append(agg.History, sum)
	}
	return rows.Err()
}

func (s *Store) loadCounters(ctx context.Context, agg *model.Aggregate) error {
	rows, err := s.db.QueryContext(ctx, `SELECT name, value FROM counters`)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	for rows.Next() {
		var name string
		var value int
		if err := rows.Scan(&name, &value); err != nil {
			return err
		}
		switch name {
		case counterSessions:
			agg.TotalSessions = value
		case counterKeystrokes:
			agg.TotalKeystrokes = value
		}
	}
	return rows.Err()
}

// SaveAggregate replaces the stored state with agg in one transaction.
// Character and pair rows missing from agg are removed, history rows not yet
// stored are appended and counters are overwritten.
func (s *Store) SaveAggregate(ctx context.Context, agg *model.Aggregate) (err error) {
	if agg == nil {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	for _, table := range []string{"char_stats", "pair_stats"} {
		if _, err = tx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	if err = saveChars(ctx, tx, agg); err != nil {
		return fmt.Errorf("failed to save char stats: %w", err)
	}
	if err = savePairs(ctx, tx, agg); err != nil {
		return fmt.Errorf("failed to save pair stats: %w", err)
	}
	if err = saveHistory(ctx, tx, agg.History); err != nil {
		return fmt.Errorf("failed to save session history: %w", err)
	}
	for name, value := range map[string]int{
		counterSessions:   agg.TotalSessions,
		counterKeystrokes: agg.TotalKeystrokes,
	} {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO counters (name, value) VALUES (?, ?)
			 ON CONFLICT(name) DO UPDATE SET value = excluded.value`, name, value); err != nil {
			return fmt.Errorf("failed to save counters: %w", err)
		}
	}
	return tx.Commit()
}

func saveChars(ctx context.Context, tx *sql.Tx, agg *model.Aggregate) error {
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO char_stats (char, total_attempts, correct_attempts, error_count, total_time_ms, mistypes, last_practiced, mastery)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(char) DO UPDATE SET
			total_attempts = excluded.total_attempts,
			correct_attempts = excluded.correct_attempts,
			error_count = excluded.error_count,
			total_time_ms = excluded.total_time_ms,
			mistypes = excluded.mistypes,
			last_practiced = excluded.last_practiced,
			mastery = excluded.mastery`)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := stmt.Close(); cerr != nil {
			// Best-effort statement close.
			_ = cerr
		}
	}()

	for _, ch := range agg.SortedChars() {
		c := agg.Chars[ch]
		mistypes := c.Mistypes
		if mistypes == nil {
			mistypes = map[string]int{}
		}
		encoded, err := json.Marshal(mistypes)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, ch, c.TotalAttempts, c.CorrectAttempts, c.ErrorCount, c.TotalTimeMs,
			string(encoded), formatNullTime(c.LastPracticed), c.Mastery.String()); err != nil {
			return err
		}
	}
	return nil
}

func savePairs(ctx context.Context, tx *sql.Tx, agg *model.Aggregate) error {
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO pair_stats (pair, total_attempts, correct_attempts, total_time_ms, last_practiced)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(pair) DO UPDATE SET
			total_attempts = excluded.total_attempts,
			correct_attempts = excluded.correct_attempts,
			total_time_ms = excluded.total_time_ms,
			last_practiced = excluded.last_practiced`)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := stmt.Close(); cerr != nil {
			// Best-effort statement close.
			_ = cerr
		}
	}()

	for _, pair := range agg.SortedPairs() {
		p := agg.Pairs[pair]
		if _, err := stmt.ExecContext(ctx, pair, p.TotalAttempts, p.CorrectAttempts, p.TotalTimeMs, formatNullTime(p.LastPracticed)); err != nil {
			return err
		}
	}
	return nil
}

// saveHistory appends summaries beyond the stored count. A store holding more
// rows than the aggregate is rewritten from scratch.
func saveHistory(ctx context.Context, tx *sql.Tx, history []model.SessionSummary) error {
	var stored int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM sessions`).Scan(&stored); err != nil {
		return err
	}
	if stored > len(history) {
		if _, err := tx.ExecContext(ctx, `DELETE FROM sessions`); err != nil {
			return err
		}
		stored = 0
	}
	if stored == len(history) {
		return nil
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO sessions (seq, id, lesson, ended_at, duration_ms, keystrokes, errors, wpm, accuracy, weak_chars, improved_chars)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := stmt.Close(); cerr != nil {
			// Best-effort statement close.
			_ = cerr
		}
	}()

	for i := stored; i < len(history); i++ {
		sum := history[i]
		weak, err := encodeList(sum.WeakChars)
		if err != nil {
			return err
		}
		improved, err := encodeList(sum.ImprovedChars)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, i+1, sum.ID, sum.Lesson, sum.EndedAt.UTC().Format(time.RFC3339Nano),
			sum.DurationMs, sum.Keystrokes, sum.Errors, sum.WPM, sum.Accuracy, weak, improved); err != nil {
			return err
		}
	}
	return nil
}

func formatNullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseNullTime(v sql.NullString) (*time.Time, error) {
	if !v.Valid || v.String == "" {
		return nil, nil
	}
	parsed, err := time.Parse(time.RFC3339Nano, v.String)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

func encodeList(items []string) (string, error) {
	if items == nil {
		items = []string{}
	}
	encoded, err := json.Marshal(items)
	if err != nil {
		return "", err
	}
	return string(encoded), nil
}

func decodeList(raw string) ([]string, error) {
	out := []string{}
	if raw == "" {
		return out, nil
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []string{}
	}
	return out, nil
}
