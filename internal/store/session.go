package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"time"
	"unicode/utf8"

	"github.com/verte-zerg/adaptype/internal/model"
)

type recordedKeystroke struct {
	Expected  string `json:"expected"`
	Typed     string `json:"typed"`
	ElapsedMs int64  `json:"elapsed_ms"`
}

type recordedSession struct {
	ID              string              `json:"id"`
	Lesson          string              `json:"lesson"`
	StartedAt       time.Time           `json:"started_at"`
	EndedAt         time.Time           `json:"ended_at"`
	TotalKeystrokes int                 `json:"total_keystrokes"`
	Keystrokes      []recordedKeystroke `json:"keystrokes"`
}

// ReadSessions decodes recorded sessions. The input is either one session
// object or an array of them.
func ReadSessions(r io.Reader) ([]model.SessionInput, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	raw = bytes.TrimSpace(raw)
	var recorded []recordedSession
	if len(raw) > 0 && raw[0] == '[' {
		err = json.Unmarshal(raw, &recorded)
	} else {
		var one recordedSession
		err = json.Unmarshal(raw, &one)
		recorded = []recordedSession{one}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode sessions: %w", err)
	}

	out := make([]model.SessionInput, 0, len(recorded))
	for i, rs := range recorded {
		in, err := rs.toInput()
		if err != nil {
			return nil, fmt.Errorf("session %d: %w", i, err)
		}
		out = append(out, in)
	}
	return out, nil
}

func (rs recordedSession) toInput() (model.SessionInput, error) {
	keys := make([]model.Keystroke, 0, len(rs.Keystrokes))
	for i, k := range rs.Keystrokes {
		expected, err := singleRune(k.Expected)
		if err != nil {
			return model.SessionInput{}, fmt.Errorf("keystroke %d expected: %w", i, err)
		}
		typed, err := singleRune(k.Typed)
		if err != nil {
			return model.SessionInput{}, fmt.Errorf("keystroke %d typed: %w", i, err)
		}
		keys = append(keys, model.NewKeystroke(expected, typed, time.Duration(k.ElapsedMs)*time.Millisecond))
	}
	endedAt := rs.EndedAt
	if endedAt.IsZero() {
		endedAt = rs.StartedAt
		if n := len(rs.Keystrokes); n > 0 {
			endedAt = rs.StartedAt.Add(time.Duration(rs.Keystrokes[n-1].ElapsedMs) * time.Millisecond)
		}
	}
	return model.SessionInput{
		ID:              rs.ID,
		Lesson:          rs.Lesson,
		StartedAt:       rs.StartedAt,
		EndedAt:         endedAt,
		Keystrokes:      keys,
		TotalKeystrokes: rs.TotalKeystrokes,
	}, nil
}

func singleRune(s string) (rune, error) {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError || size != len(s) {
		return 0, fmt.Errorf("want exactly one character, got %q", s)
	}
	return r, nil
}
