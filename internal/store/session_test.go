package store

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadSessionsSingle(t *testing.T) {
	raw := `{
		"id": "rec-1",
		"lesson": "fundamentals",
		"started_at": "2025-03-01T09:00:00Z",
		"total_keystrokes": 4,
		"keystrokes": [
			{"expected": "f", "typed": "f", "elapsed_ms": 200},
			{"expected": "j", "typed": "k", "elapsed_ms": 450},
			{"expected": " ", "typed": " ", "elapsed_ms": 700}
		]
	}`
	sessions, err := ReadSessions(strings.NewReader(raw))
	require.NoError(t, err)
	require.Len(t, sessions, 1)

	in := sessions[0]
	assert.Equal(t, "rec-1", in.ID)
	assert.Equal(t, 4, in.KeystrokeCount())
	require.Len(t, in.Keystrokes, 3)
	assert.True(t, in.Keystrokes[0].Correct)
	assert.False(t, in.Keystrokes[1].Correct)
	assert.Equal(t, 'k', in.Keystrokes[1].Typed)
	assert.Equal(t, 450*time.Millisecond, in.Keystrokes[1].Elapsed)
	assert.Equal(t, in.StartedAt.Add(700*time.Millisecond), in.EndedAt)
}

func TestReadSessionsArray(t *testing.T) {
	raw := `[
		{"id": "a", "started_at": "2025-03-01T09:00:00Z", "ended_at": "2025-03-01T09:01:00Z", "keystrokes": []},
		{"id": "b", "started_at": "2025-03-02T09:00:00Z", "ended_at": "2025-03-02T09:01:00Z", "keystrokes": [{"expected": "é", "typed": "é", "elapsed_ms": 10}]}
	]`
	sessions, err := ReadSessions(strings.NewReader(raw))
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, "b", sessions[1].ID)
	assert.Equal(t, 'é', sessions[1].Keystrokes[0].Expected)
	assert.Equal(t, time.Minute, sessions[0].EndedAt.Sub(sessions[0].StartedAt))
}

func TestReadSessionsRejectsBadInput(t *testing.T) {
	_, err := ReadSessions(strings.NewReader(`{"keystrokes": [{"expected": "ab", "typed": "a"}]}`))
	assert.Error(t, err)

	_, err = ReadSessions(strings.NewReader(`{"keystrokes": [{"expected": "a", "typed": ""}]}`))
	assert.Error(t, err)

	_, err = ReadSessions(strings.NewReader(`not json`))
	assert.Error(t, err)
}
