package model

import (
	"encoding/json"
	"testing"
)

func TestCharPerformanceMetrics(t *testing.T) {
	c := CharPerformance{TotalAttempts: 100, CorrectAttempts: 85, ErrorCount: 15, TotalTimeMs: 17000}
	if got := c.Accuracy(); got != 85 {
		t.Fatalf("expected accuracy 85, got %v", got)
	}
	if got := c.ErrorRate(); got != 15 {
		t.Fatalf("expected error rate 15, got %v", got)
	}
	if got := c.AverageLatencyMs(); got != 200 {
		t.Fatalf("expected latency 200, got %v", got)
	}
}

func TestZeroAttemptsYieldZeroMetrics(t *testing.T) {
	var c CharPerformance
	if c.Accuracy() != 0 || c.ErrorRate() != 0 || c.AverageLatencyMs() != 0 {
		t.Fatalf("expected zero metrics for empty record")
	}
	var p PairPerformance
	if p.Accuracy() != 0 || p.AverageLatencyMs() != 0 {
		t.Fatalf("expected zero metrics for empty pair")
	}
}

func TestCharEntryUpserts(t *testing.T) {
	agg := NewAggregate()
	first := agg.CharEntry("a")
	first.TotalAttempts = 3
	second := agg.CharEntry("a")
	if second.TotalAttempts != 3 {
		t.Fatalf("expected existing entry to be returned")
	}
	if len(agg.Chars) != 1 {
		t.Fatalf("expected single entry, got %d", len(agg.Chars))
	}
	if second.Mistypes == nil {
		t.Fatalf("expected mistypes map to be initialized")
	}
}

func TestEntryOnZeroAggregate(t *testing.T) {
	var agg Aggregate
	agg.CharEntry("x")
	agg.PairEntry("xy")
	if len(agg.Chars) != 1 || len(agg.Pairs) != 1 {
		t.Fatalf("expected entries on zero-value aggregate")
	}
}

func TestMasteryLevelText(t *testing.T) {
	for _, level := range MasteryLevels {
		text, err := level.MarshalText()
		if err != nil {
			t.Fatalf("marshal %v: %v", level, err)
		}
		var parsed MasteryLevel
		if err := parsed.UnmarshalText(text); err != nil {
			t.Fatalf("unmarshal %q: %v", text, err)
		}
		if parsed != level {
			t.Fatalf("expected %v, got %v", level, parsed)
		}
	}
	if _, err := ParseMasteryLevel("expert"); err == nil {
		t.Fatalf("expected error for unknown tag")
	}
}

func TestCharPerformanceJSONUsesTags(t *testing.T) {
	c := CharPerformance{Char: "d", Mastery: Learning}
	data, err := json.Marshal(c)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if raw["mastery"] != "learning" {
		t.Fatalf("expected mastery tag, got %v", raw["mastery"])
	}
	if raw["last_practiced"] != nil {
		t.Fatalf("expected null last_practiced, got %v", raw["last_practiced"])
	}
}
