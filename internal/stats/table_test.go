package stats

import (
	"strings"
	"testing"
)

func TestFormatTableAlignsColumns(t *testing.T) {
	headers := []string{"Char", "Accuracy", "Correct"}
	rows := [][]string{
		{"a", "97.50%", "12"},
		{"<space>", "8.00%", "3"},
	}
	rightAlign := map[int]bool{1: true, 2: true}

	lines := formatTable(headers, rows, rightAlign)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0] != "Char    Accuracy Correct" {
		t.Fatalf("unexpected header line: %q", lines[0])
	}
	if lines[1] != "a         97.50%      12" {
		t.Fatalf("unexpected row line: %q", lines[1])
	}
	if lines[2] != "<space>    8.00%       3" {
		t.Fatalf("unexpected row line: %q", lines[2])
	}
}

func TestFormatTableWideRunes(t *testing.T) {
	headers := []string{"Ch", "Attempts"}
	rows := [][]string{
		{"漢字", "5"},
		{"a", "12"},
	}
	lines := formatTable(headers, rows, map[int]bool{1: true})
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0] != "Ch   Attempts" {
		t.Fatalf("unexpected header line: %q", lines[0])
	}
	if want := "漢字 " + strings.Repeat(" ", 7) + "5"; lines[1] != want {
		t.Fatalf("expected %q, got %q", want, lines[1])
	}
	if want := "a   " + " " + strings.Repeat(" ", 6) + "12"; lines[2] != want {
		t.Fatalf("expected %q, got %q", want, lines[2])
	}
	for i, line := range lines {
		if w := displayWidth(line); w != 13 {
			t.Fatalf("line %d has display width %d, want 13", i, w)
		}
	}
}

func TestCharLabel(t *testing.T) {
	cases := map[string]string{
		" ":  "<space>",
		"\t": "<tab>",
		"é":  "é",
		"ab": "ab",
	}
	for in, want := range cases {
		if got := charLabel(in); got != want {
			t.Fatalf("charLabel(%q) = %q, want %q", in, got, want)
		}
	}
}
