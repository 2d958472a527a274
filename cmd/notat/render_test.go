package main

import (
	"strings"
	"testing"
	"time"

	"github.com/mkarlsen/notat/internal/models"
)

func TestFormatAge(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		ago  time.Duration
		want string
	}{
		{0, "0s"},
		{45 * time.Second, "45s"},
		{90 * time.Second, "1m"},
		{59 * time.Minute, "59m"},
		{3 * time.Hour, "3h"},
		{26 * time.Hour, "1d"},
		{10 * 24 * time.Hour, "10d"},
	}
	for _, tc := range cases {
		if got := formatAge(now.Add(-tc.ago), now); got != tc.want {
			t.Errorf("formatAge(-%v) = %q, want %q", tc.ago, got, tc.want)
		}
	}
}

func TestFormatAge_FutureClampsToZero(t *testing.T) {
	now := time.Now()
	if got := formatAge(now.Add(time.Hour), now); got != "0s" {
		t.Errorf("future age = %q, want 0s", got)
	}
}

func TestShortID(t *testing.T) {
	cases := []struct{ id, want string }{
		{"4f8a8c2e-1111-2222-3333-444455556666", "4f8a8c2e"},
		{"short", "short"},
		{"longerthaneight", "longerth"},
	}
	for _, tc := range cases {
		if got := shortID(tc.id); got != tc.want {
			t.Errorf("shortID(%q) = %q, want %q", tc.id, got, tc.want)
		}
	}
}

func TestListLine_Plain(t *testing.T) {
	r := newRenderer(true)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	n := models.Note{
		ID:        "aa11bb22-0000-0000-0000-000000000000",
		Title:     "Groceries",
		IsPinned:  true,
		Color:     models.ColorAmber,
		UpdatedAt: now.Add(-2 * time.Hour),
	}

	line := r.listLine(n, now)
	for _, want := range []string{"[amber]", "*", "Groceries", "aa11bb22", "2h"} {
		if !strings.Contains(line, want) {
			t.Errorf("line %q missing %q", line, want)
		}
	}
}

func TestNoteCard_Plain(t *testing.T) {
	r := newRenderer(true)
	now := time.Now()
	n := models.Note{
		ID:        "aa11bb22-0000-0000-0000-000000000000",
		Title:     "Groceries",
		Content:   "milk, eggs",
		Color:     models.ColorBlue,
		UpdatedAt: now,
	}

	card := r.noteCard(n, now)
	if !strings.Contains(card, "Groceries") || !strings.Contains(card, "milk, eggs") {
		t.Errorf("card = %q", card)
	}
	if !strings.Contains(card, n.ID) {
		t.Error("card must show the full id")
	}
	if strings.Contains(card, "pinned") {
		t.Error("unpinned note rendered as pinned")
	}
}

func TestNotifierLines_Plain(t *testing.T) {
	r := newRenderer(true)
	if got := r.successLine("Note saved"); got != "Note saved" {
		t.Errorf("successLine = %q", got)
	}
	if got := r.errorLine("Failed to save."); got != "Failed to save." {
		t.Errorf("errorLine = %q", got)
	}
}
