package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/mkarlsen/notat/internal/models"
)

// Accent colors, aligned with the note palette.
var noteColors = map[models.Color]lipgloss.Color{
	models.ColorBlue:    lipgloss.Color("#3B82F6"),
	models.ColorAmber:   lipgloss.Color("#F59E0B"),
	models.ColorEmerald: lipgloss.Color("#10B981"),
	models.ColorViolet:  lipgloss.Color("#8B5CF6"),
	models.ColorSlate:   lipgloss.Color("#64748B"),
}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))
	pinStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B"))
)

// renderer turns notes and notifications into terminal output. With plain
// set, everything degrades to unstyled text for pipes and tests.
type renderer struct {
	plain bool
}

func newRenderer(plain bool) renderer {
	return renderer{plain: plain}
}

// Success implements session.Notifier.
func (r renderer) Success(msg string) {
	fmt.Println(r.successLine(msg))
}

// Error implements session.Notifier.
func (r renderer) Error(msg string) {
	fmt.Fprintln(os.Stderr, r.errorLine(msg))
}

func (r renderer) successLine(msg string) string {
	if r.plain {
		return msg
	}
	return successStyle.Render("✓ " + msg)
}

func (r renderer) errorLine(msg string) string {
	if r.plain {
		return msg
	}
	return errorStyle.Render("✗ " + msg)
}

func (r renderer) mutedLine(msg string) string {
	if r.plain {
		return msg
	}
	return mutedStyle.Render(msg)
}

func (r renderer) swatch(c models.Color) string {
	if r.plain {
		return "[" + string(c) + "]"
	}
	col, ok := noteColors[c]
	if !ok {
		col = noteColors[models.ColorBlue]
	}
	return lipgloss.NewStyle().Foreground(col).Render("●")
}

func (r renderer) pinMarker(pinned bool) string {
	if !pinned {
		return " "
	}
	if r.plain {
		return "*"
	}
	return pinStyle.Render("★")
}

// listLine renders one row: swatch, pin marker, title, short id, age.
func (r renderer) listLine(n models.Note, now time.Time) string {
	title := n.Title
	if !r.plain {
		title = titleStyle.Render(title)
	}
	meta := fmt.Sprintf("%s  %s", shortID(n.ID), formatAge(n.UpdatedAt, now))
	if !r.plain {
		meta = mutedStyle.Render(meta)
	}
	return fmt.Sprintf("%s %s %s  %s", r.swatch(n.Color), r.pinMarker(n.IsPinned), title, meta)
}

// noteCard renders the full note for show and add.
func (r renderer) noteCard(n models.Note, now time.Time) string {
	var b strings.Builder

	title := n.Title
	if !r.plain {
		title = titleStyle.Render(title)
	}
	b.WriteString(fmt.Sprintf("%s %s %s\n", r.swatch(n.Color), r.pinMarker(n.IsPinned), title))

	meta := fmt.Sprintf("id %s · %s · updated %s ago", n.ID, n.Color, formatAge(n.UpdatedAt, now))
	if n.IsPinned {
		meta += " · pinned"
	}
	if !r.plain {
		meta = mutedStyle.Render(meta)
	}
	b.WriteString(meta)

	if n.Content != "" {
		b.WriteString("\n\n")
		b.WriteString(n.Content)
	}
	return b.String()
}

// shortID returns the leading segment of a note id, enough to address it
// from the command line.
func shortID(id string) string {
	if i := strings.IndexByte(id, '-'); i > 0 {
		return id[:i]
	}
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// formatAge renders how long ago a timestamp was, in the largest whole
// unit: 45s, 12m, 3h, 10d.
func formatAge(then, now time.Time) string {
	d := now.Sub(then)
	if d < 0 {
		d = 0
	}

	seconds := int64(d.Truncate(time.Second).Seconds())
	if seconds < 60 {
		return fmt.Sprintf("%ds", seconds)
	}
	minutes := seconds / 60
	if minutes < 60 {
		return fmt.Sprintf("%dm", minutes)
	}
	hours := minutes / 60
	if hours < 24 {
		return fmt.Sprintf("%dh", hours)
	}
	days := hours / 24
	return fmt.Sprintf("%dd", days)
}
