// Package models defines the domain types for notat: the Note record, its
// partial-update patch, the display ordering rule, and the normalization
// applied to every value that crosses in from a persistence medium.
package models

import (
	"fmt"
	"slices"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

// DefaultTitle is assigned when a note arrives without a usable title.
const DefaultTitle = "Untitled note"

// Color is the accent color attached to a note.
type Color string

// Supported note colors.
const (
	ColorBlue    Color = "blue"
	ColorAmber   Color = "amber"
	ColorEmerald Color = "emerald"
	ColorViolet  Color = "violet"
	ColorSlate   Color = "slate"
)

// Colors returns every supported color, in display order.
func Colors() []Color {
	return []Color{ColorBlue, ColorAmber, ColorEmerald, ColorViolet, ColorSlate}
}

// Valid reports whether c is one of the supported colors.
func (c Color) Valid() bool {
	switch c {
	case ColorBlue, ColorAmber, ColorEmerald, ColorViolet, ColorSlate:
		return true
	}
	return false
}

// Note is the persisted record. ID is assigned at creation and never
// reassigned; UpdatedAt is refreshed by the session whenever content-bearing
// fields are persisted, so display order reflects real recency.
type Note struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	IsPinned  bool      `json:"isPinned"`
	Color     Color     `json:"color"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Validate checks the invariants every stored note must satisfy.
func (n Note) Validate() error {
	return validation.ValidateStruct(&n,
		validation.Field(&n.ID, validation.Required),
		validation.Field(&n.Color, validation.Required, validation.In(ColorBlue, ColorAmber, ColorEmerald, ColorViolet, ColorSlate)),
	)
}

// Draft carries the caller-supplied fields for a new note. Zero values fall
// back to the documented defaults.
type Draft struct {
	Title   string
	Content string
	Color   Color
	Pinned  bool
}

// NewNote builds a note from a draft with a fresh client-generated id and
// both timestamps set to now.
func NewNote(d Draft) Note {
	now := time.Now().UTC()
	title := d.Title
	if title == "" {
		title = DefaultTitle
	}
	color := d.Color
	if !color.Valid() {
		color = ColorBlue
	}
	return Note{
		ID:        uuid.NewString(),
		Title:     title,
		Content:   d.Content,
		IsPinned:  d.Pinned,
		Color:     color,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NotePatch is a partial update. Nil fields are left untouched; ID and
// CreatedAt are never patchable.
type NotePatch struct {
	Title     *string    `json:"title,omitempty"`
	Content   *string    `json:"content,omitempty"`
	IsPinned  *bool      `json:"isPinned,omitempty"`
	Color     *Color     `json:"color,omitempty"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

// Apply merges the patch into a copy of n and returns it.
func (p NotePatch) Apply(n Note) Note {
	if p.Title != nil {
		n.Title = *p.Title
	}
	if p.Content != nil {
		n.Content = *p.Content
	}
	if p.IsPinned != nil {
		n.IsPinned = *p.IsPinned
	}
	if p.Color != nil {
		n.Color = *p.Color
	}
	if p.UpdatedAt != nil {
		n.UpdatedAt = *p.UpdatedAt
	}
	return n
}

// IsZero reports whether the patch changes nothing.
func (p NotePatch) IsZero() bool {
	return p.Title == nil && p.Content == nil && p.IsPinned == nil && p.Color == nil && p.UpdatedAt == nil
}

// Validate rejects patches that would store an unsupported color.
func (p NotePatch) Validate() error {
	if p.Color != nil && !p.Color.Valid() {
		return fmt.Errorf("models: unsupported color %q", *p.Color)
	}
	return nil
}

// PatchFromNote converts an authoritative note representation into a patch
// covering every patchable field. The session uses it to reconcile the
// optimistic copy with what the store actually persisted.
func PatchFromNote(n Note) NotePatch {
	title, content := n.Title, n.Content
	pinned := n.IsPinned
	color := n.Color
	updated := n.UpdatedAt
	return NotePatch{
		Title:     &title,
		Content:   &content,
		IsPinned:  &pinned,
		Color:     &color,
		UpdatedAt: &updated,
	}
}

// SortNotes orders notes in place for display: pinned notes first, then most
// recently updated first within each partition. The sort is stable so equal
// keys keep their prior relative order.
func SortNotes(notes []Note) {
	slices.SortStableFunc(notes, func(a, b Note) int {
		if a.IsPinned != b.IsPinned {
			if a.IsPinned {
				return -1
			}
			return 1
		}
		if a.UpdatedAt.After(b.UpdatedAt) {
			return -1
		}
		if b.UpdatedAt.After(a.UpdatedAt) {
			return 1
		}
		return 0
	})
}

// SortedNotes returns a sorted copy, leaving the input untouched.
func SortedNotes(notes []Note) []Note {
	out := slices.Clone(notes)
	SortNotes(out)
	return out
}

// NormalizeNote converts a decoded JSON object into a Note, supplying typed
// defaults for missing or wrong-typed fields. External payloads are never
// trusted implicitly: a note that lacks an id and has no fallback id is
// rejected rather than invented.
func NormalizeNote(raw map[string]any, fallbackID string) (Note, error) {
	id, _ := raw["id"].(string)
	if id == "" {
		id = fallbackID
	}
	if id == "" {
		return Note{}, fmt.Errorf("models: note missing id")
	}

	title, ok := raw["title"].(string)
	if !ok || title == "" {
		title = DefaultTitle
	}
	content, _ := raw["content"].(string)
	pinned, _ := raw["isPinned"].(bool)

	color := ColorBlue
	if s, ok := raw["color"].(string); ok && Color(s).Valid() {
		color = Color(s)
	}

	created, ok := parseTimestamp(raw["createdAt"])
	if !ok {
		created = time.Now().UTC()
	}
	updated, ok := parseTimestamp(raw["updatedAt"])
	if !ok {
		// A record that was never updated is as recent as its creation.
		updated = created
	}

	return Note{
		ID:        id,
		Title:     title,
		Content:   content,
		IsPinned:  pinned,
		Color:     color,
		CreatedAt: created,
		UpdatedAt: updated,
	}, nil
}

// parseTimestamp accepts RFC 3339 (with or without fractional seconds) and
// bare dates. Anything else is reported as absent.
func parseTimestamp(v any) (time.Time, bool) {
	s, ok := v.(string)
	if !ok || s == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
