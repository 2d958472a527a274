package models

import "strings"

// Filter is the search criteria applied to the visible collection: a
// free-text query plus optional color and pinned-only predicates. The zero
// value matches every note.
type Filter struct {
	Query      string `json:"query"`
	Color      Color  `json:"color,omitempty"`
	PinnedOnly bool   `json:"pinnedOnly,omitempty"`
}

// IsZero reports whether the filter matches everything.
func (f Filter) IsZero() bool {
	return f.Query == "" && f.Color == "" && !f.PinnedOnly
}

// Matches reports whether a note satisfies every active predicate. The query
// is matched case-insensitively against title and content.
func (f Filter) Matches(n Note) bool {
	if f.PinnedOnly && !n.IsPinned {
		return false
	}
	if f.Color != "" && n.Color != f.Color {
		return false
	}
	if q := strings.TrimSpace(f.Query); q != "" {
		q = strings.ToLower(q)
		if !strings.Contains(strings.ToLower(n.Title), q) &&
			!strings.Contains(strings.ToLower(n.Content), q) {
			return false
		}
	}
	return true
}

// ApplyFilter returns the notes matching f, preserving input order.
func ApplyFilter(notes []Note, f Filter) []Note {
	if f.IsZero() {
		return notes
	}
	out := make([]Note, 0, len(notes))
	for _, n := range notes {
		if f.Matches(n) {
			out = append(out, n)
		}
	}
	return out
}

// FilterPatch is a partial filter update; nil fields keep their value.
type FilterPatch struct {
	Query      *string `json:"query,omitempty"`
	Color      *Color  `json:"color,omitempty"`
	PinnedOnly *bool   `json:"pinnedOnly,omitempty"`
}

// Apply merges the patch into a copy of f and returns it.
func (p FilterPatch) Apply(f Filter) Filter {
	if p.Query != nil {
		f.Query = *p.Query
	}
	if p.Color != nil {
		f.Color = *p.Color
	}
	if p.PinnedOnly != nil {
		f.PinnedOnly = *p.PinnedOnly
	}
	return f
}
