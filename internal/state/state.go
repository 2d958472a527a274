// Package state holds the in-memory note collection and its pure reducer.
package state

import "github.com/mkarlsen/notat/internal/models"

// Status tracks what the collection is currently doing.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusSaving  Status = "saving"
	StatusError   Status = "error"
)

// State is the reducer's sole aggregate. Notes is kept in display order:
// pinned before unpinned, newest update first within each partition.
type State struct {
	Notes      []models.Note
	SelectedID string
	Filter     models.Filter
	Status     Status
	Err        string
	ListOpen   bool
}

// New returns the empty starting state.
func New() State {
	return State{Status: StatusIdle}
}

// Note returns the note with the given id, if present.
func (s State) Note(id string) (models.Note, bool) {
	for _, n := range s.Notes {
		if n.ID == id {
			return n, true
		}
	}
	return models.Note{}, false
}

// Selected returns the currently selected note, if any.
func (s State) Selected() (models.Note, bool) {
	if s.SelectedID == "" {
		return models.Note{}, false
	}
	return s.Note(s.SelectedID)
}

// Visible returns the notes that pass the current filter, in display order.
func (s State) Visible() []models.Note {
	return models.ApplyFilter(s.Notes, s.Filter)
}
