package state

import "github.com/mkarlsen/notat/internal/models"

// Action is a state transition request. The set of actions is closed;
// Reduce leaves the state unchanged for anything it does not recognize.
type Action interface {
	isAction()
}

type action struct{}

func (action) isAction() {}

// LoadStart marks the collection as loading.
type LoadStart struct{ action }

// LoadSuccess replaces the collection with freshly loaded notes.
// SelectID, when non-empty, wins over any previous selection.
type LoadSuccess struct {
	action
	Notes    []models.Note
	SelectID string
}

// LoadError records a failed load. An empty Message falls back to a default.
type LoadError struct {
	action
	Message string
}

// SetFilter replaces the whole filter.
type SetFilter struct {
	action
	Filter models.Filter
}

// PatchFilter merges the set fields of Patch into the current filter.
type PatchFilter struct {
	action
	Patch models.FilterPatch
}

// SelectNote focuses a note and closes the mobile list overlay.
type SelectNote struct {
	action
	ID string
}

// ToggleListMobile flips the small-screen list overlay.
type ToggleListMobile struct{ action }

// CreateNote inserts a note, selects it and closes the mobile overlay.
type CreateNote struct {
	action
	Note models.Note
}

// UpdateNote merges Patch into the note with the given id.
// Unknown ids are a no-op.
type UpdateNote struct {
	action
	ID    string
	Patch models.NotePatch
}

// TogglePinNote flips the pin flag on the note with the given id.
type TogglePinNote struct {
	action
	ID string
}

// DeleteNote removes the note with the given id.
type DeleteNote struct {
	action
	ID string
}

// BulkPinNotes sets the pin flag on every listed note.
type BulkPinNotes struct {
	action
	IDs    []string
	Pinned bool
}

// BulkDeleteNotes removes every listed note.
type BulkDeleteNotes struct {
	action
	IDs []string
}

// SaveStart marks a persistence-affecting operation as in flight.
type SaveStart struct{ action }

// SaveEnd returns the collection to idle after a successful save.
type SaveEnd struct{ action }

// SaveError records a failed save. An empty Message falls back to a default.
type SaveError struct {
	action
	Message string
}
