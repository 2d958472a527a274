// Package store persists notes, either to a single JSON file on disk or to
// a remote HTTP API. Both implementations satisfy NoteStore identically so
// the rest of the app never branches on the backend.
package store

import (
	"context"

	"github.com/mkarlsen/notat/internal/models"
)

// Ack acknowledges a delete.
type Ack struct {
	OK bool `json:"ok"`
}

// NoteStore is the persistence contract. Implementations return notes
// already normalized and sorted pinned-first, newest update first.
type NoteStore interface {
	// ListNotes returns every stored note.
	ListNotes(ctx context.Context) ([]models.Note, error)
	// CreateNote persists a note that already carries a client-generated id
	// and returns the authoritative stored representation.
	CreateNote(ctx context.Context, n models.Note) (models.Note, error)
	// UpdateNote applies a partial patch to the note with the given id and
	// returns the stored result.
	UpdateNote(ctx context.Context, id string, patch models.NotePatch) (models.Note, error)
	// DeleteNote removes the note if present. Idempotent for the caller.
	DeleteNote(ctx context.Context, id string) (Ack, error)
}
