package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/mkarlsen/notat/internal/apperr"
	"github.com/mkarlsen/notat/internal/models"
)

// Local stores the whole collection as one JSON array in a single file.
// Every mutation rewrites the file atomically, so readers never observe a
// partial write.
type Local struct {
	mu   sync.Mutex
	path string
}

// NewLocal creates a file-backed store. The file does not have to exist
// yet; it is created on the first write.
func NewLocal(path string) *Local {
	return &Local{path: path}
}

// Path returns the backing file location.
func (l *Local) Path() string {
	return l.path
}

// ListNotes returns the stored collection. An absent or unreadable blob is
// an empty collection, not an error.
func (l *Local) ListNotes(ctx context.Context) ([]models.Note, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	notes, err := l.read()
	if err != nil {
		return nil, err
	}
	models.SortNotes(notes)
	return notes, nil
}

// CreateNote appends a note to the collection and rewrites the blob.
func (l *Local) CreateNote(ctx context.Context, n models.Note) (models.Note, error) {
	if n.ID == "" {
		return models.Note{}, errors.New("store: create: note id required")
	}
	n = fillDefaults(n)

	l.mu.Lock()
	defer l.mu.Unlock()
	notes, err := l.read()
	if err != nil {
		return models.Note{}, err
	}
	for _, existing := range notes {
		if existing.ID == n.ID {
			return models.Note{}, fmt.Errorf("store: note %s: %w", n.ID, apperr.ErrAlreadyExists)
		}
	}
	notes = append(notes, n)
	models.SortNotes(notes)
	if err := l.write(notes); err != nil {
		return models.Note{}, err
	}
	return n, nil
}

// UpdateNote patches the note with the given id.
func (l *Local) UpdateNote(ctx context.Context, id string, patch models.NotePatch) (models.Note, error) {
	if err := patch.Validate(); err != nil {
		return models.Note{}, fmt.Errorf("store: update %s: %w", id, err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	notes, err := l.read()
	if err != nil {
		return models.Note{}, err
	}
	for i := range notes {
		if notes[i].ID != id {
			continue
		}
		notes[i] = patch.Apply(notes[i])
		updated := notes[i]
		models.SortNotes(notes)
		if err := l.write(notes); err != nil {
			return models.Note{}, err
		}
		return updated, nil
	}
	return models.Note{}, fmt.Errorf("store: note %s: %w", id, apperr.ErrNotFound)
}

// DeleteNote removes the note if present. Deleting an unknown id still
// acknowledges success.
func (l *Local) DeleteNote(ctx context.Context, id string) (Ack, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	notes, err := l.read()
	if err != nil {
		return Ack{}, err
	}
	kept := notes[:0]
	removed := false
	for _, n := range notes {
		if n.ID == id {
			removed = true
			continue
		}
		kept = append(kept, n)
	}
	if removed {
		if err := l.write(kept); err != nil {
			return Ack{}, err
		}
	}
	return Ack{OK: true}, nil
}

// read loads and normalizes the blob. Entries that cannot be normalized
// (no id at all) are dropped rather than failing the whole read.
func (l *Local) read() ([]models.Note, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("store: read %s: %w", l.path, err)
	}
	var raw []map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, nil
	}
	notes := make([]models.Note, 0, len(raw))
	for _, obj := range raw {
		n, err := models.NormalizeNote(obj, "")
		if err != nil {
			continue
		}
		notes = append(notes, n)
	}
	return notes, nil
}

// write rewrites the blob atomically: tmp file → fsync → rename.
func (l *Local) write(notes []models.Note) error {
	if notes == nil {
		notes = []models.Note{}
	}
	data, err := json.MarshalIndent(notes, "", "  ")
	if err != nil {
		return fmt.Errorf("store: encode: %w", err)
	}

	dir := filepath.Dir(l.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("store: mkdir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".notat-tmp-*")
	if err != nil {
		return fmt.Errorf("store: create temp: %w", err)
	}
	tmpName := tmp.Name()

	// Clean up on any failure path.
	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("store: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("store: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("store: close temp: %w", err)
	}
	if err := os.Rename(tmpName, l.path); err != nil {
		return fmt.Errorf("store: rename: %w", err)
	}
	success = true
	return nil
}

func fillDefaults(n models.Note) models.Note {
	if n.Title == "" {
		n.Title = models.DefaultTitle
	}
	if !n.Color.Valid() {
		n.Color = models.ColorBlue
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	if n.UpdatedAt.IsZero() {
		n.UpdatedAt = n.CreatedAt
	}
	return n
}
