// Package session orchestrates user intents against the note store: every
// mutation is dispatched optimistically to the reducer first, then the
// store is called, and its authoritative response is reconciled back in.
// Failures are reported, never rolled back.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mkarlsen/notat/internal/apperr"
	"github.com/mkarlsen/notat/internal/debounce"
	"github.com/mkarlsen/notat/internal/models"
	"github.com/mkarlsen/notat/internal/state"
	"github.com/mkarlsen/notat/internal/store"
)

// autosaveTimeout bounds a debounced save once it fires; there is no
// caller left to cancel it.
const autosaveTimeout = 10 * time.Second

// Source tells a save apart by origin: explicit saves notify on success,
// autosaves stay silent unless they fail.
type Source string

const (
	SourceExplicit Source = "explicit"
	SourceAutosave Source = "autosave"
)

// Notifier receives user-facing success and failure messages.
type Notifier interface {
	Success(msg string)
	Error(msg string)
}

type nopNotifier struct{}

func (nopNotifier) Success(string) {}
func (nopNotifier) Error(string)   {}

// Session owns the in-memory collection state for one running app. All
// state changes go through dispatch, so snapshots handed out by State
// are never mutated afterwards.
type Session struct {
	mu       sync.Mutex
	st       state.State
	store    store.NoteStore
	notifier Notifier
	log      *slog.Logger
	saver    *debounce.Debouncer
}

// Option is a functional option for configuring the session.
type Option func(*Session)

// WithLogger sets the structured logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Session) {
		s.log = log
	}
}

// WithNotifier routes success/failure messages to the given notifier.
func WithNotifier(n Notifier) Option {
	return func(s *Session) {
		s.notifier = n
	}
}

// WithAutosaveDelay overrides the debounce quiet period.
func WithAutosaveDelay(d time.Duration) Option {
	return func(s *Session) {
		s.saver = debounce.New(d)
	}
}

// New creates a session backed by the given store.
func New(st store.NoteStore, opts ...Option) *Session {
	s := &Session{
		st:       state.New(),
		store:    st,
		notifier: nopNotifier{},
		log:      slog.Default(),
		saver:    debounce.New(debounce.DefaultDelay),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Close cancels any pending autosave.
func (s *Session) Close() {
	s.saver.Stop()
}

// State returns the current state snapshot.
func (s *Session) State() state.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st
}

func (s *Session) dispatch(a state.Action) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st = state.Reduce(s.st, a)
}

// LoadNotes replaces the collection with the store's contents.
func (s *Session) LoadNotes(ctx context.Context) error {
	s.saver.Invalidate()
	s.dispatch(state.LoadStart{})
	notes, err := s.store.ListNotes(ctx)
	if err != nil {
		s.log.Error("load notes failed", slog.String("error", err.Error()))
		s.dispatch(state.LoadError{Message: err.Error()})
		s.notifier.Error(err.Error())
		return err
	}
	s.dispatch(state.LoadSuccess{Notes: notes})
	return nil
}

// CreateNote builds a note from the draft, shows it immediately, and
// persists it.
func (s *Session) CreateNote(ctx context.Context, draft models.Draft) (models.Note, error) {
	s.saver.Invalidate()
	candidate := models.NewNote(draft)
	s.dispatch(state.CreateNote{Note: candidate})
	s.dispatch(state.SaveStart{})

	stored, err := s.store.CreateNote(ctx, candidate)
	if err != nil {
		s.fail("create note", candidate.ID, err)
		return models.Note{}, err
	}
	if stored.ID == candidate.ID {
		s.dispatch(state.UpdateNote{ID: stored.ID, Patch: models.PatchFromNote(stored)})
	}
	s.dispatch(state.SaveEnd{})
	s.notifier.Success("Note created")
	return stored, nil
}

// SaveNote persists a patch for the note with the given id. The patch is
// stamped with a fresh updatedAt before the optimistic dispatch, so the
// list reorders correctly even while the store call is in flight.
func (s *Session) SaveNote(ctx context.Context, id string, patch models.NotePatch, src Source) (models.Note, error) {
	if src != SourceAutosave {
		s.saver.Invalidate()
	}
	now := time.Now().UTC()
	patch.UpdatedAt = &now

	s.dispatch(state.UpdateNote{ID: id, Patch: patch})
	s.dispatch(state.SaveStart{})

	stored, err := s.store.UpdateNote(ctx, id, patch)
	if err != nil {
		s.fail("save note", id, err)
		return models.Note{}, err
	}
	if stored.ID == id {
		s.dispatch(state.UpdateNote{ID: id, Patch: models.PatchFromNote(stored)})
	}
	s.dispatch(state.SaveEnd{})
	if src != SourceAutosave {
		s.notifier.Success("Note saved")
	}
	return stored, nil
}

// AutosaveNote schedules a debounced save for keystroke-driven edits.
// Each call replaces any pending one; an explicit save, note switch, pin
// toggle or delete issued before the quiet period ends drops it.
func (s *Session) AutosaveNote(id string, patch models.NotePatch) {
	s.saver.Schedule(func() {
		ctx, cancel := context.WithTimeout(context.Background(), autosaveTimeout)
		defer cancel()
		_, _ = s.SaveNote(ctx, id, patch, SourceAutosave)
	})
}

// TogglePin flips the pin flag. Pin toggles deliberately do not touch
// updatedAt, so pinning never masquerades as an edit.
func (s *Session) TogglePin(ctx context.Context, id string) (models.Note, error) {
	s.saver.Invalidate()
	current, ok := s.State().Note(id)
	if !ok {
		return models.Note{}, fmt.Errorf("session: note %s: %w", id, apperr.ErrNotFound)
	}
	s.dispatch(state.TogglePinNote{ID: id})
	s.dispatch(state.SaveStart{})

	pinned := !current.IsPinned
	stored, err := s.store.UpdateNote(ctx, id, models.NotePatch{IsPinned: &pinned})
	if err != nil {
		s.fail("toggle pin", id, err)
		return models.Note{}, err
	}
	if stored.ID == id {
		s.dispatch(state.UpdateNote{ID: id, Patch: models.PatchFromNote(stored)})
	}
	s.dispatch(state.SaveEnd{})
	if pinned {
		s.notifier.Success("Note pinned")
	} else {
		s.notifier.Success("Note unpinned")
	}
	return stored, nil
}

// DeleteNote removes the note locally and in the store. A store response
// that does not acknowledge the delete counts as a failure even when the
// transport reported success.
func (s *Session) DeleteNote(ctx context.Context, id string) error {
	s.saver.Invalidate()
	s.dispatch(state.DeleteNote{ID: id})
	s.dispatch(state.SaveStart{})

	ack, err := s.store.DeleteNote(ctx, id)
	if err == nil && !ack.OK {
		err = apperr.Invalid("Invalid response for deleteNote")
	}
	if err != nil {
		s.fail("delete note", id, err)
		return err
	}
	s.dispatch(state.SaveEnd{})
	s.notifier.Success("Note deleted")
	return nil
}

// SelectNote focuses a note. Switching notes drops any pending autosave
// so a stale draft cannot overwrite the note edited next.
func (s *Session) SelectNote(id string) {
	s.saver.Invalidate()
	s.dispatch(state.SelectNote{ID: id})
}

// SetFilter replaces the filter criteria.
func (s *Session) SetFilter(f models.Filter) {
	s.dispatch(state.SetFilter{Filter: f})
}

// PatchFilter merges the set fields into the filter criteria.
func (s *Session) PatchFilter(p models.FilterPatch) {
	s.dispatch(state.PatchFilter{Patch: p})
}

// ToggleList flips the small-screen list overlay.
func (s *Session) ToggleList() {
	s.dispatch(state.ToggleListMobile{})
}

// fail records a store failure: the optimistic mutation stays applied, the
// status flips to error, and the message is surfaced to the user.
func (s *Session) fail(op, id string, err error) {
	s.log.Error(op+" failed", slog.String("id", id), slog.String("error", err.Error()))
	s.dispatch(state.SaveError{Message: err.Error()})
	s.notifier.Error(err.Error())
}
