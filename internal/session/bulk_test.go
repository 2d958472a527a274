package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/mkarlsen/notat/internal/apperr"
	"github.com/mkarlsen/notat/internal/models"
	"github.com/mkarlsen/notat/internal/state"
	"github.com/mkarlsen/notat/internal/store"
)

func seedNotes(t *testing.T, s *Session, local *store.Local, titles ...string) []models.Note {
	t.Helper()
	ctx := context.Background()
	out := make([]models.Note, 0, len(titles))
	for _, title := range titles {
		n, err := local.CreateNote(ctx, models.NewNote(models.Draft{Title: title}))
		if err != nil {
			t.Fatalf("seed %s: %v", title, err)
		}
		out = append(out, n)
	}
	if err := s.LoadNotes(ctx); err != nil {
		t.Fatalf("LoadNotes: %v", err)
	}
	return out
}

func TestBulkPin(t *testing.T) {
	s, local, rec := newTestSession(t)
	notes := seedNotes(t, s, local, "a", "b", "c")

	ids := []string{notes[0].ID, notes[1].ID, notes[0].ID} // one duplicate
	if err := s.BulkPin(context.Background(), ids, true); err != nil {
		t.Fatalf("BulkPin: %v", err)
	}

	st := s.State()
	for _, id := range []string{notes[0].ID, notes[1].ID} {
		if n, _ := st.Note(id); !n.IsPinned {
			t.Errorf("note %s not pinned in state", id)
		}
	}
	if n, _ := st.Note(notes[2].ID); n.IsPinned {
		t.Error("untouched note got pinned")
	}

	persisted, _ := local.ListNotes(context.Background())
	pinned := 0
	for _, n := range persisted {
		if n.IsPinned {
			pinned++
		}
	}
	if pinned != 2 {
		t.Errorf("persisted pinned = %d, want 2", pinned)
	}
	if rec.lastSuccess() != "Pinned 2 notes" {
		t.Errorf("success = %q", rec.lastSuccess())
	}
}

func TestBulkUnpin(t *testing.T) {
	s, local, rec := newTestSession(t)
	notes := seedNotes(t, s, local, "a", "b")
	ctx := context.Background()

	if err := s.BulkPin(ctx, []string{notes[0].ID, notes[1].ID}, true); err != nil {
		t.Fatal(err)
	}
	if err := s.BulkPin(ctx, []string{notes[0].ID, notes[1].ID}, false); err != nil {
		t.Fatal(err)
	}

	for _, n := range s.State().Notes {
		if n.IsPinned {
			t.Errorf("note %s still pinned", n.ID)
		}
	}
	if rec.lastSuccess() != "Unpinned 2 notes" {
		t.Errorf("success = %q", rec.lastSuccess())
	}
}

func TestBulkPinEmptySelection(t *testing.T) {
	s, _, rec := newTestSession(t)

	err := s.BulkPin(context.Background(), nil, true)
	if !errors.Is(err, apperr.ErrEmptySelection) {
		t.Fatalf("err = %v, want ErrEmptySelection", err)
	}
	if s.State().Status != state.StatusIdle {
		t.Errorf("empty selection should not touch status, got %v", s.State().Status)
	}
	if rec.failureCount() != 0 {
		t.Error("empty selection should not notify")
	}

	// Blank ids count as empty too.
	if err := s.BulkDelete(context.Background(), []string{"", ""}); !errors.Is(err, apperr.ErrEmptySelection) {
		t.Errorf("err = %v, want ErrEmptySelection", err)
	}
}

func TestBulkDelete(t *testing.T) {
	s, local, rec := newTestSession(t)
	notes := seedNotes(t, s, local, "a", "b", "c")

	if err := s.BulkDelete(context.Background(), []string{notes[0].ID, notes[2].ID}); err != nil {
		t.Fatalf("BulkDelete: %v", err)
	}

	st := s.State()
	if len(st.Notes) != 1 || st.Notes[0].ID != notes[1].ID {
		t.Errorf("state notes = %+v", st.Notes)
	}
	persisted, _ := local.ListNotes(context.Background())
	if len(persisted) != 1 {
		t.Errorf("persisted = %d notes, want 1", len(persisted))
	}
	if rec.lastSuccess() != "Deleted 2 notes" {
		t.Errorf("success = %q", rec.lastSuccess())
	}
}

func TestBulkDeleteDedupes(t *testing.T) {
	fs := &fakeStore{}
	s := New(fs, WithLogger(testLogger()))
	t.Cleanup(s.Close)

	if err := s.BulkDelete(context.Background(), []string{"a", "a", "b", "a"}); err != nil {
		t.Fatalf("BulkDelete: %v", err)
	}
	if got := fs.deletes(); got != 2 {
		t.Errorf("delete calls = %d, want 2 after dedupe", got)
	}
}

func TestBulkDeletePartialFailure(t *testing.T) {
	var mu sync.Mutex
	calls := 0
	fs := &fakeStore{deleteFn: func(ctx context.Context, id string) (store.Ack, error) {
		mu.Lock()
		calls++
		mu.Unlock()
		if id == "bad" {
			return store.Ack{}, apperr.Status("DELETE", 500)
		}
		return store.Ack{OK: true}, nil
	}}
	rec := &recorder{}
	s := New(fs, WithLogger(testLogger()), WithNotifier(rec))
	t.Cleanup(s.Close)

	err := s.BulkDelete(context.Background(), []string{"good1", "bad", "good2"})
	if err == nil {
		t.Fatal("expected aggregated error")
	}
	if !strings.Contains(err.Error(), "Failed to delete 1 of 3 notes") {
		t.Errorf("err = %q, want aggregated count", err)
	}
	if !strings.Contains(err.Error(), "Server error (500)") {
		t.Errorf("err = %q, should carry the underlying message", err)
	}
	if !errors.Is(err, apperr.ErrServer) {
		t.Errorf("err %v should match ErrServer", err)
	}

	mu.Lock()
	got := calls
	mu.Unlock()
	if got != 3 {
		t.Errorf("delete calls = %d, want all 3 despite the failure", got)
	}
	if rec.failureCount() != 1 {
		t.Errorf("failures notified = %d, want a single aggregated one", rec.failureCount())
	}
	if s.State().Status != state.StatusError {
		t.Errorf("status = %v, want error", s.State().Status)
	}
}

func TestBulkPinPartialFailure(t *testing.T) {
	fs := &fakeStore{updateFn: func(ctx context.Context, id string, p models.NotePatch) (models.Note, error) {
		if id == "bad" {
			return models.Note{}, apperr.Status("PUT", 502)
		}
		return p.Apply(models.Note{ID: id}), nil
	}}
	rec := &recorder{}
	s := New(fs, WithLogger(testLogger()), WithNotifier(rec))
	t.Cleanup(s.Close)

	err := s.BulkPin(context.Background(), []string{"ok", "bad"}, true)
	if err == nil {
		t.Fatal("expected aggregated error")
	}
	if !strings.Contains(err.Error(), "Failed to update 1 of 2 notes") {
		t.Errorf("err = %q", err)
	}
	if rec.failureCount() != 1 {
		t.Errorf("failures notified = %d, want 1", rec.failureCount())
	}
}

// A failed sibling does not roll back the optimistic bulk action.
func TestBulkDeleteFailureKeepsOptimisticRemoval(t *testing.T) {
	fs := &fakeStore{
		listFn: func(ctx context.Context) ([]models.Note, error) {
			return []models.Note{
				models.NewNote(models.Draft{Title: "a"}),
				models.NewNote(models.Draft{Title: "b"}),
			}, nil
		},
		deleteFn: func(ctx context.Context, id string) (store.Ack, error) {
			return store.Ack{}, apperr.Status("DELETE", 500)
		},
	}
	s := New(fs, WithLogger(testLogger()))
	t.Cleanup(s.Close)

	if err := s.LoadNotes(context.Background()); err != nil {
		t.Fatal(err)
	}
	ids := make([]string, 0, 2)
	for _, n := range s.State().Notes {
		ids = append(ids, n.ID)
	}

	if err := s.BulkDelete(context.Background(), ids); err == nil {
		t.Fatal("expected error")
	}
	if got := len(s.State().Notes); got != 0 {
		t.Errorf("optimistic removal rolled back, %d notes left in state", got)
	}
}
