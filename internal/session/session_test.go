package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/mkarlsen/notat/internal/apperr"
	"github.com/mkarlsen/notat/internal/models"
	"github.com/mkarlsen/notat/internal/state"
	"github.com/mkarlsen/notat/internal/store"
)

// testLogger discards output; failure paths are exercised on purpose here.
func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// recorder captures notifications for assertions.
type recorder struct {
	mu        sync.Mutex
	successes []string
	failures  []string
}

func (r *recorder) Success(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.successes = append(r.successes, msg)
}

func (r *recorder) Error(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures = append(r.failures, msg)
}

func (r *recorder) lastSuccess() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.successes) == 0 {
		return ""
	}
	return r.successes[len(r.successes)-1]
}

func (r *recorder) failureCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.failures)
}

// fakeStore lets tests inject failures and count calls. Unset funcs fall
// back to benign defaults.
type fakeStore struct {
	mu          sync.Mutex
	updateCalls int
	deleteCalls int

	listFn   func(ctx context.Context) ([]models.Note, error)
	createFn func(ctx context.Context, n models.Note) (models.Note, error)
	updateFn func(ctx context.Context, id string, p models.NotePatch) (models.Note, error)
	deleteFn func(ctx context.Context, id string) (store.Ack, error)
}

func (f *fakeStore) ListNotes(ctx context.Context) ([]models.Note, error) {
	if f.listFn != nil {
		return f.listFn(ctx)
	}
	return nil, nil
}

func (f *fakeStore) CreateNote(ctx context.Context, n models.Note) (models.Note, error) {
	if f.createFn != nil {
		return f.createFn(ctx, n)
	}
	return n, nil
}

func (f *fakeStore) UpdateNote(ctx context.Context, id string, p models.NotePatch) (models.Note, error) {
	f.mu.Lock()
	f.updateCalls++
	f.mu.Unlock()
	if f.updateFn != nil {
		return f.updateFn(ctx, id, p)
	}
	return p.Apply(models.Note{ID: id}), nil
}

func (f *fakeStore) DeleteNote(ctx context.Context, id string) (store.Ack, error) {
	f.mu.Lock()
	f.deleteCalls++
	f.mu.Unlock()
	if f.deleteFn != nil {
		return f.deleteFn(ctx, id)
	}
	return store.Ack{OK: true}, nil
}

func (f *fakeStore) updates() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.updateCalls
}

func (f *fakeStore) deletes() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.deleteCalls
}

// newTestSession backs a session with a real file store in a temp dir.
func newTestSession(t *testing.T) (*Session, *store.Local, *recorder) {
	t.Helper()
	local := store.NewLocal(filepath.Join(t.TempDir(), "notes.json"))
	rec := &recorder{}
	s := New(local, WithLogger(testLogger()), WithNotifier(rec))
	t.Cleanup(s.Close)
	return s, local, rec
}

// eventually polls fn every tick until it returns true or timeout elapses.
func eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}

func TestLoadNotes(t *testing.T) {
	s, local, _ := newTestSession(t)
	ctx := context.Background()

	a := models.NewNote(models.Draft{Title: "a"})
	a.UpdatedAt = a.UpdatedAt.Add(-time.Hour)
	b := models.NewNote(models.Draft{Title: "b"})
	for _, n := range []models.Note{a, b} {
		if _, err := local.CreateNote(ctx, n); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	if err := s.LoadNotes(ctx); err != nil {
		t.Fatalf("LoadNotes: %v", err)
	}
	st := s.State()
	if st.Status != state.StatusIdle {
		t.Errorf("status = %v, want idle", st.Status)
	}
	if len(st.Notes) != 2 || st.Notes[0].ID != b.ID {
		t.Errorf("notes not sorted newest-first: %+v", st.Notes)
	}
	if st.SelectedID != b.ID {
		t.Errorf("selected = %q, want first note", st.SelectedID)
	}
}

func TestLoadNotesFailure(t *testing.T) {
	rec := &recorder{}
	fs := &fakeStore{listFn: func(ctx context.Context) ([]models.Note, error) {
		return nil, apperr.Status("GET", 500)
	}}
	s := New(fs, WithLogger(testLogger()), WithNotifier(rec))
	t.Cleanup(s.Close)

	err := s.LoadNotes(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	st := s.State()
	if st.Status != state.StatusError {
		t.Errorf("status = %v, want error", st.Status)
	}
	if !strings.Contains(st.Err, "Server error (500)") {
		t.Errorf("state error = %q", st.Err)
	}
	if rec.failureCount() != 1 {
		t.Errorf("failures notified = %d, want 1", rec.failureCount())
	}
}

func TestCreateNote(t *testing.T) {
	s, local, rec := newTestSession(t)
	ctx := context.Background()

	created, err := s.CreateNote(ctx, models.Draft{Title: "fresh", Color: models.ColorViolet})
	if err != nil {
		t.Fatalf("CreateNote: %v", err)
	}

	st := s.State()
	if st.SelectedID != created.ID {
		t.Errorf("created note should be selected, got %q", st.SelectedID)
	}
	if got, ok := st.Note(created.ID); !ok || got.Color != models.ColorViolet {
		t.Errorf("state note = %+v", got)
	}
	if st.Status != state.StatusIdle {
		t.Errorf("status = %v, want idle", st.Status)
	}

	persisted, _ := local.ListNotes(ctx)
	if len(persisted) != 1 || persisted[0].ID != created.ID {
		t.Errorf("store contents = %+v", persisted)
	}
	if rec.lastSuccess() != "Note created" {
		t.Errorf("success = %q", rec.lastSuccess())
	}
}

func TestCreateNoteFailureKeepsOptimisticNote(t *testing.T) {
	rec := &recorder{}
	fs := &fakeStore{createFn: func(ctx context.Context, n models.Note) (models.Note, error) {
		return models.Note{}, apperr.Network("POST", "/notes", errors.New("refused"))
	}}
	s := New(fs, WithLogger(testLogger()), WithNotifier(rec))
	t.Cleanup(s.Close)

	_, err := s.CreateNote(context.Background(), models.Draft{Title: "doomed"})
	if err == nil {
		t.Fatal("expected error")
	}
	st := s.State()
	if len(st.Notes) != 1 {
		t.Fatalf("optimistic note rolled back: %+v", st.Notes)
	}
	if st.Status != state.StatusError {
		t.Errorf("status = %v, want error", st.Status)
	}
	if !strings.Contains(st.Err, "Network error (POST /notes)") {
		t.Errorf("state error = %q", st.Err)
	}
}

func TestSaveNoteStampsUpdatedAt(t *testing.T) {
	s, local, rec := newTestSession(t)
	ctx := context.Background()

	n := models.NewNote(models.Draft{Title: "stale"})
	n.CreatedAt = n.CreatedAt.Add(-24 * time.Hour)
	n.UpdatedAt = n.CreatedAt
	if _, err := local.CreateNote(ctx, n); err != nil {
		t.Fatal(err)
	}
	if err := s.LoadNotes(ctx); err != nil {
		t.Fatal(err)
	}

	title := "renamed"
	saved, err := s.SaveNote(ctx, n.ID, models.NotePatch{Title: &title}, SourceExplicit)
	if err != nil {
		t.Fatalf("SaveNote: %v", err)
	}
	if !saved.UpdatedAt.After(n.UpdatedAt) {
		t.Errorf("updatedAt not refreshed: %v", saved.UpdatedAt)
	}

	got, _ := s.State().Note(n.ID)
	if got.Title != "renamed" {
		t.Errorf("state title = %q", got.Title)
	}
	persisted, _ := local.ListNotes(ctx)
	if persisted[0].Title != "renamed" {
		t.Errorf("persisted title = %q", persisted[0].Title)
	}
	if rec.lastSuccess() != "Note saved" {
		t.Errorf("success = %q", rec.lastSuccess())
	}
}

func TestSaveNoteAutosaveIsSilentOnSuccess(t *testing.T) {
	s, local, rec := newTestSession(t)
	ctx := context.Background()

	n, _ := local.CreateNote(ctx, models.NewNote(models.Draft{Title: "quiet"}))
	_ = s.LoadNotes(ctx)

	title := "still quiet"
	if _, err := s.SaveNote(ctx, n.ID, models.NotePatch{Title: &title}, SourceAutosave); err != nil {
		t.Fatalf("SaveNote: %v", err)
	}
	if got := rec.lastSuccess(); got != "" {
		t.Errorf("autosave success should not notify, got %q", got)
	}
}

func TestSaveNoteFailureNotifiesEvenForAutosave(t *testing.T) {
	rec := &recorder{}
	fs := &fakeStore{updateFn: func(ctx context.Context, id string, p models.NotePatch) (models.Note, error) {
		return models.Note{}, apperr.Status("PUT", 503)
	}}
	s := New(fs, WithLogger(testLogger()), WithNotifier(rec))
	t.Cleanup(s.Close)

	title := "x"
	_, err := s.SaveNote(context.Background(), "a", models.NotePatch{Title: &title}, SourceAutosave)
	if err == nil {
		t.Fatal("expected error")
	}
	if rec.failureCount() != 1 {
		t.Errorf("failures notified = %d, want 1", rec.failureCount())
	}
}

func TestTogglePinLeavesUpdatedAtAlone(t *testing.T) {
	s, local, _ := newTestSession(t)
	ctx := context.Background()

	n := models.NewNote(models.Draft{Title: "pin me"})
	n.CreatedAt = n.CreatedAt.Add(-time.Hour)
	n.UpdatedAt = n.CreatedAt
	if _, err := local.CreateNote(ctx, n); err != nil {
		t.Fatal(err)
	}
	_ = s.LoadNotes(ctx)

	pinned, err := s.TogglePin(ctx, n.ID)
	if err != nil {
		t.Fatalf("TogglePin: %v", err)
	}
	if !pinned.IsPinned {
		t.Error("note should be pinned")
	}
	if !pinned.UpdatedAt.Equal(n.UpdatedAt) {
		t.Errorf("pin toggle changed updatedAt: %v -> %v", n.UpdatedAt, pinned.UpdatedAt)
	}

	unpinned, err := s.TogglePin(ctx, n.ID)
	if err != nil {
		t.Fatalf("TogglePin: %v", err)
	}
	if unpinned.IsPinned {
		t.Error("note should be unpinned again")
	}
}

func TestTogglePinUnknownID(t *testing.T) {
	s, _, _ := newTestSession(t)
	if _, err := s.TogglePin(context.Background(), "ghost"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestDeleteNote(t *testing.T) {
	s, local, rec := newTestSession(t)
	ctx := context.Background()

	keep, _ := local.CreateNote(ctx, models.NewNote(models.Draft{Title: "keep"}))
	doomed, _ := local.CreateNote(ctx, models.NewNote(models.Draft{Title: "doomed"}))
	_ = s.LoadNotes(ctx)
	s.SelectNote(doomed.ID)

	if err := s.DeleteNote(ctx, doomed.ID); err != nil {
		t.Fatalf("DeleteNote: %v", err)
	}
	st := s.State()
	if _, ok := st.Note(doomed.ID); ok {
		t.Error("note still in state")
	}
	if st.SelectedID != keep.ID {
		t.Errorf("selected = %q, want the remaining note", st.SelectedID)
	}
	persisted, _ := local.ListNotes(ctx)
	if len(persisted) != 1 {
		t.Errorf("store still has %d notes", len(persisted))
	}
	if rec.lastSuccess() != "Note deleted" {
		t.Errorf("success = %q", rec.lastSuccess())
	}
}

func TestDeleteNoteRejectsBadAck(t *testing.T) {
	rec := &recorder{}
	fs := &fakeStore{deleteFn: func(ctx context.Context, id string) (store.Ack, error) {
		return store.Ack{OK: false}, nil
	}}
	s := New(fs, WithLogger(testLogger()), WithNotifier(rec))
	t.Cleanup(s.Close)

	err := s.DeleteNote(context.Background(), "a")
	if err == nil || !strings.Contains(err.Error(), "Invalid response for deleteNote") {
		t.Errorf("err = %v, want invalid-delete failure", err)
	}
	if s.State().Status != state.StatusError {
		t.Errorf("status = %v, want error", s.State().Status)
	}
}

func TestAutosaveCoalesces(t *testing.T) {
	fs := &fakeStore{}
	s := New(fs, WithLogger(testLogger()), WithAutosaveDelay(30*time.Millisecond))
	t.Cleanup(s.Close)

	for _, text := range []string{"d", "dr", "dra", "draf", "draft"} {
		content := text
		s.AutosaveNote("a", models.NotePatch{Content: &content})
	}

	eventually(t, time.Second, 5*time.Millisecond, func() bool {
		return fs.updates() == 1
	}, "debounced autosave never fired")

	time.Sleep(80 * time.Millisecond)
	if got := fs.updates(); got != 1 {
		t.Errorf("updates = %d, want exactly 1", got)
	}
}

func TestExplicitSaveDropsPendingAutosave(t *testing.T) {
	fs := &fakeStore{}
	s := New(fs, WithLogger(testLogger()), WithAutosaveDelay(50*time.Millisecond))
	t.Cleanup(s.Close)

	stale := "stale draft"
	s.AutosaveNote("a", models.NotePatch{Content: &stale})

	fresh := "explicit content"
	if _, err := s.SaveNote(context.Background(), "a", models.NotePatch{Content: &fresh}, SourceExplicit); err != nil {
		t.Fatalf("SaveNote: %v", err)
	}

	// Wait past the quiet period; the stale autosave must not fire.
	time.Sleep(150 * time.Millisecond)
	if got := fs.updates(); got != 1 {
		t.Errorf("updates = %d, want exactly 1 (the explicit save)", got)
	}
}

func TestNoteSwitchDropsPendingAutosave(t *testing.T) {
	fs := &fakeStore{}
	s := New(fs, WithLogger(testLogger()), WithAutosaveDelay(30*time.Millisecond))
	t.Cleanup(s.Close)

	draft := "unsent"
	s.AutosaveNote("a", models.NotePatch{Content: &draft})
	s.SelectNote("b")

	time.Sleep(100 * time.Millisecond)
	if got := fs.updates(); got != 0 {
		t.Errorf("updates = %d, want 0 after switching notes", got)
	}
}

func TestDeleteDropsPendingAutosave(t *testing.T) {
	fs := &fakeStore{}
	s := New(fs, WithLogger(testLogger()), WithAutosaveDelay(30*time.Millisecond))
	t.Cleanup(s.Close)

	draft := "unsent"
	s.AutosaveNote("a", models.NotePatch{Content: &draft})
	if err := s.DeleteNote(context.Background(), "a"); err != nil {
		t.Fatalf("DeleteNote: %v", err)
	}

	time.Sleep(100 * time.Millisecond)
	if got := fs.updates(); got != 0 {
		t.Errorf("updates = %d, want 0 after delete", got)
	}
}

func TestFilterAndOverlayPassthroughs(t *testing.T) {
	s, _, _ := newTestSession(t)

	s.SetFilter(models.Filter{Query: "milk"})
	if s.State().Filter.Query != "milk" {
		t.Errorf("filter = %+v", s.State().Filter)
	}

	pinnedOnly := true
	s.PatchFilter(models.FilterPatch{PinnedOnly: &pinnedOnly})
	got := s.State().Filter
	if got.Query != "milk" || !got.PinnedOnly {
		t.Errorf("patched filter = %+v", got)
	}

	s.ToggleList()
	if !s.State().ListOpen {
		t.Error("overlay should be open")
	}
	s.SelectNote("x")
	st := s.State()
	if st.SelectedID != "x" || st.ListOpen {
		t.Errorf("after select: selected=%q listOpen=%v", st.SelectedID, st.ListOpen)
	}
}
