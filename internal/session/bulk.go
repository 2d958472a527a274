package session

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/mkarlsen/notat/internal/apperr"
	"github.com/mkarlsen/notat/internal/models"
	"github.com/mkarlsen/notat/internal/state"
	"github.com/mkarlsen/notat/internal/store"
)

// BulkPin sets the pin flag on every listed note. The ids are deduplicated,
// the store calls run concurrently, and all of them must succeed; a single
// aggregated failure is reported otherwise. Successfully pinned notes stay
// pinned even when a sibling call fails.
func (s *Session) BulkPin(ctx context.Context, ids []string, pinned bool) error {
	ids = dedupe(ids)
	if len(ids) == 0 {
		return apperr.ErrEmptySelection
	}
	s.saver.Invalidate()
	s.dispatch(state.BulkPinNotes{IDs: ids, Pinned: pinned})
	s.dispatch(state.SaveStart{})

	stored := make([]models.Note, len(ids))
	errs := make([]error, len(ids))
	var g errgroup.Group
	for i, id := range ids {
		i, id := i, id // per-iteration copies; required under the go 1.21 language version
		g.Go(func() error {
			p := pinned
			stored[i], errs[i] = s.store.UpdateNote(ctx, id, models.NotePatch{IsPinned: &p})
			return nil
		})
	}
	_ = g.Wait()

	for i, err := range errs {
		if err == nil && stored[i].ID == ids[i] {
			s.dispatch(state.UpdateNote{ID: ids[i], Patch: models.PatchFromNote(stored[i])})
		}
	}
	if err := s.bulkOutcome("pin notes", "update", ids, errs); err != nil {
		return err
	}
	if pinned {
		s.notifier.Success(fmt.Sprintf("Pinned %d notes", len(ids)))
	} else {
		s.notifier.Success(fmt.Sprintf("Unpinned %d notes", len(ids)))
	}
	return nil
}

// BulkDelete removes every listed note. Same concurrency and all-or-report
// rules as BulkPin; notes whose delete succeeded stay removed even when a
// sibling call fails.
func (s *Session) BulkDelete(ctx context.Context, ids []string) error {
	ids = dedupe(ids)
	if len(ids) == 0 {
		return apperr.ErrEmptySelection
	}
	s.saver.Invalidate()
	s.dispatch(state.BulkDeleteNotes{IDs: ids})
	s.dispatch(state.SaveStart{})

	errs := make([]error, len(ids))
	var g errgroup.Group
	for i, id := range ids {
		i, id := i, id // per-iteration copies; required under the go 1.21 language version
		g.Go(func() error {
			var ack store.Ack
			ack, errs[i] = s.store.DeleteNote(ctx, id)
			if errs[i] == nil && !ack.OK {
				errs[i] = apperr.Invalid("Invalid response for deleteNote")
			}
			return nil
		})
	}
	_ = g.Wait()

	if err := s.bulkOutcome("delete notes", "delete", ids, errs); err != nil {
		return err
	}
	s.notifier.Success(fmt.Sprintf("Deleted %d notes", len(ids)))
	return nil
}

// bulkOutcome folds per-id results into one aggregated success or failure.
func (s *Session) bulkOutcome(op, verb string, ids []string, errs []error) error {
	failed := 0
	var first error
	for _, err := range errs {
		if err != nil {
			failed++
			if first == nil {
				first = err
			}
		}
	}
	if failed == 0 {
		s.dispatch(state.SaveEnd{})
		return nil
	}
	err := fmt.Errorf("Failed to %s %d of %d notes: %w", verb, failed, len(ids), first)
	s.log.Error(op+" failed",
		slog.Int("failed", failed),
		slog.Int("total", len(ids)),
		slog.String("error", first.Error()))
	s.dispatch(state.SaveError{Message: err.Error()})
	s.notifier.Error(err.Error())
	return err
}

// dedupe keeps the first occurrence of each id, preserving order.
func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := ids[:0:0]
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
