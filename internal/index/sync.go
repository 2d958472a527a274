package index

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mkarlsen/notat/internal/checksum"
	"github.com/mkarlsen/notat/internal/models"
	"github.com/mkarlsen/notat/internal/store"
)

// Sync brings the index up to date with the store:
//   - new/changed notes are upserted
//   - notes gone from the store are deleted from the index
func Sync(ctx context.Context, db *DB, st store.NoteStore, logger *slog.Logger) error {
	notes, err := st.ListNotes(ctx)
	if err != nil {
		return err
	}
	checksums, err := db.AllChecksums()
	if err != nil {
		return err
	}

	seen := make(map[string]struct{}, len(notes))
	for _, n := range notes {
		seen[n.ID] = struct{}{}

		cs := noteChecksum(n)
		if checksums[n.ID] == cs {
			continue
		}
		if err := db.UpsertNote(rowFromNote(n, cs)); err != nil {
			logger.Warn("sync: upsert failed", slog.String("id", n.ID), slog.String("error", err.Error()))
		} else {
			logger.Debug("sync: indexed", slog.String("id", n.ID))
		}
	}

	// Remove stale entries.
	for id := range checksums {
		if _, ok := seen[id]; !ok {
			if err := db.DeleteNote(id); err != nil {
				logger.Warn("sync: delete failed", slog.String("id", id), slog.String("error", err.Error()))
			} else {
				logger.Debug("sync: removed stale", slog.String("id", id))
			}
		}
	}

	return nil
}

// noteChecksum fingerprints the indexed fields so unchanged notes skip
// the upsert.
func noteChecksum(n models.Note) string {
	return checksum.SumString(fmt.Sprintf("%s\x00%s\x00%s\x00%s\x00%t\x00%s",
		n.ID, n.Title, n.Content, n.Color, n.IsPinned,
		n.UpdatedAt.UTC().Format(time.RFC3339Nano)))
}

func rowFromNote(n models.Note, cs string) NoteRow {
	return NoteRow{
		ID:        n.ID,
		Title:     n.Title,
		Content:   n.Content,
		Color:     string(n.Color),
		Pinned:    n.IsPinned,
		Checksum:  cs,
		UpdatedAt: n.UpdatedAt,
	}
}
