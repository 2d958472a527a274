package index

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/mkarlsen/notat/internal/store"
)

// SyncCallback is called after each watcher-driven sync pass.
type SyncCallback func()

// Watch re-syncs the index whenever the store's backing file changes, so
// edits made by other processes show up in search. The parent directory is
// watched rather than the file itself: the store replaces the file by
// rename, which would silently detach a file-level watch. Events are
// debounced so a burst of writes costs one sync pass.
func Watch(ctx context.Context, db *DB, st store.NoteStore, blobPath string, logger *slog.Logger, cb SyncCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	dir := filepath.Dir(blobPath)
	base := filepath.Base(blobPath)
	if err := w.Add(dir); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("file", blobPath))

	// syncTimer debounces bursts of file events into one sync.
	var syncTimer *time.Timer
	var syncCh <-chan time.Time

	scheduleSync := func() {
		if syncTimer == nil {
			syncTimer = time.NewTimer(200 * time.Millisecond)
			syncCh = syncTimer.C
		} else {
			syncTimer.Reset(200 * time.Millisecond)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if syncTimer != nil {
				syncTimer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-syncCh:
			if err := Sync(ctx, db, st, logger); err != nil {
				logger.Warn("watcher: sync failed", slog.String("error", err.Error()))
			} else if cb != nil {
				cb()
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Base(ev.Name) != base {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename|fsnotify.Remove) != 0 {
				logger.Debug("watcher: change detected", slog.String("op", ev.Op.String()))
				scheduleSync()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}
