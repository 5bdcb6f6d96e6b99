package notestore

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/contactnotes/internal/storage"
)

const reloadDelay = 100 * time.Millisecond

// ReloadCallback is called after the watcher picked up an external change.
type ReloadCallback func()

// Watch observes the directory holding the snapshot and reloads the store
// whenever the snapshot is changed by someone else, until ctx is cancelled.
//
// The directory rather than the file is watched because atomic writers
// (including FileStore itself) replace the file by renaming over it. Bursts
// of events are debounced; the store's own writes are recognised by checksum
// and do not trigger cb.
func Watch(ctx context.Context, s *FileStore, logger *slog.Logger, cb ReloadCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	dir := filepath.Dir(s.Path())
	if err := w.Add(dir); err != nil {
		return err
	}
	target := filepath.Base(s.Path())

	logger.Info("watcher: started", slog.String("path", s.Path()))

	var timer *time.Timer
	var timerCh <-chan time.Time

	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(reloadDelay)
			timerCh = timer.C
		} else {
			timer.Reset(reloadDelay)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-timerCh:
			changed, err := s.Reload()
			if err != nil {
				logger.Warn("watcher: reload failed", slog.String("error", err.Error()))
				continue
			}
			if !changed {
				continue
			}
			logger.Info("watcher: notes reloaded", slog.String("path", s.Path()))
			if cb != nil {
				cb()
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if storage.IsTemp(ev.Name) || filepath.Base(ev.Name) != target {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename|fsnotify.Remove) != 0 {
				logger.Debug("watcher: event", slog.String("op", ev.Op.String()))
				schedule()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}
