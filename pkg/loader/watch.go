package loader

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/oakwood-commons/prodlookup/internal/debounce"
	"github.com/oakwood-commons/prodlookup/pkg/logger"
)

// DefaultWatchDelay coalesces the burst of events editors emit per save.
const DefaultWatchDelay = 250 * time.Millisecond

// Watch calls onChange whenever the file at path is written, created or
// renamed into place. The parent directory is watched so that atomic
// saves (write temp file, rename) are seen. Watch blocks until ctx is done
// and returns nil in that case.
func Watch(ctx context.Context, path string, delay time.Duration, onChange func()) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", path, err)
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer w.Close()

	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watching %s: %w", filepath.Dir(abs), err)
	}

	lgr := logger.FromContext(ctx).WithValues(logger.SourceKey, abs)
	d := debounce.New(delay)
	defer d.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) {
				lgr.V(1).Info("source changed", "op", ev.Op.String())
				d.Trigger(onChange)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			lgr.Error(err, "watch error")
		}
	}
}
