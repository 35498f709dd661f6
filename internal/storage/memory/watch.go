package memory

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"
)

// DefaultDebounce collapses the burst of events an editor produces on save.
const DefaultDebounce = 500 * time.Millisecond

// Watch reloads the catalog from path whenever the file changes, until ctx is
// cancelled. The parent directory is watched so that atomic
// rename-over-save is picked up. A file that fails to parse is logged and
// the previous snapshot stays in place.
func (c *Catalog) Watch(ctx context.Context, path string, debounce time.Duration) error {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	path = filepath.Clean(path)

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "create watcher")
	}
	defer func() { _ = w.Close() }()

	if err := w.Add(filepath.Dir(path)); err != nil {
		return errors.Wrapf(err, "watch %s", path)
	}

	lg := zctx.From(ctx).With(zap.String("path", path))
	lg.Info("Watching catalog")

	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			timer.Reset(debounce)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			lg.Warn("Catalog watcher error", zap.Error(err))
		case <-timer.C:
			if err := c.reloadFile(path); err != nil {
				lg.Warn("Catalog reload failed, keeping previous snapshot", zap.Error(err))
				continue
			}
			lg.Info("Catalog reloaded", zap.Int("products", len(c.Snapshot().Products)))
		}
	}
}

func (c *Catalog) reloadFile(path string) error {
	data, err := ReadCatalogFile(path)
	if err != nil {
		return err
	}
	return c.Reload(data)
}
