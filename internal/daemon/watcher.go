package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"dust/internal/api"
	"dust/internal/config"
	"dust/internal/logging"
)

// libraryWatcher triggers a debounced rescan when first-level entries of the
// library directory change. The watch is not recursive, so sidecar writes
// inside game folders from our own scans never feed back into it.
type libraryWatcher struct {
	cfg      *config.Config
	svc      *api.Service
	logger   *slog.Logger
	debounce time.Duration

	mu      sync.Mutex
	watcher *fsnotify.Watcher
	running bool
	wg      sync.WaitGroup
}

func newLibraryWatcher(cfg *config.Config, svc *api.Service, logger *slog.Logger) *libraryWatcher {
	debounce := time.Duration(cfg.Scanner.WatchDebounceSeconds) * time.Second
	if debounce <= 0 {
		debounce = 5 * time.Second
	}
	return &libraryWatcher{
		cfg:      cfg,
		svc:      svc,
		logger:   logging.NewComponentLogger(logger, "watcher"),
		debounce: debounce,
	}
}

func (w *libraryWatcher) start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return nil
	}
	dir := strings.TrimSpace(w.cfg.Paths.LibraryDir)
	if dir == "" {
		return errors.New("no library directory configured")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	w.watcher = watcher
	w.running = true
	w.wg.Add(1)
	go w.loop(ctx, watcher)

	w.logger.Info("library watcher started",
		logging.String("dir", dir),
		logging.Duration("debounce", w.debounce))
	return nil
}

func (w *libraryWatcher) stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	watcher := w.watcher
	w.watcher = nil
	w.mu.Unlock()

	if watcher != nil {
		_ = watcher.Close()
	}
	w.wg.Wait()
}

func (w *libraryWatcher) active() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

func (w *libraryWatcher) loop(ctx context.Context, watcher *fsnotify.Watcher) {
	defer w.wg.Done()

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !w.relevant(evt) {
				continue
			}
			w.logger.Debug("library change observed",
				logging.String("path", evt.Name),
				logging.String("op", evt.Op.String()))
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(w.debounce)
			fire = timer.C
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("library watch error", logging.Error(err))
		case <-fire:
			timer = nil
			fire = nil
			w.rescan(ctx)
		}
	}
}

func (w *libraryWatcher) relevant(evt fsnotify.Event) bool {
	if evt.Op&(fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	name := filepath.Base(evt.Name)
	if strings.HasPrefix(name, ".") {
		return false
	}
	for _, ignored := range w.cfg.Scanner.IgnoreDirs {
		if strings.EqualFold(strings.TrimSpace(ignored), name) {
			return false
		}
	}
	return true
}

func (w *libraryWatcher) rescan(ctx context.Context) {
	summary, err := w.svc.ScanLibrary(ctx, "")
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		w.logger.Warn("watch rescan failed",
			logging.Error(err),
			logging.String(logging.FieldEventType, "watch_rescan_failed"),
			logging.String(logging.FieldErrorHint, "run a manual scan to reconcile the library"))
		return
	}
	w.logger.Info("watch rescan finished",
		logging.Int("found", summary.FoundGames),
		logging.Int("updated", summary.UpdatedGames),
		logging.Int("errors", summary.ErrorCount),
		logging.String(logging.FieldEventType, "watch_rescan_finished"))
}
