package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/gofrs/flock"

	"dust/internal/api"
	"dust/internal/config"
	"dust/internal/library"
	"dust/internal/logging"
)

// Daemon coordinates the background services and enforces single-instance
// execution.
type Daemon struct {
	cfg    *config.Config
	logger *slog.Logger
	store  *library.Store
	svc    *api.Service

	logPath  string
	lockPath string
	lock     *flock.Flock
	hub      *logging.StreamHub
	archive  *logging.EventArchive

	api     *apiServer
	watcher *libraryWatcher

	running atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc
}

// Status represents daemon runtime information.
type Status struct {
	Running    bool
	Watching   bool
	LockPath   string
	SocketPath string
	Library    *api.StatusInfo
}

// New constructs a daemon with initialized dependencies. hub and archive
// feed the HTTP log stream endpoint and may be nil.
func New(cfg *config.Config, store *library.Store, svc *api.Service, logger *slog.Logger, logPath string, hub *logging.StreamHub, archive *logging.EventArchive) (*Daemon, error) {
	if cfg == nil || store == nil || svc == nil || logger == nil {
		return nil, errors.New("daemon requires config, store, service, and logger")
	}

	lockPath := cfg.LockPath()
	d := &Daemon{
		cfg:      cfg,
		logger:   logger,
		store:    store,
		svc:      svc,
		logPath:  logPath,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
		hub:      hub,
		archive:  archive,
	}

	apiSrv, err := newAPIServer(cfg, svc, hub, archive, logger)
	if err != nil {
		return nil, err
	}
	d.api = apiSrv

	if cfg.Scanner.Watch {
		d.watcher = newLibraryWatcher(cfg, svc, logger)
	}
	return d, nil
}

// Start acquires the instance lock and brings up the HTTP API and the
// library watcher.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another dust daemon instance is already running")
	}

	d.ctx, d.cancel = context.WithCancel(ctx)
	if err := d.api.start(d.ctx); err != nil {
		_ = d.lock.Unlock()
		d.cancel()
		d.ctx = nil
		d.cancel = nil
		return err
	}
	if d.watcher != nil {
		if err := d.watcher.start(d.ctx); err != nil {
			d.logger.Warn("library watcher failed to start",
				logging.Error(err),
				logging.String(logging.FieldEventType, "watcher_start_failed"),
				logging.String(logging.FieldImpact, "new game folders will not be picked up automatically"),
				logging.String(logging.FieldErrorHint, "check that the library directory exists and rescan manually"),
			)
		}
	}

	d.running.Store(true)
	d.logger.Info("dust daemon started", logging.String("lock", d.lockPath))
	return nil
}

// Stop stops background services and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	if d.watcher != nil {
		d.watcher.stop()
	}
	d.api.stop()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.ctx = nil
	d.running.Store(false)
	d.logger.Info("dust daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// API returns the application facade shared by every transport.
func (d *Daemon) API() *api.Service {
	return d.svc
}

// LogPath returns the path to the daemon log file.
func (d *Daemon) LogPath() string {
	return d.logPath
}

// LogStream returns the in-memory log event hub, if one was wired.
func (d *Daemon) LogStream() *logging.StreamHub {
	return d.hub
}

// LogArchive returns the on-disk log event archive, if one was wired.
func (d *Daemon) LogArchive() *logging.EventArchive {
	return d.archive
}

// Status returns the current daemon status.
func (d *Daemon) Status(ctx context.Context) Status {
	status := Status{
		Running:    d.running.Load(),
		Watching:   d.watcher != nil && d.watcher.active(),
		LockPath:   d.lockPath,
		SocketPath: d.cfg.SocketPath(),
	}
	if info, err := d.svc.Status(ctx); err == nil {
		status.Library = info
	}
	return status
}
