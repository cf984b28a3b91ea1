// Package daemonrun owns the dustd process lifecycle: logging setup, PID and
// lock files, the IPC and HTTP servers, and signal-driven shutdown.
package daemonrun

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"dust/internal/api"
	"dust/internal/config"
	"dust/internal/daemon"
	"dust/internal/dlsite"
	"dust/internal/ipc"
	"dust/internal/library"
	"dust/internal/logging"
)

// Options configures daemon process runtime behavior.
type Options struct {
	LogLevel    string
	Development bool
}

// Run starts the dust daemon runtime loop and blocks until a termination
// signal arrives.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	runID := time.Now().UTC().Format("20060102T150405.000Z")
	logPath := filepath.Join(cfg.Paths.LogDir, fmt.Sprintf("dust-%s.log", runID))
	eventsPath := filepath.Join(cfg.Paths.LogDir, fmt.Sprintf("dust-%s.events", runID))
	logHub := logging.NewStreamHub(4096)
	eventArchive, archiveErr := logging.NewEventArchive(eventsPath)
	if archiveErr != nil {
		fmt.Fprintf(os.Stderr, "warn: unable to initialize log archive: %v\n", archiveErr)
	} else if eventArchive != nil {
		logHub.AddSink(eventArchive)
	}

	logger, err := logging.New(logging.Options{
		Level:            opts.LogLevel,
		Format:           cfg.Logging.Format,
		OutputPaths:      []string{"stdout", logPath},
		ErrorOutputPaths: []string{"stderr", logPath},
		Development:      opts.Development,
		Stream:           logHub,
		SessionID:        runID,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	logConfigSnapshot(logger, cfg)
	if err := ensureCurrentLogPointer(cfg.Paths.LogDir, logPath); err != nil {
		fmt.Fprintf(os.Stderr, "warn: unable to update dust.log link: %v\n", err)
	}
	logging.CleanupOldLogs(logger, cfg.Logging.RetentionDays, cfg.Paths.LogDir,
		[]string{logPath, eventsPath}, "dust-*.log", "dust-*.events")
	pidPath := filepath.Join(cfg.Paths.LogDir, "dust.pid")
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	defer os.Remove(pidPath)

	store, err := library.Open(cfg)
	if err != nil {
		logger.Error("open library store", logging.Error(err))
		return err
	}
	defer store.Close()

	fetcher := newFetcher(cfg, logger)
	svc := api.New(cfg, store, fetcher, logger)

	d, err := daemon.New(cfg, store, svc, logger, logPath, logHub, eventArchive)
	if err != nil {
		return fmt.Errorf("create daemon: %w", err)
	}
	defer d.Close()

	ipcServer, err := ipc.NewServer(signalCtx, cfg.SocketPath(), d, logger)
	if err != nil {
		return fmt.Errorf("start IPC server: %w", err)
	}
	defer ipcServer.Close()
	ipcServer.Serve()

	if err := d.Start(signalCtx); err != nil {
		logger.Warn("daemon start failed",
			logging.Error(err),
			logging.String(logging.FieldEventType, "daemon_start_failed"),
			logging.String(logging.FieldErrorHint, "check configuration and library database access"),
			logging.String(logging.FieldImpact, "library API and watcher are not running"),
		)
	}

	<-signalCtx.Done()
	logger.Info("dust daemon shutting down")
	return nil
}

// newFetcher builds the DLSite client from configuration. A blank base URL
// disables lookups; every consumer treats a nil fetcher as "lookups off".
func newFetcher(cfg *config.Config, logger *slog.Logger) dlsite.Fetcher {
	if strings.TrimSpace(cfg.DLSite.BaseURL) == "" {
		logger.Info("DLSite lookups disabled",
			logging.String(logging.FieldEventType, "dlsite_disabled"))
		return nil
	}
	client, err := dlsite.New(cfg.DLSite.BaseURL, cfg.DLSite.Category,
		dlsite.WithUserAgent(cfg.DLSite.UserAgent),
		dlsite.WithTimeout(time.Duration(cfg.DLSite.RequestTimeout)*time.Second))
	if err != nil {
		logger.Warn("DLSite client unavailable",
			logging.Error(err),
			logging.String(logging.FieldEventType, "dlsite_client_failed"),
			logging.String(logging.FieldImpact, "metadata lookups are disabled"),
			logging.String(logging.FieldErrorHint, "check the [dlsite] section of the config file"))
		return nil
	}
	return client
}

func ensureCurrentLogPointer(logDir, target string) error {
	if logDir == "" || target == "" {
		return nil
	}
	current := filepath.Join(logDir, "dust.log")
	if err := os.Remove(current); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove existing log pointer: %w", err)
	}
	if err := os.Symlink(target, current); err == nil {
		return nil
	}
	if err := os.Link(target, current); err != nil {
		return fmt.Errorf("link log pointer: %w", err)
	}
	return nil
}

func writePIDFile(path string) error {
	if path == "" {
		return nil
	}
	value := strconv.Itoa(os.Getpid()) + "\n"
	return os.WriteFile(path, []byte(value), 0o644)
}

func logConfigSnapshot(logger *slog.Logger, cfg *config.Config) {
	if logger == nil || cfg == nil {
		return
	}
	logger.Info("configuration snapshot",
		logging.String(logging.FieldEventType, "config_snapshot"),
		logging.String("library_dir", cfg.Paths.LibraryDir),
		logging.String("database_path", cfg.DatabasePath()),
		logging.String("api_bind", cfg.Paths.APIBind),
		logging.Bool("api_token_set", strings.TrimSpace(cfg.Paths.APIToken) != ""),
		logging.Bool("dlsite_enabled", strings.TrimSpace(cfg.DLSite.BaseURL) != ""),
		logging.Bool("auto_fetch_metadata", cfg.Scanner.AutoFetchMetadata),
		logging.Bool("write_sidecars", cfg.Scanner.WriteSidecars),
		logging.Bool("watch", cfg.Scanner.Watch),
	)
}
