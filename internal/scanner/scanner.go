package scanner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"dust/internal/config"
	"dust/internal/dlsite"
	"dust/internal/library"
	"dust/internal/logging"
	"dust/internal/reconcile"
	"dust/internal/services"
)

// Scanner reconciles on-disk game directories with the library store.
type Scanner struct {
	cfg     *config.Config
	store   *library.Store
	fetcher dlsite.Fetcher
	logger  *slog.Logger
}

// New constructs a scanner. A nil fetcher disables metadata lookups
// regardless of configuration.
func New(cfg *config.Config, store *library.Store, fetcher dlsite.Fetcher, logger *slog.Logger) *Scanner {
	return &Scanner{
		cfg:     cfg,
		store:   store,
		fetcher: fetcher,
		logger:  logging.NewComponentLogger(logger, "scanner"),
	}
}

// ItemError records a directory a pass could not process along with why.
type ItemError struct {
	Dir string
	Err error
}

// Result summarizes one scan or import pass. Added and Updated hold game
// titles in the order they were committed.
type Result struct {
	Added   []string
	Updated []string
	Skipped int
	Errors  []ItemError
	Message string
}

// ScanLibrary reconciles every first-level directory under root with the
// library. Directories holding a sidecar are rehydrated from the document;
// bare directories become fresh candidates when they contain an executable.
// root defaults to the configured library directory. Cancelling the context
// stops the pass between directories; the partial result reflects the work
// committed so far.
func (s *Scanner) ScanLibrary(ctx context.Context, root string) (*Result, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		root = s.cfg.Paths.LibraryDir
	}
	if root == "" {
		return nil, services.Wrap(services.ErrConfiguration, "scanner", "scan library", "no library directory configured", nil)
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "scanner", "scan library", "read "+root, err)
	}

	s.logger.Info("scan started",
		logging.String("root", root),
		logging.Int("entries", len(entries)),
		logging.String(logging.FieldEventType, "scan_started"))

	result := &Result{}
	sampler := logging.NewProgressSampler(5)
	for i, entry := range entries {
		if err := ctx.Err(); err != nil {
			result.Message = fmt.Sprintf("Scan cancelled after %d new games, %d updated", len(result.Added), len(result.Updated))
			return result, err
		}
		if !entry.IsDir() {
			continue
		}
		name := entry.Name()
		if s.ignored(name) {
			result.Skipped++
			continue
		}
		percent := float64(i+1) / float64(len(entries)) * 100
		if sampler.ShouldLog(percent, "scan") {
			s.logger.Info("scan progress",
				logging.String(logging.FieldProgressStage, "scan"),
				logging.Float64(logging.FieldProgressPercent, percent),
				logging.String(logging.FieldProgressMessage, name))
		}
		if err := s.scanDir(ctx, filepath.Join(root, name), name, result); err != nil {
			if canceled(err) {
				result.Message = fmt.Sprintf("Scan cancelled after %d new games, %d updated", len(result.Added), len(result.Updated))
				return result, err
			}
			result.Errors = append(result.Errors, ItemError{Dir: name, Err: err})
			logging.WarnWithContext(s.logger, "directory skipped after error", "scan_dir_failed",
				logging.String("dir", name),
				logging.Error(err),
				logging.String(logging.FieldImpact, "directory left unreconciled"),
				logging.String(logging.FieldErrorHint, "fix the directory and rescan"))
		}
	}

	result.Message = fmt.Sprintf("Scan complete: %d new games, %d updated", len(result.Added), len(result.Updated))
	s.logger.Info("scan finished",
		logging.Int("added", len(result.Added)),
		logging.Int("updated", len(result.Updated)),
		logging.Int("skipped", result.Skipped),
		logging.Int("errors", len(result.Errors)),
		logging.String(logging.FieldEventType, "scan_finished"))
	return result, nil
}

// ImportFolder adds every first-level directory under root that contains an
// executable. The directory name becomes the title and source tags every
// imported record. DLSite imports additionally run identifier extraction and
// a metadata fetch; a failed fetch degrades the record instead of skipping
// it. Per-directory failures are collected, not fatal.
func (s *Scanner) ImportFolder(ctx context.Context, root string, source library.Source) (*Result, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, services.Wrap(services.ErrValidation, "scanner", "import folder", "folder is required", nil)
	}
	if strings.TrimSpace(string(source)) == "" {
		source = library.SourceLocal
	} else {
		parsed, ok := library.ParseSource(string(source))
		if !ok {
			return nil, services.Wrap(services.ErrValidation, "scanner", "import folder", "unknown source "+string(source), nil)
		}
		source = parsed
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "scanner", "import folder", "read "+root, err)
	}

	s.logger.Info("import started",
		logging.String("root", root),
		logging.String("source", string(source)),
		logging.Int("entries", len(entries)),
		logging.String(logging.FieldEventType, "import_started"))

	result := &Result{}
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			result.Message = fmt.Sprintf("Import cancelled after %d games", len(result.Added)+len(result.Updated))
			return result, err
		}
		if !entry.IsDir() {
			continue
		}
		name := entry.Name()
		if s.ignored(name) {
			result.Skipped++
			continue
		}
		if err := s.importDir(ctx, filepath.Join(root, name), name, source, result); err != nil {
			if canceled(err) {
				result.Message = fmt.Sprintf("Import cancelled after %d games", len(result.Added)+len(result.Updated))
				return result, err
			}
			result.Errors = append(result.Errors, ItemError{Dir: name, Err: err})
			logging.WarnWithContext(s.logger, "directory skipped after error", "import_dir_failed",
				logging.String("dir", name),
				logging.Error(err),
				logging.String(logging.FieldImpact, "directory left unimported"),
				logging.String(logging.FieldErrorHint, "fix the directory and import again"))
		}
	}

	result.Message = fmt.Sprintf("Imported %d games, %d errors", len(result.Added)+len(result.Updated), len(result.Errors))
	s.logger.Info("import finished",
		logging.Int("added", len(result.Added)),
		logging.Int("updated", len(result.Updated)),
		logging.Int("skipped", result.Skipped),
		logging.Int("errors", len(result.Errors)),
		logging.String(logging.FieldEventType, "import_finished"))
	return result, nil
}

// scanDir reconciles a single library directory.
func (s *Scanner) scanDir(ctx context.Context, dir, name string, result *Result) error {
	sc, err := ReadSidecar(dir)
	if err != nil {
		return err
	}
	if sc != nil {
		return s.rehydrate(ctx, dir, sc, result)
	}
	return s.addBare(ctx, dir, name, result)
}

// rehydrate rebuilds a record from its sidecar. The document is the metadata
// source, so no fetch happens even when a catalog ID is present.
func (s *Scanner) rehydrate(ctx context.Context, dir string, sc *Sidecar, result *Result) error {
	eng := reconcile.New(s.store, nil, s.logger, sc.Input(dir))
	if _, err := eng.Resolve(); err != nil {
		return err
	}
	if id := strings.TrimSpace(sc.DLSiteID); id != "" {
		if _, err := eng.ProvideIdentifier(id); err != nil {
			// A bad recorded ID should not block rehydration of the rest of
			// the document.
			logging.WarnWithContext(s.logger, "sidecar carries malformed catalog ID", "sidecar_invalid",
				logging.String("dir", dir),
				logging.String(logging.FieldCatalogID, id),
				logging.Error(err),
				logging.String(logging.FieldImpact, "record rehydrated without a catalog ID"),
				logging.String(logging.FieldErrorHint, "correct dlsiteId in "+SidecarName))
		}
	}
	if _, err := eng.SkipFetch(); err != nil {
		return err
	}
	return s.commit(ctx, eng, dir, false, result)
}

// addBare turns a directory without a sidecar into a fresh candidate. The
// source is left open so identifier extraction can claim the record for
// DLSite before the store defaults it to local.
func (s *Scanner) addBare(ctx context.Context, dir, name string, result *Result) error {
	execs, err := FindExecutables(dir)
	if err != nil {
		return err
	}
	if len(execs) == 0 {
		result.Skipped++
		s.logger.Debug("no executables found", logging.String("dir", dir))
		return nil
	}

	target := filepath.Join(dir, execs[0])
	eng := reconcile.New(s.store, s.fetcher, s.logger, reconcile.Input{
		Title:    name,
		ExecPath: filepath.Dir(target),
		ExecFile: filepath.Base(target),
	})
	state, err := eng.Resolve()
	if err != nil {
		return err
	}
	if state == reconcile.StateIdentifierResolved && s.cfg.Scanner.AutoFetchMetadata {
		if err := s.fetch(ctx, eng); err != nil {
			return err
		}
	} else if _, err := eng.SkipFetch(); err != nil {
		return err
	}
	return s.commit(ctx, eng, dir, s.cfg.Scanner.WriteSidecars, result)
}

// importDir adds one folder during an import pass.
func (s *Scanner) importDir(ctx context.Context, dir, name string, source library.Source, result *Result) error {
	execs, err := FindExecutables(dir)
	if err != nil {
		return err
	}
	if len(execs) == 0 {
		result.Skipped++
		s.logger.Debug("no executables found", logging.String("dir", dir))
		return nil
	}

	target := filepath.Join(dir, execs[0])
	eng := reconcile.New(s.store, s.fetcher, s.logger, reconcile.Input{
		Title:    name,
		Source:   source,
		ExecPath: filepath.Dir(target),
		ExecFile: filepath.Base(target),
	})
	state, err := eng.Resolve()
	if err != nil {
		return err
	}
	if state == reconcile.StateIdentifierResolved && source == library.SourceDLSite {
		if err := s.fetch(ctx, eng); err != nil {
			return err
		}
	} else if _, err := eng.SkipFetch(); err != nil {
		return err
	}
	return s.commit(ctx, eng, dir, s.cfg.Scanner.WriteSidecars, result)
}

// fetch runs the metadata lookup and degrades to a fetch-less attempt when
// the lookup fails recoverably. The engine has already logged the failure.
func (s *Scanner) fetch(ctx context.Context, eng *reconcile.Engine) error {
	if _, err := eng.Fetch(ctx); err != nil {
		if ctx.Err() != nil || !services.Recoverable(err) {
			return err
		}
		if _, err := eng.SkipFetch(); err != nil {
			return err
		}
	}
	return nil
}

// commit resolves duplicates in favour of updating the existing record, then
// commits and optionally writes a fresh sidecar from the stored result.
func (s *Scanner) commit(ctx context.Context, eng *reconcile.Engine, dir string, writeSidecar bool, result *Result) error {
	_, state, err := eng.CheckDuplicates(ctx)
	if err != nil {
		return err
	}
	if state == reconcile.StateAwaitingUserDecision {
		if _, err := eng.ResolveDuplicate(reconcile.DecisionUpdateExisting); err != nil {
			return err
		}
	}
	res, err := eng.Commit(ctx)
	if err != nil {
		return err
	}

	title := eng.Candidate().Title
	if res.WasInsert {
		result.Added = append(result.Added, title)
	} else {
		result.Updated = append(result.Updated, title)
	}

	if writeSidecar {
		rec, err := s.store.GameByID(ctx, res.GameID)
		if err != nil {
			return err
		}
		if err := WriteSidecar(dir, SidecarForRecord(dir, rec)); err != nil {
			// The record is committed; a missing sidecar only costs a
			// re-identification on the next scan.
			logging.WarnWithContext(s.logger, "sidecar write failed", "sidecar_write_failed",
				logging.String("dir", dir),
				logging.Int64(logging.FieldGameID, res.GameID),
				logging.Error(err),
				logging.String(logging.FieldImpact, "game committed without sidecar"),
				logging.String(logging.FieldErrorHint, "check directory permissions"))
		}
	}
	return nil
}

// ignored reports whether a directory name matches the configured ignore
// list.
func (s *Scanner) ignored(name string) bool {
	for _, ignore := range s.cfg.Scanner.IgnoreDirs {
		if strings.EqualFold(name, strings.TrimSpace(ignore)) {
			return true
		}
	}
	return false
}

func canceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
