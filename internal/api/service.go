package api

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"dust/internal/config"
	"dust/internal/dlsite"
	"dust/internal/library"
	"dust/internal/logging"
	"dust/internal/scanner"
	"dust/internal/services"
)

// Service is the transport-neutral application facade. The HTTP daemon and
// the socket CLI both call into it, so library semantics live here exactly
// once.
type Service struct {
	cfg       *config.Config
	store     *library.Store
	fetcher   dlsite.Fetcher
	scan      *scanner.Scanner
	logger    *slog.Logger
	startedAt time.Time
}

// New wires the facade. A nil fetcher disables DLSite lookups everywhere.
func New(cfg *config.Config, store *library.Store, fetcher dlsite.Fetcher, logger *slog.Logger) *Service {
	return &Service{
		cfg:       cfg,
		store:     store,
		fetcher:   fetcher,
		scan:      scanner.New(cfg, store, fetcher, logger),
		logger:    logging.NewComponentLogger(logger, "api"),
		startedAt: time.Now(),
	}
}

// Games lists the whole library in insertion order.
func (s *Service) Games(ctx context.Context) (*GameListResponse, error) {
	records, err := s.store.ListGames(ctx)
	if err != nil {
		return nil, err
	}
	views := FromGameRecords(records)
	return &GameListResponse{Games: views, Count: len(records)}, nil
}

// Game returns one record by ID.
func (s *Service) Game(ctx context.Context, id int64) (*GameView, error) {
	rec, err := s.store.GameByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, services.Wrap(services.ErrNotFound, "api", "get game",
			fmt.Sprintf("game %d not found", id), nil)
	}
	view := FromGameRecord(rec)
	return &view, nil
}

// DLSiteInfo fetches catalog metadata without touching the library. The raw
// identifier goes through the same normalization as every other entry point.
func (s *Service) DLSiteInfo(ctx context.Context, rawID string) (*WorkView, error) {
	if s.fetcher == nil {
		return nil, services.Wrap(services.ErrConfiguration, "api", "dlsite info",
			"DLSite lookups are disabled", nil)
	}
	work, err := s.fetcher.FetchWork(ctx, rawID)
	if err != nil {
		return nil, err
	}
	view := FromWork(work)
	return &view, nil
}

// ScanLibrary walks the configured library directory (or root, when given)
// and reconciles every game folder it finds.
func (s *Service) ScanLibrary(ctx context.Context, root string) (*ScanSummary, error) {
	res, err := s.scan.ScanLibrary(ctx, root)
	if err != nil {
		return nil, err
	}
	summary := FromScanResult(res)
	return &summary, nil
}

// ImportFolder reconciles every game folder under root, tagging new records
// with the given source.
func (s *Service) ImportFolder(ctx context.Context, root, source string) (*ScanSummary, error) {
	res, err := s.scan.ImportFolder(ctx, root, library.Source(strings.TrimSpace(source)))
	if err != nil {
		return nil, err
	}
	summary := FromScanResult(res)
	return &summary, nil
}
