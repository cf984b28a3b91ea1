package api

import (
	"context"
	"fmt"
	"strings"

	"dust/internal/catalogid"
	"dust/internal/library"
	"dust/internal/logging"
	"dust/internal/reconcile"
	"dust/internal/services"
)

// AddGameRequest carries a non-interactive add. OnDuplicate picks what
// happens when the candidate matches an existing record: "update" (the
// default) merges into it, "force" inserts a second record, and "fail"
// rejects the request so an interactive caller can put the question to the
// user and retry with an explicit choice.
type AddGameRequest struct {
	Title          string   `json:"title"`
	Developer      string   `json:"developer,omitempty"`
	Genre          string   `json:"genre,omitempty"`
	Source         string   `json:"source,omitempty"`
	CatalogID      string   `json:"dlsiteId,omitempty"`
	Executable     string   `json:"executable,omitempty"`
	ExecutablePath string   `json:"executablePath,omitempty"`
	Description    string   `json:"description,omitempty"`
	CoverImage     string   `json:"coverImage,omitempty"`
	Tags           []string `json:"tags,omitempty"`
	Screenshots    []string `json:"screenshots,omitempty"`
	SkipFetch      bool     `json:"skipFetch,omitempty"`
	OnDuplicate    string   `json:"onDuplicate,omitempty"`
}

// AddGame runs a full reconciliation attempt without user interaction and
// returns the committed record.
func (s *Service) AddGame(ctx context.Context, req AddGameRequest) (*GameView, error) {
	input := reconcile.Input{
		Title:       strings.TrimSpace(req.Title),
		Developer:   req.Developer,
		Genre:       req.Genre,
		ExecPath:    req.ExecutablePath,
		ExecFile:    req.Executable,
		Description: req.Description,
		CoverURL:    req.CoverImage,
		Tags:        req.Tags,
		Screenshots: req.Screenshots,
	}
	if raw := strings.TrimSpace(req.Source); raw != "" {
		source, ok := library.ParseSource(raw)
		if !ok {
			return nil, services.Wrap(services.ErrValidation, "api", "add game",
				"unknown source "+raw, nil)
		}
		input.Source = source
	}

	eng := reconcile.New(s.store, s.fetcher, s.logger, input)
	if _, err := eng.Resolve(); err != nil {
		return nil, err
	}
	if raw := strings.TrimSpace(req.CatalogID); raw != "" {
		if _, err := eng.ProvideIdentifier(raw); err != nil {
			return nil, err
		}
	}
	if err := s.fetchOrSkip(ctx, eng, req.SkipFetch); err != nil {
		return nil, err
	}

	dup, state, err := eng.CheckDuplicates(ctx)
	if err != nil {
		return nil, err
	}
	if state == reconcile.StateAwaitingUserDecision {
		decision, err := duplicateDecision(req.OnDuplicate)
		if err != nil {
			return nil, err
		}
		if decision == "" {
			eng.Cancel()
			return nil, services.Wrap(services.ErrValidation, "api", "add game",
				fmt.Sprintf("duplicate of game %d (%s)", dup.ID, dup.Title), nil)
		}
		if _, err := eng.ResolveDuplicate(decision); err != nil {
			return nil, err
		}
	}

	res, err := eng.Commit(ctx)
	if err != nil {
		return nil, err
	}
	return s.Game(ctx, res.GameID)
}

// fetchOrSkip applies the add-time metadata policy: fetch when an identifier
// is known and the caller did not opt out, and degrade to the caller's input
// when DLSite is unavailable.
func (s *Service) fetchOrSkip(ctx context.Context, eng *reconcile.Engine, skip bool) error {
	if skip || eng.Identifier() == "" {
		_, err := eng.SkipFetch()
		return err
	}
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

// duplicateDecision maps the request spelling onto an engine decision. The
// empty decision means "fail the add".
func duplicateDecision(raw string) (reconcile.Decision, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "update", "update_existing", "update-existing":
		return reconcile.DecisionUpdateExisting, nil
	case "force", "force_add", "force-add":
		return reconcile.DecisionForceAdd, nil
	case "fail", "reject":
		return "", nil
	default:
		return "", services.Wrap(services.ErrValidation, "api", "add game",
			fmt.Sprintf("unknown duplicate policy %q", raw), nil)
	}
}

// UpdateGameRequest patches an existing record. Nil fields stay untouched;
// non-nil empty values clear the field where the library allows clearing.
type UpdateGameRequest struct {
	Title          *string   `json:"title,omitempty"`
	Developer      *string   `json:"developer,omitempty"`
	Genre          *string   `json:"genre,omitempty"`
	Source         *string   `json:"source,omitempty"`
	CatalogID      *string   `json:"dlsiteId,omitempty"`
	Executable     *string   `json:"executable,omitempty"`
	ExecutablePath *string   `json:"executablePath,omitempty"`
	Description    *string   `json:"description,omitempty"`
	CoverImage     *string   `json:"coverImage,omitempty"`
	Tags           *[]string `json:"tags,omitempty"`
	Screenshots    *[]string `json:"screenshots,omitempty"`
}

// UpdateGame applies the patch inside one transaction so concurrent writers
// cannot interleave between the read and the write.
func (s *Service) UpdateGame(ctx context.Context, id int64, req UpdateGameRequest) (*GameView, error) {
	var view GameView
	err := s.store.WithTx(ctx, func(tx *library.Tx) error {
		rec, err := tx.GameByID(ctx, id)
		if err != nil {
			return err
		}
		if rec == nil {
			return services.Wrap(services.ErrNotFound, "api", "update game",
				fmt.Sprintf("game %d not found", id), nil)
		}
		if err := applyPatch(rec, req); err != nil {
			return err
		}
		updated, err := tx.UpdateGame(ctx, rec)
		if err != nil {
			return err
		}
		view = FromGameRecord(updated)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("game updated",
		logging.Int64(logging.FieldGameID, view.ID),
		logging.String(logging.FieldEventType, "game_updated"),
	)
	return &view, nil
}

func applyPatch(rec *library.GameRecord, req UpdateGameRequest) error {
	if req.Title != nil {
		rec.Title = *req.Title
	}
	if req.Developer != nil {
		rec.Developer = *req.Developer
	}
	if req.Genre != nil {
		rec.Genre = *req.Genre
	}
	if req.Source != nil {
		source, ok := library.ParseSource(*req.Source)
		if !ok {
			return services.Wrap(services.ErrValidation, "api", "update game",
				"unknown source "+*req.Source, nil)
		}
		rec.Source = source
	}
	if req.CatalogID != nil {
		raw := strings.TrimSpace(*req.CatalogID)
		if raw == "" {
			rec.CatalogID = ""
		} else {
			canonical, err := catalogid.Normalize(raw)
			if err != nil {
				return err
			}
			rec.CatalogID = canonical
		}
	}
	if req.Executable != nil {
		rec.ExecFile = *req.Executable
	}
	if req.ExecutablePath != nil {
		rec.ExecPath = *req.ExecutablePath
	}
	if req.Description != nil {
		rec.Description = *req.Description
	}
	if req.CoverImage != nil {
		rec.CoverURL = *req.CoverImage
	}
	if req.Tags != nil {
		rec.Tags = append([]string(nil), (*req.Tags)...)
	}
	if req.Screenshots != nil {
		rec.Screenshots = append([]string(nil), (*req.Screenshots)...)
	}
	return nil
}

// RemoveGame deletes the library record. Files on disk stay where they are.
func (s *Service) RemoveGame(ctx context.Context, id int64) error {
	deleted, err := s.store.DeleteGame(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return services.Wrap(services.ErrNotFound, "api", "remove game",
			fmt.Sprintf("game %d not found", id), nil)
	}
	s.logger.Info("game removed",
		logging.Int64(logging.FieldGameID, id),
		logging.String(logging.FieldEventType, "game_removed"),
	)
	return nil
}
