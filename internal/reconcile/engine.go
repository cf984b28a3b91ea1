package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"dust/internal/catalogid"
	"dust/internal/dlsite"
	"dust/internal/library"
	"dust/internal/logging"
	"dust/internal/services"
)

// Input carries the caller-supplied fields for one attempt. ExecPath and
// ExecFile are the user-confirmed executable location; fetched metadata
// never overrides them. AddedAt, PlayTime, and LastPlayedAt are only set
// when rehydrating a record from a sidecar file.
type Input struct {
	Title        string
	Developer    string
	Genre        string
	Source       library.Source
	ExecPath     string
	ExecFile     string
	Description  string
	CoverURL     string
	Tags         []string
	Screenshots  []string
	PlayTime     int64
	LastPlayedAt *time.Time
	AddedAt      time.Time
}

func (in Input) record() *library.GameRecord {
	rec := &library.GameRecord{
		Title:       strings.TrimSpace(in.Title),
		Developer:   strings.TrimSpace(in.Developer),
		Genre:       strings.TrimSpace(in.Genre),
		Source:      in.Source,
		ExecPath:    strings.TrimSpace(in.ExecPath),
		ExecFile:    strings.TrimSpace(in.ExecFile),
		Description: strings.TrimSpace(in.Description),
		CoverURL:    strings.TrimSpace(in.CoverURL),
		PlayTime:    in.PlayTime,
		AddedAt:     in.AddedAt,
	}
	if len(in.Tags) > 0 {
		rec.Tags = append([]string(nil), in.Tags...)
	}
	if len(in.Screenshots) > 0 {
		rec.Screenshots = append([]string(nil), in.Screenshots...)
	}
	if in.LastPlayedAt != nil {
		at := *in.LastPlayedAt
		rec.LastPlayedAt = &at
	}
	return rec
}

// Result reports the committed record and whether it was an insert.
type Result struct {
	GameID    int64
	WasInsert bool
}

// Engine drives one attempt through identifier resolution, metadata fetch,
// duplicate detection, and commit.
type Engine struct {
	store   *library.Store
	fetcher dlsite.Fetcher
	logger  *slog.Logger

	attemptID  string
	state      State
	input      Input
	identifier string
	work       *dlsite.Work
	candidate  *library.GameRecord
	duplicate  *library.GameRecord
	updateID   int64
	result     *Result
}

// New creates an engine for a single attempt. A nil fetcher disables
// metadata lookups; Fetch then records the identifier without contacting
// DLSite.
func New(store *library.Store, fetcher dlsite.Fetcher, logger *slog.Logger, input Input) *Engine {
	attemptID := uuid.NewString()
	return &Engine{
		store:   store,
		fetcher: fetcher,
		logger: logging.NewComponentLogger(logger, "reconcile").
			With(logging.String(logging.FieldAttemptID, attemptID)),
		attemptID: attemptID,
		state:     StateCollectingInput,
		input:     input,
		candidate: input.record(),
	}
}

// AttemptID returns the correlation identifier carried in attempt logs.
func (e *Engine) AttemptID() string { return e.attemptID }

// State returns the attempt's current lifecycle state.
func (e *Engine) State() State { return e.state }

// Identifier returns the canonical catalog ID, or an empty string before one
// is resolved.
func (e *Engine) Identifier() string { return e.identifier }

// Candidate returns a copy of the record as it would be committed.
func (e *Engine) Candidate() *library.GameRecord { return e.candidate.Clone() }

// Duplicate returns a copy of the matched existing record, or nil when no
// duplicate check has hit.
func (e *Engine) Duplicate() *library.GameRecord {
	if e.duplicate == nil {
		return nil
	}
	return e.duplicate.Clone()
}

// Result returns the commit outcome, or nil before the attempt commits.
func (e *Engine) Result() *Result {
	if e.result == nil {
		return nil
	}
	res := *e.result
	return &res
}

func (e *Engine) requireState(op string, allowed ...State) error {
	for _, state := range allowed {
		if e.state == state {
			return nil
		}
	}
	return services.Wrap(services.ErrValidation, "reconcile", op,
		fmt.Sprintf("not allowed in state %s", e.state), nil)
}

// Resolve runs identifier extraction over the supplied executable location.
// A canonical RJ/RE hit resolves the identifier; anything else, including
// extractable IDs outside the RJ/RE grammar, falls through to manual entry.
func (e *Engine) Resolve() (State, error) {
	if err := e.requireState("resolve", StateCollectingInput); err != nil {
		return e.state, err
	}
	target := e.candidate.ExecPath
	if e.candidate.ExecFile != "" {
		target = filepath.Join(e.candidate.ExecPath, e.candidate.ExecFile)
	}
	raw, ok := catalogid.ExtractFromPath(target)
	if !ok {
		e.state = StateManualIdentifier
		e.logger.Debug("no identifier in path", logging.String("path", target))
		return e.state, nil
	}
	canonical, err := catalogid.Normalize(raw)
	if err != nil {
		e.state = StateManualIdentifier
		e.logger.Debug("extracted identifier outside catalog grammar",
			logging.String(logging.FieldCatalogID, raw))
		return e.state, nil
	}
	e.setIdentifier(canonical)
	e.state = StateIdentifierResolved
	e.logger.Info("identifier resolved from path",
		logging.String(logging.FieldCatalogID, canonical),
		logging.String(logging.FieldEventType, "identifier_resolved"))
	return e.state, nil
}

// ProvideIdentifier accepts a manually supplied catalog ID. The input is
// canonicalized, including the leading-R repair; malformed input returns an
// error and leaves the state unchanged so the caller can retry.
func (e *Engine) ProvideIdentifier(raw string) (State, error) {
	if err := e.requireState("provide identifier",
		StateCollectingInput, StateIdentifierResolved, StateManualIdentifier); err != nil {
		return e.state, err
	}
	canonical, err := catalogid.Normalize(raw)
	if err != nil {
		return e.state, err
	}
	e.setIdentifier(canonical)
	e.state = StateIdentifierResolved
	e.logger.Info("identifier provided manually",
		logging.String(logging.FieldCatalogID, canonical),
		logging.String(logging.FieldEventType, "identifier_provided"))
	return e.state, nil
}

func (e *Engine) setIdentifier(canonical string) {
	e.identifier = canonical
	e.candidate.CatalogID = canonical
	if e.candidate.Source == "" {
		e.candidate.Source = library.SourceDLSite
	}
}

// Fetch retrieves metadata for the resolved identifier and merges it into
// the candidate without overwriting caller-supplied fields. Failures are
// recoverable: the attempt returns to manual entry with its input intact.
// Attempts without an identifier skip the lookup.
func (e *Engine) Fetch(ctx context.Context) (State, error) {
	if err := e.requireState("fetch metadata",
		StateIdentifierResolved, StateManualIdentifier); err != nil {
		return e.state, err
	}
	if e.identifier == "" || e.fetcher == nil {
		e.state = StateMetadataFetched
		return e.state, nil
	}

	ctx = services.WithAttemptID(ctx, e.attemptID)
	work, err := e.fetcher.FetchWork(ctx, e.identifier)
	if err != nil {
		if ctx.Err() != nil {
			e.state = StateCancelled
			e.logger.Info("attempt abandoned during fetch",
				logging.String(logging.FieldCatalogID, e.identifier),
				logging.String(logging.FieldEventType, "attempt_cancelled"))
			return e.state, ctx.Err()
		}
		e.state = StateManualIdentifier
		logging.WarnWithContext(e.logger, "metadata fetch failed", "metadata_fetch_failed",
			logging.String(logging.FieldCatalogID, e.identifier),
			logging.Error(err),
			logging.String(logging.FieldImpact, "attempt returned to manual identifier entry"),
			logging.String(logging.FieldErrorHint, "retry the identifier or complete the record by hand"))
		return e.state, services.Wrap(services.ErrMetadataUnavailable, "reconcile", "fetch metadata",
			e.identifier, err)
	}
	// The result of a fetch that raced a cancellation is discarded.
	if ctx.Err() != nil {
		e.state = StateCancelled
		return e.state, ctx.Err()
	}

	e.work = work
	e.applyWork(work)
	e.state = StateMetadataFetched
	e.logger.Info("metadata fetched",
		logging.String(logging.FieldCatalogID, e.identifier),
		logging.String("title", work.Title),
		logging.String(logging.FieldEventType, "metadata_fetched"))
	return e.state, nil
}

// SkipFetch proceeds without metadata for callers that cannot suspend on
// manual entry, such as the non-interactive scanner. Any resolved identifier
// stays on the candidate.
func (e *Engine) SkipFetch() (State, error) {
	if err := e.requireState("skip fetch",
		StateIdentifierResolved, StateManualIdentifier); err != nil {
		return e.state, err
	}
	e.state = StateMetadataFetched
	return e.state, nil
}

// CheckDuplicates snapshots the library and runs the duplicate matcher over
// the merged candidate. A hit parks the attempt until ResolveDuplicate and
// returns the matched record.
func (e *Engine) CheckDuplicates(ctx context.Context) (*library.GameRecord, State, error) {
	if err := e.requireState("check duplicates", StateMetadataFetched); err != nil {
		return nil, e.state, err
	}
	games, err := e.store.ListGames(ctx)
	if err != nil {
		return nil, e.state, err
	}
	if existing, ok := library.FindDuplicate(games, e.candidate); ok {
		e.duplicate = existing
		e.state = StateAwaitingUserDecision
		e.logger.Info("duplicate detected",
			logging.Int64(logging.FieldGameID, existing.ID),
			logging.String("existing_title", existing.Title),
			logging.String(logging.FieldEventType, "duplicate_detected"))
		return existing.Clone(), e.state, nil
	}
	e.state = StateDuplicateChecked
	return nil, e.state, nil
}

// ResolveDuplicate applies the caller's decision for a duplicate hit.
func (e *Engine) ResolveDuplicate(decision Decision) (State, error) {
	if err := e.requireState("resolve duplicate", StateAwaitingUserDecision); err != nil {
		return e.state, err
	}
	switch decision {
	case DecisionCancel:
		e.state = StateCancelled
	case DecisionForceAdd:
		e.state = StateDuplicateChecked
	case DecisionUpdateExisting:
		e.updateID = e.duplicate.ID
		e.state = StateDuplicateChecked
	default:
		return e.state, services.Wrap(services.ErrValidation, "reconcile", "resolve duplicate",
			fmt.Sprintf("unknown decision %q", string(decision)), nil)
	}
	e.logger.Info("duplicate resolved",
		logging.Args(logging.DecisionAttrs("duplicate_resolution", string(decision),
			fmt.Sprintf("existing game %d", e.duplicate.ID))...)...)
	return e.state, nil
}

// Cancel abandons the attempt without touching the library. Committed
// attempts stay committed.
func (e *Engine) Cancel() State {
	if e.state != StateCommitted {
		e.state = StateCancelled
	}
	return e.state
}

// Commit applies exactly one store mutation for the attempt. Updates re-read
// the existing record inside the transaction so a concurrent commit against
// the same record cannot interleave with the merge.
func (e *Engine) Commit(ctx context.Context) (*Result, error) {
	if err := e.requireState("commit", StateDuplicateChecked); err != nil {
		return nil, err
	}
	if !e.candidate.Launchable() {
		return nil, services.Wrap(services.ErrValidation, "reconcile", "commit",
			"an executable directory and file are required", nil)
	}

	ctx = services.WithAttemptID(ctx, e.attemptID)
	var result Result
	err := e.store.WithTx(ctx, func(tx *library.Tx) error {
		if e.updateID != 0 {
			existing, err := tx.GameByID(ctx, e.updateID)
			if err != nil {
				return err
			}
			if existing == nil {
				return services.Wrap(services.ErrNotFound, "reconcile", "commit",
					fmt.Sprintf("game %d disappeared before update", e.updateID), nil)
			}
			updated, err := tx.UpdateGame(ctx, mergeForUpdate(existing, e.candidate))
			if err != nil {
				return err
			}
			result = Result{GameID: updated.ID}
			return nil
		}
		inserted, err := tx.InsertGame(ctx, e.candidate)
		if err != nil {
			return err
		}
		result = Result{GameID: inserted.ID, WasInsert: true}
		return nil
	})
	if err != nil {
		logging.ErrorWithContext(e.logger, "commit failed", "commit_failed",
			logging.Error(err))
		return nil, err
	}

	e.state = StateCommitted
	e.result = &result
	e.logger.Info("attempt committed",
		logging.Int64(logging.FieldGameID, result.GameID),
		logging.Bool("was_insert", result.WasInsert),
		logging.String(logging.FieldEventType, "attempt_committed"))
	return &result, nil
}
