package reconcile

import (
	"dust/internal/dlsite"
	"dust/internal/library"
)

// applyWork fills empty candidate fields from fetched metadata. The
// user-confirmed executable location and any caller-typed fields always win
// over the fetch.
func (e *Engine) applyWork(work *dlsite.Work) {
	cand := e.candidate
	if cand.Title == "" {
		cand.Title = work.Title
	}
	if cand.Developer == "" && work.Maker != "" {
		cand.Developer = work.Maker
	}
	if cand.Genre == "" {
		cand.Genre = work.GenreLabel()
	}
	if cand.Description == "" {
		cand.Description = work.Description
	}
	if cand.CoverURL == "" {
		cand.CoverURL = work.CoverURL
	}
	if len(cand.Tags) == 0 && len(work.Genres) > 0 {
		cand.Tags = append([]string(nil), work.Genres...)
	}
}

// mergeForUpdate folds the candidate's non-empty fields into a copy of the
// existing record. Empty candidate fields never clear existing values, and
// the catalog ID fills in only when the existing record had none. Play
// statistics and AddedAt belong to the store and are not touched here.
func mergeForUpdate(existing, candidate *library.GameRecord) *library.GameRecord {
	merged := existing.Clone()
	if candidate.Title != "" {
		merged.Title = candidate.Title
	}
	if candidate.Developer != "" {
		merged.Developer = candidate.Developer
	}
	if candidate.Genre != "" {
		merged.Genre = candidate.Genre
	}
	if candidate.Source != "" {
		merged.Source = candidate.Source
	}
	if existing.CatalogID == "" && candidate.CatalogID != "" {
		merged.CatalogID = candidate.CatalogID
	}
	if candidate.ExecPath != "" {
		merged.ExecPath = candidate.ExecPath
	}
	if candidate.ExecFile != "" {
		merged.ExecFile = candidate.ExecFile
	}
	if candidate.Description != "" {
		merged.Description = candidate.Description
	}
	if candidate.CoverURL != "" {
		merged.CoverURL = candidate.CoverURL
	}
	if len(candidate.Tags) > 0 {
		merged.Tags = append([]string(nil), candidate.Tags...)
	}
	if len(candidate.Screenshots) > 0 {
		merged.Screenshots = append([]string(nil), candidate.Screenshots...)
	}
	return merged
}
