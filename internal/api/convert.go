package api

import (
	"time"

	"dust/internal/dlsite"
	"dust/internal/library"
	"dust/internal/scanner"
)

// FromGameRecord converts a library record to its API representation.
func FromGameRecord(rec *library.GameRecord) GameView {
	if rec == nil {
		return GameView{}
	}

	view := GameView{
		ID:             rec.ID,
		Title:          rec.Title,
		Developer:      rec.Developer,
		Genre:          rec.Genre,
		Source:         string(rec.Source),
		SourceLabel:    rec.Source.Display(),
		DLSiteID:       rec.CatalogID,
		Executable:     rec.ExecFile,
		ExecutablePath: rec.ExecPath,
		Description:    rec.Description,
		CoverImage:     rec.CoverURL,
		PlayTime:       rec.PlayTime,
	}
	if len(rec.Tags) > 0 {
		view.Tags = append([]string(nil), rec.Tags...)
	}
	if len(rec.Screenshots) > 0 {
		view.Screenshots = append([]string(nil), rec.Screenshots...)
	}
	if rec.LastPlayedAt != nil && !rec.LastPlayedAt.IsZero() {
		view.LastPlayed = rec.LastPlayedAt.UTC().Format(dateTimeFormat)
	}
	if !rec.AddedAt.IsZero() {
		view.InstallDate = rec.AddedAt.UTC().Format(dateTimeFormat)
	}
	if !rec.UpdatedAt.IsZero() {
		view.UpdatedAt = rec.UpdatedAt.UTC().Format(dateTimeFormat)
	}
	return view
}

// FromGameRecords converts a slice of library records into API DTOs.
func FromGameRecords(records []*library.GameRecord) []GameView {
	if len(records) == 0 {
		return nil
	}
	out := make([]GameView, 0, len(records))
	for _, rec := range records {
		out = append(out, FromGameRecord(rec))
	}
	return out
}

// FromScanResult converts a scan or import outcome to its API payload.
func FromScanResult(res *scanner.Result) ScanSummary {
	if res == nil {
		return ScanSummary{}
	}

	summary := ScanSummary{
		FoundGames:   len(res.Added),
		UpdatedGames: len(res.Updated),
		Skipped:      res.Skipped,
		ErrorCount:   len(res.Errors),
		Message:      res.Message,
	}
	if len(res.Added) > 0 {
		summary.FoundList = append([]string(nil), res.Added...)
	}
	if len(res.Updated) > 0 {
		summary.UpdatedList = append([]string(nil), res.Updated...)
	}
	for _, failure := range res.Errors {
		summary.Failures = append(summary.Failures, ScanFailure{
			Dir:   failure.Dir,
			Error: failure.Err.Error(),
		})
	}
	return summary
}

// FromWork converts a DLSite product into its API representation.
func FromWork(work *dlsite.Work) WorkView {
	if work == nil {
		return WorkView{}
	}

	view := WorkView{
		ProductID:   work.ProductID,
		Title:       work.Title,
		Developer:   work.Developer(),
		Genre:       work.GenreLabel(),
		AgeCategory: work.AgeRating(),
		WorkType:    work.WorkType,
		Description: work.Description,
		CoverImage:  work.CoverURL,
		ReleaseDate: work.RegistDate,
	}
	if len(work.Genres) > 0 {
		view.Tags = append([]string(nil), work.Genres...)
	}
	return view
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(dateTimeFormat)
}
