package library

import (
	"path/filepath"
	"strings"
	"time"

	"dust/internal/catalogid"
	"dust/internal/services"
)

// Source identifies where a library entry came from.
type Source string

const (
	SourceLocal  Source = "local"
	SourceSteam  Source = "steam"
	SourceDLSite Source = "dlsite"
	SourceItch   Source = "itch.io"
	SourceOther  Source = "other"
)

// DefaultDeveloper is recorded when a record does not name its developer.
const DefaultDeveloper = "Unknown"

var allSources = []Source{SourceLocal, SourceSteam, SourceDLSite, SourceItch, SourceOther}

var sourceSet = func() map[Source]struct{} {
	set := make(map[Source]struct{}, len(allSources))
	for _, source := range allSources {
		set[source] = struct{}{}
	}
	return set
}()

// AllSources returns the ordered list of known sources.
func AllSources() []Source {
	cp := make([]Source, len(allSources))
	copy(cp, allSources)
	return cp
}

// ParseSource converts a string into a known Source. Matching is
// case-insensitive and accepts both the storage form ("dlsite") and the
// display form ("DLSite", "Itch.io").
func ParseSource(value string) (Source, bool) {
	normalized := Source(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	if normalized == "itch" {
		normalized = SourceItch
	}
	_, ok := sourceSet[normalized]
	return normalized, ok
}

// Display returns the user-facing label for the source.
func (s Source) Display() string {
	switch s {
	case SourceLocal:
		return "Local"
	case SourceSteam:
		return "Steam"
	case SourceDLSite:
		return "DLSite"
	case SourceItch:
		return "Itch.io"
	case SourceOther:
		return "Other"
	default:
		return strings.TrimSpace(string(s))
	}
}

// GameRecord is a library entry persisted in SQLite.
type GameRecord struct {
	ID           int64
	Title        string
	Developer    string
	Genre        string
	Source       Source
	CatalogID    string
	ExecPath     string
	ExecFile     string
	Description  string
	Tags         []string
	CoverURL     string
	Screenshots  []string
	PlayTime     int64
	LastPlayedAt *time.Time
	AddedAt      time.Time
	UpdatedAt    time.Time
}

// Launchable reports whether the record carries enough path information for a
// launch handoff.
func (g GameRecord) Launchable() bool {
	return strings.TrimSpace(g.ExecPath) != "" && strings.TrimSpace(g.ExecFile) != ""
}

// ExecutableTarget returns the full path of the launch target, or "" when the
// record is not launchable.
func (g GameRecord) ExecutableTarget() string {
	if !g.Launchable() {
		return ""
	}
	return filepath.Join(g.ExecPath, g.ExecFile)
}

// Clone returns a deep copy of the record.
func (g *GameRecord) Clone() *GameRecord {
	if g == nil {
		return nil
	}
	cp := *g
	if g.Tags != nil {
		cp.Tags = append([]string(nil), g.Tags...)
	}
	if g.Screenshots != nil {
		cp.Screenshots = append([]string(nil), g.Screenshots...)
	}
	if g.LastPlayedAt != nil {
		t := *g.LastPlayedAt
		cp.LastPlayedAt = &t
	}
	return &cp
}

// normalize applies field defaults and trims free-text values in place.
func (g *GameRecord) normalize() {
	g.Title = strings.TrimSpace(g.Title)
	g.Developer = strings.TrimSpace(g.Developer)
	if g.Developer == "" {
		g.Developer = DefaultDeveloper
	}
	g.Genre = strings.TrimSpace(g.Genre)
	if parsed, ok := ParseSource(string(g.Source)); ok {
		g.Source = parsed
	} else if strings.TrimSpace(string(g.Source)) == "" {
		g.Source = SourceLocal
	}
	g.CatalogID = strings.ToUpper(strings.TrimSpace(g.CatalogID))
	g.ExecPath = strings.TrimSpace(g.ExecPath)
	g.ExecFile = strings.TrimSpace(g.ExecFile)
	g.Description = strings.TrimSpace(g.Description)
	g.CoverURL = strings.TrimSpace(g.CoverURL)
	g.Tags = normalizeTags(g.Tags)
	g.Screenshots = normalizeScreenshots(g.Screenshots)
}

// validate enforces record invariants before a write reaches the database.
func (g *GameRecord) validate() error {
	if g.Title == "" {
		return services.Wrap(services.ErrValidation, "library", "validate record", "title is required", nil)
	}
	if _, ok := sourceSet[g.Source]; !ok {
		return services.Wrap(services.ErrValidation, "library", "validate record", "unknown source "+string(g.Source), nil)
	}
	if g.CatalogID != "" && !catalogid.Valid(g.CatalogID) {
		return services.Wrap(services.ErrValidation, "library", "validate record", "catalog ID "+g.CatalogID+" does not match the RJ/RE grammar", nil)
	}
	if g.PlayTime < 0 {
		return services.Wrap(services.ErrValidation, "library", "validate record", "play time cannot be negative", nil)
	}
	return nil
}

// PlaySession tracks one launch-to-exit interval for a game.
type PlaySession struct {
	ID        int64
	GameID    int64
	Token     string
	StartedAt time.Time
	EndedAt   *time.Time
	Minutes   int64
}

// Open reports whether the session has not been closed yet.
func (p PlaySession) Open() bool {
	return p.EndedAt == nil
}

func normalizeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		trimmed := strings.TrimSpace(tag)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func normalizeScreenshots(urls []string) []string {
	if len(urls) == 0 {
		return nil
	}
	out := make([]string, 0, len(urls))
	for _, url := range urls {
		trimmed := strings.TrimSpace(url)
		if trimmed == "" {
			continue
		}
		out = append(out, trimmed)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
