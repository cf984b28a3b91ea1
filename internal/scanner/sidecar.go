package scanner

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"dust/internal/library"
	"dust/internal/reconcile"
	"dust/internal/services"
)

// SidecarName is the document written next to every managed game.
const SidecarName = "dustgrain.json"

// sidecarVersion marks the dustgrain document format.
const sidecarVersion = "1.0"

// Sidecar mirrors the dustgrain.json document. Field names keep the original
// camelCase document format so libraries written by earlier releases keep
// working. Executable is relative to the game directory; ExecutablePath
// records where the directory lived when the document was written and loses
// to the directory the sidecar is actually found in.
type Sidecar struct {
	Title          string     `json:"title"`
	Developer      string     `json:"developer,omitempty"`
	Genre          string     `json:"genre,omitempty"`
	Source         string     `json:"source,omitempty"`
	DLSiteID       string     `json:"dlsiteId,omitempty"`
	DLSiteCategory string     `json:"dlsiteCategory,omitempty"`
	Executable     string     `json:"executable,omitempty"`
	ExecutablePath string     `json:"executablePath,omitempty"`
	Description    string     `json:"description,omitempty"`
	Tags           []string   `json:"tags,omitempty"`
	CoverImage     string     `json:"coverImage,omitempty"`
	Screenshots    []string   `json:"screenshots,omitempty"`
	LastPlayed     *time.Time `json:"lastPlayed,omitempty"`
	PlayTime       int64      `json:"playTime,omitempty"`
	Installed      bool       `json:"installed"`
	InstallDate    time.Time  `json:"installDate"`
	DustVersion    string     `json:"dustVersion,omitempty"`
}

// SidecarPath returns the sidecar location for a game directory.
func SidecarPath(dir string) string {
	return filepath.Join(dir, SidecarName)
}

// ReadSidecar loads the document from dir. A missing file is not an error;
// both return values are nil in that case.
func ReadSidecar(dir string) (*Sidecar, error) {
	path := SidecarPath(dir)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, services.Wrap(services.ErrPersistence, "scanner", "read sidecar", path, err)
	}
	var sc Sidecar
	if err := json.Unmarshal(data, &sc); err != nil {
		return nil, services.Wrap(services.ErrValidation, "scanner", "read sidecar", path+" holds malformed JSON", err)
	}
	return &sc, nil
}

// WriteSidecar writes the document atomically so an interrupted scan never
// leaves a truncated sidecar behind.
func WriteSidecar(dir string, sc *Sidecar) error {
	if sc == nil {
		return services.Wrap(services.ErrValidation, "scanner", "write sidecar", "document is required", nil)
	}
	if sc.DustVersion == "" {
		sc.DustVersion = sidecarVersion
	}
	data, err := json.MarshalIndent(sc, "", "  ")
	if err != nil {
		return services.Wrap(services.ErrInternal, "scanner", "write sidecar", "marshal document", err)
	}
	path := SidecarPath(dir)
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return services.Wrap(services.ErrPersistence, "scanner", "write sidecar", tmpPath, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return services.Wrap(services.ErrPersistence, "scanner", "write sidecar", path, err)
	}
	return nil
}

// SidecarForRecord converts a committed record into the document stored next
// to the game in dir.
func SidecarForRecord(dir string, rec *library.GameRecord) *Sidecar {
	sc := &Sidecar{
		Title:          rec.Title,
		Developer:      rec.Developer,
		Genre:          rec.Genre,
		Source:         string(rec.Source),
		DLSiteID:       rec.CatalogID,
		Executable:     rec.ExecFile,
		ExecutablePath: rec.ExecPath,
		Description:    rec.Description,
		Tags:           append([]string(nil), rec.Tags...),
		CoverImage:     rec.CoverURL,
		Screenshots:    append([]string(nil), rec.Screenshots...),
		PlayTime:       rec.PlayTime,
		Installed:      true,
		InstallDate:    rec.AddedAt,
		DustVersion:    sidecarVersion,
	}
	if target := rec.ExecutableTarget(); target != "" {
		if rel, err := filepath.Rel(dir, target); err == nil {
			sc.Executable = rel
		} else {
			sc.Executable = target
		}
	}
	if rec.LastPlayedAt != nil {
		at := *rec.LastPlayedAt
		sc.LastPlayed = &at
	}
	return sc
}

// Input converts the document into reconciliation input anchored at dir. The
// directory the sidecar was found in wins over the recorded executablePath so
// libraries keep working after moving between drives.
func (sc *Sidecar) Input(dir string) reconcile.Input {
	in := reconcile.Input{
		Title:       strings.TrimSpace(sc.Title),
		Developer:   sc.Developer,
		Genre:       sc.Genre,
		ExecPath:    dir,
		Description: sc.Description,
		CoverURL:    sc.CoverImage,
		PlayTime:    sc.PlayTime,
		AddedAt:     sc.InstallDate,
	}
	if in.Title == "" {
		in.Title = filepath.Base(dir)
	}
	if source, ok := library.ParseSource(sc.Source); ok {
		in.Source = source
	}
	if target := strings.TrimSpace(sc.Executable); target != "" {
		if !filepath.IsAbs(target) {
			target = filepath.Join(dir, target)
		}
		in.ExecPath = filepath.Dir(target)
		in.ExecFile = filepath.Base(target)
	}
	if len(sc.Tags) > 0 {
		in.Tags = append([]string(nil), sc.Tags...)
	}
	if len(sc.Screenshots) > 0 {
		in.Screenshots = append([]string(nil), sc.Screenshots...)
	}
	if sc.LastPlayed != nil {
		at := *sc.LastPlayed
		in.LastPlayedAt = &at
	}
	return in
}
