package scanner_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"dust/internal/library"
	"dust/internal/scanner"
	"dust/internal/services"
)

func TestSidecarRoundTrip(t *testing.T) {
	dir := t.TempDir()
	played := time.Date(2024, 3, 9, 21, 30, 0, 0, time.UTC)
	rec := &library.GameRecord{
		ID:           7,
		Title:        "Example Quest",
		Developer:    "Example Soft",
		Genre:        "Adult Game",
		Source:       library.SourceDLSite,
		CatalogID:    "RJ123456",
		ExecPath:     filepath.Join(dir, "bin"),
		ExecFile:     "game.exe",
		Description:  "A short example.",
		Tags:         []string{"RPG", "Fantasy"},
		CoverURL:     "https://img.dlsite.jp/example.jpg",
		PlayTime:     90,
		LastPlayedAt: &played,
		AddedAt:      time.Date(2024, 1, 2, 12, 0, 0, 0, time.UTC),
	}

	if err := scanner.WriteSidecar(dir, scanner.SidecarForRecord(dir, rec)); err != nil {
		t.Fatalf("WriteSidecar: %v", err)
	}

	sc, err := scanner.ReadSidecar(dir)
	if err != nil {
		t.Fatalf("ReadSidecar: %v", err)
	}
	if sc == nil {
		t.Fatal("expected sidecar document")
	}
	if sc.Title != "Example Quest" || sc.DLSiteID != "RJ123456" || sc.Developer != "Example Soft" {
		t.Fatalf("unexpected identity fields: %+v", sc)
	}
	if sc.Executable != filepath.Join("bin", "game.exe") {
		t.Fatalf("expected relative executable, got %s", sc.Executable)
	}
	if sc.ExecutablePath != rec.ExecPath {
		t.Fatalf("expected executablePath %s, got %s", rec.ExecPath, sc.ExecutablePath)
	}
	if !sc.Installed || sc.DustVersion != "1.0" {
		t.Fatalf("unexpected document metadata: %+v", sc)
	}
	if sc.LastPlayed == nil || !sc.LastPlayed.Equal(played) {
		t.Fatalf("expected lastPlayed %v, got %v", played, sc.LastPlayed)
	}
	if !sc.InstallDate.Equal(rec.AddedAt) {
		t.Fatalf("expected installDate %v, got %v", rec.AddedAt, sc.InstallDate)
	}
	if sc.PlayTime != 90 || len(sc.Tags) != 2 {
		t.Fatalf("unexpected play fields: %+v", sc)
	}
}

func TestSidecarDocumentKeysStayCamelCase(t *testing.T) {
	dir := t.TempDir()
	rec := &library.GameRecord{
		Title:     "Example Quest",
		CatalogID: "RJ123456",
		ExecPath:  dir,
		ExecFile:  "game.exe",
		CoverURL:  "https://img.dlsite.jp/example.jpg",
		AddedAt:   time.Now().UTC(),
	}
	if err := scanner.WriteSidecar(dir, scanner.SidecarForRecord(dir, rec)); err != nil {
		t.Fatalf("WriteSidecar: %v", err)
	}

	data, err := os.ReadFile(scanner.SidecarPath(dir))
	if err != nil {
		t.Fatalf("read sidecar: %v", err)
	}
	for _, key := range []string{`"dlsiteId"`, `"coverImage"`, `"installDate"`, `"dustVersion"`} {
		if !strings.Contains(string(data), key) {
			t.Fatalf("expected document key %s in %s", key, data)
		}
	}
}

func TestReadSidecarMissing(t *testing.T) {
	sc, err := scanner.ReadSidecar(t.TempDir())
	if err != nil {
		t.Fatalf("ReadSidecar: %v", err)
	}
	if sc != nil {
		t.Fatalf("expected nil document for missing sidecar, got %+v", sc)
	}
}

func TestReadSidecarMalformed(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(scanner.SidecarPath(dir), []byte("not json"), 0o644); err != nil {
		t.Fatalf("write sidecar: %v", err)
	}

	if _, err := scanner.ReadSidecar(dir); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSidecarInputAnchorsAtFoundDirectory(t *testing.T) {
	installed := time.Date(2023, 11, 5, 8, 0, 0, 0, time.UTC)
	sc := &scanner.Sidecar{
		Title:          "Example Quest",
		Source:         "dlsite",
		DLSiteID:       "RJ123456",
		Executable:     filepath.Join("bin", "game.exe"),
		ExecutablePath: filepath.Join(string(filepath.Separator), "old", "drive", "example"),
		Tags:           []string{"RPG"},
		PlayTime:       45,
		InstallDate:    installed,
	}

	dir := filepath.Join(string(filepath.Separator), "mnt", "new-drive", "example")
	in := sc.Input(dir)

	if in.ExecPath != filepath.Join(dir, "bin") {
		t.Fatalf("expected exec path under the found directory, got %s", in.ExecPath)
	}
	if in.ExecFile != "game.exe" {
		t.Fatalf("expected exec file game.exe, got %s", in.ExecFile)
	}
	if in.Source != library.SourceDLSite {
		t.Fatalf("expected dlsite source, got %s", in.Source)
	}
	if in.PlayTime != 45 || !in.AddedAt.Equal(installed) {
		t.Fatalf("expected play fields carried over, got %+v", in)
	}
	if len(in.Tags) != 1 || in.Tags[0] != "RPG" {
		t.Fatalf("expected tags carried over, got %v", in.Tags)
	}
}

func TestSidecarInputDefaults(t *testing.T) {
	dir := filepath.Join(string(filepath.Separator), "library", "Example Quest")
	in := (&scanner.Sidecar{Source: "weird"}).Input(dir)

	if in.Title != "Example Quest" {
		t.Fatalf("expected title from directory name, got %q", in.Title)
	}
	if in.ExecPath != dir || in.ExecFile != "" {
		t.Fatalf("expected exec path to default to the directory, got %q/%q", in.ExecPath, in.ExecFile)
	}
	if in.Source != "" {
		t.Fatalf("expected unknown source to stay empty, got %s", in.Source)
	}
}
