package api_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"dust/internal/api"
	"dust/internal/dlsite"
	"dust/internal/logging"
	"dust/internal/services"
	"dust/internal/testsupport"
)

func TestGamesListsLibrary(t *testing.T) {
	svc, store := newService(t, nil)
	ctx := context.Background()
	first := testsupport.NewGame(t, store, "Alpha Quest", "/games/alpha", "run.sh")
	second := testsupport.NewGame(t, store, "Beta Quest", "/games/beta", "run.sh")

	list, err := svc.Games(ctx)
	if err != nil {
		t.Fatalf("Games: %v", err)
	}
	if list.Count != 2 || len(list.Games) != 2 {
		t.Fatalf("count = %d games %d, want 2", list.Count, len(list.Games))
	}
	if list.Games[0].ID != first.ID || list.Games[1].ID != second.ID {
		t.Errorf("order wrong: %+v", list.Games)
	}
}

func TestGameByID(t *testing.T) {
	svc, store := newService(t, nil)
	ctx := context.Background()
	rec := testsupport.NewGame(t, store, "Lone Game", "/games/lone", "run.sh")

	view, err := svc.Game(ctx, rec.ID)
	if err != nil {
		t.Fatalf("Game: %v", err)
	}
	if view.Title != "Lone Game" {
		t.Errorf("title = %q", view.Title)
	}

	if _, err := svc.Game(ctx, rec.ID+1); !errors.Is(err, services.ErrNotFound) {
		t.Errorf("missing game err = %v, want ErrNotFound", err)
	}
}

func TestDLSiteInfo(t *testing.T) {
	fetcher := &stubFetcher{work: &dlsite.Work{
		ProductID:   "RJ890123",
		Title:       "Looked Up",
		Maker:       "Circle Nine",
		AgeCategory: dlsite.AgeAllAges,
	}}
	svc, _ := newService(t, fetcher)

	view, err := svc.DLSiteInfo(context.Background(), "RJ890123")
	if err != nil {
		t.Fatalf("DLSiteInfo: %v", err)
	}
	if view.ProductID != "RJ890123" || view.Title != "Looked Up" {
		t.Fatalf("view = %+v", view)
	}
	if view.Genre != "Game" || view.AgeCategory != "ALL_AGES" {
		t.Errorf("classification = %q / %q", view.Genre, view.AgeCategory)
	}
}

func TestDLSiteInfoDisabled(t *testing.T) {
	svc, _ := newService(t, nil)

	_, err := svc.DLSiteInfo(context.Background(), "RJ890123")
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("err = %v, want ErrConfiguration", err)
	}
}

func TestScanLibraryThroughFacade(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	svc := api.New(cfg, store, nil, logging.NewNop())

	dir := filepath.Join(cfg.Paths.LibraryDir, "Facade Game")
	testsupport.WriteFile(t, filepath.Join(dir, "game.jar"), 32)

	summary, err := svc.ScanLibrary(context.Background(), "")
	if err != nil {
		t.Fatalf("ScanLibrary: %v", err)
	}
	if summary.FoundGames != 1 || summary.UpdatedGames != 0 {
		t.Fatalf("summary = %+v", summary)
	}
	if summary.Message != "Scan complete: 1 new games, 0 updated" {
		t.Errorf("message = %q", summary.Message)
	}
	if count, _ := store.CountGames(context.Background()); count != 1 {
		t.Errorf("CountGames = %d, want 1", count)
	}
}

func TestImportFolderThroughFacade(t *testing.T) {
	svc, store := newService(t, nil)

	root := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(root, "Imported Game", "start.jar"), 32)

	summary, err := svc.ImportFolder(context.Background(), root, "itch")
	if err != nil {
		t.Fatalf("ImportFolder: %v", err)
	}
	if summary.FoundGames != 1 {
		t.Fatalf("summary = %+v", summary)
	}

	games, err := store.ListGames(context.Background())
	if err != nil || len(games) != 1 {
		t.Fatalf("ListGames: %v (%d)", err, len(games))
	}
	if games[0].Source.Display() != "Itch.io" {
		t.Errorf("source = %q", games[0].Source)
	}

	if _, err := svc.ImportFolder(context.Background(), root, "gog"); !errors.Is(err, services.ErrValidation) {
		t.Errorf("unknown source err = %v, want ErrValidation", err)
	}
}

func TestStatusReportsRuntime(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	svc := api.New(cfg, store, nil, logging.NewNop())
	testsupport.NewGame(t, store, "Counted", "/games/counted", "run.sh")

	status, err := svc.Status(context.Background())
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if status.Version == "" || status.PID <= 0 {
		t.Errorf("identity fields wrong: %+v", status)
	}
	if status.GameCount != 1 {
		t.Errorf("gameCount = %d, want 1", status.GameCount)
	}
	if status.LibraryDir != cfg.Paths.LibraryDir || status.DatabasePath != cfg.DatabasePath() {
		t.Errorf("paths wrong: %+v", status)
	}
	if status.LibraryDisk == nil {
		t.Fatalf("libraryDisk missing")
	}
	if status.LibraryDisk.TotalBytes == 0 || status.LibraryDisk.UsedBytes > status.LibraryDisk.TotalBytes {
		t.Errorf("disk usage implausible: %+v", status.LibraryDisk)
	}
}
