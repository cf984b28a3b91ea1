package testsupport

import (
	"context"
	"testing"

	"dust/internal/config"
	"dust/internal/library"
)

// MustOpenStore opens a library.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *library.Store {
	t.Helper()

	store, err := library.Open(cfg)
	if err != nil {
		t.Fatalf("library.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// NewGame inserts a minimal record for tests using the provided store.
func NewGame(t testing.TB, store *library.Store, title, execPath, execFile string) *library.GameRecord {
	t.Helper()

	game, err := store.InsertGame(context.Background(), &library.GameRecord{
		Title:    title,
		ExecPath: execPath,
		ExecFile: execFile,
	})
	if err != nil {
		t.Fatalf("store.InsertGame: %v", err)
	}
	return game
}
