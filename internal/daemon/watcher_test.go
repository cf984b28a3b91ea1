package daemon

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"

	"dust/internal/api"
	"dust/internal/logging"
	"dust/internal/testsupport"
)

func TestWatcherTriggersRescan(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithWatch(1))
	store := testsupport.MustOpenStore(t, cfg)
	svc := api.New(cfg, store, nil, logging.NewNop())

	w := newLibraryWatcher(cfg, svc, logging.NewNop())
	w.debounce = 50 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer w.stop()

	gameDir := filepath.Join(cfg.Paths.LibraryDir, "Dropped Game")
	testsupport.WriteFile(t, filepath.Join(gameDir, "game.jar"), 64)

	deadline := time.Now().Add(5 * time.Second)
	for {
		count, err := store.CountGames(context.Background())
		if err != nil {
			t.Fatalf("CountGames: %v", err)
		}
		if count == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("watcher never imported the dropped game, count = %d", count)
		}
		time.Sleep(50 * time.Millisecond)
	}
}

func TestWatcherRelevance(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Scanner.IgnoreDirs = []string{"Downloads"}
	store := testsupport.MustOpenStore(t, cfg)
	svc := api.New(cfg, store, nil, logging.NewNop())
	w := newLibraryWatcher(cfg, svc, logging.NewNop())

	cases := []struct {
		name string
		evt  fsnotify.Event
		want bool
	}{
		{"create", fsnotify.Event{Name: "/library/New Game", Op: fsnotify.Create}, true},
		{"remove", fsnotify.Event{Name: "/library/Old Game", Op: fsnotify.Remove}, true},
		{"rename", fsnotify.Event{Name: "/library/Moved Game", Op: fsnotify.Rename}, true},
		{"chmod only", fsnotify.Event{Name: "/library/Game", Op: fsnotify.Chmod}, false},
		{"write only", fsnotify.Event{Name: "/library/Game", Op: fsnotify.Write}, false},
		{"hidden entry", fsnotify.Event{Name: "/library/.tmp123", Op: fsnotify.Create}, false},
		{"ignored dir", fsnotify.Event{Name: "/library/downloads", Op: fsnotify.Create}, false},
	}
	for _, tc := range cases {
		if got := w.relevant(tc.evt); got != tc.want {
			t.Errorf("%s: relevant(%v) = %v, want %v", tc.name, tc.evt, got, tc.want)
		}
	}
}

func TestWatcherStartRequiresLibraryDir(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Paths.LibraryDir = ""
	store := testsupport.MustOpenStore(t, cfg)
	svc := api.New(cfg, store, nil, logging.NewNop())

	w := newLibraryWatcher(cfg, svc, logging.NewNop())
	if err := w.start(context.Background()); err == nil {
		w.stop()
		t.Fatal("start succeeded without a library directory")
	}
}

func TestWatcherStopIdempotent(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if err := os.MkdirAll(cfg.Paths.LibraryDir, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	store := testsupport.MustOpenStore(t, cfg)
	svc := api.New(cfg, store, nil, logging.NewNop())

	w := newLibraryWatcher(cfg, svc, logging.NewNop())
	if err := w.start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	if !w.active() {
		t.Fatal("watcher not active after start")
	}
	w.stop()
	w.stop()
	if w.active() {
		t.Fatal("watcher still active after stop")
	}
}
