package library_test

import (
	"context"
	"errors"
	"testing"

	"dust/internal/services"
	"dust/internal/testsupport"
)

func TestRecordLaunchOpensSession(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	game := testsupport.NewGame(t, store, "Launchable", "/games/launchable", "play.exe")

	session, err := store.RecordLaunch(ctx, game.ID)
	if err != nil {
		t.Fatalf("RecordLaunch failed: %v", err)
	}
	if session.Token == "" {
		t.Fatal("expected session token")
	}
	if !session.Open() {
		t.Fatal("expected session to start open")
	}

	fetched, err := store.GameByID(ctx, game.ID)
	if err != nil {
		t.Fatalf("GameByID failed: %v", err)
	}
	if fetched.LastPlayedAt == nil {
		t.Fatal("expected LastPlayedAt stamped on launch")
	}
}

func TestRecordLaunchUnknownGame(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	if _, err := store.RecordLaunch(context.Background(), 404); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestCloseSession(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	game := testsupport.NewGame(t, store, "Short Session", "/games/short", "run.exe")
	session, err := store.RecordLaunch(ctx, game.ID)
	if err != nil {
		t.Fatalf("RecordLaunch failed: %v", err)
	}

	closed, err := store.CloseSession(ctx, session.Token)
	if err != nil {
		t.Fatalf("CloseSession failed: %v", err)
	}
	if closed.Open() {
		t.Fatal("expected session to be closed")
	}
	if closed.Minutes != 0 {
		t.Fatalf("expected sub-minute session to credit 0 minutes, got %d", closed.Minutes)
	}

	if _, err := store.CloseSession(ctx, session.Token); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error on double close, got %v", err)
	}
	if _, err := store.CloseSession(ctx, "no-such-token"); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found error for unknown token, got %v", err)
	}
}

func TestAddPlayTime(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	game := testsupport.NewGame(t, store, "Grindy", "/games/grindy", "grind.exe")

	total, err := store.AddPlayTime(ctx, game.ID, 30)
	if err != nil {
		t.Fatalf("AddPlayTime failed: %v", err)
	}
	if total != 30 {
		t.Fatalf("expected total 30, got %d", total)
	}
	total, err = store.AddPlayTime(ctx, game.ID, 15)
	if err != nil {
		t.Fatalf("AddPlayTime failed: %v", err)
	}
	if total != 45 {
		t.Fatalf("expected total 45, got %d", total)
	}

	if _, err := store.AddPlayTime(ctx, game.ID, -5); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for negative delta, got %v", err)
	}

	fetched, err := store.GameByID(ctx, game.ID)
	if err != nil {
		t.Fatalf("GameByID failed: %v", err)
	}
	if fetched.PlayTime != 45 {
		t.Fatalf("expected persisted play time 45, got %d", fetched.PlayTime)
	}
}

func TestResetPlayTime(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	game := testsupport.NewGame(t, store, "Resettable", "/games/reset", "go.exe")
	if _, err := store.AddPlayTime(ctx, game.ID, 120); err != nil {
		t.Fatalf("AddPlayTime failed: %v", err)
	}
	if err := store.ResetPlayTime(ctx, game.ID); err != nil {
		t.Fatalf("ResetPlayTime failed: %v", err)
	}

	fetched, err := store.GameByID(ctx, game.ID)
	if err != nil {
		t.Fatalf("GameByID failed: %v", err)
	}
	if fetched.PlayTime != 0 {
		t.Fatalf("expected play time reset to 0, got %d", fetched.PlayTime)
	}
}
