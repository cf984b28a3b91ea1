package api_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"dust/internal/services"
	"dust/internal/testsupport"
)

func TestPrepareLaunchOpensSession(t *testing.T) {
	svc, store := newService(t, nil)
	ctx := context.Background()

	dir := t.TempDir()
	target := filepath.Join(dir, "game.sh")
	testsupport.WriteFile(t, target, 64)
	rec := testsupport.NewGame(t, store, "Crystal Depths", dir, "game.sh")

	info, err := svc.PrepareLaunch(ctx, rec.ID)
	if err != nil {
		t.Fatalf("PrepareLaunch: %v", err)
	}
	if info.GameID != rec.ID || info.Title != "Crystal Depths" {
		t.Fatalf("unexpected info: %+v", info)
	}
	if info.Executable != target || info.WorkingDir != dir {
		t.Errorf("paths wrong: %+v", info)
	}
	if info.SessionToken == "" || info.StartedAt == "" {
		t.Errorf("session fields missing: %+v", info)
	}

	stored, err := store.GameByID(ctx, rec.ID)
	if err != nil || stored == nil {
		t.Fatalf("GameByID: %v", err)
	}
	if stored.LastPlayedAt == nil {
		t.Errorf("LastPlayedAt not stamped")
	}
}

func TestPrepareLaunchMissingExecutableLeavesRecordUntouched(t *testing.T) {
	svc, store := newService(t, nil)
	ctx := context.Background()
	rec := testsupport.NewGame(t, store, "Moved Away", filepath.Join(t.TempDir(), "gone"), "game.sh")

	_, err := svc.PrepareLaunch(ctx, rec.ID)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}

	stored, err := store.GameByID(ctx, rec.ID)
	if err != nil || stored == nil {
		t.Fatalf("GameByID: %v", err)
	}
	if stored.LastPlayedAt != nil {
		t.Errorf("LastPlayedAt stamped on failed launch")
	}
	if !stored.UpdatedAt.Equal(rec.UpdatedAt) {
		t.Errorf("record touched on failed launch")
	}
}

func TestPrepareLaunchWithoutExecutable(t *testing.T) {
	svc, store := newService(t, nil)
	rec := testsupport.NewGame(t, store, "No Binary", t.TempDir(), "")

	_, err := svc.PrepareLaunch(context.Background(), rec.ID)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
}

func TestPrepareLaunchUnknownGame(t *testing.T) {
	svc, _ := newService(t, nil)

	_, err := svc.PrepareLaunch(context.Background(), 404)
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestFinishSessionCreditsTotal(t *testing.T) {
	svc, store := newService(t, nil)
	ctx := context.Background()

	dir := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(dir, "game.sh"), 64)
	rec := testsupport.NewGame(t, store, "Session Game", dir, "game.sh")
	if _, err := store.AddPlayTime(ctx, rec.ID, 30); err != nil {
		t.Fatalf("AddPlayTime: %v", err)
	}

	info, err := svc.PrepareLaunch(ctx, rec.ID)
	if err != nil {
		t.Fatalf("PrepareLaunch: %v", err)
	}
	receipt, err := svc.FinishSession(ctx, info.SessionToken)
	if err != nil {
		t.Fatalf("FinishSession: %v", err)
	}
	if receipt.GameID != rec.ID {
		t.Fatalf("receipt.GameID = %d, want %d", receipt.GameID, rec.ID)
	}
	if receipt.Minutes != 0 {
		t.Errorf("Minutes = %d, want 0 for an immediate close", receipt.Minutes)
	}
	if receipt.TotalPlayTime != 30 {
		t.Errorf("TotalPlayTime = %d, want 30", receipt.TotalPlayTime)
	}
	if receipt.EndedAt == "" {
		t.Errorf("EndedAt missing")
	}

	if _, err := svc.FinishSession(ctx, info.SessionToken); !errors.Is(err, services.ErrValidation) {
		t.Errorf("second close err = %v, want ErrValidation", err)
	}
}

func TestFinishSessionBadTokens(t *testing.T) {
	svc, _ := newService(t, nil)
	ctx := context.Background()

	if _, err := svc.FinishSession(ctx, "  "); !errors.Is(err, services.ErrValidation) {
		t.Errorf("blank token err = %v, want ErrValidation", err)
	}
	if _, err := svc.FinishSession(ctx, "no-such-token"); !errors.Is(err, services.ErrNotFound) {
		t.Errorf("unknown token err = %v, want ErrNotFound", err)
	}
}
