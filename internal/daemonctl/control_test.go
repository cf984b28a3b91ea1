package daemonctl_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"dust/internal/daemonctl"
	"dust/internal/testsupport"
)

func TestBuildStatusSnapshotOffline(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	testsupport.NewGame(t, store, "Counted", "/games/counted", "run.sh")

	snap, err := daemonctl.BuildStatusSnapshot(context.Background(), cfg.SocketPath(), cfg)
	if err != nil {
		t.Fatalf("BuildStatusSnapshot: %v", err)
	}
	if snap.Running {
		t.Fatal("no daemon is listening, status must report offline")
	}
	if snap.GameCount != 1 {
		t.Fatalf("GameCount = %d, want 1 from direct library read", snap.GameCount)
	}
	if snap.DatabasePath != cfg.DatabasePath() || snap.SocketPath != cfg.SocketPath() {
		t.Fatalf("unexpected snapshot paths: %#v", snap)
	}
	if snap.Version == "" {
		t.Fatal("offline snapshot missing version")
	}
}

func TestStopAndTerminateNotRunning(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	_, err := daemonctl.StopAndTerminate(cfg.SocketPath(), cfg, time.Second)
	if !errors.Is(err, daemonctl.ErrDaemonNotRunning) {
		t.Fatalf("err = %v, want ErrDaemonNotRunning", err)
	}
}

func TestDeriveLogDir(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cases := []struct {
		name   string
		lock   string
		socket string
		want   string
	}{
		{"lock wins", "/run/dust/dustd.lock", "/tmp/dust.sock", "/run/dust"},
		{"socket next", "", "/tmp/dust.sock", "/tmp"},
		{"config fallback", "", "", cfg.Paths.LogDir},
	}
	for _, tc := range cases {
		if got := daemonctl.DeriveLogDir(tc.lock, tc.socket, cfg); got != tc.want {
			t.Errorf("%s: DeriveLogDir = %q, want %q", tc.name, got, tc.want)
		}
	}
	if got := daemonctl.DeriveLogDir("", "", nil); got != "" {
		t.Errorf("DeriveLogDir with no hints = %q, want empty", got)
	}
}

func TestForceKillProcessRefusesSelf(t *testing.T) {
	pidPath := filepath.Join(t.TempDir(), "dust.pid")
	if err := os.WriteFile(pidPath, []byte(strconv.Itoa(os.Getpid())+"\n"), 0o644); err != nil {
		t.Fatalf("write pid file: %v", err)
	}
	if _, err := daemonctl.ForceKillProcess(pidPath, "", 0); err == nil {
		t.Fatal("expected refusal to kill the current process")
	}
}

func TestForceKillProcessWithoutPID(t *testing.T) {
	pidPath := filepath.Join(t.TempDir(), "missing.pid")
	if _, err := daemonctl.ForceKillProcess(pidPath, "", 0); err == nil {
		t.Fatal("expected error when no pid can be determined")
	}
}

func TestLaunchRequiresExecutable(t *testing.T) {
	if err := daemonctl.Launch("  ", daemonctl.LaunchOptions{}); err == nil {
		t.Fatal("expected error for empty executable path")
	}
}
