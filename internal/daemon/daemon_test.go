package daemon_test

import (
	"context"
	"testing"
	"time"

	"dust/internal/api"
	"dust/internal/daemon"
	"dust/internal/logging"
	"dust/internal/testsupport"
)

func TestDaemonStartStop(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	svc := api.New(cfg, store, nil, logging.NewNop())
	d, err := daemon.New(cfg, store, svc, logging.NewNop(), "", nil, nil)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	t.Cleanup(func() {
		d.Close()
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := d.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	status := d.Status(ctx)
	if !status.Running {
		t.Fatal("expected daemon to report running")
	}
	if status.LockPath != cfg.LockPath() || status.SocketPath != cfg.SocketPath() {
		t.Fatalf("path fields wrong: %+v", status)
	}
	if status.Library == nil || status.Library.GameCount != 0 {
		t.Fatalf("unexpected library status: %+v", status.Library)
	}

	// Second start should fail
	if err := d.Start(ctx); err == nil {
		t.Fatal("expected second start to fail")
	}

	d.Stop()
	time.Sleep(50 * time.Millisecond)
	if d.Status(ctx).Running {
		t.Fatal("expected daemon to be stopped")
	}
}

func TestDaemonSingleInstance(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	svc := api.New(cfg, store, nil, logging.NewNop())
	first, err := daemon.New(cfg, store, svc, logging.NewNop(), "", nil, nil)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := first.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer first.Stop()

	secondStore := testsupport.MustOpenStore(t, cfg)
	secondSvc := api.New(cfg, secondStore, nil, logging.NewNop())
	second, err := daemon.New(cfg, secondStore, secondSvc, logging.NewNop(), "", nil, nil)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	if err := second.Start(ctx); err == nil {
		second.Stop()
		t.Fatal("expected second instance to be refused")
	}
}
