package main

import (
	"os"
	"path/filepath"
	"testing"

	"dust/internal/config"
)

func TestLoadConfigCreatesDirectories(t *testing.T) {
	base := t.TempDir()
	configPath := filepath.Join(base, "config.toml")
	content := "[paths]\n" +
		"library_dir = \"" + filepath.Join(base, "games") + "\"\n" +
		"data_dir = \"" + filepath.Join(base, "data") + "\"\n" +
		"log_dir = \"" + filepath.Join(base, "logs") + "\"\n"
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Paths.LibraryDir != filepath.Join(base, "games") {
		t.Fatalf("unexpected library dir %q", cfg.Paths.LibraryDir)
	}
	for _, dir := range []string{cfg.Paths.LibraryDir, cfg.Paths.DataDir, cfg.Paths.LogDir} {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			t.Fatalf("expected directory %q to exist, err=%v", dir, err)
		}
	}
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := loadConfig("")
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Paths.LibraryDir == "" || cfg.Paths.LogDir == "" {
		t.Fatalf("expected default paths, got %+v", cfg.Paths)
	}
}

func TestResolveLogLevel(t *testing.T) {
	cfg := config.Default()
	cfg.Logging.Level = "warn"

	if got := resolveLogLevel("debug", &cfg); got != "debug" {
		t.Fatalf("flag should win, got %q", got)
	}
	if got := resolveLogLevel("  ", &cfg); got != "warn" {
		t.Fatalf("config level should apply, got %q", got)
	}
	if got := resolveLogLevel("", nil); got != "" {
		t.Fatalf("expected empty level without config, got %q", got)
	}
}
