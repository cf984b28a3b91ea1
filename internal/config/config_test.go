package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"dust/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	if cfg.Paths.LibraryDir != filepath.Join(tempHome, "games") {
		t.Fatalf("unexpected library dir: %q", cfg.Paths.LibraryDir)
	}
	wantData := filepath.Join(tempHome, ".local", "share", "dust")
	if cfg.Paths.DataDir != wantData {
		t.Fatalf("unexpected data dir: got %q want %q", cfg.Paths.DataDir, wantData)
	}
	if cfg.Paths.APIBind != "127.0.0.1:5000" {
		t.Fatalf("unexpected api bind: %q", cfg.Paths.APIBind)
	}
	if cfg.DLSite.BaseURL != "https://www.dlsite.com" {
		t.Fatalf("unexpected dlsite base url: %q", cfg.DLSite.BaseURL)
	}
	if cfg.DLSite.Category != "maniax" {
		t.Fatalf("unexpected dlsite category: %q", cfg.DLSite.Category)
	}
	if !cfg.Scanner.AutoFetchMetadata {
		t.Fatal("expected auto_fetch_metadata enabled by default")
	}
	if !cfg.Scanner.WriteSidecars {
		t.Fatal("expected write_sidecars enabled by default")
	}
	if cfg.Scanner.Watch {
		t.Fatal("expected watch disabled by default")
	}
	if cfg.Workflow.FetchTimeoutSeconds != config.Default().Workflow.FetchTimeoutSeconds {
		t.Fatalf("unexpected fetch timeout: %d", cfg.Workflow.FetchTimeoutSeconds)
	}
	if cfg.DatabasePath() != filepath.Join(wantData, "library.db") {
		t.Fatalf("unexpected database path: %q", cfg.DatabasePath())
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}

	for _, dir := range []string{cfg.Paths.DataDir, cfg.Paths.LogDir, cfg.Paths.LibraryDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "dust.toml")

	type payload struct {
		Paths struct {
			LibraryDir string `toml:"library_dir"`
			APIBind    string `toml:"api_bind"`
		} `toml:"paths"`
		DLSite struct {
			BaseURL        string `toml:"base_url"`
			RequestTimeout int    `toml:"request_timeout"`
		} `toml:"dlsite"`
		Scanner struct {
			Watch                bool `toml:"watch"`
			WatchDebounceSeconds int  `toml:"watch_debounce_seconds"`
		} `toml:"scanner"`
	}
	custom := payload{}
	custom.Paths.LibraryDir = filepath.Join(tempDir, "library")
	custom.Paths.APIBind = "127.0.0.1:6000"
	custom.DLSite.BaseURL = "https://example.com/dlsite/"
	custom.DLSite.RequestTimeout = 30
	custom.Scanner.Watch = true
	custom.Scanner.WatchDebounceSeconds = 2
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists to be true")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if cfg.Paths.LibraryDir != custom.Paths.LibraryDir {
		t.Fatalf("expected library dir override, got %q", cfg.Paths.LibraryDir)
	}
	if cfg.Paths.APIBind != "127.0.0.1:6000" {
		t.Fatalf("expected api bind override, got %q", cfg.Paths.APIBind)
	}
	if cfg.DLSite.BaseURL != "https://example.com/dlsite" {
		t.Fatalf("expected trailing slash trimmed from base url, got %q", cfg.DLSite.BaseURL)
	}
	if cfg.DLSite.RequestTimeout != 30 {
		t.Fatalf("expected request timeout 30, got %d", cfg.DLSite.RequestTimeout)
	}
	if !cfg.Scanner.Watch {
		t.Fatal("expected watch enabled from file")
	}
	if cfg.Scanner.WatchDebounceSeconds != 2 {
		t.Fatalf("expected watch debounce 2, got %d", cfg.Scanner.WatchDebounceSeconds)
	}
}

func TestEnvVarProvidesAPIToken(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("DUST_API_TOKEN", "env-token")

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Paths.APIToken != "env-token" {
		t.Fatalf("expected API token from env, got %q", cfg.Paths.APIToken)
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(contents), "library_dir") {
		t.Fatalf("sample config missing library_dir: %s", contents)
	}

	var cfg config.Config
	if err := toml.Unmarshal(contents, &cfg); err != nil {
		t.Fatalf("unmarshal sample: %v", err)
	}
	if !strings.Contains(cfg.Paths.DataDir, "dust") {
		t.Fatalf("expected data dir to contain dust, got %q", cfg.Paths.DataDir)
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	cfg := config.Default()
	cfg.DLSite.RequestTimeout = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for non-positive timeout")
	}

	cfg = config.Default()
	cfg.DLSite.BaseURL = "www.dlsite.com"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for base url without scheme")
	}

	cfg = config.Default()
	cfg.Paths.LibraryDir = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing library dir")
	}

	cfg = config.Default()
	cfg.Workflow.FetchTimeoutSeconds = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for non-positive fetch timeout")
	}
}

func TestNormalizeLoggingFallsBackToConsole(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "dust.toml")
	body := "[paths]\nlibrary_dir = \"" + filepath.Join(tempDir, "library") + "\"\n[logging]\nformat = \"xml\"\n"
	if err := os.WriteFile(configPath, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Logging.Format != "console" {
		t.Fatalf("expected unknown format to fall back to console, got %q", cfg.Logging.Format)
	}
}
