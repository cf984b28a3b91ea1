package testsupport

import (
	"path/filepath"
	"testing"

	"dust/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.LibraryDir = filepath.Join(base, "library")
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.APIBind = "127.0.0.1:0"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithDLSiteBaseURL points the metadata client at a test server.
func WithDLSiteBaseURL(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.DLSite.BaseURL = url
	}
}

// WithAPIToken sets the HTTP API bearer token on the test config.
func WithAPIToken(token string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Paths.APIToken = token
	}
}

// WithWatch enables the library watcher with the given debounce seconds.
func WithWatch(debounceSeconds int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Scanner.Watch = true
		b.cfg.Scanner.WatchDebounceSeconds = debounceSeconds
	}
}

// WithSessionCap overrides the per-session play time cap in minutes.
func WithSessionCap(minutes int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Workflow.SessionMaxMinutes = minutes
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DataDir)
}
