package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeDLSite()
	c.normalizeScanner()
	c.normalizeWorkflow()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.LibraryDir, err = expandPath(c.Paths.LibraryDir); err != nil {
		return fmt.Errorf("paths.library_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if c.Paths.APIBind == "" {
		c.Paths.APIBind = defaultAPIBind
	}
	c.Paths.APIToken = strings.TrimSpace(c.Paths.APIToken)
	if c.Paths.APIToken == "" {
		if value, ok := os.LookupEnv("DUST_API_TOKEN"); ok {
			c.Paths.APIToken = strings.TrimSpace(value)
		}
	}
	return nil
}

func (c *Config) normalizeDLSite() {
	c.DLSite.BaseURL = strings.TrimRight(strings.TrimSpace(c.DLSite.BaseURL), "/")
	if c.DLSite.BaseURL == "" {
		c.DLSite.BaseURL = defaultDLSiteBaseURL
	}
	c.DLSite.Category = strings.ToLower(strings.TrimSpace(c.DLSite.Category))
	if c.DLSite.Category == "" {
		c.DLSite.Category = defaultDLSiteCategory
	}
	c.DLSite.UserAgent = strings.TrimSpace(c.DLSite.UserAgent)
	if c.DLSite.UserAgent == "" {
		c.DLSite.UserAgent = defaultDLSiteUserAgent
	}
	if c.DLSite.RequestTimeout <= 0 {
		c.DLSite.RequestTimeout = defaultDLSiteTimeout
	}
}

func (c *Config) normalizeScanner() {
	if c.Scanner.WatchDebounceSeconds <= 0 {
		c.Scanner.WatchDebounceSeconds = defaultWatchDebounceSeconds
	}
	if len(c.Scanner.IgnoreDirs) > 0 {
		dirs := make([]string, 0, len(c.Scanner.IgnoreDirs))
		seen := make(map[string]struct{}, len(c.Scanner.IgnoreDirs))
		for _, dir := range c.Scanner.IgnoreDirs {
			normalized := strings.TrimSpace(dir)
			if normalized == "" {
				continue
			}
			if _, exists := seen[normalized]; exists {
				continue
			}
			seen[normalized] = struct{}{}
			dirs = append(dirs, normalized)
		}
		c.Scanner.IgnoreDirs = dirs
	}
}

func (c *Config) normalizeWorkflow() {
	if c.Workflow.FetchTimeoutSeconds <= 0 {
		c.Workflow.FetchTimeoutSeconds = defaultFetchTimeoutSeconds
	}
	if c.Workflow.SessionMaxMinutes <= 0 {
		c.Workflow.SessionMaxMinutes = defaultSessionMaxMinutes
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}
