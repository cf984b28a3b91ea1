package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateDLSite(); err != nil {
		return err
	}
	if err := c.validateScanner(); err != nil {
		return err
	}
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.LibraryDir) == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/dust/config.toml"
		}
		return fmt.Errorf("paths.library_dir is required. Edit %s (create with 'dust config init')", defaultPath)
	}
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		return errors.New("paths.data_dir must be set")
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		return errors.New("paths.log_dir must be set")
	}
	return nil
}

func (c *Config) validateDLSite() error {
	if strings.TrimSpace(c.DLSite.BaseURL) == "" {
		return errors.New("dlsite.base_url must be set")
	}
	if !strings.HasPrefix(c.DLSite.BaseURL, "http://") && !strings.HasPrefix(c.DLSite.BaseURL, "https://") {
		return fmt.Errorf("dlsite.base_url must start with http:// or https://, got %q", c.DLSite.BaseURL)
	}
	if strings.TrimSpace(c.DLSite.Category) == "" {
		return errors.New("dlsite.category must be set")
	}
	return ensurePositiveMap(map[string]int{
		"dlsite.request_timeout": c.DLSite.RequestTimeout,
	})
}

func (c *Config) validateScanner() error {
	if c.Scanner.Watch && c.Scanner.WatchDebounceSeconds <= 0 {
		return errors.New("scanner.watch_debounce_seconds must be positive when scanner.watch is true")
	}
	return nil
}

func (c *Config) validateWorkflow() error {
	return ensurePositiveMap(map[string]int{
		"workflow.fetch_timeout_seconds": c.Workflow.FetchTimeoutSeconds,
		"workflow.session_max_minutes":   c.Workflow.SessionMaxMinutes,
	})
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
