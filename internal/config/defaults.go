package config

const (
	defaultLibraryDir           = "~/games"
	defaultDataDir              = "~/.local/share/dust"
	defaultLogDir               = "~/.local/share/dust/logs"
	defaultAPIBind              = "127.0.0.1:5000"
	defaultDLSiteBaseURL        = "https://www.dlsite.com"
	defaultDLSiteCategory       = "maniax"
	defaultDLSiteUserAgent      = "Mozilla/5.0 (compatible; Dust/1.0)"
	defaultDLSiteTimeout        = 10
	defaultWatchDebounceSeconds = 5
	defaultFetchTimeoutSeconds  = 15
	defaultSessionMaxMinutes    = 720
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
	defaultLogRetentionDays     = 60
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LibraryDir: defaultLibraryDir,
			DataDir:    defaultDataDir,
			LogDir:     defaultLogDir,
			APIBind:    defaultAPIBind,
		},
		DLSite: DLSite{
			BaseURL:        defaultDLSiteBaseURL,
			Category:       defaultDLSiteCategory,
			UserAgent:      defaultDLSiteUserAgent,
			RequestTimeout: defaultDLSiteTimeout,
		},
		Scanner: Scanner{
			AutoFetchMetadata:    true,
			WriteSidecars:        true,
			WatchDebounceSeconds: defaultWatchDebounceSeconds,
		},
		Workflow: Workflow{
			FetchTimeoutSeconds: defaultFetchTimeoutSeconds,
			SessionMaxMinutes:   defaultSessionMaxMinutes,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
