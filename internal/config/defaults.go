package config

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

const (
	defaultConfigPath           = "~/.config/gtreg/config.toml"
	defaultDataDir              = "~/.local/share/gtreg"
	defaultLogDir               = "~/.local/share/gtreg/logs"
	defaultDatabaseFile         = "registry.db"
	defaultAPIBind              = "127.0.0.1:7590"
	defaultBusyTimeoutMS        = 5000
	defaultAutoMergeThreshold   = 0.95
	defaultReviewThreshold      = 0.85
	defaultMaxUniquenessRetries = 1
	defaultCreatedBy            = "gtreg"
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
			APIBind: defaultAPIBind,
		},
		Database: Database{
			Driver:        DriverSQLite,
			BusyTimeoutMS: defaultBusyTimeoutMS,
		},
		Resolution: Resolution{
			AutoMergeThreshold:   defaultAutoMergeThreshold,
			ReviewThreshold:      defaultReviewThreshold,
			MaxUniquenessRetries: defaultMaxUniquenessRetries,
		},
		Ingest: Ingest{
			CreatedBy: defaultCreatedBy,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
