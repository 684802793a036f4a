package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeDatabase(); err != nil {
		return err
	}
	c.normalizeResolution()
	c.normalizeIngest()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = filepath.Join(c.Paths.DataDir, "logs")
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if c.Paths.APIBind == "" {
		c.Paths.APIBind = defaultAPIBind
	}
	return nil
}

func (c *Config) normalizeDatabase() error {
	c.Database.Driver = strings.ToLower(strings.TrimSpace(c.Database.Driver))
	switch c.Database.Driver {
	case "", "sqlite3":
		c.Database.Driver = DriverSQLite
	case "postgresql", "pgx":
		c.Database.Driver = DriverPostgres
	}
	if value, ok := os.LookupEnv("GTREG_DATABASE_DSN"); ok && strings.TrimSpace(value) != "" {
		c.Database.DSN = strings.TrimSpace(value)
	}
	c.Database.DSN = strings.TrimSpace(c.Database.DSN)
	if c.Database.Driver == DriverSQLite {
		if strings.TrimSpace(c.Database.Path) == "" {
			c.Database.Path = filepath.Join(c.Paths.DataDir, defaultDatabaseFile)
		}
		var err error
		if c.Database.Path, err = expandPath(c.Database.Path); err != nil {
			return fmt.Errorf("database.path: %w", err)
		}
	}
	if c.Database.BusyTimeoutMS <= 0 {
		c.Database.BusyTimeoutMS = defaultBusyTimeoutMS
	}
	return nil
}

func (c *Config) normalizeResolution() {
	if c.Resolution.AutoMergeThreshold == 0 {
		c.Resolution.AutoMergeThreshold = defaultAutoMergeThreshold
	}
	if c.Resolution.ReviewThreshold == 0 {
		c.Resolution.ReviewThreshold = defaultReviewThreshold
	}
	if c.Resolution.MaxUniquenessRetries < 0 {
		c.Resolution.MaxUniquenessRetries = 0
	}
}

func (c *Config) normalizeIngest() {
	c.Ingest.CreatedBy = strings.TrimSpace(c.Ingest.CreatedBy)
	if c.Ingest.CreatedBy == "" {
		c.Ingest.CreatedBy = defaultCreatedBy
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
}
