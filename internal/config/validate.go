package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateDatabase(); err != nil {
		return err
	}
	if err := c.validateResolution(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateDatabase() error {
	switch c.Database.Driver {
	case DriverSQLite:
		if strings.TrimSpace(c.Database.Path) == "" {
			return errors.New("database.path must be set when database.driver is sqlite")
		}
	case DriverPostgres:
		if c.Database.DSN == "" {
			defaultPath, err := DefaultConfigPath()
			if err != nil {
				defaultPath = defaultConfigPath
			}
			return fmt.Errorf("database.dsn is required for postgres. Set GTREG_DATABASE_DSN env var or edit %s (create with 'gtreg config init')", defaultPath)
		}
	default:
		return fmt.Errorf("database.driver %q is not supported (use sqlite or postgres)", c.Database.Driver)
	}
	return nil
}

func (c *Config) validateResolution() error {
	r := c.Resolution
	if r.ReviewThreshold <= 0 || r.ReviewThreshold > 1 {
		return errors.New("resolution.review_threshold must be between 0 and 1")
	}
	if r.AutoMergeThreshold <= 0 || r.AutoMergeThreshold > 1 {
		return errors.New("resolution.auto_merge_threshold must be between 0 and 1")
	}
	if r.ReviewThreshold >= r.AutoMergeThreshold {
		return errors.New("resolution.review_threshold must be less than resolution.auto_merge_threshold")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
		return nil
	default:
		return fmt.Errorf("logging.level %q is not supported", c.Logging.Level)
	}
}
