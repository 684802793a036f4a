package testsupport

import (
	"path/filepath"
	"testing"

	"gtreg/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// The database is a SQLite file under the temp directory.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.APIBind = "127.0.0.1:0"
	cfgVal.Database.Driver = config.DriverSQLite
	cfgVal.Database.Path = filepath.Join(base, "data", "registry.db")
	cfgVal.Ingest.CreatedBy = "test"

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

// WithThresholds overrides the fuzzy-match decision bands.
func WithThresholds(autoMerge, review float64) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Resolution.AutoMergeThreshold = autoMerge
		b.cfg.Resolution.ReviewThreshold = review
	}
}

// WithCreatedBy sets the provenance stamp written on new rows.
func WithCreatedBy(createdBy string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Ingest.CreatedBy = createdBy
	}
}

// WithUniquenessRetries overrides the re-resolution budget after a unique
// constraint violation.
func WithUniquenessRetries(n int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Resolution.MaxUniquenessRetries = n
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DataDir)
}
