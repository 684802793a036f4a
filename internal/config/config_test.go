package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"gtreg/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("GTREG_DATABASE_DSN", "")

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

	wantData := filepath.Join(tempHome, ".local", "share", "gtreg")
	if cfg.Paths.DataDir != wantData {
		t.Fatalf("unexpected data dir: got %q want %q", cfg.Paths.DataDir, wantData)
	}
	if cfg.Database.Driver != config.DriverSQLite {
		t.Fatalf("expected sqlite driver by default, got %q", cfg.Database.Driver)
	}
	if cfg.Database.Path != filepath.Join(wantData, "registry.db") {
		t.Fatalf("unexpected database path: %q", cfg.Database.Path)
	}
	if cfg.Resolution.AutoMergeThreshold != 0.95 || cfg.Resolution.ReviewThreshold != 0.85 {
		t.Fatalf("unexpected thresholds: %+v", cfg.Resolution)
	}
	if cfg.Resolution.MaxUniquenessRetries != 1 {
		t.Fatalf("expected one uniqueness retry, got %d", cfg.Resolution.MaxUniquenessRetries)
	}
	if cfg.Ingest.CreatedBy != "gtreg" {
		t.Fatalf("unexpected created_by: %q", cfg.Ingest.CreatedBy)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.DataDir, cfg.Paths.LogDir} {
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
	configPath := filepath.Join(tempDir, "gtreg.toml")

	type payload struct {
		Paths struct {
			DataDir string `toml:"data_dir"`
		} `toml:"paths"`
		Resolution struct {
			AutoMergeThreshold float64 `toml:"auto_merge_threshold"`
			ReviewThreshold    float64 `toml:"review_threshold"`
		} `toml:"resolution"`
		Ingest struct {
			CreatedBy string `toml:"created_by"`
		} `toml:"ingest"`
	}
	custom := payload{}
	custom.Paths.DataDir = filepath.Join(tempDir, "data")
	custom.Resolution.AutoMergeThreshold = 0.9
	custom.Resolution.ReviewThreshold = 0.7
	custom.Ingest.CreatedBy = "importer_v2"
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
	if cfg.Resolution.AutoMergeThreshold != 0.9 || cfg.Resolution.ReviewThreshold != 0.7 {
		t.Fatalf("expected thresholds from file, got %+v", cfg.Resolution)
	}
	if cfg.Ingest.CreatedBy != "importer_v2" {
		t.Fatalf("expected created_by from file, got %q", cfg.Ingest.CreatedBy)
	}
	if cfg.Database.Path != filepath.Join(tempDir, "data", "registry.db") {
		t.Fatalf("expected database under custom data dir, got %q", cfg.Database.Path)
	}
	if cfg.Paths.LogDir != filepath.Join(tempDir, "data", "logs") {
		t.Fatalf("expected log dir under custom data dir, got %q", cfg.Paths.LogDir)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "gtreg.toml")
	if err := os.WriteFile(configPath, []byte("[resolution]\nauto_merge = 0.9\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(configPath); err == nil {
		t.Fatal("expected unknown key to be rejected")
	}
}

func TestPostgresDSNFromEnv(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "gtreg.toml")
	if err := os.WriteFile(configPath, []byte("[database]\ndriver = \"postgresql\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("GTREG_DATABASE_DSN", "")
	_, _, _, err := config.Load(configPath)
	if err == nil || !strings.Contains(err.Error(), "database.dsn") {
		t.Fatalf("expected dsn error without env, got %v", err)
	}

	t.Setenv("GTREG_DATABASE_DSN", "postgres://localhost/gtreg")
	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Database.Driver != config.DriverPostgres {
		t.Fatalf("expected driver alias normalized to postgres, got %q", cfg.Database.Driver)
	}
	if cfg.Database.DSN != "postgres://localhost/gtreg" {
		t.Fatalf("expected dsn from env, got %q", cfg.Database.DSN)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr string
	}{
		{
			name:   "defaults",
			mutate: func(c *config.Config) { c.Database.Path = "/tmp/x.db" },
		},
		{
			name: "review above auto merge",
			mutate: func(c *config.Config) {
				c.Database.Path = "/tmp/x.db"
				c.Resolution.ReviewThreshold = 0.97
			},
			wantErr: "review_threshold must be less than",
		},
		{
			name: "auto merge above one",
			mutate: func(c *config.Config) {
				c.Database.Path = "/tmp/x.db"
				c.Resolution.AutoMergeThreshold = 1.2
			},
			wantErr: "auto_merge_threshold",
		},
		{
			name: "unknown driver",
			mutate: func(c *config.Config) {
				c.Database.Driver = "mysql"
			},
			wantErr: "not supported",
		},
		{
			name: "bad level",
			mutate: func(c *config.Config) {
				c.Database.Path = "/tmp/x.db"
				c.Logging.Level = "loud"
			},
			wantErr: "logging.level",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestCreateSampleLoads(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("GTREG_DATABASE_DSN", "")
	path := filepath.Join(home, "cfg", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("sample config should load: %v", err)
	}
	if !exists {
		t.Fatal("expected sample file to exist")
	}
	if cfg.Database.Driver != config.DriverSQLite {
		t.Fatalf("unexpected driver %q", cfg.Database.Driver)
	}
}
