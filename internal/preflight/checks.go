package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"

	"gtreg/internal/config"
	"gtreg/internal/store"
)

// CheckConfig validates thresholds, driver, and logging settings.
func CheckConfig(cfg *config.Config) Result {
	const name = "Configuration"
	if err := cfg.Validate(); err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("auto-merge %.2f, review %.2f, driver %s",
		cfg.Resolution.AutoMergeThreshold, cfg.Resolution.ReviewThreshold, cfg.Database.Driver)}
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckDatabaseFile verifies that a SQLite database file, if present, is a
// writable regular file, and otherwise that its directory allows creating it.
func CheckDatabaseFile(path string) Result {
	const name = "Database file"
	info, err := os.Stat(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		dir := CheckDirectoryAccess(name, filepath.Dir(path))
		if dir.Passed {
			dir.Detail = fmt.Sprintf("%s (will be created)", path)
		}
		return dir
	case err != nil:
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	case info.IsDir():
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckBindAddress verifies that the HTTP bind address is a host:port pair.
func CheckBindAddress(bind string) Result {
	const name = "API bind address"
	if _, _, err := net.SplitHostPort(bind); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%q (error: %v)", bind, err)}
	}
	return Result{Name: name, Passed: true, Detail: bind}
}

// CheckDatabase opens the registry store, which creates the schema when
// missing, and verifies it answers queries.
func CheckDatabase(ctx context.Context, cfg *config.Config) Result {
	const name = "Registry database"
	st, err := store.Open(ctx, cfg)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("open failed (%v)", err)}
	}
	defer st.Close()

	health, err := st.CheckHealth(ctx)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s unreachable (%v)", health.Driver, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s schema v%d", health.Driver, health.SchemaVersion)}
}
