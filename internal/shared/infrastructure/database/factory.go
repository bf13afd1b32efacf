package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Config selects and configures a backend.
type Config struct {
	// Driver is detected from URL when empty or "auto".
	Driver Driver

	// URL is the Postgres connection string.
	URL string

	// SQLitePath is the database file used by the SQLite driver.
	// Defaults to ~/.dayplanner/data.db.
	SQLitePath string

	// MaxConns caps the Postgres pool.
	MaxConns int
}

// Resolved returns the driver Config will connect with.
func (c Config) Resolved() Driver {
	if c.Driver == "" || c.Driver == "auto" {
		return DetectDriver(c.URL)
	}
	return c.Driver
}

// NewConnection opens a connection with the registered driver for cfg.
func NewConnection(ctx context.Context, cfg Config) (Connection, error) {
	driver := cfg.Resolved()
	open, ok := openers[driver]
	if !ok {
		if driver.IsValid() {
			return nil, fmt.Errorf("database driver %s not registered", driver)
		}
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}
	return open(ctx, cfg)
}

// DefaultSQLitePath returns ~/.dayplanner/data.db, or a relative path when
// the home directory is unknown.
func DefaultSQLitePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}
	return filepath.Join(homeDir, ".dayplanner", "data.db")
}

// DefaultLocalConfig is the zero-setup SQLite configuration.
func DefaultLocalConfig() Config {
	return Config{
		Driver:     DriverSQLite,
		SQLitePath: DefaultSQLitePath(),
	}
}

// EnsureDirectory creates the parent directory of path.
func EnsureDirectory(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}

// Opener opens a Connection for one driver.
type Opener func(ctx context.Context, cfg Config) (Connection, error)

// Driver packages register themselves in init so the factory does not
// import them.
var openers = map[Driver]Opener{}

func RegisterPostgresDriver(fn Opener) {
	openers[DriverPostgres] = fn
}

func RegisterSQLiteDriver(fn Opener) {
	openers[DriverSQLite] = fn
}
