// internal/common/database/sql.go
package database

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	"github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"music-store-agent/internal/common/config"
	commonhttp "music-store-agent/internal/common/http"
)

// SQLClient wraps the catalog database handle together with the driver it
// was opened with, so query builders can pick the right placeholder style.
type SQLClient struct {
	DB     *sql.DB
	Driver string
}

// NewSQL opens the configured relational store. For sqlite the handle is
// pinned to a single connection because every new connection to ":memory:"
// is a fresh, empty database.
func NewSQL(cfg config.SQLConfig) (*SQLClient, error) {
	db, err := sql.Open(cfg.Driver, cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", cfg.Driver, err)
	}

	switch cfg.Driver {
	case config.DriverSQLite:
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)
		db.SetConnMaxIdleTime(0)
	default:
		db.SetMaxOpenConns(cfg.MaxConnections)
		db.SetMaxIdleConns(cfg.MaxIdle)
		db.SetConnMaxLifetime(5 * time.Minute)
		db.SetConnMaxIdleTime(5 * time.Minute)
	}

	return &SQLClient{DB: db, Driver: cfg.Driver}, nil
}

// NewSQLFromDB wraps an existing handle, mainly for tests.
func NewSQLFromDB(db *sql.DB, driver string) *SQLClient {
	return &SQLClient{DB: db, Driver: driver}
}

// Placeholder returns the bind-parameter style of the underlying driver.
func (c *SQLClient) Placeholder() squirrel.PlaceholderFormat {
	if c.Driver == config.DriverPostgres {
		return squirrel.Dollar
	}
	return squirrel.Question
}

// Ping tests the database connection
func (c *SQLClient) Ping(ctx context.Context) error {
	return c.DB.PingContext(ctx)
}

// Close closes the database connection
func (c *SQLClient) Close() error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}

// LoadScript executes a schema/data script against the database.
func (c *SQLClient) LoadScript(ctx context.Context, script []byte) error {
	script = bytes.TrimPrefix(script, []byte("\xef\xbb\xbf"))
	if len(bytes.TrimSpace(script)) == 0 {
		return fmt.Errorf("empty sql script")
	}
	if _, err := c.DB.ExecContext(ctx, string(script)); err != nil {
		return fmt.Errorf("execute sql script: %w", err)
	}
	return nil
}

// Seed loads the Chinook script when the configured driver needs it. A local
// script path wins over the download URL.
func (c *SQLClient) Seed(ctx context.Context, cfg config.SQLConfig) error {
	if cfg.Driver != config.DriverSQLite {
		return nil
	}

	var (
		script []byte
		err    error
	)
	switch {
	case cfg.ScriptPath != "":
		script, err = os.ReadFile(cfg.ScriptPath)
		if err != nil {
			return fmt.Errorf("read sql script %s: %w", cfg.ScriptPath, err)
		}
	case cfg.ScriptURL != "":
		client := commonhttp.NewClient(config.GetDuration(cfg.ScriptTimeout))
		script, err = client.Fetch(ctx, cfg.ScriptURL)
		if err != nil {
			return fmt.Errorf("download sql script: %w", err)
		}
	default:
		return fmt.Errorf("sqlite requires database.sql.script_path or database.sql.script_url")
	}

	return c.LoadScript(ctx, script)
}
