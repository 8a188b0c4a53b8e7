package sqlite

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/pkg/errors"

	// Import the SQLite driver.
	_ "modernc.org/sqlite"

	"github.com/pathlight/pathlight/internal/profile"
	"github.com/pathlight/pathlight/store"
)

// SQLite is the default driver: zero-setup local storage for a single
// student. PostgreSQL remains available for hosted deployments.

type DB struct {
	db      *sql.DB
	profile *profile.Profile
}

// NewDB opens a database using the DSN from the profile.
func NewDB(profile *profile.Profile) (store.Driver, error) {
	if profile == nil {
		return nil, errors.New("profile is nil")
	}

	// Connect to the database with some sane settings:
	// - Single connection: sqlite serializes writes anyway.
	// - No shared cache: prevents cross-connection locking surprises.
	db, err := sql.Open("sqlite", profile.DSN+"?_pragma=foreign_keys(0)&_pragma=busy_timeout(10000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open db with dsn: %s", profile.DSN)
	}
	db.SetMaxOpenConns(1)

	driver := DB{db: db, profile: profile}
	return &driver, nil
}

func (d *DB) GetDB() *sql.DB {
	return d.db
}

func (d *DB) Close() error {
	return d.db.Close()
}

func (d *DB) IsInitialized(ctx context.Context) (bool, error) {
	var count int
	if err := d.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'system_setting'",
	).Scan(&count); err != nil {
		slog.Error("failed to check initialization state", slog.String("error", err.Error()))
		return false, err
	}
	return count > 0, nil
}
