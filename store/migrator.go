package store

import (
	"context"
	"embed"
	"fmt"
	"log/slog"

	"github.com/pkg/errors"

	"github.com/pathlight/pathlight/internal/version"
)

// Migration System Overview:
//
// Fresh installations apply migration/{driver}/LATEST.sql in one shot and
// record the schema version in system_setting. There are no legacy
// installations to upgrade incrementally, so the migrator only handles the
// fresh-install path and verifies the recorded version afterwards.

//go:embed migration
var migrationFS embed.FS

const (
	// LatestSchemaFileName is the name of the latest schema file.
	LatestSchemaFileName = "LATEST.sql"

	schemaVersionSettingName = "schema_version"
)

// Migrate initializes the database schema if needed.
func (s *Store) Migrate(ctx context.Context) error {
	initialized, err := s.driver.IsInitialized(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to check database initialization")
	}

	currentVersion := version.GetCurrentVersion(s.profile.Mode)
	if !initialized {
		filePath := fmt.Sprintf("migration/%s/%s", s.profile.Driver, LatestSchemaFileName)
		buf, err := migrationFS.ReadFile(filePath)
		if err != nil {
			return errors.Wrapf(err, "failed to read latest schema file %q", filePath)
		}
		if _, err := s.driver.GetDB().ExecContext(ctx, string(buf)); err != nil {
			return errors.Wrap(err, "failed to apply latest schema")
		}
		if err := s.setSchemaVersion(ctx, currentVersion); err != nil {
			return errors.Wrap(err, "failed to record schema version")
		}
		slog.Info("database initialized", slog.String("schemaVersion", currentVersion))
		return nil
	}

	schemaVersion, err := s.getSchemaVersion(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to read schema version")
	}
	if version.IsVersionGreaterThan(schemaVersion, currentVersion) {
		return errors.Errorf("schema version %s is newer than server version %s", schemaVersion, currentVersion)
	}
	return nil
}

func (s *Store) getSchemaVersion(ctx context.Context) (string, error) {
	var value string
	row := s.driver.GetDB().QueryRowContext(ctx,
		"SELECT value FROM system_setting WHERE name = $1", schemaVersionSettingName)
	if s.profile.Driver == "sqlite" {
		row = s.driver.GetDB().QueryRowContext(ctx,
			"SELECT value FROM system_setting WHERE name = ?", schemaVersionSettingName)
	}
	if err := row.Scan(&value); err != nil {
		return "", err
	}
	return value, nil
}

func (s *Store) setSchemaVersion(ctx context.Context, schemaVersion string) error {
	stmt := `INSERT INTO system_setting (name, value) VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET value = EXCLUDED.value`
	if s.profile.Driver == "sqlite" {
		stmt = `INSERT INTO system_setting (name, value) VALUES (?, ?)
		ON CONFLICT (name) DO UPDATE SET value = EXCLUDED.value`
	}
	_, err := s.driver.GetDB().ExecContext(ctx, stmt, schemaVersionSettingName, schemaVersion)
	return err
}
