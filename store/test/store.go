// Package test provides a real sqlite-backed store for integration tests.
// The modernc driver is pure Go, so these tests run anywhere without cgo or
// external services.
package test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/pathlight/pathlight/internal/profile"
	"github.com/pathlight/pathlight/internal/version"
	"github.com/pathlight/pathlight/store"
	"github.com/pathlight/pathlight/store/db/sqlite"
)

// NewTestingStore opens a fresh migrated sqlite store in a temp directory.
func NewTestingStore(ctx context.Context, t *testing.T) *store.Store {
	dir := t.TempDir()
	testProfile := &profile.Profile{
		Mode:    "prod",
		Driver:  "sqlite",
		Data:    dir,
		DSN:     filepath.Join(dir, "pathlight_test.db"),
		Version: version.GetCurrentVersion("prod"),
	}

	driver, err := sqlite.NewDB(testProfile)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	ts := store.New(driver, testProfile)
	if err := ts.Migrate(ctx); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	t.Cleanup(func() {
		if err := ts.Close(); err != nil {
			t.Logf("failed to close test store: %v", err)
		}
	})
	return ts
}
