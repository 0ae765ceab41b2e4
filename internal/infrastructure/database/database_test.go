package database_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/atlasvoyages/atlas-core/internal/infrastructure/database"
	_ "github.com/atlasvoyages/atlas-core/migrations" // registers embedded migrations
)

func openTestDB(t *testing.T) *database.DB {
	t.Helper()

	db, err := database.Open(database.Config{
		Path:        filepath.Join(t.TempDir(), "atlascore.db"),
		WALMode:     true,
		BusyTimeout: 5,
	})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestOpenAndHealthCheck(t *testing.T) {
	db := openTestDB(t)

	if err := db.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck() error = %v", err)
	}
}

func TestMigrate(t *testing.T) {
	db := openTestDB(t)

	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	// The full schema should now exist
	for _, table := range []string{"accounts", "account_roles", "audit_logs"} {
		var name string
		err := db.QueryRowContext(context.Background(),
			"SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %s missing after migration: %v", table, err)
		}
	}

	applied, pending, err := db.GetMigrationStatus(context.Background())
	if err != nil {
		t.Fatalf("GetMigrationStatus() error = %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("%d migrations still pending after Migrate()", len(pending))
	}
	if len(applied) == 0 {
		t.Error("no applied migrations recorded")
	}
}

func TestMigrate_Idempotent(t *testing.T) {
	db := openTestDB(t)

	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("first Migrate() error = %v", err)
	}
	if err := db.Migrate(context.Background()); err != nil {
		t.Errorf("second Migrate() error = %v, want no-op", err)
	}
}

func TestMigrateDown(t *testing.T) {
	db := openTestDB(t)

	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	if err := db.MigrateDown(context.Background()); err != nil {
		t.Fatalf("MigrateDown() error = %v", err)
	}

	// The newest migration's table should be gone
	var name string
	err := db.QueryRowContext(context.Background(),
		"SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'audit_logs'",
	).Scan(&name)
	if err == nil {
		t.Error("audit_logs should be dropped by the down migration")
	}
}
