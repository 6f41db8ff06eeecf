package database

import (
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
)

func testConfig(t *testing.T) *ConnectionConfig {
	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)

	config := DefaultConnectionConfig()
	config.DSN = filepath.Join(t.TempDir(), "test.db")
	config.Logger = logger
	return config
}

func TestOpenRunsMigrations(t *testing.T) {
	db, err := Open(testConfig(t))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer db.Close()

	var count int
	err = db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='users'`).Scan(&count)
	if err != nil {
		t.Fatalf("Failed to query schema: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected users table to exist")
	}

	if err := HealthCheck(db); err != nil {
		t.Errorf("HealthCheck failed: %v", err)
	}
}

func TestMigrationStatusAndRollback(t *testing.T) {
	config := testConfig(t)
	db, err := Open(config)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer db.Close()

	manager := NewMigrationManager(db, config.Logger)

	info, err := manager.GetMigrationStatus()
	if err != nil {
		t.Fatalf("GetMigrationStatus failed: %v", err)
	}
	if !info.Applied || info.Version != 1 {
		t.Errorf("Expected version 1 applied, got version %d applied=%v", info.Version, info.Applied)
	}

	if err := manager.RollbackMigration(); err != nil {
		t.Fatalf("RollbackMigration failed: %v", err)
	}

	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='users'`).Scan(&count); err != nil {
		t.Fatalf("Failed to query schema: %v", err)
	}
	if count != 0 {
		t.Errorf("Expected users table to be dropped after rollback")
	}

	if err := manager.RollbackMigration(); err == nil {
		t.Error("Expected error when nothing is left to roll back")
	}

	if err := manager.RunMigrations(); err != nil {
		t.Fatalf("RunMigrations failed: %v", err)
	}
}
