package models

import (
	"os"
	"path/filepath"
	"testing"
)

func TestEnsureSQLiteDirCreatesParent(t *testing.T) {
	tmpDir := t.TempDir()
	dsn := filepath.Join(tmpDir, "nested", "cart.db") + "?_pragma=busy_timeout(5000)"
	if err := ensureSQLiteDir(dsn); err != nil {
		t.Fatalf("ensure sqlite dir failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(tmpDir, "nested")); err != nil {
		t.Fatalf("expected sqlite dir to be created: %v", err)
	}
}

func TestEnsureSQLiteDirSkipsMemory(t *testing.T) {
	if err := ensureSQLiteDir("file::memory:?cache=shared"); err != nil {
		t.Fatalf("memory dsn should be skipped: %v", err)
	}
}

func TestOpenDBRejectsUnknownDriver(t *testing.T) {
	if _, err := OpenDB(DBOptions{Driver: "oracle", DSN: "x"}); err == nil {
		t.Fatalf("expected unsupported driver error")
	}
}

func TestMigrateSchemaSQLite(t *testing.T) {
	db, err := OpenDB(DBOptions{Driver: "sqlite", DSN: "file::memory:", Pool: DBPoolConfig{MaxOpenConns: 1, MaxIdleConns: 1}})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := MigrateSchema(db); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	if !db.Migrator().HasTable(&CartSlot{}) {
		t.Fatalf("cart_slots table should exist")
	}
	if !db.Migrator().HasTable(&CheckoutHandoff{}) {
		t.Fatalf("checkout_handoffs table should exist")
	}
}
