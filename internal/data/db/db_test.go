package db

import (
	"path/filepath"
	"testing"

	types "github.com/yungbote/prompt-battle/internal/domain"
	"github.com/yungbote/prompt-battle/internal/platform/logger"
)

func TestOpenSQLiteAndMigrate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "battle.db")
	gdb, err := Open(logger.NewNop(), Options{Driver: DriverSQLite, SQLitePath: path})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := AutoMigrateAll(gdb); err != nil {
		t.Fatalf("AutoMigrateAll: %v", err)
	}
	if !gdb.Migrator().HasTable(&types.GenerationRecord{}) {
		t.Fatalf("generation_record table missing")
	}
	if !gdb.Migrator().HasTable(&types.GradeRecord{}) {
		t.Fatalf("grade_record table missing")
	}
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	if _, err := Open(logger.NewNop(), Options{Driver: "mysql"}); err == nil {
		t.Fatalf("expected error for unknown driver")
	}
	if _, err := Open(logger.NewNop(), Options{Driver: DriverPostgres}); err == nil {
		t.Fatalf("expected error for missing postgres dsn")
	}
}
