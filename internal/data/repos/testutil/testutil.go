package testutil

import (
	"path/filepath"
	"testing"

	"gorm.io/gorm"

	"github.com/yungbote/prompt-battle/internal/data/db"
	"github.com/yungbote/prompt-battle/internal/platform/logger"
)

func Logger(tb testing.TB) *logger.Logger {
	tb.Helper()
	return logger.NewNop()
}

// DB opens a migrated SQLite database that lives in the test's temp dir.
func DB(tb testing.TB) *gorm.DB {
	tb.Helper()
	gdb, err := db.Open(Logger(tb), db.Options{
		Driver:     db.DriverSQLite,
		SQLitePath: filepath.Join(tb.TempDir(), "test.db"),
	})
	if err != nil {
		tb.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrateAll(gdb); err != nil {
		tb.Fatalf("migrate test db: %v", err)
	}
	tb.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return gdb
}

func Tx(tb testing.TB, gdb *gorm.DB) *gorm.DB {
	tb.Helper()
	tx := gdb.Begin()
	if tx.Error != nil {
		tb.Fatalf("begin tx: %v", tx.Error)
	}
	tb.Cleanup(func() {
		_ = tx.Rollback().Error
	})
	return tx
}
