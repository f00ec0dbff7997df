package db

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/yungbote/prompt-battle/internal/platform/logger"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Options struct {
	Driver      string
	SQLitePath  string
	PostgresDSN string
}

// Open connects to the configured backing table store.
func Open(logg *logger.Logger, opts Options) (*gorm.DB, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Driver)) {
	case "", DriverSQLite:
		svc, err := NewSQLiteService(logg, opts.SQLitePath)
		if err != nil {
			return nil, err
		}
		return svc.DB(), nil
	case DriverPostgres:
		svc, err := NewPostgresService(logg, opts.PostgresDSN)
		if err != nil {
			return nil, err
		}
		return svc.DB(), nil
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", opts.Driver)
	}
}

func gormConfig() *gorm.Config {
	gormLog := gormLogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormLogger.Config{
			SlowThreshold:             1 * time.Second,
			LogLevel:                  gormLogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
	return &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gormLog,
	}
}
