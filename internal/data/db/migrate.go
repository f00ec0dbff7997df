package db

import (
	"gorm.io/gorm"

	types "github.com/yungbote/prompt-battle/internal/domain"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		&types.GenerationRecord{},
		&types.GradeRecord{},
	)
}
