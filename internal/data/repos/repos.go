package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/prompt-battle/internal/data/repos/generation"
	"github.com/yungbote/prompt-battle/internal/platform/logger"
)

type GenerationRecordRepo = generation.GenerationRecordRepo
type GradeRecordRepo = generation.GradeRecordRepo

func NewGenerationRecordRepo(db *gorm.DB, log *logger.Logger) GenerationRecordRepo {
	return generation.NewGenerationRecordRepo(db, log)
}

func NewGradeRecordRepo(db *gorm.DB, log *logger.Logger) GradeRecordRepo {
	return generation.NewGradeRecordRepo(db, log)
}
