package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/prompt-battle/internal/data/repos"
	"github.com/yungbote/prompt-battle/internal/platform/logger"
)

type Repos struct {
	Generations repos.GenerationRecordRepo
	Grades      repos.GradeRecordRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Generations: repos.NewGenerationRecordRepo(db, log),
		Grades:      repos.NewGradeRecordRepo(db, log),
	}
}
