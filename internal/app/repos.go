package app

import (
	"gorm.io/gorm"

	repos "github.com/yungbote/mockview-backend/internal/data/repos/interview"
	"github.com/yungbote/mockview-backend/internal/platform/logger"
)

type Repos struct {
	FinalRecords repos.FinalRecordRepo
	Evaluations  repos.EvaluationResultRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	return Repos{
		FinalRecords: repos.NewFinalRecordRepo(db, log),
		Evaluations:  repos.NewEvaluationResultRepo(db, log),
	}
}
