package app

import (
	"gorm.io/gorm"

	"github.com/ordalabs/orda-backend/internal/logger"
	"github.com/ordalabs/orda-backend/internal/repos"
)

type Repos struct {
	Issue       repos.IssueRepo
	PipelineRun repos.PipelineRunRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Issue:       repos.NewIssueRepo(db, log),
		PipelineRun: repos.NewPipelineRunRepo(db, log),
	}
}
