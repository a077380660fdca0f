package app

import (
	"github.com/ordalabs/orda-backend/internal/handlers"
	"github.com/ordalabs/orda-backend/internal/logger"
)

type Handlers struct {
	News     *handlers.NewsHandler
	Analysis *handlers.AnalysisHandler
	Pipeline *handlers.PipelineHandler
	Database *handlers.DatabaseHandler
}

func wireHandlers(log *logger.Logger, s Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		News:     handlers.NewNewsHandler(log, s.News),
		Analysis: handlers.NewAnalysisHandler(log, s.Analyzer),
		Pipeline: handlers.NewPipelineHandler(log, s.Pipeline),
		Database: handlers.NewDatabaseHandler(log, s.Vectors),
	}
}
