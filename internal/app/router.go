package app

import (
	"github.com/gin-gonic/gin"

	"github.com/ordalabs/orda-backend/internal/server"
)

func wireRouter(h Handlers) *gin.Engine {
	return server.NewRouter(server.RouterConfig{
		NewsHandler:     h.News,
		AnalysisHandler: h.Analysis,
		PipelineHandler: h.Pipeline,
		DatabaseHandler: h.Database,
	})
}
