package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ordalabs/orda-backend/internal/logger"
	"github.com/ordalabs/orda-backend/internal/services"
)

type PipelineHandler struct {
	log      *logger.Logger
	pipeline *services.PipelineService
}

func NewPipelineHandler(log *logger.Logger, p *services.PipelineService) *PipelineHandler {
	return &PipelineHandler{
		log:      log.With("handler", "PipelineHandler"),
		pipeline: p,
	}
}

// POST /api/pipeline/run
// Acquires the run slot synchronously, so a 202 always means this trigger's
// run started; losing the slot race yields a 409.
func (h *PipelineHandler) Run(c *gin.Context) {
	if err := h.pipeline.RunAsync(context.Background()); err != nil {
		RespondError(c, http.StatusConflict, "pipeline_busy", err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "started"})
}

// GET /api/pipeline/runs
func (h *PipelineHandler) GetRuns(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	runs, err := h.pipeline.RecentRuns(c.Request.Context(), limit)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "runs_fetch_failed", err)
		return
	}
	RespondOK(c, gin.H{"runs": runs, "running": h.pipeline.IsRunning()})
}
