package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ordalabs/orda-backend/internal/logger"
	"github.com/ordalabs/orda-backend/internal/services"
)

type DatabaseHandler struct {
	log     *logger.Logger
	vectors *services.VectorService
}

func NewDatabaseHandler(log *logger.Logger, vectors *services.VectorService) *DatabaseHandler {
	return &DatabaseHandler{
		log:     log.With("handler", "DatabaseHandler"),
		vectors: vectors,
	}
}

type upsertVectorsRequest struct {
	Namespace string                 `json:"namespace"`
	Entries   []services.VectorEntry `json:"entries"`
}

// POST /api/database/vectors
// Seeds or refreshes knowledge-base entries in one index namespace.
func (h *DatabaseHandler) UpsertVectors(c *gin.Context) {
	var req upsertVectorsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request_body", err)
		return
	}
	if len(req.Entries) == 0 {
		RespondError(c, http.StatusBadRequest, "empty_entries", errors.New("entries required"))
		return
	}

	count, err := h.vectors.UpsertEntries(c.Request.Context(), req.Namespace, req.Entries)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "vector_upsert_failed", err)
		return
	}
	RespondOK(c, gin.H{"namespace": req.Namespace, "upserted": count})
}
