package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ordalabs/orda-backend/internal/logger"
	"github.com/ordalabs/orda-backend/internal/services"
)

type NewsHandler struct {
	log  *logger.Logger
	news *services.NewsService
}

func NewNewsHandler(log *logger.Logger, news *services.NewsService) *NewsHandler {
	return &NewsHandler{
		log:  log.With("handler", "NewsHandler"),
		news: news,
	}
}

// GET /api/news/latest
func (h *NewsHandler) GetLatest(c *gin.Context) {
	issues, err := h.news.GetLatest(c.Request.Context())
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "news_fetch_failed", err)
		return
	}
	RespondOK(c, gin.H{"issues": issues, "count": len(issues)})
}

// GET /api/news/:id
func (h *NewsHandler) GetByID(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_issue_id", err)
		return
	}
	issue, err := h.news.GetByID(c.Request.Context(), uint(id))
	if err != nil {
		RespondError(c, http.StatusNotFound, "issue_not_found", err)
		return
	}
	RespondOK(c, gin.H{"issue": issue})
}
