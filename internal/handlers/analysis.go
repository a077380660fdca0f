package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ordalabs/orda-backend/internal/logger"
	"github.com/ordalabs/orda-backend/internal/rag"
)

type AnalysisHandler struct {
	log      *logger.Logger
	analyzer *rag.Analyzer
}

func NewAnalysisHandler(log *logger.Logger, analyzer *rag.Analyzer) *AnalysisHandler {
	return &AnalysisHandler{
		log:      log.With("handler", "AnalysisHandler"),
		analyzer: analyzer,
	}
}

type analyzeRequest struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	Category string `json:"category"`
}

// POST /api/analysis
// Ad-hoc enrichment of a single news text, bypassing the stored batch.
func (h *AnalysisHandler) Analyze(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request_body", err)
		return
	}
	if strings.TrimSpace(req.Title) == "" && strings.TrimSpace(req.Content) == "" {
		RespondError(c, http.StatusBadRequest, "empty_news_text", errors.New("title or content required"))
		return
	}

	result := h.analyzer.AnalyzeIssue(c.Request.Context(), rag.IssueInput{
		Title:       strings.TrimSpace(req.Title),
		Content:     strings.TrimSpace(req.Content),
		Category:    strings.TrimSpace(req.Category),
		ExtractedAt: time.Now(),
	})
	RespondOK(c, result)
}
