package repos

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/ordalabs/orda-backend/internal/logger"
	"github.com/ordalabs/orda-backend/internal/types"
)

type PipelineRunRepo interface {
	Create(ctx context.Context, tx *gorm.DB, run *types.PipelineRun) (*types.PipelineRun, error)
	Complete(ctx context.Context, tx *gorm.DB, runID string, status string, issueCount int, avgConfidence float64, errorNote string) error
	GetRecent(ctx context.Context, tx *gorm.DB, limit int) ([]*types.PipelineRun, error)
}

type pipelineRunRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPipelineRunRepo(db *gorm.DB, baseLog *logger.Logger) PipelineRunRepo {
	repoLog := baseLog.With("repo", "PipelineRunRepo")
	return &pipelineRunRepo{db: db, log: repoLog}
}

func (r *pipelineRunRepo) Create(ctx context.Context, tx *gorm.DB, run *types.PipelineRun) (*types.PipelineRun, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(ctx).Create(run).Error; err != nil {
		return nil, err
	}
	return run, nil
}

func (r *pipelineRunRepo) Complete(ctx context.Context, tx *gorm.DB, runID string, status string, issueCount int, avgConfidence float64, errorNote string) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	now := time.Now()
	return transaction.WithContext(ctx).
		Model(&types.PipelineRun{}).
		Where("run_id = ?", runID).
		Updates(map[string]any{
			"status":             status,
			"completed_at":       &now,
			"issue_count":        issueCount,
			"average_confidence": avgConfidence,
			"error_note":         errorNote,
		}).Error
}

func (r *pipelineRunRepo) GetRecent(ctx context.Context, tx *gorm.DB, limit int) ([]*types.PipelineRun, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if limit <= 0 {
		limit = 20
	}
	var results []*types.PipelineRun
	if err := transaction.WithContext(ctx).
		Order("started_at DESC").
		Limit(limit).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
