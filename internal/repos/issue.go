package repos

import (
	"context"

	"gorm.io/gorm"

	"github.com/ordalabs/orda-backend/internal/logger"
	"github.com/ordalabs/orda-backend/internal/types"
)

type IssueRepo interface {
	// ReplaceLatest clears the previous run's issues and stores the new batch
	// in one transaction. Related rows ride along via gorm associations.
	ReplaceLatest(ctx context.Context, tx *gorm.DB, issues []*types.NewsIssue) error
	GetLatest(ctx context.Context, tx *gorm.DB) ([]*types.NewsIssue, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*types.NewsIssue, error)
}

type issueRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewIssueRepo(db *gorm.DB, baseLog *logger.Logger) IssueRepo {
	repoLog := baseLog.With("repo", "IssueRepo")
	return &issueRepo{db: db, log: repoLog}
}

func (r *issueRepo) ReplaceLatest(ctx context.Context, tx *gorm.DB, issues []*types.NewsIssue) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Transaction(func(t *gorm.DB) error {
		if err := t.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&types.RelatedIndustry{}).Error; err != nil {
			return err
		}
		if err := t.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&types.RelatedPastIssue{}).Error; err != nil {
			return err
		}
		if err := t.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&types.NewsIssue{}).Error; err != nil {
			return err
		}
		if len(issues) == 0 {
			return nil
		}
		return t.Create(issues).Error
	})
}

func (r *issueRepo) GetLatest(ctx context.Context, tx *gorm.DB) ([]*types.NewsIssue, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.NewsIssue
	if err := transaction.WithContext(ctx).
		Preload("RelatedIndustries").
		Preload("RelatedPastIssues").
		Order("ranking ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *issueRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*types.NewsIssue, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var result types.NewsIssue
	if err := transaction.WithContext(ctx).
		Preload("RelatedIndustries").
		Preload("RelatedPastIssues").
		First(&result, id).Error; err != nil {
		return nil, err
	}
	return &result, nil
}
