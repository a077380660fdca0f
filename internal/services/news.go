package services

import (
	"context"

	"github.com/ordalabs/orda-backend/internal/clients/redis"
	"github.com/ordalabs/orda-backend/internal/logger"
	"github.com/ordalabs/orda-backend/internal/repos"
	"github.com/ordalabs/orda-backend/internal/types"
)

// NewsService serves the latest enriched issue batch, cache first with a DB
// fallback.
type NewsService struct {
	log    *logger.Logger
	issues repos.IssueRepo
	cache  redis.IssueCache
}

func NewNewsService(log *logger.Logger, issues repos.IssueRepo, cache redis.IssueCache) *NewsService {
	return &NewsService{
		log:    log.With("service", "NewsService"),
		issues: issues,
		cache:  cache,
	}
}

func (s *NewsService) GetLatest(ctx context.Context) ([]*types.NewsIssue, error) {
	if s.cache != nil {
		cached, err := s.cache.GetLatest(ctx)
		if err != nil {
			s.log.Warn("Issue cache read failed; falling back to database", "error", err.Error())
		} else if cached != nil {
			return cached, nil
		}
	}

	issues, err := s.issues.GetLatest(ctx, nil)
	if err != nil {
		return nil, err
	}

	// Warm the cache so the next read skips the database.
	if s.cache != nil && len(issues) > 0 {
		if err := s.cache.SetLatest(ctx, issues); err != nil {
			s.log.Warn("Issue cache warm failed", "error", err.Error())
		}
	}
	return issues, nil
}

func (s *NewsService) GetByID(ctx context.Context, id uint) (*types.NewsIssue, error) {
	return s.issues.GetByID(ctx, nil, id)
}
