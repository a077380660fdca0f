package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/ordalabs/orda-backend/internal/logger"
	"github.com/ordalabs/orda-backend/internal/platform/envutil"
	"github.com/ordalabs/orda-backend/internal/types"
)

// IssueCache keeps the latest enriched issue batch hot for the read API.
// All methods are best-effort; the DB remains the source of truth.
type IssueCache interface {
	SetLatest(ctx context.Context, issues []*types.NewsIssue) error
	GetLatest(ctx context.Context) ([]*types.NewsIssue, error)
	Close() error
}

type issueCache struct {
	log *logger.Logger
	rdb *goredis.Client
	key string
	ttl time.Duration
}

func NewIssueCache(log *logger.Logger) (IssueCache, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}
	key := envutil.String("REDIS_ISSUE_KEY", "orda:news:latest")
	ttlMinutes := envutil.Int("REDIS_ISSUE_TTL_MINUTES", 120)

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &issueCache{
		log: log.With("service", "RedisIssueCache"),
		rdb: rdb,
		key: key,
		ttl: time.Duration(ttlMinutes) * time.Minute,
	}, nil
}

func (c *issueCache) SetLatest(ctx context.Context, issues []*types.NewsIssue) error {
	if c == nil || c.rdb == nil {
		return fmt.Errorf("issue cache not initialized")
	}
	raw, err := json.Marshal(issues)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, c.key, raw, c.ttl).Err()
}

func (c *issueCache) GetLatest(ctx context.Context) ([]*types.NewsIssue, error) {
	if c == nil || c.rdb == nil {
		return nil, fmt.Errorf("issue cache not initialized")
	}
	raw, err := c.rdb.Get(ctx, c.key).Bytes()
	if err != nil {
		if err == goredis.Nil {
			return nil, nil
		}
		return nil, err
	}
	var issues []*types.NewsIssue
	if err := json.Unmarshal(raw, &issues); err != nil {
		return nil, err
	}
	return issues, nil
}

func (c *issueCache) Close() error {
	if c == nil || c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}
