// Package redis provides the Redis-backed read cache for run summaries and
// latest per-drive predictions. The database is the source of truth; cache
// loss is never fatal.
package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/CSingh26/ReliScore/internal/config"
	"github.com/CSingh26/ReliScore/internal/domain/models"
	"github.com/CSingh26/ReliScore/pkg/logger"
)

const (
	keyLatestRun       = "reliscore:run:latest"
	keyDrivePrediction = "reliscore:prediction:"
)

// CacheManager caches the latest run summary and per-drive predictions for
// the read endpoints.
type CacheManager interface {
	SetLatestRun(ctx context.Context, summary *models.RunSummary) error
	GetLatestRun(ctx context.Context) (*models.RunSummary, error)
	SetDrivePredictions(ctx context.Context, batch []models.Prediction) error
	GetDrivePrediction(ctx context.Context, driveID string) (*models.Prediction, error)
	Ping(ctx context.Context) error
}

type cacheManagerImpl struct {
	client *redis.Client
	ttl    time.Duration
	log    logger.Logger
}

// NewCacheManager creates a cache manager over a fresh client for the
// configured address.
func NewCacheManager(cfg *config.RedisConfig, log logger.Logger) CacheManager {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return NewCacheManagerWithClient(client, time.Duration(cfg.TTL)*time.Second, log)
}

// NewCacheManagerWithClient wraps an existing client. Used in tests with
// miniredis.
func NewCacheManagerWithClient(client *redis.Client, ttl time.Duration, log logger.Logger) CacheManager {
	return &cacheManagerImpl{client: client, ttl: ttl, log: log.WithComponent("cache_manager")}
}

func (c *cacheManagerImpl) SetLatestRun(ctx context.Context, summary *models.RunSummary) error {
	payload, err := json.Marshal(summary)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, keyLatestRun, payload, c.ttl).Err()
}

func (c *cacheManagerImpl) GetLatestRun(ctx context.Context) (*models.RunSummary, error) {
	payload, err := c.client.Get(ctx, keyLatestRun).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}
	var summary models.RunSummary
	if err := json.Unmarshal(payload, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

func (c *cacheManagerImpl) SetDrivePredictions(ctx context.Context, batch []models.Prediction) error {
	pipe := c.client.Pipeline()
	for i := range batch {
		payload, err := json.Marshal(&batch[i])
		if err != nil {
			return err
		}
		pipe.Set(ctx, keyDrivePrediction+batch[i].DriveID, payload, c.ttl)
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (c *cacheManagerImpl) GetDrivePrediction(ctx context.Context, driveID string) (*models.Prediction, error) {
	payload, err := c.client.Get(ctx, keyDrivePrediction+driveID).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}
	var prediction models.Prediction
	if err := json.Unmarshal(payload, &prediction); err != nil {
		return nil, err
	}
	return &prediction, nil
}

func (c *cacheManagerImpl) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
