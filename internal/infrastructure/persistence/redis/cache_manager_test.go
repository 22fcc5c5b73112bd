package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CSingh26/ReliScore/internal/domain/models"
	"github.com/CSingh26/ReliScore/pkg/constants"
	"github.com/CSingh26/ReliScore/pkg/logger"
)

func newTestCache(t *testing.T) (CacheManager, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCacheManagerWithClient(client, time.Minute, logger.NewNoopLogger()), mr
}

func TestCacheManager_LatestRunRoundTrip(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	missing, err := cache.GetLatestRun(ctx)
	require.NoError(t, err)
	assert.Nil(t, missing)

	summary := &models.RunSummary{
		RunID:         "run-42",
		Status:        constants.RunStatusCompleted,
		Day:           "2024-03-15",
		DeviceCount:   25,
		ScoredCount:   25,
		ModelVersion:  "gbm-2024-02",
		ReconcileMode: constants.ModeModel,
		Tiers:         models.TierCounts{Low: 20, Med: 4, High: 1},
	}
	require.NoError(t, cache.SetLatestRun(ctx, summary))

	got, err := cache.GetLatestRun(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, summary, got)
}

func TestCacheManager_DrivePredictions(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	day := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	batch := []models.Prediction{
		{DriveID: "d1", Day: day, RiskScore: 0.81, RiskBucket: constants.BucketHigh, ModelVersion: "v1", ScoredAt: day.Add(6 * time.Hour)},
		{DriveID: "d2", Day: day, RiskScore: 0.05, RiskBucket: constants.BucketLow, ModelVersion: "v1", ScoredAt: day.Add(6 * time.Hour)},
	}
	require.NoError(t, cache.SetDrivePredictions(ctx, batch))

	got, err := cache.GetDrivePrediction(ctx, "d1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 0.81, got.RiskScore)
	assert.Equal(t, constants.BucketHigh, got.RiskBucket)
	assert.True(t, got.Day.Equal(day))

	missing, err := cache.GetDrivePrediction(ctx, "d3")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestCacheManager_EntriesExpire(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.SetLatestRun(ctx, &models.RunSummary{RunID: "run-1"}))
	mr.FastForward(2 * time.Minute)

	got, err := cache.GetLatestRun(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestCacheManager_Ping(t *testing.T) {
	cache, mr := newTestCache(t)

	require.NoError(t, cache.Ping(context.Background()))

	mr.Close()
	assert.Error(t, cache.Ping(context.Background()))
}
