package application

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CSingh26/ReliScore/internal/config"
	"github.com/CSingh26/ReliScore/internal/domain/models"
	"github.com/CSingh26/ReliScore/internal/domain/service"
	"github.com/CSingh26/ReliScore/pkg/constants"
	apperrors "github.com/CSingh26/ReliScore/pkg/errors"
	"github.com/CSingh26/ReliScore/pkg/logger"
)

type fakeTelemetryRepo struct {
	latest  *time.Time
	history map[string][]models.TelemetryPoint

	gotFrom, gotTo time.Time
}

func (f *fakeTelemetryRepo) LatestDay(ctx context.Context) (*time.Time, error) {
	return f.latest, nil
}

func (f *fakeTelemetryRepo) HistoryByDrive(ctx context.Context, from, to time.Time) (map[string][]models.TelemetryPoint, error) {
	f.gotFrom, f.gotTo = from, to
	return f.history, nil
}

type fakeFeatureRepo struct {
	rows []models.FeatureRow
	err  error
}

func (f *fakeFeatureRepo) UpsertBatch(ctx context.Context, rows []models.FeatureRow) error {
	f.rows = rows
	return f.err
}

type fakePredictionRepo struct {
	batch []models.Prediction
	err   error
}

func (f *fakePredictionRepo) UpsertBatch(ctx context.Context, batch []models.Prediction) error {
	f.batch = batch
	return f.err
}

func (f *fakePredictionRepo) LatestForDrive(ctx context.Context, driveID string) (*models.Prediction, error) {
	return nil, nil
}

func (f *fakePredictionRepo) CountForDay(ctx context.Context, day time.Time, modelVersion string) (int64, error) {
	return int64(len(f.batch)), nil
}

type fakeAuditService struct {
	records []*models.AuditRecord
	err     error
}

func (f *fakeAuditService) Record(ctx context.Context, record *models.AuditRecord) error {
	f.records = append(f.records, record)
	return f.err
}

type fakeScorer struct {
	usedFallback bool
	err          error
	bucket       constants.RiskBucket
	score        float64
}

func (f *fakeScorer) ModelInfo(ctx context.Context) (*service.ModelInfo, error) {
	return &service.ModelInfo{ModelVersion: "fake-v1", Features: []string{"age_days"}}, nil
}

func (f *fakeScorer) ScoreBatch(ctx context.Context, rows []models.FeatureRow) ([]models.Prediction, bool, error) {
	if f.err != nil {
		return nil, false, f.err
	}
	batch := make([]models.Prediction, 0, len(rows))
	for _, row := range rows {
		batch = append(batch, models.Prediction{
			DriveID:      row.DriveID,
			Day:          row.Day,
			RiskScore:    f.score,
			RiskBucket:   f.bucket,
			ModelVersion: "fake-v1",
			ScoredAt:     time.Now().UTC(),
		})
	}
	return batch, f.usedFallback, nil
}

type fakeCache struct {
	summary *models.RunSummary
	batch   []models.Prediction
	err     error
}

func (f *fakeCache) SetLatestRun(ctx context.Context, summary *models.RunSummary) error {
	f.summary = summary
	return f.err
}

func (f *fakeCache) GetLatestRun(ctx context.Context) (*models.RunSummary, error) {
	return f.summary, nil
}

func (f *fakeCache) SetDrivePredictions(ctx context.Context, batch []models.Prediction) error {
	f.batch = batch
	return f.err
}

func (f *fakeCache) GetDrivePrediction(ctx context.Context, driveID string) (*models.Prediction, error) {
	return nil, nil
}

func (f *fakeCache) Ping(ctx context.Context) error { return nil }

type fixture struct {
	telemetry *fakeTelemetryRepo
	features  *fakeFeatureRepo
	preds     *fakePredictionRepo
	audit     *fakeAuditService
	scorer    *fakeScorer
	cache     *fakeCache
	svc       ScoringRunService
}

func telemetryFor(driveIDs []string, day time.Time) map[string][]models.TelemetryPoint {
	history := make(map[string][]models.TelemetryPoint, len(driveIDs))
	for i, id := range driveIDs {
		p := models.TelemetryPoint{DriveID: id, Day: day}
		p.SetReading(models.MetricSmart197, float64(i))
		history[id] = []models.TelemetryPoint{p}
	}
	return history
}

func newFixture(telemetry *fakeTelemetryRepo, scorer *fakeScorer) *fixture {
	f := &fixture{
		telemetry: telemetry,
		features:  &fakeFeatureRepo{},
		preds:     &fakePredictionRepo{},
		audit:     &fakeAuditService{},
		scorer:    scorer,
		cache:     &fakeCache{},
	}
	f.svc = NewScoringRunService(Deps{
		TelemetryRepo:  f.telemetry,
		FeatureRepo:    f.features,
		PredictionRepo: f.preds,
		AuditService:   f.audit,
		Scorer:         f.scorer,
		Engine:         service.NewFeatureEngine(),
		Reconciler:     service.NewBucketReconciler(),
		Cache:          f.cache,
		Config:         &config.ScoringConfig{LookbackDays: 45, FeatureWorkers: 4},
		Logger:         logger.NewNoopLogger(),
	})
	return f
}

func TestRunScoring_Completed(t *testing.T) {
	day := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	telemetry := &fakeTelemetryRepo{history: telemetryFor([]string{"d2", "d1", "d3"}, day)}
	f := newFixture(telemetry, &fakeScorer{score: 0.55, bucket: constants.BucketMed})

	summary, err := f.svc.RunScoring(context.Background(), "2024-03-15")

	require.NoError(t, err)
	assert.Equal(t, constants.RunStatusCompleted, summary.Status)
	assert.Equal(t, "2024-03-15", summary.Day)
	assert.Equal(t, 3, summary.DeviceCount)
	assert.Equal(t, 3, summary.ScoredCount)
	assert.Equal(t, "fake-v1", summary.ModelVersion)
	assert.Equal(t, constants.ModeModel, summary.ReconcileMode)
	assert.False(t, summary.UsedFallback)
	assert.Equal(t, models.TierCounts{Med: 3}, summary.Tiers)
	assert.NotEmpty(t, summary.RunID)

	// Feature rows are computed per drive in a deterministic order.
	require.Len(t, f.features.rows, 3)
	assert.Equal(t, "d1", f.features.rows[0].DriveID)
	assert.Equal(t, "d3", f.features.rows[2].DriveID)
	for _, row := range f.features.rows {
		assert.True(t, row.Day.Equal(day))
		assert.NotEmpty(t, row.Features)
	}

	// Lookback window ends at the target day.
	assert.True(t, telemetry.gotTo.Equal(day))
	assert.True(t, telemetry.gotFrom.Equal(day.AddDate(0, 0, -45)))

	assert.Len(t, f.preds.batch, 3)
	require.Len(t, f.audit.records, 1)
	assert.Equal(t, constants.AuditActionScoringRun, f.audit.records[0].Action)
	assert.Equal(t, summary, f.cache.summary)
	assert.Len(t, f.cache.batch, 3)
}

func TestRunScoring_DefaultsToLatestTelemetryDay(t *testing.T) {
	day := time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC)
	telemetry := &fakeTelemetryRepo{latest: &day, history: telemetryFor([]string{"d1"}, day)}
	f := newFixture(telemetry, &fakeScorer{score: 0.1, bucket: constants.BucketLow})

	summary, err := f.svc.RunScoring(context.Background(), "")

	require.NoError(t, err)
	assert.Equal(t, constants.RunStatusCompleted, summary.Status)
	assert.Equal(t, "2024-03-14", summary.Day)
}

func TestRunScoring_InvalidDayRejected(t *testing.T) {
	f := newFixture(&fakeTelemetryRepo{}, &fakeScorer{})

	_, err := f.svc.RunScoring(context.Background(), "15-03-2024")

	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidDay))
	assert.Empty(t, f.audit.records)
}

func TestRunScoring_SkippedNoTelemetry(t *testing.T) {
	f := newFixture(&fakeTelemetryRepo{}, &fakeScorer{})

	summary, err := f.svc.RunScoring(context.Background(), "")

	require.NoError(t, err)
	assert.Equal(t, constants.RunStatusSkipped, summary.Status)
	assert.Equal(t, SkipReasonNoTelemetry, summary.Reason)
	assert.Zero(t, summary.DeviceCount)

	// Skips are auditable outcomes too.
	require.Len(t, f.audit.records, 1)
}

func TestRunScoring_SkippedNoFeatures(t *testing.T) {
	f := newFixture(&fakeTelemetryRepo{history: map[string][]models.TelemetryPoint{}}, &fakeScorer{})

	summary, err := f.svc.RunScoring(context.Background(), "2024-03-15")

	require.NoError(t, err)
	assert.Equal(t, constants.RunStatusSkipped, summary.Status)
	assert.Equal(t, SkipReasonNoFeatures, summary.Reason)
	assert.Equal(t, "2024-03-15", summary.Day)
	require.Len(t, f.audit.records, 1)
}

func TestRunScoring_RankFallbackReported(t *testing.T) {
	day := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	driveIDs := make([]string, 0, 25)
	for i := 0; i < 25; i++ {
		driveIDs = append(driveIDs, fmt.Sprintf("drive-%03d", i))
	}
	telemetry := &fakeTelemetryRepo{history: telemetryFor(driveIDs, day)}
	f := newFixture(telemetry, &fakeScorer{score: 0.05, bucket: constants.BucketLow})

	summary, err := f.svc.RunScoring(context.Background(), "2024-03-15")

	require.NoError(t, err)
	assert.Equal(t, constants.ModeRankFallback, summary.ReconcileMode)
	assert.Equal(t, models.TierCounts{Low: 19, Med: 4, High: 2}, summary.Tiers)

	// The persisted batch is the reconciled one.
	tiers := models.CountTiers(f.preds.batch)
	assert.Equal(t, 2, tiers.High)
}

func TestRunScoring_HeuristicFallbackReported(t *testing.T) {
	day := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	telemetry := &fakeTelemetryRepo{history: telemetryFor([]string{"d1"}, day)}
	f := newFixture(telemetry, &fakeScorer{score: 0.5, bucket: constants.BucketMed, usedFallback: true})

	summary, err := f.svc.RunScoring(context.Background(), "2024-03-15")

	require.NoError(t, err)
	assert.Equal(t, constants.RunStatusCompleted, summary.Status)
	assert.True(t, summary.UsedFallback)
}

func TestRunScoring_PersistenceFailureAborts(t *testing.T) {
	day := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	telemetry := &fakeTelemetryRepo{history: telemetryFor([]string{"d1"}, day)}
	f := newFixture(telemetry, &fakeScorer{score: 0.5, bucket: constants.BucketMed})
	f.preds.err = apperrors.ErrDatabaseOperation.WithMessagef("connection lost")

	_, err := f.svc.RunScoring(context.Background(), "2024-03-15")

	require.Error(t, err)
	// No audit entry and no cache update for an aborted run.
	assert.Empty(t, f.audit.records)
	assert.Nil(t, f.cache.summary)
}

func TestRunScoring_AuditFailureFailsRun(t *testing.T) {
	day := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	telemetry := &fakeTelemetryRepo{history: telemetryFor([]string{"d1"}, day)}
	f := newFixture(telemetry, &fakeScorer{score: 0.5, bucket: constants.BucketMed})
	f.audit.err = apperrors.ErrDatabaseOperation.WithMessagef("audit sink down")

	_, err := f.svc.RunScoring(context.Background(), "2024-03-15")

	require.Error(t, err)
	assert.Nil(t, f.cache.summary)
}

func TestRunScoring_CacheFailureIsNotFatal(t *testing.T) {
	day := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	telemetry := &fakeTelemetryRepo{history: telemetryFor([]string{"d1"}, day)}
	f := newFixture(telemetry, &fakeScorer{score: 0.5, bucket: constants.BucketMed})
	f.cache.err = apperrors.ErrDatabaseOperation.WithMessagef("redis down")

	summary, err := f.svc.RunScoring(context.Background(), "2024-03-15")

	require.NoError(t, err)
	assert.Equal(t, constants.RunStatusCompleted, summary.Status)
}
