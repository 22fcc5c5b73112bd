// Package application contains the run orchestrator driving the daily
// scoring pipeline.
package application

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/CSingh26/ReliScore/internal/config"
	"github.com/CSingh26/ReliScore/internal/domain/models"
	"github.com/CSingh26/ReliScore/internal/domain/repository"
	"github.com/CSingh26/ReliScore/internal/domain/service"
	"github.com/CSingh26/ReliScore/internal/infrastructure/monitoring"
	"github.com/CSingh26/ReliScore/internal/infrastructure/persistence/redis"
	"github.com/CSingh26/ReliScore/pkg/constants"
	"github.com/CSingh26/ReliScore/pkg/errors"
	"github.com/CSingh26/ReliScore/pkg/logger"
)

// Skip reasons for the well-defined no-op outcomes.
const (
	SkipReasonNoTelemetry = "no telemetry"
	SkipReasonNoFeatures  = "no features"
)

// ScoringRunService drives one scoring run to completion:
// resolve day -> generate features -> score -> reconcile -> persist -> audit.
// A run is sequential across steps; only per-drive feature computation is
// parallel within a run.
type ScoringRunService interface {
	// RunScoring executes the pipeline for the given day (YYYY-MM-DD), or
	// for the latest telemetry day when day is empty. Safe to re-trigger:
	// persistence upserts on (drive, day, model version).
	RunScoring(ctx context.Context, day string) (*models.RunSummary, error)
}

type scoringRunService struct {
	telemetryRepo  repository.TelemetryRepository
	featureRepo    repository.FeatureRepository
	predictionRepo repository.PredictionRepository
	auditSvc       service.AuditService
	scorer         service.BatchScorer
	engine         *service.FeatureEngine
	reconciler     *service.BucketReconciler
	cache          redis.CacheManager
	tracing        *monitoring.TracingManager
	metrics        *monitoring.Metrics
	cfg            *config.ScoringConfig
	log            logger.Logger
}

// Deps bundles the orchestrator's collaborators. Cache, tracing, and
// metrics are optional.
type Deps struct {
	TelemetryRepo  repository.TelemetryRepository
	FeatureRepo    repository.FeatureRepository
	PredictionRepo repository.PredictionRepository
	AuditService   service.AuditService
	Scorer         service.BatchScorer
	Engine         *service.FeatureEngine
	Reconciler     *service.BucketReconciler
	Cache          redis.CacheManager
	Tracing        *monitoring.TracingManager
	Metrics        *monitoring.Metrics
	Config         *config.ScoringConfig
	Logger         logger.Logger
}

// NewScoringRunService creates the orchestrator.
func NewScoringRunService(deps Deps) ScoringRunService {
	return &scoringRunService{
		telemetryRepo:  deps.TelemetryRepo,
		featureRepo:    deps.FeatureRepo,
		predictionRepo: deps.PredictionRepo,
		auditSvc:       deps.AuditService,
		scorer:         deps.Scorer,
		engine:         deps.Engine,
		reconciler:     deps.Reconciler,
		cache:          deps.Cache,
		tracing:        deps.Tracing,
		metrics:        deps.Metrics,
		cfg:            deps.Config,
		log:            deps.Logger.WithComponent("scoring_run"),
	}
}

func (s *scoringRunService) RunScoring(ctx context.Context, day string) (*models.RunSummary, error) {
	runID := uuid.New().String()
	ctx = context.WithValue(ctx, constants.ContextKeyRunID, runID)
	startedAt := time.Now().UTC()

	summary, err := s.run(ctx, runID, day, startedAt)
	if err != nil {
		s.metrics.ObserveRun(string(constants.RunStatusFailed), time.Since(startedAt))
		return nil, err
	}
	s.metrics.ObserveRun(string(summary.Status), time.Since(startedAt))
	return summary, nil
}

func (s *scoringRunService) run(ctx context.Context, runID, day string, startedAt time.Time) (*models.RunSummary, error) {
	// RESOLVE_DAY: invalid input is rejected before any work begins.
	targetDay, ok, err := s.resolveDay(ctx, day)
	if err != nil {
		return nil, err
	}
	if !ok {
		return s.finishSkipped(ctx, runID, "", SkipReasonNoTelemetry, startedAt)
	}
	dayStr := targetDay.Format(constants.DayFormat)
	s.log.Info(ctx, "scoring run started", logger.Fields{"day": dayStr})

	// GENERATE_FEATURES
	rows, err := s.generateFeatures(ctx, targetDay)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return s.finishSkipped(ctx, runID, dayStr, SkipReasonNoFeatures, startedAt)
	}

	// SCORE
	scoreCtx, scoreSpan := s.startSpan(ctx, "scoring.score_batch")
	raw, usedFallback, err := s.scorer.ScoreBatch(scoreCtx, rows)
	scoreSpan.End()
	if err != nil {
		return nil, err
	}

	// RECONCILE
	final, mode := s.reconciler.Reconcile(raw)
	s.metrics.ObserveReconcileMode(string(mode))

	// PERSIST: single all-or-nothing transaction. A failure aborts the run
	// atomically; prior state for the key stays intact.
	persistCtx, persistSpan := s.startSpan(ctx, "scoring.persist")
	err = s.predictionRepo.UpsertBatch(persistCtx, final)
	persistSpan.End()
	if err != nil {
		s.log.Error(ctx, "prediction persistence failed", err, logger.Fields{"day": dayStr})
		return nil, err
	}

	modelVersion := ""
	if len(final) > 0 {
		modelVersion = final[0].ModelVersion
	}
	summary := &models.RunSummary{
		RunID:         runID,
		Status:        constants.RunStatusCompleted,
		Day:           dayStr,
		DeviceCount:   len(rows),
		ScoredCount:   len(final),
		ModelVersion:  modelVersion,
		ReconcileMode: mode,
		UsedFallback:  usedFallback,
		Tiers:         models.CountTiers(final),
		StartedAt:     startedAt,
		FinishedAt:    time.Now().UTC(),
	}

	// AUDIT: written once, after successful persistence.
	if err := s.audit(ctx, summary); err != nil {
		return nil, err
	}

	s.updateCache(ctx, summary, final)

	s.log.Info(ctx, "scoring run completed", logger.Fields{
		"day":            dayStr,
		"devices":        summary.DeviceCount,
		"reconcile_mode": string(mode),
		"used_fallback":  usedFallback,
	})
	return summary, nil
}

// resolveDay parses the requested day or falls back to the latest telemetry
// day. ok is false when no telemetry exists at all.
func (s *scoringRunService) resolveDay(ctx context.Context, day string) (time.Time, bool, error) {
	if day != "" {
		parsed, err := time.ParseInLocation(constants.DayFormat, day, time.UTC)
		if err != nil {
			return time.Time{}, false, errors.ErrInvalidDay.Wrap(err)
		}
		return parsed, true, nil
	}

	latest, err := s.telemetryRepo.LatestDay(ctx)
	if err != nil {
		return time.Time{}, false, err
	}
	if latest == nil {
		return time.Time{}, false, nil
	}
	return latest.UTC().Truncate(24 * time.Hour), true, nil
}

// generateFeatures pulls the lookback window and computes one feature row
// per drive with telemetry in it. Per-drive computation is embarrassingly
// parallel; results land in a pre-indexed slice so no locking is needed.
func (s *scoringRunService) generateFeatures(ctx context.Context, targetDay time.Time) ([]models.FeatureRow, error) {
	featCtx, span := s.startSpan(ctx, "scoring.generate_features")
	defer span.End()

	from := targetDay.AddDate(0, 0, -s.cfg.LookbackDays)
	history, err := s.telemetryRepo.HistoryByDrive(featCtx, from, targetDay)
	if err != nil {
		return nil, err
	}
	if len(history) == 0 {
		return nil, nil
	}

	driveIDs := make([]string, 0, len(history))
	for id := range history {
		driveIDs = append(driveIDs, id)
	}
	sort.Strings(driveIDs)

	rows := make([]models.FeatureRow, len(driveIDs))
	g, gCtx := errgroup.WithContext(featCtx)
	g.SetLimit(s.workerLimit())
	for i, driveID := range driveIDs {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			rows[i] = models.FeatureRow{
				DriveID:  driveID,
				Day:      targetDay,
				Features: s.engine.Compute(history[driveID], targetDay),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if err := s.featureRepo.UpsertBatch(featCtx, rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *scoringRunService) workerLimit() int {
	if s.cfg.FeatureWorkers > 0 {
		return s.cfg.FeatureWorkers
	}
	return 1
}

func (s *scoringRunService) finishSkipped(ctx context.Context, runID, day, reason string, startedAt time.Time) (*models.RunSummary, error) {
	summary := &models.RunSummary{
		RunID:      runID,
		Status:     constants.RunStatusSkipped,
		Reason:     reason,
		Day:        day,
		StartedAt:  startedAt,
		FinishedAt: time.Now().UTC(),
	}
	if err := s.audit(ctx, summary); err != nil {
		return nil, err
	}
	s.log.Info(ctx, "scoring run skipped", logger.Fields{"reason": reason, "day": day})
	return summary, nil
}

func (s *scoringRunService) audit(ctx context.Context, summary *models.RunSummary) error {
	record, err := models.NewRunAuditRecord(*summary)
	if err != nil {
		return err
	}
	return s.auditSvc.Record(ctx, record)
}

// updateCache refreshes the read cache. Failures are logged, never fatal;
// the database is the source of truth.
func (s *scoringRunService) updateCache(ctx context.Context, summary *models.RunSummary, batch []models.Prediction) {
	if s.cache == nil {
		return
	}
	if err := s.cache.SetLatestRun(ctx, summary); err != nil {
		s.log.Warn(ctx, "run summary cache update failed", logger.Fields{"error": err.Error()})
	}
	if err := s.cache.SetDrivePredictions(ctx, batch); err != nil {
		s.log.Warn(ctx, "prediction cache update failed", logger.Fields{"error": err.Error()})
	}
}

// startSpan is nil-safe so the orchestrator runs without tracing in tests.
func (s *scoringRunService) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	if s.tracing == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return s.tracing.StartSpan(ctx, name)
}
