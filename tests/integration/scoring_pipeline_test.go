//go:build integration

package integration

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/CSingh26/ReliScore/internal/application"
	"github.com/CSingh26/ReliScore/internal/config"
	"github.com/CSingh26/ReliScore/internal/domain/models"
	"github.com/CSingh26/ReliScore/internal/domain/service"
	"github.com/CSingh26/ReliScore/internal/fixtures"
	"github.com/CSingh26/ReliScore/internal/infrastructure/audit"
	"github.com/CSingh26/ReliScore/internal/infrastructure/model"
	pginfra "github.com/CSingh26/ReliScore/internal/infrastructure/persistence/postgres"
	"github.com/CSingh26/ReliScore/pkg/constants"
	"github.com/CSingh26/ReliScore/pkg/logger"
)

func startPostgres(t *testing.T) *gorm.DB {
	t.Helper()
	if os.Getenv("SKIP_DOCKER_TESTS") == "true" {
		t.Skip("Skipping Docker-dependent tests")
	}
	ctx := context.Background()

	pgContainer, err := postgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:16-alpine"),
		postgres.WithDatabase("reliscore_test"),
		postgres.WithUsername("reliscore"),
		postgres.WithPassword("reliscore"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Minute),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, pgContainer.Terminate(ctx))
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := gorm.Open(gormpostgres.Open(connStr), &gorm.Config{})
	require.NoError(t, err)

	migrationsPath, err := filepath.Abs("../../migrations/0001_init.sql")
	require.NoError(t, err)
	sqlBytes, err := os.ReadFile(migrationsPath)
	require.NoError(t, err)
	require.NoError(t, db.Exec(string(sqlBytes)).Error)

	return db
}

// fakeModelServer mimics the remote model service for end-to-end runs.
func fakeModelServer(t *testing.T, engine *service.FeatureEngine) *httptest.Server {
	t.Helper()
	heuristic := model.NewHeuristicScorer()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/model/info":
			require.NoError(t, json.NewEncoder(w).Encode(service.ModelInfo{
				ModelVersion: "it-model-v1",
				ModelType:    "gradient_boosting",
				HorizonDays:  30,
				Features:     engine.FeatureNames(),
			}))
		case "/score_batch":
			var req struct {
				Items []struct {
					DriveID  string              `json:"drive_id"`
					Day      string              `json:"day"`
					Features map[string]*float64 `json:"features"`
				} `json:"items"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

			items := make([]map[string]interface{}, 0, len(req.Items))
			for _, item := range req.Items {
				vec := models.FeatureVector{}
				for name, v := range item.Features {
					if v != nil {
						vec[name] = *v
					}
				}
				score, bucket, reasons := heuristic.Score(vec)
				items = append(items, map[string]interface{}{
					"drive_id":      item.DriveID,
					"day":           item.Day,
					"risk_score":    score,
					"risk_bucket":   string(bucket),
					"top_reasons":   reasons,
					"model_version": "it-model-v1",
					"scored_at":     time.Now().UTC(),
				})
			}
			require.NoError(t, json.NewEncoder(w).Encode(items))
		default:
			http.NotFound(w, r)
		}
	}))
}

func TestScoringPipelineEndToEnd(t *testing.T) {
	db := startPostgres(t)
	ctx := context.Background()
	log := logger.NewNoopLogger()

	end := time.Now().UTC().Truncate(24 * time.Hour)
	fleet := fixtures.Generate(fixtures.GeneratorConfig{
		Drives:      30,
		Days:        40,
		EndDay:      end,
		DegradedPct: 0.1,
		Seed:        2024,
	})

	// Seed telemetry through raw SQL so the repositories stay read-only
	// over this table, matching production.
	for _, history := range fleet {
		for _, p := range history {
			require.NoError(t, db.Exec(
				`INSERT INTO telemetry_daily
				   (drive_id, day, smart_5, smart_197, smart_198, smart_199,
				    temperature, io_read_latency_ms, io_write_latency_ms)
				 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				p.DriveID, p.Day, p.Smart5, p.Smart197, p.Smart198, p.Smart199,
				p.Temperature, p.ReadLatencyMS, p.WriteLatencyMS,
			).Error)
		}
	}

	engine := service.NewFeatureEngine()
	srv := fakeModelServer(t, engine)
	defer srv.Close()

	scorerCfg := &config.ScorerConfig{
		BaseURL:      srv.URL,
		Timeout:      10,
		MaxAttempts:  3,
		BaseDelayMS:  1,
		InfoCacheTTL: 60,
	}
	telemetryRepo := pginfra.NewTelemetryRepository(db)
	predictionRepo := pginfra.NewPredictionRepository(db)
	auditSvc := audit.NewAuditService(pginfra.NewAuditRepository(db), nil, log)

	runService := application.NewScoringRunService(application.Deps{
		TelemetryRepo:  telemetryRepo,
		FeatureRepo:    pginfra.NewFeatureRepository(db),
		PredictionRepo: predictionRepo,
		AuditService:   auditSvc,
		Scorer:         model.NewClient(scorerCfg, nil, nil, log),
		Engine:         engine,
		Reconciler:     service.NewBucketReconciler(),
		Config:         &config.ScoringConfig{LookbackDays: 45, FeatureWorkers: 4},
		Logger:         log,
	})

	summary, err := runService.RunScoring(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, constants.RunStatusCompleted, summary.Status)
	assert.Equal(t, end.Format(constants.DayFormat), summary.Day)
	assert.Equal(t, 30, summary.DeviceCount)
	assert.Equal(t, 30, summary.ScoredCount)
	assert.False(t, summary.UsedFallback)

	count, err := predictionRepo.CountForDay(ctx, end, summary.ModelVersion)
	require.NoError(t, err)
	assert.Equal(t, int64(30), count)

	// Degraded drives rank above the healthy fleet.
	degraded, err := predictionRepo.LatestForDrive(ctx, "DRV-00000")
	require.NoError(t, err)
	require.NotNil(t, degraded)
	healthy, err := predictionRepo.LatestForDrive(ctx, "DRV-00029")
	require.NoError(t, err)
	require.NotNil(t, healthy)
	assert.Greater(t, degraded.RiskScore, healthy.RiskScore)

	// Re-running the same day overwrites instead of duplicating.
	second, err := runService.RunScoring(ctx, summary.Day)
	require.NoError(t, err)
	assert.Equal(t, constants.RunStatusCompleted, second.Status)
	count, err = predictionRepo.CountForDay(ctx, end, second.ModelVersion)
	require.NoError(t, err)
	assert.Equal(t, int64(30), count)

	var auditCount int64
	require.NoError(t, db.Table("audit_log").Count(&auditCount).Error)
	assert.Equal(t, int64(2), auditCount)
}
