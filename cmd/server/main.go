package main

import (
	"context"
	"log"

	"github.com/CSingh26/ReliScore/internal/application"
	"github.com/CSingh26/ReliScore/internal/config"
	domainservice "github.com/CSingh26/ReliScore/internal/domain/service"
	"github.com/CSingh26/ReliScore/internal/infrastructure/audit"
	"github.com/CSingh26/ReliScore/internal/infrastructure/kms"
	"github.com/CSingh26/ReliScore/internal/infrastructure/model"
	"github.com/CSingh26/ReliScore/internal/infrastructure/monitoring"
	"github.com/CSingh26/ReliScore/internal/infrastructure/persistence/postgres"
	"github.com/CSingh26/ReliScore/internal/infrastructure/persistence/redis"
	httpiface "github.com/CSingh26/ReliScore/internal/interfaces/http"
	"github.com/CSingh26/ReliScore/internal/interfaces/http/handlers"
)

func main() {
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	appLogger, err := monitoring.NewZapLogger(&cfg.Log)
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}

	tracing, err := monitoring.NewTracingManager(&cfg.Tracing, appLogger)
	if err != nil {
		appLogger.Fatal(ctx, "failed to initialize tracing", err)
	}
	defer tracing.Shutdown(ctx)

	metrics := monitoring.NewMetrics()

	db, err := postgres.NewDBConnection(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal(ctx, "failed to connect to database", err)
	}

	var cache redis.CacheManager
	if cfg.Redis.Enabled {
		cache = redis.NewCacheManager(&cfg.Redis, appLogger)
	}

	var tokens model.TokenProvider
	if cfg.Vault.Enabled {
		tokens, err = kms.NewVaultTokenProvider(&cfg.Vault, appLogger)
		if err != nil {
			appLogger.Fatal(ctx, "failed to create vault token provider", err)
		}
	}

	telemetryRepo := postgres.NewTelemetryRepository(db)
	featureRepo := postgres.NewFeatureRepository(db)
	predictionRepo := postgres.NewPredictionRepository(db)
	auditRepo := postgres.NewAuditRepository(db)

	var publisher audit.Publisher
	if cfg.Kafka.Enabled {
		producer := audit.NewKafkaProducer(&cfg.Kafka, appLogger)
		defer producer.Close()
		publisher = producer
	}
	auditSvc := audit.NewAuditService(auditRepo, publisher, appLogger)

	scorer := model.NewClient(&cfg.Scorer, tokens, metrics, appLogger)

	runService := application.NewScoringRunService(application.Deps{
		TelemetryRepo:  telemetryRepo,
		FeatureRepo:    featureRepo,
		PredictionRepo: predictionRepo,
		AuditService:   auditSvc,
		Scorer:         scorer,
		Engine:         domainservice.NewFeatureEngine(),
		Reconciler:     domainservice.NewBucketReconciler(),
		Cache:          cache,
		Tracing:        tracing,
		Metrics:        metrics,
		Config:         &cfg.Scoring,
		Logger:         appLogger,
	})

	router := httpiface.NewRouter(
		&cfg.Server,
		appLogger,
		handlers.NewHealthHandler(db, cache, appLogger),
		handlers.NewRunHandler(runService, cache, appLogger),
		handlers.NewPredictionHandler(predictionRepo, cache, appLogger),
	)
	router.SetupRoutes()

	if err := router.Start(); err != nil {
		appLogger.Fatal(ctx, "HTTP server error", err)
	}
}
