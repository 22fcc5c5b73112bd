// Package http wires the gin router and HTTP server lifecycle.
package http

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/CSingh26/ReliScore/internal/config"
	"github.com/CSingh26/ReliScore/internal/interfaces/http/handlers"
	"github.com/CSingh26/ReliScore/pkg/logger"
)

// Router holds the gin engine and the service's HTTP dependencies.
type Router struct {
	engine            *gin.Engine
	config            *config.ServerConfig
	logger            logger.Logger
	healthHandler     *handlers.HealthHandler
	runHandler        *handlers.RunHandler
	predictionHandler *handlers.PredictionHandler
	server            *http.Server
}

// NewRouter creates the router.
func NewRouter(
	cfg *config.ServerConfig,
	log logger.Logger,
	healthHandler *handlers.HealthHandler,
	runHandler *handlers.RunHandler,
	predictionHandler *handlers.PredictionHandler,
) *Router {
	gin.SetMode(gin.ReleaseMode)
	return &Router{
		engine:            gin.New(),
		config:            cfg,
		logger:            log.WithComponent("http"),
		healthHandler:     healthHandler,
		runHandler:        runHandler,
		predictionHandler: predictionHandler,
	}
}

// SetupRoutes registers middleware and routes.
func (r *Router) SetupRoutes() {
	r.engine.Use(gin.Recovery())
	r.engine.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "X-Request-ID"},
		ExposeHeaders: []string{"X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}))

	r.engine.GET("/health/live", r.healthHandler.LivenessCheck)
	r.engine.GET("/health/ready", r.healthHandler.ReadinessCheck)
	r.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
	pprof.Register(r.engine)

	v1 := r.engine.Group("/api/v1")
	{
		v1.POST("/score_runs", r.runHandler.TriggerRun)
		v1.GET("/score_runs/latest", r.runHandler.LatestRun)
		v1.GET("/predictions/:drive_id/latest", r.predictionHandler.LatestForDrive)
	}
}

// Engine exposes the gin engine for tests.
func (r *Router) Engine() *gin.Engine {
	return r.engine
}

// Start runs the HTTP server until SIGINT/SIGTERM, then shuts down
// gracefully.
func (r *Router) Start() error {
	r.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", r.config.Host, r.config.Port),
		Handler:      r.engine,
		ReadTimeout:  time.Duration(r.config.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(r.config.WriteTimeout) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		r.logger.Info(context.Background(), "HTTP server listening", logger.Fields{"addr": r.server.Addr})
		if err := r.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		r.logger.Info(context.Background(), "shutting down", logger.Fields{"signal": sig.String()})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return r.server.Shutdown(ctx)
}
