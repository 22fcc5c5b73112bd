// Package handlers provides the HTTP handlers for the scoring service.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/CSingh26/ReliScore/internal/application"
	"github.com/CSingh26/ReliScore/internal/application/dto"
	"github.com/CSingh26/ReliScore/internal/infrastructure/persistence/redis"
	apperrors "github.com/CSingh26/ReliScore/pkg/errors"
	"github.com/CSingh26/ReliScore/pkg/logger"
)

// RunHandler exposes the scoring run trigger and run summary endpoints.
type RunHandler struct {
	runService application.ScoringRunService
	cache      redis.CacheManager
	log        logger.Logger
}

// NewRunHandler creates a RunHandler. cache may be nil.
func NewRunHandler(runService application.ScoringRunService, cache redis.CacheManager, log logger.Logger) *RunHandler {
	return &RunHandler{
		runService: runService,
		cache:      cache,
		log:        log.WithComponent("run_handler"),
	}
}

// TriggerRun is the handler for POST /api/v1/score_runs. The day is
// optional; re-triggering the same day is safe because persistence upserts.
func (h *RunHandler) TriggerRun(c *gin.Context) {
	var req dto.TriggerRunRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	summary, err := h.runService.RunScoring(c.Request.Context(), req.Day)
	if err != nil {
		if errors.Is(err, apperrors.ErrInvalidDay) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.log.Error(c.Request.Context(), "scoring run failed", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "scoring run failed"})
		return
	}

	c.JSON(http.StatusOK, summary)
}

// LatestRun is the handler for GET /api/v1/score_runs/latest. It serves the
// cached summary of the most recent run.
func (h *RunHandler) LatestRun(c *gin.Context) {
	if h.cache == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "run summary cache disabled"})
		return
	}
	summary, err := h.cache.GetLatestRun(c.Request.Context())
	if err != nil {
		h.log.Error(c.Request.Context(), "run summary lookup failed", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "run summary lookup failed"})
		return
	}
	if summary == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no completed run"})
		return
	}
	c.JSON(http.StatusOK, summary)
}
