package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/CSingh26/ReliScore/internal/application/dto"
	"github.com/CSingh26/ReliScore/internal/domain/repository"
	"github.com/CSingh26/ReliScore/internal/infrastructure/persistence/redis"
	"github.com/CSingh26/ReliScore/pkg/logger"
)

// PredictionHandler serves persisted predictions.
type PredictionHandler struct {
	predictionRepo repository.PredictionRepository
	cache          redis.CacheManager
	log            logger.Logger
}

// NewPredictionHandler creates a PredictionHandler. cache may be nil.
func NewPredictionHandler(predictionRepo repository.PredictionRepository, cache redis.CacheManager, log logger.Logger) *PredictionHandler {
	return &PredictionHandler{
		predictionRepo: predictionRepo,
		cache:          cache,
		log:            log.WithComponent("prediction_handler"),
	}
}

// LatestForDrive is the handler for GET /api/v1/predictions/:drive_id/latest.
// The cache is consulted first; the database remains authoritative.
func (h *PredictionHandler) LatestForDrive(c *gin.Context) {
	driveID := c.Param("drive_id")
	ctx := c.Request.Context()

	if h.cache != nil {
		if cached, err := h.cache.GetDrivePrediction(ctx, driveID); err == nil && cached != nil {
			c.JSON(http.StatusOK, dto.PredictionToDTO(cached))
			return
		}
	}

	prediction, err := h.predictionRepo.LatestForDrive(ctx, driveID)
	if err != nil {
		h.log.Error(ctx, "prediction lookup failed", err, logger.Fields{"drive_id": driveID})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "prediction lookup failed"})
		return
	}
	if prediction == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no prediction for drive"})
		return
	}
	c.JSON(http.StatusOK, dto.PredictionToDTO(prediction))
}
