package repository

import (
	"context"

	"github.com/CSingh26/ReliScore/internal/domain/models"
)

// FeatureRepository persists the denormalized per-run feature rows. The rows
// are a cached copy for audit and debugging; telemetry remains the source of
// truth.
type FeatureRepository interface {
	// UpsertBatch writes the rows, replacing any existing row for the same
	// (drive, day).
	UpsertBatch(ctx context.Context, rows []models.FeatureRow) error
}
