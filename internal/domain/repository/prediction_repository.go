package repository

import (
	"context"
	"time"

	"github.com/CSingh26/ReliScore/internal/domain/models"
)

// PredictionRepository persists reconciled risk scores.
type PredictionRepository interface {
	// UpsertBatch writes the batch in a single all-or-nothing transaction.
	// Rows are keyed by (drive, day, model version); an existing row's
	// scalar fields are overwritten, so re-running a day never duplicates.
	UpsertBatch(ctx context.Context, batch []models.Prediction) error

	// LatestForDrive returns the most recent prediction for a drive, or nil
	// when none exists.
	LatestForDrive(ctx context.Context, driveID string) (*models.Prediction, error)

	// CountForDay returns the number of persisted predictions for a day and
	// model version.
	CountForDay(ctx context.Context, day time.Time, modelVersion string) (int64, error)
}
