package repository

import (
	"context"

	"github.com/CSingh26/ReliScore/internal/domain/models"
)

// DriveRepository reads the drive registry maintained by the ingestion
// pipeline.
type DriveRepository interface {
	// FindByID returns the drive, or nil when unknown.
	FindByID(ctx context.Context, driveID string) (*models.Drive, error)
}
