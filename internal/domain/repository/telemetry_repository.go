// Package repository defines the persistence interfaces for the scoring
// domain. Implementations live under internal/infrastructure/persistence.
package repository

import (
	"context"
	"time"

	"github.com/CSingh26/ReliScore/internal/domain/models"
)

// TelemetryRepository reads drive telemetry. Telemetry is written by the
// ingestion pipeline; this service only queries it.
type TelemetryRepository interface {
	// LatestDay returns the most recent day with any telemetry, or a nil
	// time when the table is empty.
	LatestDay(ctx context.Context) (*time.Time, error)

	// HistoryByDrive returns the ordered telemetry history per drive for the
	// inclusive [from, to] day range, ascending by day within each drive.
	HistoryByDrive(ctx context.Context, from, to time.Time) (map[string][]models.TelemetryPoint, error)
}
