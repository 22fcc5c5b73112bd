package postgres

import (
	"context"
	goerrors "errors"
	"time"

	"gorm.io/gorm"

	"github.com/CSingh26/ReliScore/internal/domain/models"
	"github.com/CSingh26/ReliScore/internal/domain/repository"
	"github.com/CSingh26/ReliScore/pkg/errors"
)

// telemetryDailyDBM is the database model for the telemetry_daily table.
// Rows are written by the ingestion pipeline and immutable afterwards.
type telemetryDailyDBM struct {
	DriveID          string    `gorm:"column:drive_id;primaryKey"`
	Day              time.Time `gorm:"column:day;primaryKey;type:date"`
	Smart5           *float64  `gorm:"column:smart_5"`
	Smart187         *float64  `gorm:"column:smart_187"`
	Smart188         *float64  `gorm:"column:smart_188"`
	Smart197         *float64  `gorm:"column:smart_197"`
	Smart198         *float64  `gorm:"column:smart_198"`
	Smart199         *float64  `gorm:"column:smart_199"`
	Temperature      *float64  `gorm:"column:temperature"`
	IOReadLatencyMS  *float64  `gorm:"column:io_read_latency_ms"`
	IOWriteLatencyMS *float64  `gorm:"column:io_write_latency_ms"`
	IsFailedToday    bool      `gorm:"column:is_failed_today"`
}

func (telemetryDailyDBM) TableName() string {
	return "telemetry_daily"
}

func (dbm *telemetryDailyDBM) toDomain() models.TelemetryPoint {
	return models.TelemetryPoint{
		DriveID:        dbm.DriveID,
		Day:            dbm.Day,
		Smart5:         dbm.Smart5,
		Smart187:       dbm.Smart187,
		Smart188:       dbm.Smart188,
		Smart197:       dbm.Smart197,
		Smart198:       dbm.Smart198,
		Smart199:       dbm.Smart199,
		Temperature:    dbm.Temperature,
		ReadLatencyMS:  dbm.IOReadLatencyMS,
		WriteLatencyMS: dbm.IOWriteLatencyMS,
		FailedToday:    dbm.IsFailedToday,
	}
}

// TelemetryRepositoryPG is the PostgreSQL implementation of
// repository.TelemetryRepository.
type TelemetryRepositoryPG struct {
	db *gorm.DB
}

// NewTelemetryRepository creates a telemetry repository.
func NewTelemetryRepository(db *gorm.DB) repository.TelemetryRepository {
	return &TelemetryRepositoryPG{db: db}
}

// LatestDay returns the most recent day with any telemetry, nil when empty.
func (r *TelemetryRepositoryPG) LatestDay(ctx context.Context) (*time.Time, error) {
	var dbm telemetryDailyDBM
	err := r.db.WithContext(ctx).
		Order("day DESC").
		First(&dbm).Error
	if err != nil {
		if goerrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, errors.ErrDatabaseOperation.Wrap(err)
	}
	day := dbm.Day
	return &day, nil
}

// HistoryByDrive returns per-drive telemetry for the inclusive day range,
// ascending by day within each drive.
func (r *TelemetryRepositoryPG) HistoryByDrive(ctx context.Context, from, to time.Time) (map[string][]models.TelemetryPoint, error) {
	var rows []telemetryDailyDBM
	err := r.db.WithContext(ctx).
		Where("day BETWEEN ? AND ?", from, to).
		Order("drive_id ASC, day ASC").
		Find(&rows).Error
	if err != nil {
		return nil, errors.ErrDatabaseOperation.Wrap(err)
	}

	history := make(map[string][]models.TelemetryPoint)
	for i := range rows {
		point := rows[i].toDomain()
		history[point.DriveID] = append(history[point.DriveID], point)
	}
	return history, nil
}
