package postgres

import (
	"context"
	"encoding/json"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/CSingh26/ReliScore/internal/domain/models"
	"github.com/CSingh26/ReliScore/internal/domain/repository"
	"github.com/CSingh26/ReliScore/pkg/errors"
)

// featuresDailyDBM is the database model for the features_daily table. The
// vector is stored as a JSON document; telemetry remains the source of
// truth and rows are recomputed every run.
type featuresDailyDBM struct {
	DriveID    string    `gorm:"column:drive_id;primaryKey"`
	Day        time.Time `gorm:"column:day;primaryKey;type:date"`
	Features   []byte    `gorm:"column:features"`
	ComputedAt time.Time `gorm:"column:computed_at"`
}

func (featuresDailyDBM) TableName() string {
	return "features_daily"
}

// FeatureRepositoryPG is the PostgreSQL implementation of
// repository.FeatureRepository.
type FeatureRepositoryPG struct {
	db *gorm.DB
}

// NewFeatureRepository creates a feature repository.
func NewFeatureRepository(db *gorm.DB) repository.FeatureRepository {
	return &FeatureRepositoryPG{db: db}
}

// UpsertBatch writes the rows, replacing existing (drive, day) rows.
func (r *FeatureRepositoryPG) UpsertBatch(ctx context.Context, rows []models.FeatureRow) error {
	if len(rows) == 0 {
		return nil
	}

	computedAt := time.Now().UTC()
	dbms := make([]featuresDailyDBM, 0, len(rows))
	for _, row := range rows {
		payload, err := json.Marshal(row.Features)
		if err != nil {
			return errors.ErrDatabaseOperation.Wrap(err)
		}
		dbms = append(dbms, featuresDailyDBM{
			DriveID:    row.DriveID,
			Day:        row.Day,
			Features:   payload,
			ComputedAt: computedAt,
		})
	}

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "drive_id"}, {Name: "day"}},
		DoUpdates: clause.AssignmentColumns([]string{"features", "computed_at"}),
	}).Create(&dbms).Error
	if err != nil {
		return errors.ErrDatabaseOperation.Wrap(err)
	}
	return nil
}
