package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/CSingh26/ReliScore/internal/domain/models"
	"github.com/CSingh26/ReliScore/internal/domain/repository"
	"github.com/CSingh26/ReliScore/pkg/constants"
	apperrors "github.com/CSingh26/ReliScore/pkg/errors"
)

// predictionDBM is the database model for the predictions table. The
// uniqueness constraint on (drive_id, day, model_version) is load-bearing:
// it serializes concurrent re-runs of the same day, making the later write
// authoritative without application-level locking.
type predictionDBM struct {
	DriveID      string    `gorm:"column:drive_id;primaryKey"`
	Day          time.Time `gorm:"column:day;primaryKey;type:date"`
	ModelVersion string    `gorm:"column:model_version;primaryKey"`
	RiskScore    float64   `gorm:"column:risk_score"`
	RiskBucket   string    `gorm:"column:risk_bucket"`
	TopReasons   []byte    `gorm:"column:top_reasons"`
	ScoredAt     time.Time `gorm:"column:scored_at"`
}

func (predictionDBM) TableName() string {
	return "predictions"
}

func (dbm *predictionDBM) toDomain() (*models.Prediction, error) {
	var reasons []models.ReasonCode
	if len(dbm.TopReasons) > 0 {
		if err := json.Unmarshal(dbm.TopReasons, &reasons); err != nil {
			return nil, err
		}
	}
	return &models.Prediction{
		DriveID:      dbm.DriveID,
		Day:          dbm.Day,
		RiskScore:    dbm.RiskScore,
		RiskBucket:   constants.RiskBucket(dbm.RiskBucket),
		TopReasons:   reasons,
		ModelVersion: dbm.ModelVersion,
		ScoredAt:     dbm.ScoredAt,
	}, nil
}

func predictionFromDomain(p *models.Prediction) (*predictionDBM, error) {
	reasons, err := json.Marshal(p.TopReasons)
	if err != nil {
		return nil, err
	}
	return &predictionDBM{
		DriveID:      p.DriveID,
		Day:          p.Day,
		ModelVersion: p.ModelVersion,
		RiskScore:    p.RiskScore,
		RiskBucket:   string(p.RiskBucket),
		TopReasons:   reasons,
		ScoredAt:     p.ScoredAt,
	}, nil
}

// PredictionRepositoryPG is the PostgreSQL implementation of
// repository.PredictionRepository.
type PredictionRepositoryPG struct {
	db *gorm.DB
}

// NewPredictionRepository creates a prediction repository.
func NewPredictionRepository(db *gorm.DB) repository.PredictionRepository {
	return &PredictionRepositoryPG{db: db}
}

// UpsertBatch writes the whole batch in one transaction. Conflicting
// (drive_id, day, model_version) rows have their scalar fields overwritten.
// Any failure rolls the entire batch back.
func (r *PredictionRepositoryPG) UpsertBatch(ctx context.Context, batch []models.Prediction) error {
	if len(batch) == 0 {
		return nil
	}

	dbms := make([]predictionDBM, 0, len(batch))
	for i := range batch {
		dbm, err := predictionFromDomain(&batch[i])
		if err != nil {
			return apperrors.ErrDatabaseOperation.Wrap(err)
		}
		dbms = append(dbms, *dbm)
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "drive_id"}, {Name: "day"}, {Name: "model_version"},
			},
			DoUpdates: clause.AssignmentColumns([]string{"risk_score", "risk_bucket", "top_reasons", "scored_at"}),
		}).Create(&dbms).Error
	})
	if err != nil {
		return apperrors.ErrDatabaseOperation.Wrap(err)
	}
	return nil
}

// LatestForDrive returns the newest prediction for a drive, nil when none
// exists.
func (r *PredictionRepositoryPG) LatestForDrive(ctx context.Context, driveID string) (*models.Prediction, error) {
	var dbm predictionDBM
	err := r.db.WithContext(ctx).
		Where("drive_id = ?", driveID).
		Order("day DESC, scored_at DESC").
		First(&dbm).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, apperrors.ErrDatabaseOperation.Wrap(err)
	}
	return dbm.toDomain()
}

// CountForDay returns the persisted prediction count for a (day, model
// version).
func (r *PredictionRepositoryPG) CountForDay(ctx context.Context, day time.Time, modelVersion string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&predictionDBM{}).
		Where("day = ? AND model_version = ?", day, modelVersion).
		Count(&count).Error
	if err != nil {
		return 0, apperrors.ErrDatabaseOperation.Wrap(err)
	}
	return count, nil
}
