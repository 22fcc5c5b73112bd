package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/CSingh26/ReliScore/internal/domain/models"
	"github.com/CSingh26/ReliScore/internal/domain/repository"
	apperrors "github.com/CSingh26/ReliScore/pkg/errors"
)

// driveDBM is the database model for the drives registry table.
type driveDBM struct {
	DriveID       string    `gorm:"column:drive_id;primaryKey"`
	Model         string    `gorm:"column:model"`
	CapacityBytes *int64    `gorm:"column:capacity_bytes"`
	Datacenter    string    `gorm:"column:datacenter"`
	FirstSeen     time.Time `gorm:"column:first_seen;type:date"`
	LastSeen      time.Time `gorm:"column:last_seen;type:date"`
}

func (driveDBM) TableName() string {
	return "drives"
}

func (dbm *driveDBM) toDomain() *models.Drive {
	return &models.Drive{
		DriveID:       dbm.DriveID,
		Model:         dbm.Model,
		CapacityBytes: dbm.CapacityBytes,
		Datacenter:    dbm.Datacenter,
		FirstSeen:     dbm.FirstSeen,
		LastSeen:      dbm.LastSeen,
	}
}

// DriveRepositoryPG is the PostgreSQL implementation of
// repository.DriveRepository.
type DriveRepositoryPG struct {
	db *gorm.DB
}

// NewDriveRepository creates a drive repository.
func NewDriveRepository(db *gorm.DB) repository.DriveRepository {
	return &DriveRepositoryPG{db: db}
}

// FindByID returns the drive, nil when unknown.
func (r *DriveRepositoryPG) FindByID(ctx context.Context, driveID string) (*models.Drive, error) {
	var dbm driveDBM
	err := r.db.WithContext(ctx).Where("drive_id = ?", driveID).First(&dbm).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, apperrors.ErrDatabaseOperation.Wrap(err)
	}
	return dbm.toDomain(), nil
}
