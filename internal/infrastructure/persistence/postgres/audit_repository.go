package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/CSingh26/ReliScore/internal/domain/models"
	"github.com/CSingh26/ReliScore/internal/domain/repository"
	"github.com/CSingh26/ReliScore/pkg/constants"
	apperrors "github.com/CSingh26/ReliScore/pkg/errors"
)

// auditLogDBM is the database model for the append-only audit_log table.
type auditLogDBM struct {
	ID        string    `gorm:"column:id;primaryKey"`
	Action    string    `gorm:"column:action"`
	Payload   []byte    `gorm:"column:payload"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (auditLogDBM) TableName() string {
	return "audit_log"
}

// AuditRepositoryPG is the PostgreSQL implementation of
// repository.AuditRepository. Entries are inserted, never updated.
type AuditRepositoryPG struct {
	db *gorm.DB
}

// NewAuditRepository creates an audit repository.
func NewAuditRepository(db *gorm.DB) repository.AuditRepository {
	return &AuditRepositoryPG{db: db}
}

// Append inserts one audit record.
func (r *AuditRepositoryPG) Append(ctx context.Context, record *models.AuditRecord) error {
	dbm := auditLogDBM{
		ID:        record.ID.String(),
		Action:    string(record.Action),
		Payload:   record.Payload,
		CreatedAt: record.CreatedAt,
	}
	if dbm.Action == "" {
		dbm.Action = string(constants.AuditActionScoringRun)
	}
	if err := r.db.WithContext(ctx).Create(&dbm).Error; err != nil {
		return apperrors.ErrDatabaseOperation.Wrap(err)
	}
	return nil
}
