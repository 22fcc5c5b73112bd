package repository

import (
	"context"

	"github.com/CSingh26/ReliScore/internal/domain/models"
)

// AuditRepository appends audit trail entries. Entries are write-once.
type AuditRepository interface {
	Append(ctx context.Context, record *models.AuditRecord) error
}
