package audit

import (
	"context"

	"github.com/CSingh26/ReliScore/internal/domain/models"
	"github.com/CSingh26/ReliScore/internal/domain/repository"
	"github.com/CSingh26/ReliScore/internal/domain/service"
	"github.com/CSingh26/ReliScore/pkg/logger"
)

// Publisher is the optional secondary audit sink.
type Publisher interface {
	Publish(ctx context.Context, record *models.AuditRecord) error
}

// fanoutService writes audit records to the database and, when configured,
// publishes them to Kafka. Only the database write can fail the caller;
// publish failures are logged and dropped.
type fanoutService struct {
	repo      repository.AuditRepository
	publisher Publisher
	log       logger.Logger
}

// NewAuditService creates the audit service. publisher may be nil.
func NewAuditService(repo repository.AuditRepository, publisher Publisher, log logger.Logger) service.AuditService {
	return &fanoutService{
		repo:      repo,
		publisher: publisher,
		log:       log.WithComponent("audit"),
	}
}

// Record appends the entry to the audit log and fans it out.
func (s *fanoutService) Record(ctx context.Context, record *models.AuditRecord) error {
	if err := s.repo.Append(ctx, record); err != nil {
		return err
	}
	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, record); err != nil {
			s.log.Warn(ctx, "audit publish failed", logger.Fields{
				"audit_id": record.ID.String(),
				"error":    err.Error(),
			})
		}
	}
	return nil
}
