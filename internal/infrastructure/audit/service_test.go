package audit

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CSingh26/ReliScore/internal/domain/models"
	"github.com/CSingh26/ReliScore/pkg/constants"
	apperrors "github.com/CSingh26/ReliScore/pkg/errors"
	"github.com/CSingh26/ReliScore/pkg/logger"
)

type stubAuditRepo struct {
	records []*models.AuditRecord
	err     error
}

func (s *stubAuditRepo) Append(ctx context.Context, record *models.AuditRecord) error {
	s.records = append(s.records, record)
	return s.err
}

type stubPublisher struct {
	published []*models.AuditRecord
	err       error
}

func (s *stubPublisher) Publish(ctx context.Context, record *models.AuditRecord) error {
	s.published = append(s.published, record)
	return s.err
}

func newRecord(t *testing.T) *models.AuditRecord {
	t.Helper()
	record, err := models.NewRunAuditRecord(models.RunSummary{
		RunID:  "run-1",
		Status: constants.RunStatusCompleted,
	})
	require.NoError(t, err)
	return record
}

func TestAuditService_FansOutToBothSinks(t *testing.T) {
	repo := &stubAuditRepo{}
	pub := &stubPublisher{}
	svc := NewAuditService(repo, pub, logger.NewNoopLogger())

	record := newRecord(t)
	require.NoError(t, svc.Record(context.Background(), record))

	require.Len(t, repo.records, 1)
	require.Len(t, pub.published, 1)
	assert.Equal(t, record.ID, pub.published[0].ID)
}

func TestAuditService_DatabaseFailureIsFatal(t *testing.T) {
	repo := &stubAuditRepo{err: apperrors.ErrDatabaseOperation}
	pub := &stubPublisher{}
	svc := NewAuditService(repo, pub, logger.NewNoopLogger())

	err := svc.Record(context.Background(), newRecord(t))

	require.Error(t, err)
	assert.Empty(t, pub.published)
}

func TestAuditService_PublishFailureIsDropped(t *testing.T) {
	repo := &stubAuditRepo{}
	pub := &stubPublisher{err: apperrors.ErrScorerUnavailable.WithMessagef("broker down")}
	svc := NewAuditService(repo, pub, logger.NewNoopLogger())

	require.NoError(t, svc.Record(context.Background(), newRecord(t)))
	assert.Len(t, repo.records, 1)
}

func TestAuditService_NilPublisher(t *testing.T) {
	repo := &stubAuditRepo{}
	svc := NewAuditService(repo, nil, logger.NewNoopLogger())

	require.NoError(t, svc.Record(context.Background(), newRecord(t)))
	assert.Len(t, repo.records, 1)
}
