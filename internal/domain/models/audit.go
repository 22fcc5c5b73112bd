package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/CSingh26/ReliScore/pkg/constants"
)

// AuditRecord is one append-only audit trail entry. Written once per scoring
// run after successful persistence, never mutated.
type AuditRecord struct {
	ID        uuid.UUID
	Action    constants.AuditAction
	Payload   json.RawMessage
	CreatedAt time.Time
}

// NewRunAuditRecord builds the audit entry summarizing a scoring run.
func NewRunAuditRecord(summary RunSummary) (*AuditRecord, error) {
	payload, err := json.Marshal(summary)
	if err != nil {
		return nil, err
	}
	return &AuditRecord{
		ID:        uuid.New(),
		Action:    constants.AuditActionScoringRun,
		Payload:   payload,
		CreatedAt: time.Now().UTC(),
	}, nil
}
