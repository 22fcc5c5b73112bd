package service

import (
	"context"

	"github.com/CSingh26/ReliScore/internal/domain/models"
)

// ModelInfo is the versioned contract declared by the active scoring model.
type ModelInfo struct {
	ModelVersion string   `json:"model_version"`
	ModelType    string   `json:"model_type"`
	HorizonDays  int      `json:"horizon_days"`
	Features     []string `json:"features"`
}

// BatchScorer scores a batch of feature rows for a single target day. The
// returned batch has one prediction per input row with the same (drive, day)
// pairing; order is not required to match. usedFallback reports that the
// local heuristic produced the batch because the remote scorer was
// exhausted. Implementations must always return a complete batch unless the
// context is cancelled.
type BatchScorer interface {
	ModelInfo(ctx context.Context) (*ModelInfo, error)
	ScoreBatch(ctx context.Context, rows []models.FeatureRow) (batch []models.Prediction, usedFallback bool, err error)
}

// AuditService records run audit events. Implementations may fan out to
// multiple sinks; only the primary (database) sink is allowed to fail a run.
type AuditService interface {
	Record(ctx context.Context, record *models.AuditRecord) error
}
