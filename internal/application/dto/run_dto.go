// Package dto defines the request and response shapes of the HTTP surface.
package dto

import (
	"time"

	"github.com/CSingh26/ReliScore/internal/domain/models"
)

// TriggerRunRequest is the body of POST /api/v1/score_runs. Day is optional
// and defaults to the latest telemetry day.
type TriggerRunRequest struct {
	Day string `json:"day"`
}

// PredictionResponse is the wire shape of a persisted prediction.
type PredictionResponse struct {
	DriveID      string              `json:"drive_id"`
	Day          string              `json:"day"`
	RiskScore    float64             `json:"risk_score"`
	RiskBucket   string              `json:"risk_bucket"`
	TopReasons   []models.ReasonCode `json:"top_reasons"`
	ModelVersion string              `json:"model_version"`
	ScoredAt     time.Time           `json:"scored_at"`
}

// PredictionToDTO converts a domain prediction for the API.
func PredictionToDTO(p *models.Prediction) *PredictionResponse {
	return &PredictionResponse{
		DriveID:      p.DriveID,
		Day:          p.Day.Format("2006-01-02"),
		RiskScore:    p.RiskScore,
		RiskBucket:   string(p.RiskBucket),
		TopReasons:   p.TopReasons,
		ModelVersion: p.ModelVersion,
		ScoredAt:     p.ScoredAt,
	}
}
