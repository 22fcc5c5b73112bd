// Package model implements the remote model service client and its local
// heuristic fallback scorer.
package model

import (
	"math"
	"sort"
	"time"

	"github.com/CSingh26/ReliScore/internal/domain/models"
	"github.com/CSingh26/ReliScore/pkg/constants"
)

// heuristicWeights is the fixed linear model of the fallback scorer. The
// subset and magnitudes were chosen to approximate the trained model's top
// reallocation-count and latency signals.
var heuristicWeights = map[string]float64{
	"age_days":                    0.0003,
	"smart_5_mean_7d":             0.012,
	"smart_197_mean_7d":           0.045,
	"smart_197_delta_vs_7d":       0.030,
	"smart_198_mean_7d":           0.025,
	"smart_199_std_30d":           0.008,
	"temperature_delta_vs_7d":     0.060,
	"io_read_latency_ms_mean_7d":  0.004,
	"io_write_latency_ms_mean_7d": 0.004,
}

// heuristicBias keeps an all-zero feature vector comfortably in LOW.
const heuristicBias = -3.0

// reasonPrecision is the decimal precision of reason contributions.
const reasonPrecision = 1e6

// HeuristicScorer is the deterministic local fallback used when the remote
// scorer is unreachable. It is pure and requires no network access, so the
// pipeline always produces a complete batch.
type HeuristicScorer struct{}

// NewHeuristicScorer creates a heuristic scorer.
func NewHeuristicScorer() *HeuristicScorer {
	return &HeuristicScorer{}
}

// Score computes the failure probability, tier, and reason codes for one
// feature vector. Identical features always yield identical output.
func (s *HeuristicScorer) Score(features models.FeatureVector) (float64, constants.RiskBucket, []models.ReasonCode) {
	linear := heuristicBias
	reasons := make([]models.ReasonCode, 0, len(heuristicWeights))
	for code, weight := range heuristicWeights {
		value := features[code]
		contribution := weight * value
		linear += contribution
		direction := "UP"
		if contribution < 0 {
			direction = "DOWN"
		}
		reasons = append(reasons, models.ReasonCode{
			Code:         code,
			Contribution: math.Round(contribution*reasonPrecision) / reasonPrecision,
			Direction:    direction,
		})
	}

	sort.Slice(reasons, func(i, j int) bool {
		ai, aj := math.Abs(reasons[i].Contribution), math.Abs(reasons[j].Contribution)
		if ai != aj {
			return ai > aj
		}
		return reasons[i].Code < reasons[j].Code
	})
	if len(reasons) > 5 {
		reasons = reasons[:5]
	}

	score := 1.0 / (1.0 + math.Exp(-linear))
	return score, BucketForScore(score), reasons
}

// ScoreBatch scores every row locally.
func (s *HeuristicScorer) ScoreBatch(rows []models.FeatureRow) []models.Prediction {
	scoredAt := time.Now().UTC()
	batch := make([]models.Prediction, 0, len(rows))
	for _, row := range rows {
		score, bucket, reasons := s.Score(row.Features)
		batch = append(batch, models.Prediction{
			DriveID:      row.DriveID,
			Day:          row.Day,
			RiskScore:    score,
			RiskBucket:   bucket,
			TopReasons:   reasons,
			ModelVersion: constants.HeuristicModelVersion,
			ScoredAt:     scoredAt,
		})
	}
	return batch
}

// BucketForScore maps a probability to its tier by the fixed thresholds the
// model service also applies.
func BucketForScore(score float64) constants.RiskBucket {
	switch {
	case score >= 0.75:
		return constants.BucketHigh
	case score >= 0.40:
		return constants.BucketMed
	default:
		return constants.BucketLow
	}
}
