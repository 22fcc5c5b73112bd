package models

import (
	"time"

	"github.com/CSingh26/ReliScore/pkg/constants"
)

// ReasonCode is one feature's contribution to a risk score.
type ReasonCode struct {
	Code         string  `json:"code"`
	Contribution float64 `json:"contribution"`
	Direction    string  `json:"direction"` // "UP" or "DOWN"
}

// Prediction is a failure-risk score for one (drive, day). The same shape
// serves as the raw scorer output and, after reconciliation, as the form
// actually persisted. Exactly one persisted row exists per
// (drive, day, model version); re-running a day overwrites it.
type Prediction struct {
	DriveID      string
	Day          time.Time
	RiskScore    float64
	RiskBucket   constants.RiskBucket
	TopReasons   []ReasonCode
	ModelVersion string
	ScoredAt     time.Time
}

// TierCounts is the distribution of buckets across a batch.
type TierCounts struct {
	Low  int `json:"low"`
	Med  int `json:"med"`
	High int `json:"high"`
}

// CountTiers tallies the bucket distribution of a batch.
func CountTiers(batch []Prediction) TierCounts {
	var c TierCounts
	for _, p := range batch {
		switch p.RiskBucket {
		case constants.BucketLow:
			c.Low++
		case constants.BucketMed:
			c.Med++
		case constants.BucketHigh:
			c.High++
		}
	}
	return c
}

// RunSummary is the structured result returned to the caller of a scoring
// run.
type RunSummary struct {
	RunID         string                  `json:"run_id"`
	Status        constants.RunStatus     `json:"status"`
	Reason        string                  `json:"reason,omitempty"`
	Day           string                  `json:"day,omitempty"`
	DeviceCount   int                     `json:"device_count"`
	ScoredCount   int                     `json:"scored_count"`
	ModelVersion  string                  `json:"model_version,omitempty"`
	ReconcileMode constants.ReconcileMode `json:"reconcile_mode,omitempty"`
	UsedFallback  bool                    `json:"used_fallback"`
	Tiers         TierCounts              `json:"tiers"`
	StartedAt     time.Time               `json:"started_at"`
	FinishedAt    time.Time               `json:"finished_at"`
}
