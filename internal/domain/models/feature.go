package models

import "time"

// FeatureVector maps feature names to finite numeric values. Every declared
// feature key is always present; missing inputs resolve to 0 rather than
// being omitted.
type FeatureVector map[string]float64

// Clone returns a deep copy of the vector.
func (v FeatureVector) Clone() FeatureVector {
	out := make(FeatureVector, len(v))
	for k, val := range v {
		out[k] = val
	}
	return out
}

// FeatureRow is a computed feature vector keyed to (drive, day). Rows are
// derived data: recomputed deterministically from telemetry history and
// upserted per run as a denormalized copy for audit and debugging.
type FeatureRow struct {
	DriveID  string
	Day      time.Time
	Features FeatureVector
}
