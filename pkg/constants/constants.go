// Package constants defines system-wide constants for the ReliScore scoring
// service. This package provides type-safe constant definitions used across
// all modules.
package constants

import "time"

// ================================================================================
// Risk Bucket Constants
// ================================================================================

// RiskBucket represents the ordinal operational risk tier of a drive.
type RiskBucket string

const (
	// BucketLow indicates no actionable failure risk.
	BucketLow RiskBucket = "LOW"

	// BucketMed indicates elevated failure risk worth watching.
	BucketMed RiskBucket = "MED"

	// BucketHigh indicates imminent failure risk requiring triage.
	BucketHigh RiskBucket = "HIGH"
)

// bucketRank orders buckets LOW < MED < HIGH.
var bucketRank = map[RiskBucket]int{
	BucketLow:  0,
	BucketMed:  1,
	BucketHigh: 2,
}

// Rank returns the ordinal position of the bucket, -1 for unknown values.
func (b RiskBucket) Rank() int {
	if r, ok := bucketRank[b]; ok {
		return r
	}
	return -1
}

// Valid reports whether the bucket is one of the enumerated tiers.
func (b RiskBucket) Valid() bool {
	return b.Rank() >= 0
}

// ================================================================================
// Run Status Constants
// ================================================================================

// RunStatus represents the terminal state of a scoring run.
type RunStatus string

const (
	// RunStatusCompleted indicates the run persisted a full prediction batch.
	RunStatusCompleted RunStatus = "completed"

	// RunStatusSkipped indicates a well-defined no-op outcome (no telemetry
	// or no features for the target day).
	RunStatusSkipped RunStatus = "skipped"

	// RunStatusFailed indicates the run aborted without persisting anything.
	RunStatusFailed RunStatus = "failed"
)

// ================================================================================
// Reconciliation Mode Constants
// ================================================================================

// ReconcileMode identifies how the final tier distribution was produced.
type ReconcileMode string

const (
	// ModeModel means raw scorer output was accepted unchanged.
	ModeModel ReconcileMode = "model"

	// ModeRankFallback means a degenerate all-LOW distribution was remapped
	// by rank-based reconciliation.
	ModeRankFallback ReconcileMode = "rank_fallback"
)

// ================================================================================
// Scoring Constants
// ================================================================================

const (
	// HeuristicModelVersion identifies predictions produced by the local
	// fallback scorer instead of the remote model service.
	HeuristicModelVersion = "heuristic-seed-v1"

	// DayFormat is the wire and storage format for telemetry days.
	DayFormat = "2006-01-02"

	// DefaultScorerTimeout bounds a single remote scoring call.
	DefaultScorerTimeout = 20 * time.Second

	// DefaultScorerMaxAttempts is the retry ceiling for the remote scorer.
	DefaultScorerMaxAttempts = 8

	// DefaultScorerBaseDelay is multiplied by the attempt number to produce
	// the linear backoff between attempts.
	DefaultScorerBaseDelay = 500 * time.Millisecond

	// DefaultLookbackDays is the telemetry window pulled per run.
	DefaultLookbackDays = 45
)

// ================================================================================
// Audit Constants
// ================================================================================

// AuditAction classifies append-only audit log entries.
type AuditAction string

const (
	// AuditActionScoringRun records a completed or skipped scoring run.
	AuditActionScoringRun AuditAction = "SCORING_RUN"

	// AuditActionIngestion records a telemetry backfill. Written by the
	// ingestion tooling, never by this service.
	AuditActionIngestion AuditAction = "INGESTION"
)

// ================================================================================
// Logging and Context Constants
// ================================================================================

// LogLevel represents logging verbosity.
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// ContextKey is the type for values stored in a request context.
type ContextKey string

const (
	// ContextKeyTraceID carries the request trace identifier.
	ContextKeyTraceID ContextKey = "trace_id"

	// ContextKeyRunID carries the scoring run identifier.
	ContextKeyRunID ContextKey = "run_id"
)
