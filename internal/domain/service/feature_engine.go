package service

import (
	"math"
	"sort"
	"time"

	"github.com/CSingh26/ReliScore/internal/domain/models"
)

// FeatureEngine derives a feature vector from a drive's telemetry history as
// of a target day. It is a pure computation: no side effects, deterministic
// for identical input, safe to recompute freely.
type FeatureEngine struct {
	metrics      []string
	featureNames []string
}

// Per-metric feature name suffixes.
const (
	suffixMean7        = "_mean_7d"
	suffixMean30       = "_mean_30d"
	suffixStd30        = "_std_30d"
	suffixDeltaVs7     = "_delta_vs_7d"
	suffixIsIncreasing = "_is_increasing"
)

// FeatureAgeDays is the drive-age feature shared by all metric sets.
const FeatureAgeDays = "age_days"

// NewFeatureEngine creates an engine over the given metric list, defaulting
// to the canonical tracked metrics.
func NewFeatureEngine(metrics ...string) *FeatureEngine {
	if len(metrics) == 0 {
		metrics = models.TrackedMetrics
	}
	names := make([]string, 0, len(metrics)*6+1)
	names = append(names, FeatureAgeDays)
	for _, m := range metrics {
		names = append(names,
			m+suffixMean7,
			m+suffixMean30,
			m+suffixStd30,
			m+suffixDeltaVs7,
			m+suffixIsIncreasing,
			missingFeatureName(m),
		)
	}
	return &FeatureEngine{metrics: metrics, featureNames: names}
}

func missingFeatureName(metric string) string {
	return "missing_" + metric + "_30d"
}

// FeatureNames returns the declared feature keys in a stable order. Every
// computed vector carries exactly these keys.
func (e *FeatureEngine) FeatureNames() []string {
	out := make([]string, len(e.featureNames))
	copy(out, e.featureNames)
	return out
}

// Compute derives the feature vector for one drive as of asOf. History may
// be partial, empty, unsorted, or contain duplicate days; later entries for
// the same day win. Points after asOf are ignored.
func (e *FeatureEngine) Compute(history []models.TelemetryPoint, asOf time.Time) models.FeatureVector {
	points := normalizeHistory(history, asOf)

	vec := make(models.FeatureVector, len(e.featureNames))
	for _, name := range e.featureNames {
		vec[name] = 0
	}

	if len(points) > 0 {
		age := asOf.Sub(points[0].Day).Hours() / 24
		vec[FeatureAgeDays] = math.Max(0, math.Floor(age))
	}

	for _, metric := range e.metrics {
		e.computeMetric(vec, points, metric)
	}
	return vec
}

// computeMetric fills the per-metric features. Windows shrink silently when
// history is shorter; a window with zero valid samples yields mean/std 0.
func (e *FeatureEngine) computeMetric(vec models.FeatureVector, points []models.TelemetryPoint, metric string) {
	w7 := windowValues(points, metric, 7)
	w30 := windowValues(points, metric, 30)

	mean7 := mean(w7)
	vec[metric+suffixMean7] = mean7
	vec[metric+suffixMean30] = mean(w30)
	vec[metric+suffixStd30] = populationStd(w30)

	if len(w30) == 0 {
		vec[missingFeatureName(metric)] = 1
	}

	if len(points) == 0 {
		return
	}
	current, ok := points[len(points)-1].Reading(metric)
	if !ok {
		return
	}
	vec[metric+suffixDeltaVs7] = current - mean7
	if len(points) >= 2 {
		if prev, ok := points[len(points)-2].Reading(metric); ok && current > prev {
			vec[metric+suffixIsIncreasing] = 1
		}
	}
}

// normalizeHistory drops points after asOf, sorts ascending by day, and
// dedupes duplicate days keeping the last-written point.
func normalizeHistory(history []models.TelemetryPoint, asOf time.Time) []models.TelemetryPoint {
	points := make([]models.TelemetryPoint, 0, len(history))
	for _, p := range history {
		if !p.Day.After(asOf) {
			points = append(points, p)
		}
	}
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Day.Before(points[j].Day)
	})
	deduped := points[:0]
	for _, p := range points {
		if n := len(deduped); n > 0 && deduped[n-1].Day.Equal(p.Day) {
			deduped[n-1] = p
			continue
		}
		deduped = append(deduped, p)
	}
	return deduped
}

// windowValues collects the valid readings of a metric over the trailing n
// points.
func windowValues(points []models.TelemetryPoint, metric string, n int) []float64 {
	start := len(points) - n
	if start < 0 {
		start = 0
	}
	values := make([]float64, 0, n)
	for _, p := range points[start:] {
		if v, ok := p.Reading(metric); ok {
			values = append(values, v)
		}
	}
	return values
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// populationStd returns the population standard deviation, 0 when fewer than
// two samples are available.
func populationStd(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	m := mean(values)
	ss := 0.0
	for _, v := range values {
		d := v - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(values)))
}
