package service

import (
	"math"
	"sort"

	"github.com/CSingh26/ReliScore/internal/domain/models"
	"github.com/CSingh26/ReliScore/pkg/constants"
)

// BucketReconciler guards against degenerate raw score distributions. A
// poorly calibrated or drifting model can emit a batch where every drive
// lands in LOW; relative ranking still carries signal, so the reconciler
// remaps such a batch into a usable tier distribution. Batches that already
// contain a MED or HIGH item pass through untouched.
type BucketReconciler struct{}

// Tier probability bands used by rank reconciliation. Position 0 is the top
// of the tier; a tier of size 1 maps to the midpoint of its band.
var tierBands = map[constants.RiskBucket]struct{ max, min float64 }{
	constants.BucketHigh: {0.95, 0.75},
	constants.BucketMed:  {0.74, 0.40},
	constants.BucketLow:  {0.39, 0.02},
}

// NewBucketReconciler creates a reconciler.
func NewBucketReconciler() *BucketReconciler {
	return &BucketReconciler{}
}

// Reconcile inspects the raw batch and returns the operational batch plus
// the mode that produced it. The input slice is never mutated.
func (r *BucketReconciler) Reconcile(batch []models.Prediction) ([]models.Prediction, constants.ReconcileMode) {
	for _, p := range batch {
		if p.RiskBucket == constants.BucketMed || p.RiskBucket == constants.BucketHigh {
			return batch, constants.ModeModel
		}
	}
	if len(batch) == 0 {
		return batch, constants.ModeModel
	}
	return r.rankFallback(batch), constants.ModeRankFallback
}

// rankFallback reassigns tiers by rank: the top ceil(5%) become HIGH (at
// least one), the next ceil(15%) MED, the rest LOW, with probabilities
// linearly interpolated inside each tier band.
func (r *BucketReconciler) rankFallback(batch []models.Prediction) []models.Prediction {
	ranked := make([]models.Prediction, len(batch))
	copy(ranked, batch)

	// Total deterministic order: descending probability, ties broken by
	// ascending drive id.
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].RiskScore != ranked[j].RiskScore {
			return ranked[i].RiskScore > ranked[j].RiskScore
		}
		return ranked[i].DriveID < ranked[j].DriveID
	})

	n := len(ranked)
	high := highCount(n)
	med := medCount(n, n-high)

	assignBand(ranked[:high], constants.BucketHigh)
	assignBand(ranked[high:high+med], constants.BucketMed)
	assignBand(ranked[high+med:], constants.BucketLow)
	return ranked
}

func highCount(n int) int {
	if n >= 20 {
		return int(math.Ceil(0.05 * float64(n)))
	}
	if n >= 1 {
		return 1
	}
	return 0
}

// medCount is computed independently of the HIGH reservation and then capped
// by what remains.
func medCount(n, remaining int) int {
	var target int
	if n >= 10 {
		target = int(math.Ceil(0.15 * float64(n)))
	} else if remaining >= 1 {
		target = 1
	}
	if target > remaining {
		target = remaining
	}
	return target
}

func assignBand(tier []models.Prediction, bucket constants.RiskBucket) {
	band := tierBands[bucket]
	k := len(tier)
	for i := range tier {
		tier[i].RiskBucket = bucket
		if k == 1 {
			tier[i].RiskScore = (band.max + band.min) / 2
			continue
		}
		tier[i].RiskScore = band.max - (band.max-band.min)*float64(i)/float64(k-1)
	}
}
