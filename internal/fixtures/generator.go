// Package fixtures generates synthetic telemetry for tests and local demos.
// It is a test fixture generator only; production telemetry comes from the
// ingestion pipeline.
package fixtures

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/CSingh26/ReliScore/internal/domain/models"
)

// GeneratorConfig controls the synthetic fleet.
type GeneratorConfig struct {
	Drives      int
	Days        int
	EndDay      time.Time
	DegradedPct float64 // fraction of drives with a worsening reallocation trend
	Seed        int64
}

// Generate produces a deterministic per-drive telemetry history. Degraded
// drives get ramping smart_5/smart_197 counts so scoring produces a spread
// of risk.
func Generate(cfg GeneratorConfig) map[string][]models.TelemetryPoint {
	rng := rand.New(rand.NewSource(cfg.Seed))
	end := cfg.EndDay.UTC().Truncate(24 * time.Hour)

	fleet := make(map[string][]models.TelemetryPoint, cfg.Drives)
	for d := 0; d < cfg.Drives; d++ {
		driveID := fmt.Sprintf("DRV-%05d", d)
		degraded := float64(d) < cfg.DegradedPct*float64(cfg.Drives)

		history := make([]models.TelemetryPoint, 0, cfg.Days)
		for i := cfg.Days - 1; i >= 0; i-- {
			day := end.AddDate(0, 0, -i)
			point := models.TelemetryPoint{DriveID: driveID, Day: day}

			ramp := 0.0
			if degraded {
				ramp = float64(cfg.Days-i) * (1 + rng.Float64())
			}
			point.SetReading(models.MetricSmart5, ramp*2+rng.Float64())
			point.SetReading(models.MetricSmart197, ramp+rng.Float64())
			point.SetReading(models.MetricSmart198, ramp*0.5)
			point.SetReading(models.MetricSmart199, rng.Float64()*10)
			point.SetReading(models.MetricTemperature, 30+rng.Float64()*15)
			point.SetReading(models.MetricReadLatencyMS, 4+rng.Float64()*3)
			point.SetReading(models.MetricWriteLatencyMS, 5+rng.Float64()*4)

			history = append(history, point)
		}
		fleet[driveID] = history
	}
	return fleet
}
