package fixtures

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CSingh26/ReliScore/internal/domain/models"
)

func TestGenerate_Deterministic(t *testing.T) {
	cfg := GeneratorConfig{
		Drives:      10,
		Days:        30,
		EndDay:      time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		DegradedPct: 0.2,
		Seed:        42,
	}
	first := Generate(cfg)
	second := Generate(cfg)

	require.Len(t, first, 10)
	assert.Equal(t, first, second)
}

func TestGenerate_Shape(t *testing.T) {
	end := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	fleet := Generate(GeneratorConfig{Drives: 3, Days: 7, EndDay: end, Seed: 1})

	history, ok := fleet["DRV-00000"]
	require.True(t, ok)
	require.Len(t, history, 7)

	assert.True(t, history[0].Day.Equal(end.AddDate(0, 0, -6)))
	assert.True(t, history[6].Day.Equal(end))
	for _, p := range history {
		_, ok := p.Reading(models.MetricTemperature)
		assert.True(t, ok)
	}
}

func TestGenerate_DegradedDrivesRamp(t *testing.T) {
	end := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	fleet := Generate(GeneratorConfig{Drives: 10, Days: 30, EndDay: end, DegradedPct: 0.1, Seed: 7})

	degraded := fleet["DRV-00000"]
	healthy := fleet["DRV-00009"]

	last := func(history []models.TelemetryPoint) float64 {
		v, ok := history[len(history)-1].Reading(models.MetricSmart197)
		require.True(t, ok)
		return v
	}
	assert.Greater(t, last(degraded), last(healthy))
}
