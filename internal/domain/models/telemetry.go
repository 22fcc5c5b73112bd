package models

import "time"

// Metric names tracked per telemetry point. These match the columns of the
// telemetry_daily table and the metric set the model service was trained on.
const (
	MetricSmart5         = "smart_5"
	MetricSmart187       = "smart_187"
	MetricSmart188       = "smart_188"
	MetricSmart197       = "smart_197"
	MetricSmart198       = "smart_198"
	MetricSmart199       = "smart_199"
	MetricTemperature    = "temperature"
	MetricReadLatencyMS  = "io_read_latency_ms"
	MetricWriteLatencyMS = "io_write_latency_ms"
)

// TrackedMetrics is the canonical, ordered metric list features are derived
// from.
var TrackedMetrics = []string{
	MetricSmart5,
	MetricSmart187,
	MetricSmart188,
	MetricSmart197,
	MetricSmart198,
	MetricSmart199,
	MetricTemperature,
	MetricReadLatencyMS,
	MetricWriteLatencyMS,
}

// TelemetryPoint is one day's sensor readings for a drive. Readings are
// nullable; a nil value means the sensor did not report that day. Points are
// immutable once ingested.
type TelemetryPoint struct {
	DriveID        string
	Day            time.Time
	Smart5         *float64
	Smart187       *float64
	Smart188       *float64
	Smart197       *float64
	Smart198       *float64
	Smart199       *float64
	Temperature    *float64
	ReadLatencyMS  *float64
	WriteLatencyMS *float64
	FailedToday    bool
}

// Reading returns the value of the named metric and whether it is present.
func (p *TelemetryPoint) Reading(metric string) (float64, bool) {
	var v *float64
	switch metric {
	case MetricSmart5:
		v = p.Smart5
	case MetricSmart187:
		v = p.Smart187
	case MetricSmart188:
		v = p.Smart188
	case MetricSmart197:
		v = p.Smart197
	case MetricSmart198:
		v = p.Smart198
	case MetricSmart199:
		v = p.Smart199
	case MetricTemperature:
		v = p.Temperature
	case MetricReadLatencyMS:
		v = p.ReadLatencyMS
	case MetricWriteLatencyMS:
		v = p.WriteLatencyMS
	}
	if v == nil {
		return 0, false
	}
	return *v, true
}

// SetReading sets the named metric. Used by fixtures and ingestion tooling.
func (p *TelemetryPoint) SetReading(metric string, value float64) {
	v := value
	switch metric {
	case MetricSmart5:
		p.Smart5 = &v
	case MetricSmart187:
		p.Smart187 = &v
	case MetricSmart188:
		p.Smart188 = &v
	case MetricSmart197:
		p.Smart197 = &v
	case MetricSmart198:
		p.Smart198 = &v
	case MetricSmart199:
		p.Smart199 = &v
	case MetricTemperature:
		p.Temperature = &v
	case MetricReadLatencyMS:
		p.ReadLatencyMS = &v
	case MetricWriteLatencyMS:
		p.WriteLatencyMS = &v
	}
}

// Drive is a storage unit tracked over time. Read-only in this service; the
// registry is maintained by the ingestion pipeline.
type Drive struct {
	DriveID       string
	Model         string
	CapacityBytes *int64
	Datacenter    string
	FirstSeen     time.Time
	LastSeen      time.Time
}
