// Package monitoring provides timing and memory metrics for the steps of an analysis run.
package monitoring

import (
	"log/slog"
	"runtime"
	"time"
)

// StepMetrics represents the measurements of one pipeline step.
type StepMetrics struct {
	Step          string        `json:"step"`
	Duration      time.Duration `json:"duration"`
	RowsProcessed int64         `json:"rows_processed"`
	MemoryUsed    int64         `json:"memory_used"`
	Failed        bool          `json:"failed"`
}

// MetricsCollector records StepMetrics in execution order. It is not safe for
// concurrent use.
type MetricsCollector struct {
	metrics []StepMetrics
	enabled bool
	logger  *slog.Logger
}

// NewMetricsCollector creates a new metrics collector. A nil logger disables the
// per-step debug record.
func NewMetricsCollector(enabled bool, logger *slog.Logger) *MetricsCollector {
	return &MetricsCollector{
		metrics: make([]StepMetrics, 0),
		enabled: enabled,
		logger:  logger,
	}
}

// IsEnabled returns whether metrics collection is enabled.
func (mc *MetricsCollector) IsEnabled() bool {
	return mc.enabled
}

// SetEnabled enables or disables metrics collection.
func (mc *MetricsCollector) SetEnabled(enabled bool) {
	mc.enabled = enabled
}

// RecordStep executes fn and records its duration, heap growth and the number of
// rows it reports having processed.
func (mc *MetricsCollector) RecordStep(step string, fn func() (rows int, err error)) error {
	if !mc.enabled {
		_, err := fn()
		return err
	}

	var memBefore runtime.MemStats
	runtime.ReadMemStats(&memBefore)
	start := time.Now()

	rows, err := fn()

	duration := time.Since(start)
	var memAfter runtime.MemStats
	runtime.ReadMemStats(&memAfter)

	m := StepMetrics{
		Step:          step,
		Duration:      duration,
		RowsProcessed: int64(rows),
		MemoryUsed:    int64(memAfter.TotalAlloc - memBefore.TotalAlloc), //nolint:gosec // bounded by process memory
		Failed:        err != nil,
	}
	mc.metrics = append(mc.metrics, m)

	if mc.logger != nil {
		mc.logger.Debug("step finished",
			"step", m.Step,
			"duration", m.Duration,
			"rows", m.RowsProcessed,
			"alloc_bytes", m.MemoryUsed,
			"failed", m.Failed,
		)
	}
	return err
}

// GetMetrics returns a copy of all collected metrics.
func (mc *MetricsCollector) GetMetrics() []StepMetrics {
	result := make([]StepMetrics, len(mc.metrics))
	copy(result, mc.metrics)
	return result
}

// Clear removes all collected metrics.
func (mc *MetricsCollector) Clear() {
	mc.metrics = mc.metrics[:0]
}

// GetSummary returns a summary of collected metrics.
func (mc *MetricsCollector) GetSummary() MetricsSummary {
	if len(mc.metrics) == 0 {
		return MetricsSummary{}
	}

	var summary MetricsSummary
	for _, m := range mc.metrics {
		summary.TotalDuration += m.Duration
		summary.TotalMemory += m.MemoryUsed
		if m.Failed {
			summary.FailedSteps++
		}
		if m.Duration > summary.SlowestDuration {
			summary.SlowestDuration = m.Duration
			summary.SlowestStep = m.Step
		}
	}
	summary.TotalSteps = len(mc.metrics)
	summary.AverageDuration = summary.TotalDuration / time.Duration(len(mc.metrics))
	return summary
}

// MetricsSummary provides aggregate statistics for collected metrics.
type MetricsSummary struct {
	TotalSteps      int           `json:"total_steps"`
	FailedSteps     int           `json:"failed_steps"`
	TotalDuration   time.Duration `json:"total_duration"`
	TotalMemory     int64         `json:"total_memory"`
	AverageDuration time.Duration `json:"average_duration"`
	SlowestStep     string        `json:"slowest_step"`
	SlowestDuration time.Duration `json:"slowest_duration"`
}

// LogValue reports the summary as a group of attributes.
func (s MetricsSummary) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("steps", s.TotalSteps),
		slog.Int("failed", s.FailedSteps),
		slog.Duration("total", s.TotalDuration),
		slog.String("slowest", s.SlowestStep),
	)
}
