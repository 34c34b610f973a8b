package summarizer

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/localrivet/textsummarizer/internal/telemetry"
)

// Version is reported in health reports.
var Version = "1.0.0"

// HealthStatus represents the health status of a component
type HealthStatus string

const (
	// StatusHealthy indicates a component is fully operational
	StatusHealthy HealthStatus = "healthy"

	// StatusDegraded indicates a component is operational but with reduced capability
	StatusDegraded HealthStatus = "degraded"

	// StatusUnhealthy indicates a component is not operational
	StatusUnhealthy HealthStatus = "unhealthy"
)

// HealthReport contains information about the current health of the service
type HealthReport struct {
	Status        HealthStatus       `json:"status"`
	Timestamp     time.Time          `json:"timestamp"`
	Components    map[string]string  `json:"components"`
	ResponseTimes map[string]float64 `json:"response_times_ms"`
	CacheStats    map[string]int64   `json:"cache_stats"`
	RankStats     map[string]int64   `json:"rank_stats"`
	SuccessRate   float64            `json:"success_rate"`
	TotalRequests int64              `json:"total_requests"`
	Version       string             `json:"version"`
}

// CreateHealthReport generates a health report for the summarizer. Components
// maps optional collaborators (store, generator providers, ...) to whether
// they are working; any failing one marks the report degraded.
func CreateHealthReport(summarizer *TextRankSummarizer, components map[string]bool) (*HealthReport, error) {
	if summarizer == nil {
		return nil, fmt.Errorf("summarizer is nil")
	}

	m := summarizer.GetMetrics()
	if m == nil {
		return nil, fmt.Errorf("metrics collector is nil")
	}

	status := StatusHealthy
	componentStatus := map[string]string{
		"engine": string(StatusHealthy),
		"cache":  string(StatusHealthy),
	}
	if !summarizer.Initialized() {
		componentStatus["engine"] = string(StatusUnhealthy)
		status = StatusUnhealthy
	}
	for name, ok := range components {
		if ok {
			componentStatus[name] = string(StatusHealthy)
			continue
		}
		componentStatus[name] = string(StatusUnhealthy)
		if status == StatusHealthy {
			status = StatusDegraded
		}
	}

	totalRequests := m.GetCounter(telemetry.MetricRequests)
	failures := m.GetCounter(telemetry.MetricProcessingErrors)
	var successRate float64
	if totalRequests > 0 {
		successRate = float64(totalRequests-failures) / float64(totalRequests) * 100.0
	}

	responseTimes := map[string]float64{
		"engine":    float64(m.GetTimerAverage(telemetry.MetricEngineTime)) / float64(time.Millisecond),
		"generator": float64(m.GetTimerAverage(telemetry.MetricGeneratorTime)) / float64(time.Millisecond),
		"total":     float64(m.GetTimerAverage(telemetry.MetricServiceTotalTime)) / float64(time.Millisecond),
	}

	cacheStats := map[string]int64{
		"hits":   m.GetCounter(telemetry.MetricCacheHits),
		"misses": m.GetCounter(telemetry.MetricCacheMisses),
		"size":   int64(m.GetGauge(telemetry.MetricCacheSize)),
	}

	rankStats := map[string]int64{
		"converged":       m.GetCounter(telemetry.MetricConverged),
		"not_converged":   m.GetCounter(telemetry.MetricNotConverged),
		"invalid_input":   m.GetCounter(telemetry.MetricInvalidInput),
		"last_iterations": int64(m.GetGauge(telemetry.MetricLastIterations)),
	}

	return &HealthReport{
		Status:        status,
		Timestamp:     time.Now(),
		Components:    componentStatus,
		ResponseTimes: responseTimes,
		CacheStats:    cacheStats,
		RankStats:     rankStats,
		SuccessRate:   successRate,
		TotalRequests: totalRequests,
		Version:       Version,
	}, nil
}

// CreateHealthReportJSON generates a JSON health report for the summarizer
func CreateHealthReportJSON(summarizer *TextRankSummarizer, components map[string]bool) (string, error) {
	report, err := CreateHealthReport(summarizer, components)
	if err != nil {
		return "", err
	}

	reportJSON, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal health report: %w", err)
	}

	return string(reportJSON), nil
}

// ResetMetrics resets all metrics for the summarizer
func ResetMetrics(summarizer *TextRankSummarizer) error {
	if summarizer == nil {
		return fmt.Errorf("summarizer is nil")
	}

	m := summarizer.GetMetrics()
	if m == nil {
		return fmt.Errorf("metrics collector is nil")
	}

	m.Reset()
	return nil
}
