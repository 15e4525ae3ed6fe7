package xappend

import "time"

// MetricsCollector observes every appender call made by a Logger.
type MetricsCollector interface {
	Appended(appender string, level Level, d time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) Appended(string, Level, time.Duration, error) {}
