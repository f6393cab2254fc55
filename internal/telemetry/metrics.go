package telemetry

import (
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds the OpenTelemetry metric instruments
type Metrics struct {
	// Backfill
	BackfillRunsTotal         metric.Int64Counter
	UsersBackfilledTotal      metric.Int64Counter
	OrganizationsCreatedTotal metric.Int64Counter
	BackfillDuration          metric.Float64Histogram

	// Audit
	AuditRecordsTotal  metric.Int64Counter
	AuditFailuresTotal metric.Int64Counter
}

var (
	once    sync.Once
	metrics *Metrics
)

// GetMetrics returns the singleton Metrics instance, initializing it if necessary.
func GetMetrics() *Metrics {
	once.Do(func() {
		metrics = initMetrics()
	})
	return metrics
}

func initMetrics() *Metrics {
	meter := otel.GetMeterProvider().Meter(instrumentationName)

	m := &Metrics{}

	m.BackfillRunsTotal, _ = meter.Int64Counter(
		"safenest.backfill.runs.total",
		metric.WithDescription("Total number of organization backfill runs"),
		metric.WithUnit("{run}"),
	)

	m.UsersBackfilledTotal, _ = meter.Int64Counter(
		"safenest.backfill.users.total",
		metric.WithDescription("Total number of users assigned the default organization"),
		metric.WithUnit("{user}"),
	)

	m.OrganizationsCreatedTotal, _ = meter.Int64Counter(
		"safenest.backfill.organizations.created.total",
		metric.WithDescription("Total number of default organizations created"),
		metric.WithUnit("{organization}"),
	)

	m.BackfillDuration, _ = meter.Float64Histogram(
		"safenest.backfill.duration",
		metric.WithDescription("Duration of organization backfill runs"),
		metric.WithUnit("ms"),
	)

	m.AuditRecordsTotal, _ = meter.Int64Counter(
		"safenest.audit.records.total",
		metric.WithDescription("Total number of audit records written"),
		metric.WithUnit("{record}"),
	)

	m.AuditFailuresTotal, _ = meter.Int64Counter(
		"safenest.audit.failures.total",
		metric.WithDescription("Total number of failed audit writes"),
		metric.WithUnit("{error}"),
	)

	return m
}
