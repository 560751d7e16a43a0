package metrics

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// BusinessMetrics records use case outcomes. domain is one of "auth",
// "secrets", "dynamic_secrets" or "scheduler"; status is "success" or "error".
type BusinessMetrics interface {
	RecordOperation(ctx context.Context, domain, operation, status string)
	RecordDuration(ctx context.Context, domain, operation string, duration time.Duration, status string)

	// RecordLeasesSwept counts expired leases revoked by the sweeper.
	RecordLeasesSwept(ctx context.Context, count int)
}

type businessMetrics struct {
	operations metric.Int64Counter
	duration   metric.Float64Histogram
	swept      metric.Int64Counter
}

// NewBusinessMetrics registers the business instruments under namespace.
func NewBusinessMetrics(meterProvider metric.MeterProvider, namespace string) (BusinessMetrics, error) {
	meter := meterProvider.Meter(namespace)

	operations, opErr := meter.Int64Counter(
		fmt.Sprintf("%s_operations_total", namespace),
		metric.WithDescription("Total number of business operations"),
		metric.WithUnit("{operation}"),
	)
	duration, durErr := meter.Float64Histogram(
		fmt.Sprintf("%s_operation_duration_seconds", namespace),
		metric.WithDescription("Duration of business operations in seconds"),
		metric.WithUnit("s"),
	)
	swept, sweptErr := meter.Int64Counter(
		fmt.Sprintf("%s_leases_swept_total", namespace),
		metric.WithDescription("Expired leases revoked by the sweeper"),
		metric.WithUnit("{lease}"),
	)
	if err := errors.Join(opErr, durErr, sweptErr); err != nil {
		return nil, fmt.Errorf("failed to create business metrics: %w", err)
	}

	return &businessMetrics{operations: operations, duration: duration, swept: swept}, nil
}

func operationAttrs(domain, operation, status string) metric.MeasurementOption {
	return metric.WithAttributes(
		attribute.String("domain", domain),
		attribute.String("operation", operation),
		attribute.String("status", status),
	)
}

func (b *businessMetrics) RecordOperation(ctx context.Context, domain, operation, status string) {
	b.operations.Add(ctx, 1, operationAttrs(domain, operation, status))
}

func (b *businessMetrics) RecordDuration(
	ctx context.Context,
	domain, operation string,
	duration time.Duration,
	status string,
) {
	b.duration.Record(ctx, duration.Seconds(), operationAttrs(domain, operation, status))
}

func (b *businessMetrics) RecordLeasesSwept(ctx context.Context, count int) {
	if count <= 0 {
		return
	}
	b.swept.Add(ctx, int64(count))
}

// NoOpBusinessMetrics is used when metrics are disabled.
type NoOpBusinessMetrics struct{}

func NewNoOpBusinessMetrics() BusinessMetrics {
	return &NoOpBusinessMetrics{}
}

func (n *NoOpBusinessMetrics) RecordOperation(ctx context.Context, domain, operation, status string) {}

func (n *NoOpBusinessMetrics) RecordDuration(
	ctx context.Context,
	domain, operation string,
	duration time.Duration,
	status string,
) {
}

func (n *NoOpBusinessMetrics) RecordLeasesSwept(ctx context.Context, count int) {}
