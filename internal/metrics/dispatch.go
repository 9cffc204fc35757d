package metrics

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// DispatchMetrics records per-dispatch counts and durations, labeled by
// action identifier and terminal outcome code. Satisfies
// dispatch.MetricsRecorder.
type DispatchMetrics struct {
	dispatchCounter metric.Int64Counter
	durationHisto   metric.Float64Histogram
}

// NewDispatchMetrics creates a DispatchMetrics using the provided meter
// provider. The namespace prefixes the metric names.
func NewDispatchMetrics(meterProvider metric.MeterProvider, namespace string) (*DispatchMetrics, error) {
	meter := meterProvider.Meter(namespace)

	dispatchCounter, err := meter.Int64Counter(
		fmt.Sprintf("%s_dispatches_total", namespace),
		metric.WithDescription("Total number of action dispatches"),
		metric.WithUnit("{dispatch}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create dispatch counter: %w", err)
	}

	durationHisto, err := meter.Float64Histogram(
		fmt.Sprintf("%s_dispatch_duration_seconds", namespace),
		metric.WithDescription("Duration of action dispatches in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create dispatch duration histogram: %w", err)
	}

	return &DispatchMetrics{
		dispatchCounter: dispatchCounter,
		durationHisto:   durationHisto,
	}, nil
}

// RecordDispatch records one completed dispatch. actionType is empty when the
// request never yielded a valid identifier; outcome is "SUCCESS" or a
// terminal error code.
func (d *DispatchMetrics) RecordDispatch(
	ctx context.Context,
	actionType, outcome string,
	duration time.Duration,
) {
	attrs := metric.WithAttributes(
		attribute.String("action_type", actionType),
		attribute.String("outcome", outcome),
	)

	d.dispatchCounter.Add(ctx, 1, attrs)
	d.durationHisto.Record(ctx, duration.Seconds(), attrs)
}
