package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric attribute keys
var (
	AttrProvider = attribute.Key("provider")
	AttrChannel  = attribute.Key("channel")
	AttrResult   = attribute.Key("result")
	AttrStatus   = attribute.Key("status")
)

// ReconcileDurationBuckets are histogram boundaries in seconds
var ReconcileDurationBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5}

// PaymentMetrics records gateway callback and checkout activity.
// A nil *PaymentMetrics is valid and records nothing.
type PaymentMetrics struct {
	callbacks      metric.Int64Counter
	pointsCredited metric.Int64Counter
	checkouts      metric.Int64Counter
	duration       metric.Float64Histogram
}

// NewPaymentMetrics registers the payment instruments on meter
func NewPaymentMetrics(meter metric.Meter) (*PaymentMetrics, error) {
	callbacks, err := meter.Int64Counter("jobboard.payment.callbacks",
		metric.WithDescription("Gateway callbacks by provider, channel and result"),
		metric.WithUnit("{callback}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create callbacks counter: %w", err)
	}

	pointsCredited, err := meter.Int64Counter("jobboard.payment.points_credited",
		metric.WithDescription("Points credited to accounts on successful payments"),
		metric.WithUnit("{point}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create points counter: %w", err)
	}

	checkouts, err := meter.Int64Counter("jobboard.payment.checkouts",
		metric.WithDescription("Checkout sessions created with a gateway"),
		metric.WithUnit("{checkout}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create checkouts counter: %w", err)
	}

	duration, err := meter.Float64Histogram("jobboard.payment.reconcile.duration",
		metric.WithDescription("Time to verify and settle one callback"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(ReconcileDurationBuckets...),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create reconcile histogram: %w", err)
	}

	return &PaymentMetrics{
		callbacks:      callbacks,
		pointsCredited: pointsCredited,
		checkouts:      checkouts,
		duration:       duration,
	}, nil
}

// RecordCallback counts one handled callback and its latency
func (m *PaymentMetrics) RecordCallback(ctx context.Context, provider, channel, result string, elapsed time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		AttrProvider.String(provider),
		AttrChannel.String(channel),
		AttrResult.String(result),
	)
	m.callbacks.Add(ctx, 1, attrs)
	m.duration.Record(ctx, elapsed.Seconds(), attrs)
}

// RecordPointsCredited adds the points granted by one settled payment
func (m *PaymentMetrics) RecordPointsCredited(ctx context.Context, provider string, points int64) {
	if m == nil || points <= 0 {
		return
	}
	m.pointsCredited.Add(ctx, points, metric.WithAttributes(AttrProvider.String(provider)))
}

// RecordCheckout counts a checkout attempt with the gateway
func (m *PaymentMetrics) RecordCheckout(ctx context.Context, provider string, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.checkouts.Add(ctx, 1, metric.WithAttributes(AttrProvider.String(provider), AttrStatus.String(status)))
}
