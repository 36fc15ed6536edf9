package telemetry

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	otelpyroscope "github.com/grafana/otel-profiling-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/jobboard/backend/internal/infrastructure/config"
)

const tracerShutdownTimeout = 10 * time.Second

// TracerProvider owns the SDK tracer provider. A zero provider means
// tracing is disabled and Tracer falls back to the global no-op.
type TracerProvider struct {
	provider *sdktrace.TracerProvider
	logger   *zap.Logger

	mu sync.Mutex
	// profiled wraps provider once span profiles are on
	profiled trace.TracerProvider
}

func NewTracerProvider(ctx context.Context, cfg config.TelemetryConfig, logger *zap.Logger) (*TracerProvider, error) {
	tp := &TracerProvider{logger: logger}
	if !cfg.Enabled {
		logger.Info("Telemetry disabled, using no-op tracer provider")
		return tp, nil
	}

	opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(cfg.CollectorEndpoint)}
	if cfg.Insecure {
		opts = append(opts, otlptracegrpc.WithInsecure())
	}
	exporter, err := otlptracegrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP trace exporter: %w", err)
	}
	res, err := newResource(ctx, cfg)
	if err != nil {
		return nil, err
	}

	tp.install(sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(samplerFor(cfg.SamplingRatio)),
	))
	logger.Info("Tracing enabled",
		zap.String("collector_endpoint", cfg.CollectorEndpoint),
		zap.Float64("sampling_ratio", cfg.SamplingRatio),
	)
	return tp, nil
}

// newTracerProviderWithExporter exports synchronously with the given sampler
func newTracerProviderWithExporter(exporter sdktrace.SpanExporter, logger *zap.Logger, ratio ...float64) *TracerProvider {
	sampler := samplerFor(1)
	if len(ratio) > 0 {
		sampler = samplerFor(ratio[0])
	}
	tp := &TracerProvider{logger: logger}
	tp.install(sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter), sdktrace.WithSampler(sampler)))
	return tp
}

func (tp *TracerProvider) install(provider *sdktrace.TracerProvider) {
	tp.provider = provider
	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
}

// samplerFor samples root spans at ratio, except money-moving spans which
// are always kept.
func samplerFor(ratio float64) sdktrace.Sampler {
	var base sdktrace.Sampler
	switch {
	case ratio >= 1:
		return sdktrace.ParentBased(sdktrace.AlwaysSample())
	case ratio <= 0:
		base = sdktrace.NeverSample()
	default:
		base = sdktrace.TraceIDRatioBased(ratio)
	}
	return sdktrace.ParentBased(paymentSampler{base: base})
}

// paymentSampler keeps gateway callback and reconciliation spans
// regardless of the configured ratio
type paymentSampler struct {
	base sdktrace.Sampler
}

func (s paymentSampler) ShouldSample(p sdktrace.SamplingParameters) sdktrace.SamplingResult {
	if isPaymentSpan(p.Name) {
		return sdktrace.AlwaysSample().ShouldSample(p)
	}
	return s.base.ShouldSample(p)
}

func (s paymentSampler) Description() string {
	return "PaymentSampler{" + s.base.Description() + "}"
}

func isPaymentSpan(name string) bool {
	return strings.HasPrefix(name, "reconciliation.") || strings.Contains(name, "/payment/")
}

// Shutdown flushes pending spans and stops the exporter
func (tp *TracerProvider) Shutdown(ctx context.Context) error {
	if tp.provider == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, tracerShutdownTimeout)
	defer cancel()
	if err := tp.provider.Shutdown(ctx); err != nil {
		tp.logger.Error("Error shutting down tracer provider", zap.Error(err))
		return fmt.Errorf("failed to shutdown tracer provider: %w", err)
	}
	return nil
}

// EnableSpanProfiles tags CPU samples with the active span ID so Pyroscope
// can link a trace to its profile. It replaces the global tracer provider
// and is a no-op while tracing is disabled.
func (tp *TracerProvider) EnableSpanProfiles() {
	tp.mu.Lock()
	defer tp.mu.Unlock()
	if tp.provider == nil || tp.profiled != nil {
		return
	}
	tp.profiled = otelpyroscope.NewTracerProvider(tp.provider)
	otel.SetTracerProvider(tp.profiled)
	tp.logger.Info("Span profiles enabled")
}

func (tp *TracerProvider) Tracer(name string, opts ...trace.TracerOption) trace.Tracer {
	tp.mu.Lock()
	profiled := tp.profiled
	tp.mu.Unlock()
	switch {
	case profiled != nil:
		return profiled.Tracer(name, opts...)
	case tp.provider == nil:
		return otel.GetTracerProvider().Tracer(name, opts...)
	}
	return tp.provider.Tracer(name, opts...)
}

func (tp *TracerProvider) IsEnabled() bool {
	return tp.provider != nil
}

func (tp *TracerProvider) ForceFlush(ctx context.Context) error {
	if tp.provider == nil {
		return nil
	}
	return tp.provider.ForceFlush(ctx)
}
