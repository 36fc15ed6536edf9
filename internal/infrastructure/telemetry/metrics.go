package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/zap"

	"github.com/jobboard/backend/internal/infrastructure/config"
)

const defaultMetricsInterval = time.Minute

// MeterProvider owns the OTLP metrics pipeline. The zero value, returned when
// metrics are disabled, hands out meters from the global no-op provider.
type MeterProvider struct {
	provider *sdkmetric.MeterProvider
	logger   *zap.Logger
}

func NewMeterProvider(ctx context.Context, cfg config.TelemetryConfig, logger *zap.Logger) (*MeterProvider, error) {
	if !cfg.MetricsEnabled {
		logger.Info("Metrics disabled, using no-op meter provider")
		return &MeterProvider{logger: logger}, nil
	}

	interval := cfg.MetricsInterval
	if interval <= 0 {
		interval = defaultMetricsInterval
	}

	opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(cfg.CollectorEndpoint)}
	if cfg.Insecure {
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}
	exporter, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP metrics exporter: %w", err)
	}
	res, err := newResource(ctx, cfg)
	if err != nil {
		return nil, err
	}

	mp := newMeterProviderWithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(interval)), logger,
		sdkmetric.WithResource(res))
	otel.SetMeterProvider(mp.provider)

	logger.Info("OpenTelemetry MeterProvider initialized",
		zap.String("collector_endpoint", cfg.CollectorEndpoint),
		zap.Duration("export_interval", interval),
	)
	return mp, nil
}

func newMeterProviderWithReader(reader sdkmetric.Reader, logger *zap.Logger, opts ...sdkmetric.Option) *MeterProvider {
	opts = append(opts, sdkmetric.WithReader(reader), sdkmetric.WithView(paymentAttributeView))
	return &MeterProvider{provider: sdkmetric.NewMeterProvider(opts...), logger: logger}
}

// paymentAttributeView keeps payment instruments to the low-cardinality
// attributes; anything else, an order code for instance, is dropped before export.
var paymentAttributeView = sdkmetric.NewView(
	sdkmetric.Instrument{Name: "jobboard.payment.*"},
	sdkmetric.Stream{AttributeFilter: attribute.NewAllowKeysFilter(AttrProvider, AttrChannel, AttrResult, AttrStatus)},
)

// Shutdown flushes pending metrics and stops the reader.
func (mp *MeterProvider) Shutdown(ctx context.Context) error {
	if mp.provider == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := mp.provider.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown meter provider: %w", err)
	}
	return nil
}

func (mp *MeterProvider) Meter(name string, opts ...metric.MeterOption) metric.Meter {
	if mp.provider == nil {
		return otel.GetMeterProvider().Meter(name, opts...)
	}
	return mp.provider.Meter(name, opts...)
}

func (mp *MeterProvider) IsEnabled() bool { return mp.provider != nil }
