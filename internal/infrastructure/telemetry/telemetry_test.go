package telemetry

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	otellog "go.opentelemetry.io/otel/log"
	"go.opentelemetry.io/otel/metric"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/jobboard/backend/internal/infrastructure/config"
)

func TestProviders_Disabled(t *testing.T) {
	ctx := context.Background()
	cfg := config.TelemetryConfig{CollectorEndpoint: "localhost:14317", ServiceName: "test"}

	tp, err := NewTracerProvider(ctx, cfg, zap.NewNop())
	require.NoError(t, err)
	assert.False(t, tp.IsEnabled())
	assert.NotNil(t, tp.Tracer("x"))
	assert.NoError(t, tp.ForceFlush(ctx))
	assert.NoError(t, tp.Shutdown(ctx))

	mp, err := NewMeterProvider(ctx, cfg, zap.NewNop())
	require.NoError(t, err)
	assert.False(t, mp.IsEnabled())
	assert.NotNil(t, mp.Meter("x"))
	assert.NoError(t, mp.Shutdown(ctx))

	lp, err := NewLoggerProvider(ctx, cfg, zap.NewNop())
	require.NoError(t, err)
	assert.False(t, lp.IsEnabled())
	assert.False(t, lp.Core(zapcore.InfoLevel).Enabled(zapcore.ErrorLevel))
	assert.NoError(t, lp.Shutdown(ctx))
}

func TestSamplerFor(t *testing.T) {
	assert.Contains(t, samplerFor(1).Description(), "AlwaysOnSampler")
	assert.Contains(t, samplerFor(0).Description(), "PaymentSampler{AlwaysOffSampler}")
	assert.Contains(t, samplerFor(0.25).Description(), "TraceIDRatioBased{0.25}")
}

func TestSampler_KeepsPaymentSpansWhenSamplingIsOff(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := newTracerProviderWithExporter(exporter, zap.NewNop(), 0)
	defer tp.Shutdown(context.Background())

	tracer := tp.Tracer("test")
	for _, name := range []string{"GET /api/v1/promotions", "/payment/momo/ipn", "reconciliation.vnpay_ipn", "GET /health"} {
		_, span := tracer.Start(context.Background(), name)
		span.End()
	}

	var names []string
	for _, s := range exporter.GetSpans() {
		names = append(names, s.Name)
	}
	assert.ElementsMatch(t, []string{"/payment/momo/ipn", "reconciliation.vnpay_ipn"}, names)
}

func TestStartSpan_RecordsAttributesAndErrors(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := newTracerProviderWithExporter(exporter, zap.NewNop())
	defer tp.Shutdown(context.Background())

	_, span := StartSpan(context.Background(), "reconciliation", "vnpay_return",
		SpanAttrOrderCode, "JOB20250101120000123",
		SpanAttrAmount, int64(100000),
		"ignored-without-value",
	)
	SetAttributes(span, SpanAttrOutcome, "settled")
	RecordError(span, errors.New("boom"))
	span.End()

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	got := spans[0]
	assert.Equal(t, "reconciliation.vnpay_return", got.Name)
	assert.Equal(t, codes.Error, got.Status.Code)
	assert.Contains(t, got.Attributes, attribute.String(SpanAttrOrderCode, "JOB20250101120000123"))
	assert.Contains(t, got.Attributes, attribute.Int64(SpanAttrAmount, 100000))
	assert.Contains(t, got.Attributes, attribute.String(SpanAttrOutcome, "settled"))
}

func TestPaymentMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer provider.Shutdown(context.Background())

	m, err := NewPaymentMetrics(provider.Meter("test"))
	require.NoError(t, err)

	ctx := context.Background()
	m.RecordCallback(ctx, "vnpay", "return", "settled", 20*time.Millisecond)
	m.RecordCallback(ctx, "vnpay", "return", "settled", 30*time.Millisecond)
	m.RecordCallback(ctx, "momo", "ipn", "signature_mismatch", time.Millisecond)
	m.RecordPointsCredited(ctx, "vnpay", 100)
	m.RecordPointsCredited(ctx, "vnpay", 0)
	m.RecordCheckout(ctx, "momo", errors.New("timeout"))

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))
	require.Len(t, rm.ScopeMetrics, 1)

	byName := map[string]metricdata.Metrics{}
	for _, md := range rm.ScopeMetrics[0].Metrics {
		byName[md.Name] = md
	}

	callbacks := byName["jobboard.payment.callbacks"].Data.(metricdata.Sum[int64])
	assert.Len(t, callbacks.DataPoints, 2)
	for _, dp := range callbacks.DataPoints {
		provider, _ := dp.Attributes.Value(AttrProvider)
		switch provider.AsString() {
		case "vnpay":
			assert.Equal(t, int64(2), dp.Value)
		case "momo":
			assert.Equal(t, int64(1), dp.Value)
			result, _ := dp.Attributes.Value(AttrResult)
			assert.Equal(t, "signature_mismatch", result.AsString())
		}
	}

	points := byName["jobboard.payment.points_credited"].Data.(metricdata.Sum[int64])
	require.Len(t, points.DataPoints, 1)
	assert.Equal(t, int64(100), points.DataPoints[0].Value)

	checkouts := byName["jobboard.payment.checkouts"].Data.(metricdata.Sum[int64])
	require.Len(t, checkouts.DataPoints, 1)
	status, _ := checkouts.DataPoints[0].Attributes.Value(AttrStatus)
	assert.Equal(t, "error", status.AsString())

	hist := byName["jobboard.payment.reconcile.duration"].Data.(metricdata.Histogram[float64])
	assert.Len(t, hist.DataPoints, 2)
}

func TestPaymentMetrics_NilIsNoop(t *testing.T) {
	var m *PaymentMetrics
	assert.NotPanics(t, func() {
		m.RecordCallback(context.Background(), "vnpay", "ipn", "settled", time.Second)
		m.RecordPointsCredited(context.Background(), "vnpay", 5)
		m.RecordCheckout(context.Background(), "vnpay", nil)
	})
}

// memoryLogExporter keeps exported log records in memory
type memoryLogExporter struct {
	mu      sync.Mutex
	records []sdklog.Record
}

func (e *memoryLogExporter) Export(_ context.Context, records []sdklog.Record) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, r := range records {
		e.records = append(e.records, r.Clone())
	}
	return nil
}

func (e *memoryLogExporter) Shutdown(context.Context) error   { return nil }
func (e *memoryLogExporter) ForceFlush(context.Context) error { return nil }

func TestLoggerProvider_CoreFiltersByLevel(t *testing.T) {
	exporter := &memoryLogExporter{}
	lp := &LoggerProvider{
		provider:    sdklog.NewLoggerProvider(sdklog.WithProcessor(sdklog.NewSimpleProcessor(exporter))),
		serviceName: "test",
	}
	defer lp.Shutdown(context.Background())

	log := zap.New(lp.Core(zapcore.WarnLevel))
	log.Info("dropped")
	log.Warn("signature mismatch", zap.String("order_code", "JOB1"))

	exporter.mu.Lock()
	defer exporter.mu.Unlock()
	require.Len(t, exporter.records, 1)
	assert.Equal(t, "signature mismatch", exporter.records[0].Body().AsString())
}

func TestLoggerProvider_CoreRedactsSecrets(t *testing.T) {
	exporter := &memoryLogExporter{}
	lp := &LoggerProvider{
		provider:    sdklog.NewLoggerProvider(sdklog.WithProcessor(sdklog.NewSimpleProcessor(exporter))),
		serviceName: "test",
	}
	defer lp.Shutdown(context.Background())

	log := zap.New(lp.Core(zapcore.InfoLevel)).With(zap.String("secret_key", "momo-secret"))
	log.Warn("callback rejected", zap.String("Signature", "abc123"), zap.String("order_code", "JOB1"))

	exporter.mu.Lock()
	defer exporter.mu.Unlock()
	require.Len(t, exporter.records, 1)
	attrs := map[string]string{}
	exporter.records[0].WalkAttributes(func(kv otellog.KeyValue) bool {
		attrs[kv.Key] = kv.Value.AsString()
		return true
	})
	assert.Equal(t, "[REDACTED]", attrs["secret_key"])
	assert.Equal(t, "[REDACTED]", attrs["Signature"])
	assert.Equal(t, "JOB1", attrs["order_code"])
}

func TestRedactFields_LeavesInputUntouched(t *testing.T) {
	in := []zapcore.Field{zap.String("password", "hunter2"), zap.Int("points", 5)}
	out := redactFields(in)

	assert.Equal(t, "hunter2", in[0].String)
	assert.Equal(t, "[REDACTED]", out[0].String)
	assert.Equal(t, in[1], out[1])

	clean := []zapcore.Field{zap.String("order_code", "JOB1")}
	assert.Equal(t, clean, redactFields(clean))
}

func TestDBTracing_Register(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: gormlogger.Discard})
	require.NoError(t, err)

	disabled := NewDBTracing(config.TelemetryConfig{}, config.DriverSQLite, zap.NewNop())
	require.NoError(t, disabled.Register(db))
	assert.Nil(t, db.Callback().Query().Get("trace_timing:after_query"))

	enabled := NewDBTracing(config.TelemetryConfig{Enabled: true, DBTraceEnabled: true}, config.DriverSQLite, zap.NewNop())
	require.NoError(t, enabled.Register(db))
	assert.NotNil(t, db.Callback().Query().Get("trace_timing:after_query"))
	assert.Equal(t, "sqlite", enabled.dbSystem)
}

func TestDBSystemFor(t *testing.T) {
	assert.Equal(t, "postgresql", dbSystemFor(config.DriverPostgres))
	assert.Equal(t, "mysql", dbSystemFor(config.DriverMySQL))
	assert.Equal(t, "sqlite", dbSystemFor(config.DriverSQLite))
}

func TestMeterProvider_DropsHighCardinalityPaymentAttributes(t *testing.T) {
	ctx := context.Background()
	reader := sdkmetric.NewManualReader()
	mp := newMeterProviderWithReader(reader, zap.NewNop())
	defer mp.Shutdown(ctx)
	require.True(t, mp.IsEnabled())

	counter, err := mp.Meter("test").Int64Counter("jobboard.payment.callbacks")
	require.NoError(t, err)
	counter.Add(ctx, 1, metric.WithAttributes(
		AttrProvider.String("vnpay"),
		attribute.String("order_code", "JOB20250101120000123"),
	))

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))
	require.Len(t, rm.ScopeMetrics, 1)
	sum := rm.ScopeMetrics[0].Metrics[0].Data.(metricdata.Sum[int64])
	require.Len(t, sum.DataPoints, 1)

	attrs := sum.DataPoints[0].Attributes
	assert.Equal(t, 1, attrs.Len())
	_, hasOrder := attrs.Value("order_code")
	assert.False(t, hasOrder)
}

func TestNewResource(t *testing.T) {
	t.Setenv("OTEL_RESOURCE_ATTRIBUTES", "service.name=overridden,k8s.namespace.name=billing")

	res, err := newResource(context.Background(), config.TelemetryConfig{
		ServiceName: "jobboard-backend",
		Environment: "staging",
	})
	require.NoError(t, err)

	attrs := map[attribute.Key]string{}
	for _, kv := range res.Attributes() {
		attrs[kv.Key] = kv.Value.Emit()
	}
	assert.Equal(t, "jobboard-backend", attrs["service.name"])
	assert.Equal(t, "staging", attrs["deployment.environment.name"])
	assert.Equal(t, "billing", attrs["k8s.namespace.name"])
	assert.Equal(t, ServiceVersion, attrs["service.version"])
}
