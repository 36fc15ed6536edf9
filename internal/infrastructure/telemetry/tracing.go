package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the instrumentation scope for business spans
const TracerName = "github.com/jobboard/backend"

// Span attribute keys used by payment spans
const (
	SpanAttrOrderCode = "payment.order_code"
	SpanAttrProvider  = "payment.provider"
	SpanAttrChannel   = "payment.channel"
	SpanAttrOutcome   = "payment.outcome"
	SpanAttrAmount    = "payment.amount"
	SpanAttrAccountID = "account.id"
)

// StartSpan starts an internal span named {service}.{operation}.
// Pairs are key/value attributes.
//
//	ctx, span := telemetry.StartSpan(ctx, "reconciliation", "vnpay_return",
//	    telemetry.SpanAttrOrderCode, code)
//	defer span.End()
func StartSpan(ctx context.Context, service, operation string, pairs ...any) (context.Context, trace.Span) {
	tracer := otel.GetTracerProvider().Tracer(TracerName)
	return tracer.Start(ctx, service+"."+operation,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(toAttributes(pairs)...),
	)
}

// SetAttributes adds key/value pairs to span
func SetAttributes(span trace.Span, pairs ...any) {
	if span == nil {
		return
	}
	span.SetAttributes(toAttributes(pairs)...)
}

// RecordError records err on the span and marks it failed.
func RecordError(span trace.Span, err error) {
	if span == nil || err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

func toAttributes(pairs []any) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		key, ok := pairs[i].(string)
		if !ok {
			continue
		}
		attrs = append(attrs, toAttribute(key, pairs[i+1]))
	}
	return attrs
}

func toAttribute(key string, value any) attribute.KeyValue {
	switch v := value.(type) {
	case string:
		return attribute.String(key, v)
	case int:
		return attribute.Int(key, v)
	case int64:
		return attribute.Int64(key, v)
	case float64:
		return attribute.Float64(key, v)
	case bool:
		return attribute.Bool(key, v)
	case fmt.Stringer:
		return attribute.String(key, v.String())
	default:
		return attribute.String(key, fmt.Sprintf("%v", v))
	}
}
