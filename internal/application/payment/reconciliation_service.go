package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/jobboard/backend/internal/domain/payment"
	"github.com/jobboard/backend/internal/domain/shared"
	"github.com/jobboard/backend/internal/infrastructure/logger"
	"github.com/jobboard/backend/internal/infrastructure/telemetry"
)

// ResultKind classifies what a callback did to its payment
type ResultKind string

const (
	// ResultSettled means the callback moved a pending payment to success
	ResultSettled ResultKind = "settled"
	// ResultProviderFailure means the gateway reported a failed payment
	ResultProviderFailure ResultKind = "provider_failure"
	// ResultSignatureMismatch means the callback could not be authenticated
	ResultSignatureMismatch ResultKind = "signature_mismatch"
	// ResultAmountMismatch means the reported amount differs from the payment
	ResultAmountMismatch ResultKind = "amount_mismatch"
	// ResultUnknownOrder means no payment matches the callback
	ResultUnknownOrder ResultKind = "unknown_order"
	// ResultAlreadyTerminal means the payment was already decided
	ResultAlreadyTerminal ResultKind = "already_terminal"
)

// Failure reasons carried on PaymentFailed events
const (
	ReasonSignatureMismatch = "signature_mismatch"
	ReasonAmountMismatch    = "amount_mismatch"
	ReasonProvider          = "provider"
)

// Result is the outcome of reconciling one callback
type Result struct {
	Kind      ResultKind
	OrderCode string
	Method    payment.Method
	Channel   payment.Channel
	// Status is the stored status after reconciliation, empty for unknown orders
	Status payment.Status
	// Credited is the number of points added to the owner by this callback
	Credited int64
}

// Succeeded reports whether the buyer should be shown a successful payment
func (r *Result) Succeeded() bool {
	if r == nil || r.Status != payment.StatusSuccess {
		return false
	}
	return r.Kind == ResultSettled || r.Kind == ResultAlreadyTerminal
}

// ReconciliationService applies gateway callbacks to payments.
// Every callback runs in its own locked settlement; the service keeps no state
// between callbacks.
type ReconciliationService struct {
	payments  payment.Repository
	gateways  map[payment.Method]payment.Gateway
	publisher shared.EventPublisher
	metrics   *telemetry.PaymentMetrics
	logger    *zap.Logger
	now       func() time.Time
}

// ReconciliationServiceConfig holds the dependencies of ReconciliationService
type ReconciliationServiceConfig struct {
	Payments  payment.Repository
	Gateways  map[payment.Method]payment.Gateway
	Publisher shared.EventPublisher
	Metrics   *telemetry.PaymentMetrics
	Logger    *zap.Logger
}

// NewReconciliationService creates a new ReconciliationService
func NewReconciliationService(cfg ReconciliationServiceConfig) *ReconciliationService {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	gateways := cfg.Gateways
	if gateways == nil {
		gateways = map[payment.Method]payment.Gateway{}
	}
	return &ReconciliationService{
		payments:  cfg.Payments,
		gateways:  gateways,
		publisher: cfg.Publisher,
		metrics:   cfg.Metrics,
		logger:    log,
		now:       time.Now,
	}
}

// HandleVNPayReturn reconciles the browser return from VNPay
func (s *ReconciliationService) HandleVNPayReturn(ctx context.Context, params map[string]string) (*Result, error) {
	return s.Reconcile(ctx, payment.MethodVNPay, payment.ChannelReturn, params)
}

// HandleVNPayIPN reconciles a VNPay server notification
func (s *ReconciliationService) HandleVNPayIPN(ctx context.Context, params map[string]string) (*Result, error) {
	return s.Reconcile(ctx, payment.MethodVNPay, payment.ChannelIPN, params)
}

// HandleMoMoReturn reconciles the browser return from MoMo
func (s *ReconciliationService) HandleMoMoReturn(ctx context.Context, params map[string]string) (*Result, error) {
	return s.Reconcile(ctx, payment.MethodMoMo, payment.ChannelReturn, params)
}

// HandleMoMoIPN reconciles a MoMo server notification already decoded to fields
func (s *ReconciliationService) HandleMoMoIPN(ctx context.Context, fields map[string]string) (*Result, error) {
	return s.Reconcile(ctx, payment.MethodMoMo, payment.ChannelIPN, fields)
}

// Reconcile authenticates a callback and applies it to its payment.
//
// Callback problems (bad signature, unknown order, provider failure, replay)
// are reported through Result.Kind with a nil error. An error is returned only
// when the gateway is not configured or storage fails.
func (s *ReconciliationService) Reconcile(
	ctx context.Context,
	method payment.Method,
	channel payment.Channel,
	params map[string]string,
) (*Result, error) {
	start := s.now()
	ctx, span := telemetry.StartSpan(ctx, "reconciliation", fmt.Sprintf("%s_%s", method, channel),
		telemetry.SpanAttrProvider, method.String(),
		telemetry.SpanAttrChannel, string(channel),
	)
	defer span.End()
	log := logger.Enrich(ctx, s.logger).With(
		zap.String("method", method.String()),
		zap.String("channel", string(channel)),
	)

	gateway, ok := s.gateways[method]
	if !ok {
		err := fmt.Errorf("%s: %w", method, payment.ErrGatewayNotConfigured)
		telemetry.RecordError(span, err)
		return nil, err
	}

	res := &Result{Method: method, Channel: channel}

	cb, err := gateway.ParseCallback(ctx, params)
	if err != nil {
		if !errors.Is(err, payment.ErrMalformedCallback) {
			telemetry.RecordError(span, err)
			return nil, err
		}
		log.Warn("Malformed payment callback acknowledged", zap.Error(err))
		res.Kind = ResultUnknownOrder
		s.finish(ctx, span, res, start)
		return res, nil
	}
	res.OrderCode = cb.OrderCode
	log = log.With(zap.String("order_code", cb.OrderCode))

	alreadyTerminal := false
	var settled *payment.Payment
	telemetry.WithProfilingLabels(ctx, map[string]string{
		telemetry.ProfilingLabelOperation: "settle",
		telemetry.ProfilingLabelGateway:   method.String(),
		telemetry.ProfilingLabelChannel:   string(channel),
	}, func(ctx context.Context) {
		settled, err = s.settle(ctx, cb, channel, res, &alreadyTerminal)
	})
	if err != nil {
		if errors.Is(err, payment.ErrUnknownOrder) {
			log.Warn("Callback for unknown order", zap.String("outcome", string(ResultUnknownOrder)))
			res.Kind = ResultUnknownOrder
			s.finish(ctx, span, res, start)
			return res, nil
		}
		telemetry.RecordError(span, err)
		log.Error("Payment settlement failed", zap.Error(err))
		return nil, fmt.Errorf("settle %s: %w", cb.OrderCode, err)
	}

	res.Status = settled.Status
	res.Credited = settled.CreditDue()
	if alreadyTerminal {
		if res.Kind == ResultSettled && settled.Status == payment.StatusFailed {
			log.Warn("Verified success for a failed payment, manual follow-up required",
				zap.String("gateway_tran_id", cb.GatewayTranID))
		}
		if res.Kind == ResultSettled || res.Kind == ResultProviderFailure {
			res.Kind = ResultAlreadyTerminal
		}
	}

	s.publish(ctx, log, settled)
	if res.Credited > 0 {
		s.metrics.RecordPointsCredited(ctx, method.String(), res.Credited)
	}

	fields := []zap.Field{
		zap.String("outcome", string(res.Kind)),
		zap.String("status", res.Status.String()),
		zap.Int64("credited", res.Credited),
		zap.String("provider_code", cb.ProviderCode),
	}
	switch res.Kind {
	case ResultSignatureMismatch, ResultAmountMismatch:
		log.Warn("Payment callback rejected", append(fields, logger.CallbackParams(params))...)
	default:
		log.Info("Payment callback reconciled", fields...)
	}

	s.finish(ctx, span, res, start)
	return res, nil
}

// settle applies cb to its payment under the row lock
func (s *ReconciliationService) settle(
	ctx context.Context,
	cb *payment.Callback,
	channel payment.Channel,
	res *Result,
	alreadyTerminal *bool,
) (*payment.Payment, error) {
	return s.payments.Settle(ctx, cb.OrderCode, func(p *payment.Payment) error {
		at := s.now()
		if cb.Verified {
			p.RecordCallback(channel, cb.Payload, at)
		} else if p.RecordUnverifiedCallback(channel, cb.Payload, at) == "" {
			s.logger.Debug("Unsigned callback not kept in meta, channel cap reached",
				zap.String("order_code", cb.OrderCode), zap.String("channel", string(channel)))
		}

		kind, reason := decide(cb, p)
		res.Kind = kind
		var transition error
		if kind == ResultSettled {
			transition = p.MarkSucceeded(cb.GatewayTranID, at)
		} else {
			transition = p.MarkFailed(reason, at)
		}
		if errors.Is(transition, payment.ErrAlreadyTerminal) {
			// the payment stays as decided; only the callback is kept in meta
			*alreadyTerminal = true
			return nil
		}
		return transition
	})
}

// decide picks the transition a callback asks for
func decide(cb *payment.Callback, p *payment.Payment) (ResultKind, string) {
	switch {
	case !cb.Verified:
		return ResultSignatureMismatch, ReasonSignatureMismatch
	case cb.Amount > 0 && !p.MatchesAmount(cb.Amount):
		return ResultAmountMismatch, ReasonAmountMismatch
	case cb.Outcome == payment.OutcomeSuccess:
		return ResultSettled, ""
	default:
		return ResultProviderFailure, ReasonProvider
	}
}

func (s *ReconciliationService) publish(ctx context.Context, log *zap.Logger, p *payment.Payment) {
	events := p.PullEvents()
	if len(events) == 0 || s.publisher == nil {
		return
	}
	// the settlement is committed; a failed side effect must not undo it
	if err := s.publisher.Publish(ctx, events...); err != nil {
		log.Error("Failed to publish payment events", zap.Error(err))
	}
}

func (s *ReconciliationService) finish(ctx context.Context, span trace.Span, res *Result, start time.Time) {
	telemetry.SetAttributes(span,
		telemetry.SpanAttrOrderCode, res.OrderCode,
		telemetry.SpanAttrOutcome, string(res.Kind),
	)
	s.metrics.RecordCallback(ctx, res.Method.String(), string(res.Channel), string(res.Kind), s.now().Sub(start))
}
