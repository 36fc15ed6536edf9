package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jobboard/backend/internal/domain/payment"
	"github.com/jobboard/backend/internal/domain/shared"
	"github.com/jobboard/backend/internal/infrastructure/telemetry"
)

// maxOrderCodeAttempts bounds order code regeneration on a unique conflict
const maxOrderCodeAttempts = 3

// PaymentService starts point purchases and answers payment queries
type PaymentService struct {
	payments   payment.Repository
	promotions payment.PromotionRepository
	gateways   map[payment.Method]payment.Gateway
	orderCodes *payment.OrderCodeGenerator
	policy     payment.PointsPolicy
	minAmount  int64
	metrics    *telemetry.PaymentMetrics
	logger     *zap.Logger
}

// PaymentServiceConfig holds the dependencies of PaymentService
type PaymentServiceConfig struct {
	Payments   payment.Repository
	Promotions payment.PromotionRepository
	Gateways   map[payment.Method]payment.Gateway
	OrderCodes *payment.OrderCodeGenerator
	Policy     payment.PointsPolicy
	MinAmount  int64
	Metrics    *telemetry.PaymentMetrics
	Logger     *zap.Logger
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(cfg PaymentServiceConfig) *PaymentService {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	orderCodes := cfg.OrderCodes
	if orderCodes == nil {
		orderCodes = payment.NewOrderCodeGenerator(payment.DefaultOrderCodePrefix, nil)
	}
	policy := cfg.Policy
	if policy.Rate <= 0 {
		policy = payment.NewPointsPolicy(0)
	}
	gateways := cfg.Gateways
	if gateways == nil {
		gateways = map[payment.Method]payment.Gateway{}
	}

	return &PaymentService{
		payments:   cfg.Payments,
		promotions: cfg.Promotions,
		gateways:   gateways,
		orderCodes: orderCodes,
		policy:     policy,
		minAmount:  cfg.MinAmount,
		metrics:    cfg.Metrics,
		logger:     logger,
	}
}

// CreatePayment persists a pending payment for accountID and returns the
// gateway redirect. A gateway failure leaves the payment pending.
func (s *PaymentService) CreatePayment(ctx context.Context, accountID uuid.UUID, req CreatePaymentRequest) (*CheckoutResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "payment", "create",
		telemetry.SpanAttrAccountID, accountID.String(),
		telemetry.SpanAttrProvider, req.Method,
	)
	defer span.End()

	var promo *payment.Promotion
	amount := req.Amount
	if req.PromotionID != nil {
		p, err := s.activePromotion(ctx, *req.PromotionID)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
		promo = p
		amount = p.Price
	}

	if amount < s.minAmount || amount <= 0 {
		return nil, payment.ErrAmountBelowMinimum
	}
	method, err := payment.ParseMethod(req.Method)
	if err != nil {
		return nil, err
	}
	gateway, ok := s.gateways[method]
	if !ok {
		return nil, fmt.Errorf("%s: %w", method, payment.ErrGatewayNotConfigured)
	}

	var promoRef *uuid.UUID
	if promo != nil {
		promoRef = promo.PromotionRef()
	}
	points := s.policy.PointsForPurchase(amount, promo)

	p, err := s.createWithUniqueCode(ctx, accountID, amount, method, points, promoRef)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetAttributes(span,
		telemetry.SpanAttrOrderCode, p.OrderCode,
		telemetry.SpanAttrAmount, p.Amount,
	)

	checkout, err := gateway.CreateCheckout(ctx, &payment.CheckoutRequest{
		OrderCode: p.OrderCode,
		Amount:    p.Amount,
		OrderInfo: fmt.Sprintf("Thanh toán đơn hàng %s", p.OrderCode),
		ClientIP:  req.ClientIP,
	})
	s.metrics.RecordCheckout(ctx, method.String(), err)
	if err != nil {
		telemetry.RecordError(span, err)
		s.logger.Error("Gateway checkout failed",
			zap.String("order_code", p.OrderCode),
			zap.String("method", method.String()),
			zap.Error(err))
		return nil, fmt.Errorf("checkout %s: %w", p.OrderCode, err)
	}

	s.logger.Info("Payment created",
		zap.String("order_code", p.OrderCode),
		zap.String("method", method.String()),
		zap.String("account_id", accountID.String()),
		zap.Int64("amount", p.Amount),
		zap.Int64("points", p.Points))

	return &CheckoutResponse{
		OrderCode:   p.OrderCode,
		Method:      method.String(),
		Amount:      p.Amount,
		Points:      p.Points,
		Status:      p.Status.String(),
		RedirectURL: checkout.RedirectURL,
		Deeplink:    checkout.Deeplink,
	}, nil
}

func (s *PaymentService) activePromotion(ctx context.Context, id uuid.UUID) (*payment.Promotion, error) {
	promo, err := s.promotions.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, payment.ErrPromotionNotFound) || errors.Is(err, shared.ErrNotFound) {
			return nil, payment.ErrPromotionInactive
		}
		return nil, err
	}
	if !promo.Active {
		return nil, payment.ErrPromotionInactive
	}
	return promo, nil
}

func (s *PaymentService) createWithUniqueCode(
	ctx context.Context,
	accountID uuid.UUID,
	amount int64,
	method payment.Method,
	points int64,
	promotionID *uuid.UUID,
) (*payment.Payment, error) {
	for attempt := 1; attempt <= maxOrderCodeAttempts; attempt++ {
		p, err := payment.NewPayment(accountID, s.orderCodes.Next(), amount, method, points, promotionID)
		if err != nil {
			return nil, err
		}

		err = s.payments.Create(ctx, p)
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, payment.ErrDuplicateOrderCode) {
			return nil, err
		}
		s.logger.Warn("Order code collision, regenerating",
			zap.String("order_code", p.OrderCode),
			zap.Int("attempt", attempt))
	}
	return nil, payment.ErrOrderCodeExhausted
}

// GetPayment returns a payment owned by accountID
func (s *PaymentService) GetPayment(ctx context.Context, accountID uuid.UUID, orderCode string) (*PaymentResponse, error) {
	p, err := s.payments.FindByOrderCodeForAccount(ctx, accountID, orderCode)
	if err != nil {
		return nil, err
	}
	resp := ToPaymentResponse(p)
	return &resp, nil
}

// ListPayments returns the account's payments, newest first
func (s *PaymentService) ListPayments(ctx context.Context, accountID uuid.UUID, filter shared.Filter) (shared.Paginated[PaymentResponse], error) {
	filter = filter.Normalize()
	payments, total, err := s.payments.ListByAccount(ctx, accountID, filter)
	if err != nil {
		return shared.Paginated[PaymentResponse]{}, err
	}

	items := make([]PaymentResponse, len(payments))
	for i := range payments {
		items[i] = ToPaymentResponse(&payments[i])
	}
	return shared.NewPaginated(items, total, filter.Page, filter.PageSize), nil
}

// ListPromotions returns the purchasable promotions
func (s *PaymentService) ListPromotions(ctx context.Context) ([]PromotionResponse, error) {
	promos, err := s.promotions.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]PromotionResponse, len(promos))
	for i := range promos {
		items[i] = ToPromotionResponse(&promos[i])
	}
	return items, nil
}
