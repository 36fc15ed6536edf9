package payment

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jobboard/backend/internal/domain/payment"
	"github.com/jobboard/backend/internal/domain/shared"
)

// =============================================================================
// Mocks
// =============================================================================

type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) Create(ctx context.Context, p *payment.Payment) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockPaymentRepository) FindByOrderCode(ctx context.Context, orderCode string) (*payment.Payment, error) {
	args := m.Called(ctx, orderCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindByOrderCodeForAccount(ctx context.Context, accountID uuid.UUID, orderCode string) (*payment.Payment, error) {
	args := m.Called(ctx, accountID, orderCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Payment), args.Error(1)
}

func (m *MockPaymentRepository) ListByAccount(ctx context.Context, accountID uuid.UUID, filter shared.Filter) ([]payment.Payment, int64, error) {
	args := m.Called(ctx, accountID, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]payment.Payment), args.Get(1).(int64), args.Error(2)
}

func (m *MockPaymentRepository) Settle(ctx context.Context, orderCode string, fn payment.SettleFunc) (*payment.Payment, error) {
	args := m.Called(ctx, orderCode, fn)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Payment), args.Error(1)
}

type MockPromotionRepository struct {
	mock.Mock
}

func (m *MockPromotionRepository) FindByID(ctx context.Context, id uuid.UUID) (*payment.Promotion, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Promotion), args.Error(1)
}

func (m *MockPromotionRepository) ListActive(ctx context.Context) ([]payment.Promotion, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]payment.Promotion), args.Error(1)
}

type MockGateway struct {
	mock.Mock
	method payment.Method
}

func (m *MockGateway) Method() payment.Method {
	return m.method
}

func (m *MockGateway) CreateCheckout(ctx context.Context, req *payment.CheckoutRequest) (*payment.CheckoutResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.CheckoutResponse), args.Error(1)
}

func (m *MockGateway) ParseCallback(ctx context.Context, params map[string]string) (*payment.Callback, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Callback), args.Error(1)
}

// =============================================================================
// Helpers
// =============================================================================

func newTestPaymentService(repo *MockPaymentRepository, promos *MockPromotionRepository, gw *MockGateway) *PaymentService {
	codes := payment.NewOrderCodeGenerator("JOB", nil)
	seq := []int{123, 456, 789, 1}
	codes.Random = func(int) int {
		n := seq[0]
		seq = seq[1:]
		return n
	}
	return NewPaymentService(PaymentServiceConfig{
		Payments:   repo,
		Promotions: promos,
		Gateways:   map[payment.Method]payment.Gateway{gw.method: gw},
		OrderCodes: codes,
		Policy:     payment.NewPointsPolicy(1000),
		MinAmount:  10000,
	})
}

// =============================================================================
// CreatePayment
// =============================================================================

func TestPaymentService_CreatePayment(t *testing.T) {
	ctx := context.Background()
	owner := uuid.New()

	t.Run("persists a pending payment and returns the redirect", func(t *testing.T) {
		repo := new(MockPaymentRepository)
		gw := &MockGateway{method: payment.MethodVNPay}
		svc := newTestPaymentService(repo, new(MockPromotionRepository), gw)

		repo.On("Create", mock.Anything, mock.MatchedBy(func(p *payment.Payment) bool {
			return p.AccountID == owner && p.Amount == 100000 && p.Points == 100 && p.Status == payment.StatusPending
		})).Return(nil).Once()
		gw.On("CreateCheckout", mock.Anything, mock.MatchedBy(func(req *payment.CheckoutRequest) bool {
			return req.Amount == 100000 && req.ClientIP == "10.0.0.1"
		})).Return(&payment.CheckoutResponse{
			Method:      payment.MethodVNPay,
			RedirectURL: "https://sandbox.vnpayment.vn/paymentv2/vpcpay.html?vnp_TxnRef=x",
		}, nil).Once()

		resp, err := svc.CreatePayment(ctx, owner, CreatePaymentRequest{Amount: 100000, Method: "VNPay", ClientIP: "10.0.0.1"})
		require.NoError(t, err)
		assert.Regexp(t, `^JOB\d{14}123$`, resp.OrderCode)
		assert.Equal(t, "vnpay", resp.Method)
		assert.Equal(t, int64(100), resp.Points)
		assert.Equal(t, "pending", resp.Status)
		assert.Contains(t, resp.RedirectURL, "vpcpay.html")
		repo.AssertExpectations(t)
		gw.AssertExpectations(t)
	})

	t.Run("storage and gateway see the caller's context", func(t *testing.T) {
		type ctxKey struct{}
		callerCtx := context.WithValue(ctx, ctxKey{}, "req-42")
		fromCaller := mock.MatchedBy(func(c context.Context) bool { return c.Value(ctxKey{}) == "req-42" })

		repo := new(MockPaymentRepository)
		gw := &MockGateway{method: payment.MethodMoMo}
		svc := newTestPaymentService(repo, new(MockPromotionRepository), gw)
		repo.On("Create", fromCaller, mock.Anything).Return(nil).Once()
		gw.On("CreateCheckout", fromCaller, mock.Anything).Return(&payment.CheckoutResponse{RedirectURL: "https://pay"}, nil).Once()

		_, err := svc.CreatePayment(callerCtx, owner, CreatePaymentRequest{Amount: 50000, Method: "momo"})
		require.NoError(t, err)
		repo.AssertExpectations(t)
		gw.AssertExpectations(t)
	})

	t.Run("amount below minimum", func(t *testing.T) {
		repo := new(MockPaymentRepository)
		gw := &MockGateway{method: payment.MethodVNPay}
		svc := newTestPaymentService(repo, new(MockPromotionRepository), gw)

		_, err := svc.CreatePayment(ctx, owner, CreatePaymentRequest{Amount: 9999, Method: "vnpay"})
		assert.ErrorIs(t, err, payment.ErrAmountBelowMinimum)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("unsupported method", func(t *testing.T) {
		gw := &MockGateway{method: payment.MethodVNPay}
		svc := newTestPaymentService(new(MockPaymentRepository), new(MockPromotionRepository), gw)

		_, err := svc.CreatePayment(ctx, owner, CreatePaymentRequest{Amount: 100000, Method: "paypal"})
		assert.ErrorIs(t, err, payment.ErrInvalidMethod)
	})

	t.Run("method without a configured gateway", func(t *testing.T) {
		gw := &MockGateway{method: payment.MethodVNPay}
		svc := newTestPaymentService(new(MockPaymentRepository), new(MockPromotionRepository), gw)

		_, err := svc.CreatePayment(ctx, owner, CreatePaymentRequest{Amount: 100000, Method: "momo"})
		assert.ErrorIs(t, err, payment.ErrGatewayNotConfigured)
	})

	t.Run("regenerates the order code on conflict", func(t *testing.T) {
		repo := new(MockPaymentRepository)
		gw := &MockGateway{method: payment.MethodMoMo}
		svc := newTestPaymentService(repo, new(MockPromotionRepository), gw)

		var codes []string
		repo.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
			codes = append(codes, args.Get(1).(*payment.Payment).OrderCode)
		}).Return(payment.ErrDuplicateOrderCode).Twice()
		repo.On("Create", mock.Anything, mock.Anything).Return(nil).Once()
		gw.On("CreateCheckout", mock.Anything, mock.Anything).Return(&payment.CheckoutResponse{RedirectURL: "https://test-payment.momo.vn/pay"}, nil)

		resp, err := svc.CreatePayment(ctx, owner, CreatePaymentRequest{Amount: 50000, Method: "momo"})
		require.NoError(t, err)
		assert.Regexp(t, `789$`, resp.OrderCode)
		assert.Len(t, codes, 2)
		assert.NotEqual(t, codes[0], codes[1])
	})

	t.Run("gives up after three conflicts", func(t *testing.T) {
		repo := new(MockPaymentRepository)
		gw := &MockGateway{method: payment.MethodMoMo}
		svc := newTestPaymentService(repo, new(MockPromotionRepository), gw)

		repo.On("Create", mock.Anything, mock.Anything).Return(payment.ErrDuplicateOrderCode).Times(3)

		_, err := svc.CreatePayment(ctx, owner, CreatePaymentRequest{Amount: 50000, Method: "momo"})
		assert.ErrorIs(t, err, payment.ErrOrderCodeExhausted)
		gw.AssertNotCalled(t, "CreateCheckout", mock.Anything, mock.Anything)
	})

	t.Run("gateway failure is returned", func(t *testing.T) {
		repo := new(MockPaymentRepository)
		gw := &MockGateway{method: payment.MethodMoMo}
		svc := newTestPaymentService(repo, new(MockPromotionRepository), gw)

		repo.On("Create", mock.Anything, mock.Anything).Return(nil)
		gw.On("CreateCheckout", mock.Anything, mock.Anything).Return(nil, payment.ErrGatewayUnavailable)

		_, err := svc.CreatePayment(ctx, owner, CreatePaymentRequest{Amount: 50000, Method: "momo"})
		assert.ErrorIs(t, err, payment.ErrGatewayUnavailable)
	})
}

func TestPaymentService_CreatePayment_Promotion(t *testing.T) {
	ctx := context.Background()
	owner := uuid.New()

	promo, err := payment.NewPromotion("Gói 500 điểm", 399000, 500)
	require.NoError(t, err)

	t.Run("uses the promotion price and points", func(t *testing.T) {
		repo := new(MockPaymentRepository)
		promos := new(MockPromotionRepository)
		gw := &MockGateway{method: payment.MethodVNPay}
		svc := newTestPaymentService(repo, promos, gw)

		promos.On("FindByID", mock.Anything, promo.ID).Return(promo, nil)
		repo.On("Create", mock.Anything, mock.MatchedBy(func(p *payment.Payment) bool {
			return p.Amount == 399000 && p.Points == 500 && p.PromotionID != nil && *p.PromotionID == promo.ID
		})).Return(nil)
		gw.On("CreateCheckout", mock.Anything, mock.Anything).Return(&payment.CheckoutResponse{RedirectURL: "https://pay"}, nil)

		resp, err := svc.CreatePayment(ctx, owner, CreatePaymentRequest{Amount: 1, Method: "vnpay", PromotionID: &promo.ID})
		require.NoError(t, err)
		assert.Equal(t, int64(399000), resp.Amount)
		assert.Equal(t, int64(500), resp.Points)
	})

	t.Run("inactive promotion", func(t *testing.T) {
		inactive := *promo
		inactive.Active = false
		promos := new(MockPromotionRepository)
		promos.On("FindByID", mock.Anything, promo.ID).Return(&inactive, nil)
		svc := newTestPaymentService(new(MockPaymentRepository), promos, &MockGateway{method: payment.MethodVNPay})

		_, err := svc.CreatePayment(ctx, owner, CreatePaymentRequest{Method: "vnpay", PromotionID: &promo.ID})
		assert.ErrorIs(t, err, payment.ErrPromotionInactive)
	})

	t.Run("unknown promotion", func(t *testing.T) {
		promos := new(MockPromotionRepository)
		promos.On("FindByID", mock.Anything, mock.Anything).Return(nil, payment.ErrPromotionNotFound)
		svc := newTestPaymentService(new(MockPaymentRepository), promos, &MockGateway{method: payment.MethodVNPay})

		id := uuid.New()
		_, err := svc.CreatePayment(ctx, owner, CreatePaymentRequest{Method: "vnpay", PromotionID: &id})
		assert.ErrorIs(t, err, payment.ErrPromotionInactive)
	})
}

// =============================================================================
// Queries
// =============================================================================

func TestPaymentService_GetPayment(t *testing.T) {
	ctx := context.Background()
	owner := uuid.New()
	repo := new(MockPaymentRepository)
	svc := newTestPaymentService(repo, new(MockPromotionRepository), &MockGateway{method: payment.MethodVNPay})

	p, err := payment.NewPayment(owner, "JOB20250101120000123", 100000, payment.MethodVNPay, 100, nil)
	require.NoError(t, err)
	repo.On("FindByOrderCodeForAccount", mock.Anything, owner, p.OrderCode).Return(p, nil)
	repo.On("FindByOrderCodeForAccount", mock.Anything, mock.Anything, mock.Anything).Return(nil, payment.ErrPaymentNotFound)

	resp, err := svc.GetPayment(ctx, owner, p.OrderCode)
	require.NoError(t, err)
	assert.Equal(t, "pending", resp.Status)
	assert.Equal(t, int64(100), resp.Points)

	_, err = svc.GetPayment(ctx, uuid.New(), p.OrderCode)
	assert.True(t, errors.Is(err, shared.ErrNotFound))
}

func TestPaymentService_ListPayments(t *testing.T) {
	ctx := context.Background()
	owner := uuid.New()
	repo := new(MockPaymentRepository)
	svc := newTestPaymentService(repo, new(MockPromotionRepository), &MockGateway{method: payment.MethodVNPay})

	p1, _ := payment.NewPayment(owner, "JOB20250101120000001", 100000, payment.MethodVNPay, 100, nil)
	p2, _ := payment.NewPayment(owner, "JOB20250101120000002", 200000, payment.MethodMoMo, 200, nil)
	repo.On("ListByAccount", mock.Anything, owner, shared.Filter{Page: 1, PageSize: 20}).
		Return([]payment.Payment{*p2, *p1}, int64(2), nil)

	page, err := svc.ListPayments(ctx, owner, shared.Filter{})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "JOB20250101120000002", page.Items[0].OrderCode)
	assert.Equal(t, int64(2), page.Total)
}

func TestPaymentService_ListPromotions(t *testing.T) {
	ctx := context.Background()
	promos := new(MockPromotionRepository)
	svc := newTestPaymentService(new(MockPaymentRepository), promos, &MockGateway{method: payment.MethodVNPay})

	promo, _ := payment.NewPromotion("Starter", 99000, 100)
	promos.On("ListActive", mock.Anything).Return([]payment.Promotion{*promo}, nil)

	items, err := svc.ListPromotions(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Starter", items[0].Name)
	assert.Equal(t, int64(99000), items[0].Price)
}
