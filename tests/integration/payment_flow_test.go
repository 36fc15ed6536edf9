package integration

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	identityapp "github.com/jobboard/backend/internal/application/identity"
	notificationapp "github.com/jobboard/backend/internal/application/notification"
	paymentapp "github.com/jobboard/backend/internal/application/payment"
	"github.com/jobboard/backend/internal/domain/payment"
	"github.com/jobboard/backend/internal/domain/shared"
	"github.com/jobboard/backend/internal/infrastructure/auth"
	"github.com/jobboard/backend/internal/infrastructure/cache"
	"github.com/jobboard/backend/internal/infrastructure/config"
	"github.com/jobboard/backend/internal/infrastructure/event"
	paymentinfra "github.com/jobboard/backend/internal/infrastructure/payment"
	"github.com/jobboard/backend/internal/infrastructure/persistence"
	"github.com/jobboard/backend/internal/interfaces/http/handler"
	"github.com/jobboard/backend/internal/interfaces/http/middleware"
	"github.com/jobboard/backend/internal/interfaces/http/router"
	"github.com/jobboard/backend/tests/testutil"
)

const (
	testVNPaySecret = "INTEGRATIONSECRET0123456789ABCDE"
	testFrontendURL = "https://jobs.example/payment/result"
)

// PaymentTestServer wires the HTTP surface the way cmd/server does, on a
// real database.
type PaymentTestServer struct {
	DB         *TestDB
	Engine     *gin.Engine
	Payments   *persistence.GormPaymentRepository
	Accounts   *persistence.GormAccountRepository
	Reconciler *paymentapp.ReconciliationService
	Events     *testutil.EventRecorder
}

func NewPaymentTestServer(t *testing.T, tdb *TestDB) *PaymentTestServer {
	t.Helper()

	log := zap.NewNop()
	vnpay, err := paymentinfra.NewVNPayAdapter(&paymentinfra.VNPayConfig{
		TmnCode:    "JOBTEST1",
		HashSecret: testVNPaySecret,
		PayURL:     "https://sandbox.vnpayment.vn/paymentv2/vpcpay.html",
		ReturnURL:  "https://api.jobs.example/payment/vnpay/return",
		Location:   time.FixedZone("ICT", 7*3600),
	})
	require.NoError(t, err)
	gateways := map[payment.Method]payment.Gateway{payment.MethodVNPay: vnpay}

	accounts := persistence.NewGormAccountRepository(tdb.DB)
	payments := persistence.NewGormPaymentRepository(tdb.DB)
	promotions := persistence.NewGormPromotionRepository(tdb.DB)
	notifications := persistence.NewGormNotificationRepository(tdb.DB)

	events := testutil.NewEventRecorder(payment.EventTypePaymentSucceeded, payment.EventTypePaymentFailed)
	bus := event.NewInMemoryEventBus(log)
	bus.Subscribe(event.NewIdempotentHandler(
		notificationapp.NewPaymentOutcomeHandler(notifications, log),
		cache.NewInMemoryIdempotencyStore(),
		log,
		event.WithKeyFunc(notificationapp.IdempotencyKey),
		event.WithIdempotencyConfig(shared.IdempotencyConfig{TTL: time.Hour, Enabled: true}),
	))
	bus.Subscribe(events)
	require.NoError(t, bus.Start(context.Background()))
	t.Cleanup(func() { _ = bus.Stop(context.Background()) })

	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:                "integration-secret-key-at-least-32-chars",
		AccessTokenExpiration: time.Hour,
		Issuer:                "jobboard-test",
	})
	blacklist := auth.NewInMemoryTokenBlacklist()
	authService := identityapp.NewAuthService(accounts, auth.NewPasswordHasher(4), jwtService, blacklist, log)
	paymentService := paymentapp.NewPaymentService(paymentapp.PaymentServiceConfig{
		Payments:   payments,
		Promotions: promotions,
		Gateways:   gateways,
		OrderCodes: payment.NewOrderCodeGenerator("JOB", time.FixedZone("ICT", 7*3600)),
		Policy:     payment.NewPointsPolicy(1000),
		MinAmount:  10000,
		Logger:     log,
	})
	reconciler := paymentapp.NewReconciliationService(paymentapp.ReconciliationServiceConfig{
		Payments:  payments,
		Gateways:  gateways,
		Publisher: bus,
		Logger:    log,
	})

	authHandler := handler.NewAuthHandler(authService)
	paymentHandler := handler.NewPaymentHandler(paymentService)
	callbackHandler := handler.NewPaymentCallbackHandler(reconciler, testFrontendURL, log)
	notificationHandler := handler.NewNotificationHandler(notificationapp.NewService(notifications))

	middleware.SetupValidator()
	engine := gin.New()
	engine.Use(middleware.RequestID())

	jwtConfig := middleware.DefaultJWTConfig(jwtService)
	jwtConfig.TokenBlacklist = blacklist

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Use(middleware.JWTAuthMiddlewareWithConfig(jwtConfig))

	r.Mount(router.Handlers{
		Callbacks:     callbackHandler,
		Auth:          authHandler,
		Payments:      paymentHandler,
		Notifications: notificationHandler,
	})

	return &PaymentTestServer{
		DB:         tdb,
		Engine:     engine,
		Payments:   payments,
		Accounts:   accounts,
		Reconciler: reconciler,
		Events:     events,
	}
}

// Request sends a request with an optional JSON body and bearer token
func (ts *PaymentTestServer) Request(method, path string, body any, token string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	ts.Engine.ServeHTTP(w, req)
	return w
}

func (ts *PaymentTestServer) Login(t *testing.T, email, password string) string {
	t.Helper()
	w := ts.Request(http.MethodPost, "/api/v1/auth/login", map[string]string{"email": email, "password": password}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp struct {
		Data identityapp.LoginResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Data.AccessToken
}

// signedVNPayCallback builds callback params signed with the test secret
func signedVNPayCallback(orderCode, responseCode, transactionNo string, amount int64) url.Values {
	params := map[string]string{
		"vnp_Amount":            strconv.FormatInt(amount*100, 10),
		"vnp_BankCode":          "NCB",
		"vnp_OrderInfo":         "Thanh toan don hang " + orderCode,
		"vnp_PayDate":           "20250101120512",
		"vnp_ResponseCode":      responseCode,
		"vnp_TmnCode":           "JOBTEST1",
		"vnp_TransactionNo":     transactionNo,
		"vnp_TransactionStatus": responseCode,
		"vnp_TxnRef":            orderCode,
	}
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	values := url.Values{}
	for _, k := range keys {
		parts = append(parts, url.QueryEscape(k)+"="+url.QueryEscape(params[k]))
		values.Set(k, params[k])
	}
	mac := hmac.New(sha512.New, []byte(testVNPaySecret))
	mac.Write([]byte(strings.Join(parts, "&")))
	values.Set("vnp_SecureHash", hex.EncodeToString(mac.Sum(nil)))
	return values
}

func toParams(v url.Values) map[string]string {
	out := make(map[string]string, len(v))
	for k := range v {
		out[k] = v.Get(k)
	}
	return out
}

func TestPaymentFlow_CheckoutToCredit(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ts := NewPaymentTestServer(t, NewTestDB(t))
	acc := ts.DB.CreateTestAccount("hr@acme.vn", "secret123")
	token := ts.Login(t, "hr@acme.vn", "secret123")

	w := ts.Request(http.MethodPost, "/api/v1/payments", map[string]any{"amount": 150000, "method": "vnpay"}, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created struct {
		Data paymentapp.CheckoutResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	orderCode := created.Data.OrderCode
	assert.True(t, strings.HasPrefix(orderCode, "JOB"))
	assert.Equal(t, int64(150), created.Data.Points)
	assert.Contains(t, created.Data.RedirectURL, "vnp_TxnRef="+orderCode)

	t.Run("browser return credits points and redirects", func(t *testing.T) {
		q := signedVNPayCallback(orderCode, "00", "14761234", 150000)
		w := ts.Request(http.MethodGet, "/payment/vnpay/return?"+q.Encode(), nil, "")

		require.Equal(t, http.StatusFound, w.Code)
		loc, err := url.Parse(w.Header().Get("Location"))
		require.NoError(t, err)
		assert.Equal(t, "success", loc.Query().Get("status"))
		assert.Equal(t, orderCode, loc.Query().Get("order"))
	})

	t.Run("ipn after return is acknowledged as already confirmed", func(t *testing.T) {
		q := signedVNPayCallback(orderCode, "00", "14761234", 150000)
		w := ts.Request(http.MethodGet, "/payment/vnpay/ipn?"+q.Encode(), nil, "")

		require.Equal(t, http.StatusOK, w.Code)
		var ack paymentapp.VNPayIPNAck
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ack))
		assert.Equal(t, "02", ack.RspCode)
	})

	t.Run("payment shows success to its owner", func(t *testing.T) {
		w := ts.Request(http.MethodGet, "/api/v1/payments/"+orderCode, nil, token)
		require.Equal(t, http.StatusOK, w.Code)
		var resp struct {
			Data paymentapp.PaymentResponse `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, string(payment.StatusSuccess), resp.Data.Status)
		require.NotNil(t, resp.Data.GatewayTranID)
		assert.Equal(t, "14761234", *resp.Data.GatewayTranID)
		assert.NotNil(t, resp.Data.PaidAt)
	})

	t.Run("points and audit log", func(t *testing.T) {
		a, err := ts.Accounts.FindByID(context.Background(), acc.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(150), a.Points)

		p, err := ts.Payments.FindByOrderCode(context.Background(), orderCode)
		require.NoError(t, err)
		assert.Contains(t, p.Meta, "vnpay_return_1")
		assert.Contains(t, p.Meta, "vnpay_ipn_1")
	})

	t.Run("one notification for the settled order", func(t *testing.T) {
		assert.Equal(t, 1, ts.Events.Count())

		w := ts.Request(http.MethodGet, "/api/v1/notifications", nil, token)
		require.Equal(t, http.StatusOK, w.Code)
		var resp struct {
			Data []notificationapp.NotificationResponse `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Len(t, resp.Data, 1)
		assert.Equal(t, orderCode, resp.Data[0].Reference)
	})
}

func TestPaymentFlow_ConcurrentCallbacksCreditOnce(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ts := NewPaymentTestServer(t, NewTestDB(t))
	acc := ts.DB.CreateTestAccount("race@acme.vn", "secret123")
	p, err := payment.NewPayment(acc.ID, "JOB20250101120000001", 200000, payment.MethodVNPay, 200, nil)
	require.NoError(t, err)
	require.NoError(t, ts.Payments.Create(context.Background(), p))

	params := toParams(signedVNPayCallback(p.OrderCode, "00", "99887766", 200000))

	const callers = 10
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		settled int
	)
	start := make(chan struct{})
	for i := range callers {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			handle := ts.Reconciler.HandleVNPayIPN
			if i%2 == 0 {
				handle = ts.Reconciler.HandleVNPayReturn
			}
			res, err := handle(context.Background(), params)
			if !assert.NoError(t, err) {
				return
			}
			assert.True(t, res.Succeeded())
			if res.Kind == paymentapp.ResultSettled {
				mu.Lock()
				settled++
				mu.Unlock()
			}
		}(i)
	}
	close(start)
	wg.Wait()

	assert.Equal(t, 1, settled)

	assert.Equal(t, int64(200), ts.DB.Points(acc.ID))

	stored, err := ts.Payments.FindByOrderCode(context.Background(), p.OrderCode)
	require.NoError(t, err)
	assert.Equal(t, payment.StatusSuccess, stored.Status)
	assert.Len(t, stored.Meta, callers)

	testutil.RequireEventually(t, func() bool {
		return ts.Events.Count() == 1
	}, time.Second, 10*time.Millisecond, "expected a single outcome event")
}

func TestPaymentFlow_ForgedCallbackFailsPayment(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ts := NewPaymentTestServer(t, NewTestDB(t))
	acc := ts.DB.CreateTestAccount("forged@acme.vn", "secret123")
	p, err := payment.NewPayment(acc.ID, "JOB20250101120000002", 50000, payment.MethodVNPay, 50, nil)
	require.NoError(t, err)
	require.NoError(t, ts.Payments.Create(context.Background(), p))

	q := signedVNPayCallback(p.OrderCode, "00", "1", 50000)
	q.Set("vnp_Amount", "500000000")
	w := ts.Request(http.MethodGet, "/payment/vnpay/ipn?"+q.Encode(), nil, "")

	require.Equal(t, http.StatusOK, w.Code)
	var ack paymentapp.VNPayIPNAck
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ack))
	assert.Equal(t, "97", ack.RspCode)

	assert.Zero(t, ts.DB.Points(acc.ID))

	stored, err := ts.Payments.FindByOrderCode(context.Background(), p.OrderCode)
	require.NoError(t, err)
	assert.Equal(t, payment.StatusFailed, stored.Status)
}
