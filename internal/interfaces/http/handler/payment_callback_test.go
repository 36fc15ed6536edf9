package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	paymentapp "github.com/jobboard/backend/internal/application/payment"
	"github.com/jobboard/backend/internal/domain/payment"
)

const testFrontendURL = "https://jobs.example/payment/result"

func (e *paymentTestEnv) callbackRouter(frontendURL string) *gin.Engine {
	h := NewPaymentCallbackHandler(e.reconciler, frontendURL, nil)
	r := gin.New()
	g := r.Group("/payment")
	g.GET("/vnpay/return", h.VNPayReturn)
	g.GET("/vnpay/ipn", h.VNPayIPN)
	g.GET("/momo/return", h.MoMoReturn)
	g.POST("/momo/ipn", h.MoMoIPN)
	return r
}

func callbackQuery(order, code, sig string, amount string) string {
	v := url.Values{}
	v.Set("order", order)
	v.Set("amount", amount)
	v.Set("code", code)
	v.Set("tran", "T-"+order)
	v.Set("sig", sig)
	return v.Encode()
}

func redirectTarget(t *testing.T, w *httptest.ResponseRecorder) url.Values {
	t.Helper()
	require.Equal(t, http.StatusFound, w.Code, w.Body.String())
	loc, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "jobs.example", loc.Host)
	assert.Equal(t, "/payment/result", loc.Path)
	return loc.Query()
}

func momoIPN(r http.Handler, body string) (*httptest.ResponseRecorder, paymentapp.MoMoIPNAck) {
	req := httptest.NewRequest(http.MethodPost, "/payment/momo/ipn", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var ack paymentapp.MoMoIPNAck
	_ = json.Unmarshal(w.Body.Bytes(), &ack)
	return w, ack
}

func vnpayIPN(r http.Handler, query string) (*httptest.ResponseRecorder, paymentapp.VNPayIPNAck) {
	w := get(r, "/payment/vnpay/ipn?"+query)
	var ack paymentapp.VNPayIPNAck
	_ = json.Unmarshal(w.Body.Bytes(), &ack)
	return w, ack
}

func TestPaymentCallbackHandler_VNPayReturn(t *testing.T) {
	tests := []struct {
		name           string
		query          string
		expectedStatus string
		expectedOrder  string
		expectedPoints int64
	}{
		{
			name:           "verified success credits points",
			query:          callbackQuery("JOB1", "00", "ok", "100000"),
			expectedStatus: RedirectStatusSuccess,
			expectedOrder:  "JOB1",
			expectedPoints: 100,
		},
		{
			name:           "provider failure",
			query:          callbackQuery("JOB1", "24", "ok", "100000"),
			expectedStatus: RedirectStatusFailed,
			expectedOrder:  "JOB1",
		},
		{
			name:           "bad signature",
			query:          callbackQuery("JOB1", "00", "forged", "100000"),
			expectedStatus: RedirectStatusFailed,
			expectedOrder:  "JOB1",
		},
		{
			name:           "amount mismatch",
			query:          callbackQuery("JOB1", "00", "ok", "1000"),
			expectedStatus: RedirectStatusFailed,
			expectedOrder:  "JOB1",
		},
		{
			name:           "unknown order",
			query:          callbackQuery("JOB404", "00", "ok", "100000"),
			expectedStatus: RedirectStatusFailed,
			expectedOrder:  "JOB404",
		},
		{
			name:           "malformed callback",
			query:          "vnp_TxnRef=JOB1",
			expectedStatus: RedirectStatusFailed,
			expectedOrder:  "JOB1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newPaymentTestEnv(t, nil)
			env.seed(t, "JOB1", payment.MethodVNPay, 100000, 100)

			w := get(env.callbackRouter(testFrontendURL), "/payment/vnpay/return?"+tt.query)

			q := redirectTarget(t, w)
			assert.Equal(t, tt.expectedStatus, q.Get("status"))
			assert.Equal(t, tt.expectedOrder, q.Get("order"))
			assert.Equal(t, tt.expectedPoints, env.points(t))
		})
	}
}

func TestPaymentCallbackHandler_ReturnReplayCreditsOnce(t *testing.T) {
	env := newPaymentTestEnv(t, nil)
	env.seed(t, "JOB1", payment.MethodMoMo, 50000, 50)
	r := env.callbackRouter(testFrontendURL)
	path := "/payment/momo/return?" + callbackQuery("JOB1", "00", "ok", "50000")

	for range 3 {
		q := redirectTarget(t, get(r, path))
		assert.Equal(t, RedirectStatusSuccess, q.Get("status"))
	}
	assert.Equal(t, int64(50), env.points(t))

	// a late failure does not undo the success
	q := redirectTarget(t, get(r, "/payment/momo/return?"+callbackQuery("JOB1", "1006", "ok", "50000")))
	assert.Equal(t, RedirectStatusSuccess, q.Get("status"))
	assert.Equal(t, int64(50), env.points(t))
}

func TestPaymentCallbackHandler_ReturnStorageFailure(t *testing.T) {
	env := newPaymentTestEnv(t, nil)
	env.seed(t, "JOB1", payment.MethodVNPay, 100000, 100)
	r := env.callbackRouter(testFrontendURL)
	sqlDB, err := env.db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	w := get(r, "/payment/vnpay/return?vnp_TxnRef=JOB1&"+callbackQuery("JOB1", "00", "ok", "100000"))

	q := redirectTarget(t, w)
	assert.Equal(t, RedirectStatusFailed, q.Get("status"))
	assert.Equal(t, "JOB1", q.Get("order"))
}

func TestPaymentCallbackHandler_ReturnGatewayNotConfigured(t *testing.T) {
	env := newPaymentTestEnv(t, map[payment.Method]payment.Gateway{
		payment.MethodVNPay: fakeGateway{method: payment.MethodVNPay},
	})

	w := get(env.callbackRouter(testFrontendURL), "/payment/momo/return?orderId=JOB9&"+callbackQuery("JOB9", "00", "ok", "1"))

	q := redirectTarget(t, w)
	assert.Equal(t, RedirectStatusFailed, q.Get("status"))
	assert.Equal(t, "JOB9", q.Get("order"))
}

func TestPaymentCallbackHandler_RedirectKeepsFrontendQuery(t *testing.T) {
	env := newPaymentTestEnv(t, nil)
	env.seed(t, "JOB1", payment.MethodVNPay, 100000, 100)

	w := get(env.callbackRouter(testFrontendURL+"?lang=vi"), "/payment/vnpay/return?"+callbackQuery("JOB1", "00", "ok", "100000"))

	q := redirectTarget(t, w)
	assert.Equal(t, "vi", q.Get("lang"))
	assert.Equal(t, RedirectStatusSuccess, q.Get("status"))
}

func TestPaymentCallbackHandler_MoMoIPN(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		expectedCode   int
		expectedPoints int64
	}{
		{
			name:           "verified success",
			body:           `{"order":"JOB2","amount":50000,"code":"00","tran":"T2","sig":"ok"}`,
			expectedCode:   paymentapp.MoMoAckAccepted,
			expectedPoints: 50,
		},
		{
			name:         "provider failure is still accepted",
			body:         `{"order":"JOB2","amount":50000,"code":"1006","tran":"T2","sig":"ok"}`,
			expectedCode: paymentapp.MoMoAckAccepted,
		},
		{
			name:         "bad signature",
			body:         `{"order":"JOB2","amount":50000,"code":"00","tran":"T2","sig":"forged"}`,
			expectedCode: paymentapp.MoMoAckSignatureMismatch,
		},
		{
			name:         "unknown order",
			body:         `{"order":"JOB404","amount":50000,"code":"00","tran":"T2","sig":"ok"}`,
			expectedCode: paymentapp.MoMoAckUnknownOrder,
		},
		{
			name:         "malformed body",
			body:         `not json`,
			expectedCode: paymentapp.MoMoAckUnknownOrder,
		},
		{
			name:         "missing order",
			body:         `{"amount":50000}`,
			expectedCode: paymentapp.MoMoAckUnknownOrder,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newPaymentTestEnv(t, nil)
			env.seed(t, "JOB2", payment.MethodMoMo, 50000, 50)

			w, ack := momoIPN(env.callbackRouter(testFrontendURL), tt.body)

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.expectedCode, ack.ResultCode, w.Body.String())
			assert.Equal(t, tt.expectedPoints, env.points(t))
		})
	}
}

func TestPaymentCallbackHandler_MoMoIPNStorageFailure(t *testing.T) {
	env := newPaymentTestEnv(t, nil)
	r := env.callbackRouter(testFrontendURL)
	sqlDB, err := env.db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	w, ack := momoIPN(r, `{"order":"JOB2","amount":50000,"code":"00","tran":"T2","sig":"ok"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, paymentapp.MoMoAckInternalError, ack.ResultCode)
}

func TestPaymentCallbackHandler_VNPayIPN(t *testing.T) {
	env := newPaymentTestEnv(t, nil)
	env.seed(t, "JOB3", payment.MethodVNPay, 100000, 100)
	env.seed(t, "JOB4", payment.MethodVNPay, 100000, 100)
	env.seed(t, "JOB5", payment.MethodVNPay, 100000, 100)
	r := env.callbackRouter(testFrontendURL)

	steps := []struct {
		name    string
		query   string
		rspCode string
	}{
		{"bad signature", callbackQuery("JOB5", "00", "forged", "100000"), "97"},
		{"unknown order", callbackQuery("JOB404", "00", "ok", "100000"), "01"},
		{"amount mismatch", callbackQuery("JOB4", "00", "ok", "1000"), "04"},
		{"success", callbackQuery("JOB3", "00", "ok", "100000"), "00"},
		{"replay", callbackQuery("JOB3", "00", "ok", "100000"), "02"},
		{"failure after decision", callbackQuery("JOB4", "24", "ok", "100000"), "02"},
	}

	for _, step := range steps {
		w, ack := vnpayIPN(r, step.query)
		assert.Equal(t, http.StatusOK, w.Code, step.name)
		assert.Equal(t, step.rspCode, ack.RspCode, step.name)
	}
	assert.Equal(t, int64(100), env.points(t))

	p, err := env.payments.FindByOrderCode(context.Background(), "JOB3")
	require.NoError(t, err)
	assert.Equal(t, payment.StatusSuccess, p.Status)
}

func TestPaymentCallbackHandler_VNPayIPNGatewayNotConfigured(t *testing.T) {
	env := newPaymentTestEnv(t, map[payment.Method]payment.Gateway{})

	w, ack := vnpayIPN(env.callbackRouter(testFrontendURL), callbackQuery("JOB3", "00", "ok", "100000"))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "99", ack.RspCode)
}
