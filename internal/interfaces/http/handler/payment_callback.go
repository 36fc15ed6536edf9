package handler

import (
	"context"
	"io"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	paymentapp "github.com/jobboard/backend/internal/application/payment"
	"github.com/jobboard/backend/internal/infrastructure/logger"
	paymentinfra "github.com/jobboard/backend/internal/infrastructure/payment"
)

// Redirect status values appended to the frontend URL
const (
	RedirectStatusSuccess = "success"
	RedirectStatusFailed  = "failed"
)

// PaymentCallbackHandler serves the gateway return and IPN endpoints.
// These routes are called by browsers coming back from a gateway or by the
// gateway itself and carry no bearer token. They never answer with a 5xx:
// returns always redirect and IPNs always acknowledge.
type PaymentCallbackHandler struct {
	BaseHandler
	reconciler  *paymentapp.ReconciliationService
	frontendURL string
	logger      *zap.Logger
}

// NewPaymentCallbackHandler creates a new PaymentCallbackHandler
func NewPaymentCallbackHandler(
	reconciler *paymentapp.ReconciliationService,
	frontendURL string,
	log *zap.Logger,
) *PaymentCallbackHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &PaymentCallbackHandler{
		reconciler:  reconciler,
		frontendURL: frontendURL,
		logger:      log,
	}
}

type reconcileFunc func(ctx context.Context, params map[string]string) (*paymentapp.Result, error)

// VNPayReturn handles GET /payment/vnpay/return
func (h *PaymentCallbackHandler) VNPayReturn(c *gin.Context) {
	h.handleReturn(c, h.reconciler.HandleVNPayReturn, "vnp_TxnRef")
}

// MoMoReturn handles GET /payment/momo/return
func (h *PaymentCallbackHandler) MoMoReturn(c *gin.Context) {
	h.handleReturn(c, h.reconciler.HandleMoMoReturn, "orderId")
}

// VNPayIPN handles GET /payment/vnpay/ipn
func (h *PaymentCallbackHandler) VNPayIPN(c *gin.Context) {
	res, err := h.reconciler.HandleVNPayIPN(c.Request.Context(), queryParams(c))
	if err != nil {
		h.log(c).Error("VNPay IPN could not be reconciled", zap.Error(err))
		res = nil
	}
	c.JSON(http.StatusOK, paymentapp.NewVNPayIPNAck(res))
}

// MoMoIPN handles POST /payment/momo/ipn
func (h *PaymentCallbackHandler) MoMoIPN(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.log(c).Warn("Failed to read MoMo IPN body", zap.Error(err))
		c.JSON(http.StatusOK, paymentapp.MoMoIPNAck{
			ResultCode: paymentapp.MoMoAckUnknownOrder,
			Message:    "malformed notification",
		})
		return
	}

	fields, err := paymentinfra.DecodeMoMoNotification(body)
	if err != nil {
		h.log(c).Warn("Malformed MoMo IPN acknowledged", zap.Error(err))
		c.JSON(http.StatusOK, paymentapp.MoMoIPNAck{
			ResultCode: paymentapp.MoMoAckUnknownOrder,
			Message:    "malformed notification",
		})
		return
	}

	res, err := h.reconciler.HandleMoMoIPN(c.Request.Context(), fields)
	if err != nil {
		h.log(c).Error("MoMo IPN could not be reconciled",
			zap.String("order_code", fields["orderId"]),
			zap.Error(err),
		)
		res = nil
	}
	c.JSON(http.StatusOK, paymentapp.NewMoMoIPNAck(res))
}

func (h *PaymentCallbackHandler) handleReturn(c *gin.Context, reconcile reconcileFunc, orderKey string) {
	params := queryParams(c)
	orderCode := params[orderKey]
	status := RedirectStatusFailed

	res, err := reconcile(c.Request.Context(), params)
	switch {
	case err != nil:
		h.log(c).Error("Payment return could not be reconciled",
			zap.String("order_code", orderCode),
			zap.Error(err),
		)
	case res.Succeeded():
		status = RedirectStatusSuccess
	}
	if res != nil && res.OrderCode != "" {
		orderCode = res.OrderCode
	}

	c.Redirect(http.StatusFound, h.redirectURL(status, orderCode))
}

// redirectURL appends status and order to the frontend URL, keeping any
// query it already carries
func (h *PaymentCallbackHandler) redirectURL(status, orderCode string) string {
	u, err := url.Parse(h.frontendURL)
	if err != nil {
		u = &url.URL{Path: "/"}
	}
	q := u.Query()
	q.Set("status", status)
	q.Set("order", orderCode)
	u.RawQuery = q.Encode()
	return u.String()
}

func (h *PaymentCallbackHandler) log(c *gin.Context) *zap.Logger {
	return logger.Enrich(c.Request.Context(), h.logger)
}

// queryParams keeps the first value of every query parameter
func queryParams(c *gin.Context) map[string]string {
	values := c.Request.URL.Query()
	params := make(map[string]string, len(values))
	for key, v := range values {
		if len(v) > 0 {
			params[key] = v[0]
		}
	}
	return params
}
