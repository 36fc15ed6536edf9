package payment

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/jobboard/backend/internal/domain/payment"
)

const (
	vnpayTimeLayout     = "20060102150405"
	vnpayCommandPay     = "pay"
	vnpayCurrencyVND    = "VND"
	vnpayOrderTypeOther = "other"
	vnpayParamPrefix    = "vnp_"

	vnpaySecureHash     = "vnp_SecureHash"
	vnpaySecureHashType = "vnp_SecureHashType"
)

// VNPayAdapter implements payment.Gateway for VNPay
type VNPayAdapter struct {
	config *VNPayConfig
	now    func() time.Time
}

// NewVNPayAdapter creates a new VNPay adapter
func NewVNPayAdapter(config *VNPayConfig) (*VNPayAdapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &VNPayAdapter{
		config: config,
		now:    time.Now,
	}, nil
}

// Method returns the payment method
func (a *VNPayAdapter) Method() payment.Method {
	return payment.MethodVNPay
}

// CreateCheckout builds a signed VNPay checkout URL. No outbound call is made.
func (a *VNPayAdapter) CreateCheckout(ctx context.Context, req *payment.CheckoutRequest) (*payment.CheckoutResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	now := a.now().In(a.config.Location)
	clientIP := req.ClientIP
	if clientIP == "" {
		clientIP = "127.0.0.1"
	}
	orderInfo := asciiOrderInfo(req.OrderInfo)
	if orderInfo == "" {
		orderInfo = "Thanh toan don hang " + req.OrderCode
	}

	params := map[string]string{
		"vnp_Version":    a.config.Version,
		"vnp_Command":    vnpayCommandPay,
		"vnp_TmnCode":    a.config.TmnCode,
		"vnp_Amount":     strconv.FormatInt(req.Amount*100, 10),
		"vnp_CurrCode":   vnpayCurrencyVND,
		"vnp_TxnRef":     req.OrderCode,
		"vnp_OrderInfo":  orderInfo,
		"vnp_OrderType":  vnpayOrderTypeOther,
		"vnp_Locale":     a.config.Locale,
		"vnp_ReturnUrl":  a.config.ReturnURL,
		"vnp_IpAddr":     clientIP,
		"vnp_CreateDate": now.Format(vnpayTimeLayout),
		"vnp_ExpireDate": now.Add(a.config.ExpireAfter).Format(vnpayTimeLayout),
	}

	query := canonicalQuery(params)
	hash := hmacSHA512Hex(a.config.HashSecret, query)

	return &payment.CheckoutResponse{
		Method:      payment.MethodVNPay,
		RedirectURL: a.config.PayURL + "?" + query + "&" + vnpaySecureHash + "=" + hash,
	}, nil
}

// ParseCallback verifies vnp_SecureHash over the remaining vnp_ parameters and
// translates vnp_ResponseCode into an outcome.
func (a *VNPayAdapter) ParseCallback(ctx context.Context, params map[string]string) (*payment.Callback, error) {
	orderCode := strings.TrimSpace(params["vnp_TxnRef"])
	if orderCode == "" {
		return nil, payment.ErrMalformedCallback
	}

	provided := params[vnpaySecureHash]
	signed := make(map[string]string, len(params))
	for key, value := range params {
		if !strings.HasPrefix(key, vnpayParamPrefix) || key == vnpaySecureHash || key == vnpaySecureHashType {
			continue
		}
		signed[key] = value
	}
	expected := hmacSHA512Hex(a.config.HashSecret, canonicalQuery(signed))

	code := payment.VNPayResponseCode(params["vnp_ResponseCode"])
	cb := &payment.Callback{
		Method:        payment.MethodVNPay,
		OrderCode:     orderCode,
		Verified:      signaturesEqual(expected, provided),
		ProviderCode:  code.String(),
		Message:       code.Description(),
		GatewayTranID: params["vnp_TransactionNo"],
		Payload:       params,
	}
	if cb.Verified {
		cb.Outcome = code.Outcome()
	}
	if raw, err := strconv.ParseInt(params["vnp_Amount"], 10, 64); err == nil {
		cb.Amount = raw / 100
	}

	return cb, nil
}

// Ensure VNPayAdapter implements payment.Gateway
var _ payment.Gateway = (*VNPayAdapter)(nil)
