package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/jobboard/backend/internal/domain/payment"
)

// MoMoAdapter implements payment.Gateway for MoMo
type MoMoAdapter struct {
	config     *MoMoConfig
	httpClient *http.Client
	newID      func() string
}

// NewMoMoAdapter creates a new MoMo adapter
func NewMoMoAdapter(config *MoMoConfig) (*MoMoAdapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &MoMoAdapter{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		newID: func() string { return uuid.New().String() },
	}, nil
}

// WithHTTPClient replaces the HTTP client used for outbound calls
func (a *MoMoAdapter) WithHTTPClient(client *http.Client) *MoMoAdapter {
	a.httpClient = client
	return a
}

// Method returns the payment method
func (a *MoMoAdapter) Method() payment.Method {
	return payment.MethodMoMo
}

// CreateCheckout signs a captureWallet request and posts it to MoMo
func (a *MoMoAdapter) CreateCheckout(ctx context.Context, req *payment.CheckoutRequest) (*payment.CheckoutResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	orderInfo := strings.TrimSpace(req.OrderInfo)
	if orderInfo == "" {
		orderInfo = "Thanh toán đơn hàng " + req.OrderCode
	}

	body := momoCreateRequest{
		PartnerCode: a.config.PartnerCode,
		RequestID:   a.newID(),
		Amount:      req.Amount,
		OrderID:     req.OrderCode,
		OrderInfo:   orderInfo,
		RedirectURL: a.config.RedirectURL,
		IpnURL:      a.config.IPNURL,
		RequestType: a.config.RequestType,
		ExtraData:   "",
		Lang:        a.config.Lang,
	}
	body.Signature = a.sign(momoCreateSignKeys, map[string]string{
		"amount":      strconv.FormatInt(body.Amount, 10),
		"extraData":   body.ExtraData,
		"ipnUrl":      body.IpnURL,
		"orderId":     body.OrderID,
		"orderInfo":   body.OrderInfo,
		"partnerCode": body.PartnerCode,
		"redirectUrl": body.RedirectURL,
		"requestId":   body.RequestID,
		"requestType": body.RequestType,
	})

	respBody, err := a.doRequest(ctx, momoCreatePath, body)
	if err != nil {
		return nil, err
	}

	var resp momoCreateResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", payment.ErrGatewayInvalidResponse, err)
	}

	code := payment.MoMoResultCode(resp.ResultCode)
	if code.Outcome() != payment.OutcomeSuccess {
		return nil, fmt.Errorf("%w: momo resultCode %d: %s", payment.ErrProviderFailure, resp.ResultCode, resp.Message)
	}
	if resp.PayURL == "" && resp.Deeplink == "" {
		return nil, fmt.Errorf("%w: missing payUrl", payment.ErrGatewayInvalidResponse)
	}

	return &payment.CheckoutResponse{
		Method:      payment.MethodMoMo,
		RedirectURL: resp.PayURL,
		Deeplink:    resp.Deeplink,
		RequestID:   body.RequestID,
	}, nil
}

// ParseCallback verifies the signature of a return redirect or IPN body.
// accessKey is not part of the payload and comes from configuration, as does
// ipnUrl when the payload does not carry it.
func (a *MoMoAdapter) ParseCallback(ctx context.Context, params map[string]string) (*payment.Callback, error) {
	orderCode := strings.TrimSpace(params["orderId"])
	if orderCode == "" {
		return nil, payment.ErrMalformedCallback
	}

	expected := a.sign(momoCallbackSignKeys, params)
	code := payment.ParseMoMoResultCode(params["resultCode"])

	cb := &payment.Callback{
		Method:        payment.MethodMoMo,
		OrderCode:     orderCode,
		Verified:      signaturesEqual(expected, params["signature"]),
		ProviderCode:  code.String(),
		Message:       params["message"],
		GatewayTranID: params["transId"],
		Payload:       params,
	}
	if cb.Message == "" {
		cb.Message = code.Description()
	}
	if cb.Verified {
		cb.Outcome = code.Outcome()
	}
	if amount, err := strconv.ParseInt(params["amount"], 10, 64); err == nil {
		cb.Amount = amount
	}

	return cb, nil
}

// sign builds the raw string in keys order, with accessKey from config, and HMACs it
func (a *MoMoAdapter) sign(keys []string, values map[string]string) string {
	fields := maps.Clone(values)
	if fields == nil {
		fields = map[string]string{}
	}
	fields["accessKey"] = a.config.AccessKey
	if _, ok := fields["ipnUrl"]; !ok {
		fields["ipnUrl"] = a.config.IPNURL
	}
	return hmacSHA256Hex(a.config.SecretKey, rawSignString(keys, fields))
}

// doRequest posts a JSON body to MoMo and returns the response body
func (a *MoMoAdapter) doRequest(ctx context.Context, path string, body any) ([]byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("momo: failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(a.config.Endpoint, "/")+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("momo: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=UTF-8")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", payment.ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("momo: failed to read response: %w", err)
	}

	// MoMo answers business errors with 4xx and a JSON body carrying resultCode
	if resp.StatusCode >= 500 {
		return nil, fmt.Errorf("%w: HTTP %d", payment.ErrGatewayRequestFailed, resp.StatusCode)
	}
	if resp.StatusCode >= 400 && !json.Valid(respBody) {
		return nil, fmt.Errorf("%w: HTTP %d", payment.ErrGatewayRequestFailed, resp.StatusCode)
	}

	return respBody, nil
}

// Ensure MoMoAdapter implements payment.Gateway
var _ payment.Gateway = (*MoMoAdapter)(nil)
