package payment

import (
	"time"

	"github.com/google/uuid"

	"github.com/jobboard/backend/internal/domain/payment"
)

// CreatePaymentRequest is the input of a point purchase.
// Amount is ignored when PromotionID is set.
type CreatePaymentRequest struct {
	Amount      int64      `json:"amount" binding:"omitempty,gt=0"`
	Method      string     `json:"method" binding:"required,notblank"`
	PromotionID *uuid.UUID `json:"promotion_id,omitempty"`
	ClientIP    string     `json:"-"`
}

// CheckoutResponse tells the client where to send the buyer
type CheckoutResponse struct {
	OrderCode   string `json:"order_code"`
	Method      string `json:"method"`
	Amount      int64  `json:"amount"`
	Points      int64  `json:"points"`
	Status      string `json:"status"`
	RedirectURL string `json:"redirect_url"`
	Deeplink    string `json:"deeplink,omitempty"`
}

// PaymentResponse is the owner's view of a payment
type PaymentResponse struct {
	ID            uuid.UUID  `json:"id"`
	OrderCode     string     `json:"order_code"`
	Method        string     `json:"method"`
	Amount        int64      `json:"amount"`
	Points        int64      `json:"points"`
	Status        string     `json:"status"`
	GatewayTranID *string    `json:"gateway_tran_id,omitempty"`
	PromotionID   *uuid.UUID `json:"promotion_id,omitempty"`
	PaidAt        *time.Time `json:"paid_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// ToPaymentResponse converts a domain payment to its response
func ToPaymentResponse(p *payment.Payment) PaymentResponse {
	return PaymentResponse{
		ID:            p.ID,
		OrderCode:     p.OrderCode,
		Method:        p.Method.String(),
		Amount:        p.Amount,
		Points:        p.Points,
		Status:        p.Status.String(),
		GatewayTranID: p.GatewayTranID,
		PromotionID:   p.PromotionID,
		PaidAt:        p.PaidAt,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

// PromotionResponse is a purchasable point package
type PromotionResponse struct {
	ID     uuid.UUID `json:"id"`
	Name   string    `json:"name"`
	Price  int64     `json:"price"`
	Points int64     `json:"points"`
}

// ToPromotionResponse converts a domain promotion to its response
func ToPromotionResponse(p *payment.Promotion) PromotionResponse {
	return PromotionResponse{
		ID:     p.ID,
		Name:   p.Name,
		Price:  p.Price,
		Points: p.Points,
	}
}

// MoMoIPNAck is the body MoMo expects in answer to an IPN
type MoMoIPNAck struct {
	ResultCode int    `json:"resultCode"`
	Message    string `json:"message"`
}

// MoMo IPN acknowledgment codes
const (
	MoMoAckAccepted          = 0
	MoMoAckSignatureMismatch = 1
	MoMoAckUnknownOrder      = 2
	MoMoAckInternalError     = 99
)

// NewMoMoIPNAck maps a reconciliation result to MoMo's acknowledgment.
// A nil result means reconciliation could not run.
func NewMoMoIPNAck(res *Result) MoMoIPNAck {
	if res == nil {
		return MoMoIPNAck{ResultCode: MoMoAckInternalError, Message: "internal error"}
	}
	switch res.Kind {
	case ResultSignatureMismatch:
		return MoMoIPNAck{ResultCode: MoMoAckSignatureMismatch, Message: "invalid signature"}
	case ResultUnknownOrder:
		return MoMoIPNAck{ResultCode: MoMoAckUnknownOrder, Message: "order not found"}
	default:
		return MoMoIPNAck{ResultCode: MoMoAckAccepted, Message: "success"}
	}
}

// VNPayIPNAck is the body VNPay expects in answer to an IPN
type VNPayIPNAck struct {
	RspCode string `json:"RspCode"`
	Message string `json:"Message"`
}

// NewVNPayIPNAck maps a reconciliation result to VNPay's acknowledgment
func NewVNPayIPNAck(res *Result) VNPayIPNAck {
	if res == nil {
		return VNPayIPNAck{RspCode: "99", Message: "Unknown error"}
	}
	switch res.Kind {
	case ResultSignatureMismatch:
		return VNPayIPNAck{RspCode: "97", Message: "Invalid signature"}
	case ResultUnknownOrder:
		return VNPayIPNAck{RspCode: "01", Message: "Order not found"}
	case ResultAmountMismatch:
		return VNPayIPNAck{RspCode: "04", Message: "Invalid amount"}
	case ResultAlreadyTerminal:
		return VNPayIPNAck{RspCode: "02", Message: "Order already confirmed"}
	default:
		return VNPayIPNAck{RspCode: "00", Message: "Confirm Success"}
	}
}
