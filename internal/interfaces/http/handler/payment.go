package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	paymentapp "github.com/jobboard/backend/internal/application/payment"
	"github.com/jobboard/backend/internal/interfaces/http/dto"
)

// PaymentHandler serves point purchases and the owner's payment history
type PaymentHandler struct {
	BaseHandler
	paymentService *paymentapp.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(paymentService *paymentapp.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// Create handles POST /api/v1/payments and answers with the gateway redirect
// 
// @Summary      Buy points
// @Description  Creates a pending payment and returns the gateway checkout URL. With promotion_id the promotion's price and points apply and amount is ignored.
// @Tags         payments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body paymentapp.CreatePaymentRequest true "Purchase"
// @Success      201 {object} dto.Response{data=paymentapp.CheckoutResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      502 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /payments [post]
func (h *PaymentHandler) Create(c *gin.Context) {
	accountID, err := getAccountID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req paymentapp.CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}
	req.ClientIP = c.ClientIP()

	checkout, err := h.paymentService.CreatePayment(c.Request.Context(), accountID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, checkout)
}

// Get handles GET /api/v1/payments/:order_code
// 
// @Summary      Get a payment
// @Tags         payments
// @Produce      json
// @Security     BearerAuth
// @Param        order_code path string true "Order code"
// @Success      200 {object} dto.Response{data=paymentapp.PaymentResponse}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /payments/{order_code} [get]
func (h *PaymentHandler) Get(c *gin.Context) {
	accountID, err := getAccountID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	resp, err := h.paymentService.GetPayment(c.Request.Context(), accountID, c.Param("order_code"))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// List handles GET /api/v1/payments, newest first
// 
// @Summary      List payments
// @Tags         payments
// @Produce      json
// @Security     BearerAuth
// @Param        page       query int    false "Page number" minimum(1)
// @Param        page_size  query int    false "Page size" minimum(1) maximum(100)
// @Param        sort_by    query string false "created_at, updated_at, amount, points, status or paid_at"
// @Param        sort_order query string false "asc or desc"
// @Success      200 {object} dto.Response{data=[]paymentapp.PaymentResponse,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /payments [get]
func (h *PaymentHandler) List(c *gin.Context) {
	accountID, err := getAccountID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var page dto.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		h.ValidationError(c, err)
		return
	}

	result, err := h.paymentService.ListPayments(c.Request.Context(), accountID, page.Filter())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewPaginatedResponse(result))
}

// ListPromotions handles GET /api/v1/promotions
// 
// @Summary      List active promotions
// @Tags         payments
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} dto.Response{data=[]paymentapp.PromotionResponse}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /promotions [get]
func (h *PaymentHandler) ListPromotions(c *gin.Context) {
	promotions, err := h.paymentService.ListPromotions(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, promotions)
}
