package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jobboard/backend/internal/domain/payment"
	"github.com/jobboard/backend/internal/domain/shared"
	"github.com/jobboard/backend/internal/infrastructure/auth"
	"github.com/jobboard/backend/internal/infrastructure/logger"
	"github.com/jobboard/backend/internal/interfaces/http/dto"
	"github.com/jobboard/backend/internal/interfaces/http/middleware"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// getAccountID extracts the authenticated account from JWT claims
func getAccountID(c *gin.Context) (uuid.UUID, error) {
	id := middleware.GetJWTAccountID(c)
	if id == "" {
		return uuid.Nil, auth.ErrMissingAccountID
	}
	return uuid.Parse(id)
}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// Error sends an error response with the appropriate status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, middleware.RequestIDOf(c)))
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// Unauthorized sends a 401 unauthorized response
func (h *BaseHandler) Unauthorized(c *gin.Context, message string) {
	h.Error(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, message)
}

// InternalError sends a 500 internal server error response
func (h *BaseHandler) InternalError(c *gin.Context, message string) {
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, message)
}

// ValidationError answers a failed ShouldBind with field details
func (h *BaseHandler) ValidationError(c *gin.Context, err error) {
	middleware.HandleValidationError(c, err)
}

// HandleError maps service errors to HTTP responses. Domain errors carry
// their own code; gateway errors map to 502; anything else is a 500 and is logged.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	var domainErr *shared.DomainError
	switch {
	case errors.As(err, &domainErr):
		code := dto.NormalizeErrorCode(domainErr.Code)
		h.Error(c, dto.GetHTTPStatus(code), code, domainErr.Message)
	case errors.Is(err, payment.ErrGatewayNotConfigured):
		h.Error(c, http.StatusBadRequest, dto.ErrCodeGatewayNotConfigured, "Payment method is not available")
	case errors.Is(err, payment.ErrGatewayRequestFailed):
		h.Error(c, http.StatusBadGateway, dto.ErrCodeGatewayRejected, "Payment provider rejected the request")
	case errors.Is(err, payment.ErrGatewayUnavailable), errors.Is(err, payment.ErrGatewayInvalidResponse):
		h.Error(c, http.StatusBadGateway, dto.ErrCodeGatewayUnavailable, "Payment provider is unavailable")
	case errors.Is(err, auth.ErrMissingAccountID), errors.Is(err, auth.ErrInvalidClaims):
		h.Unauthorized(c, "Authentication required")
	default:
		logger.Enrich(c.Request.Context(), logger.GetGinLogger(c)).Error("Unhandled request error", zap.Error(err))
		h.InternalError(c, "An unexpected error occurred")
	}
}
