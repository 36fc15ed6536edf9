package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/jobboard/backend/internal/application/identity"
	"github.com/jobboard/backend/internal/interfaces/http/middleware"
)

// AuthHandler serves login, logout and the caller's own account
type AuthHandler struct {
	BaseHandler
	authService *identity.AuthService
}

func NewAuthHandler(authService *identity.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// noStore keeps tokens and point balances out of shared caches
func noStore(c *gin.Context) {
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
}

// Login handles POST /api/v1/auth/login
// 
// @Summary      Log in
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body identity.LoginInput true "Credentials"
// @Success      200 {object} dto.Response{data=identity.LoginResult}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var in identity.LoginInput
	if err := c.ShouldBindJSON(&in); err != nil {
		h.ValidationError(c, err)
		return
	}
	result, err := h.authService.Login(c.Request.Context(), in)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	noStore(c)
	h.Success(c, result)
}

// Logout handles POST /api/v1/auth/logout. The presented token stays
// revoked until it would have expired anyway.
// 
// @Summary      Log out
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} dto.Response
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	claims := middleware.GetJWTClaims(c)
	if claims == nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	if err := h.authService.Logout(c.Request.Context(), claims); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"message": "Logged out successfully"})
}

// Me handles GET /api/v1/accounts/me
// 
// @Summary      Current account
// @Description  The caller's account with its point balance
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} dto.Response{data=identity.AccountResponse}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /accounts/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	accountID, err := getAccountID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	profile, err := h.authService.Me(c.Request.Context(), accountID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	noStore(c)
	h.Success(c, profile)
}
