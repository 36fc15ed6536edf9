package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jobboard/backend/internal/infrastructure/auth"
	"github.com/jobboard/backend/internal/infrastructure/config"
	"github.com/jobboard/backend/internal/infrastructure/logger"
)

func newTestJWTService(expiration time.Duration) *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret:                "test-secret-key-at-least-32-chars",
		AccessTokenExpiration: expiration,
		Issuer:                "test-issuer",
	})
}

func newTestToken(t *testing.T, jwtService *auth.JWTService) (*auth.Token, auth.TokenInput) {
	t.Helper()
	input := auth.TokenInput{
		AccountID: uuid.New(),
		Email:     "employer@example.com",
		Role:      "employer",
	}
	token, err := jwtService.GenerateToken(input)
	require.NoError(t, err)
	return token, input
}

func protectedRouter(cfg JWTMiddlewareConfig, handler gin.HandlerFunc) *gin.Engine {
	if handler == nil {
		handler = func(c *gin.Context) {
			c.Status(http.StatusOK)
		}
	}
	router := gin.New()
	router.Use(JWTAuthMiddlewareWithConfig(cfg))
	router.GET("/api/v1/accounts/me", handler)
	router.GET("/payment/vnpay/return", handler)
	router.GET("/health", handler)
	return router
}

func serveWithAuth(router *gin.Engine, path, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

type failingBlacklist struct{}

func (failingBlacklist) AddToBlacklist(context.Context, string, time.Duration) error {
	return errors.New("redis down")
}

func (failingBlacklist) IsBlacklisted(context.Context, string) (bool, error) {
	return false, errors.New("redis down")
}

func TestJWTAuthMiddleware_ValidToken(t *testing.T) {
	jwtService := newTestJWTService(15 * time.Minute)
	token, input := newTestToken(t, jwtService)

	router := protectedRouter(DefaultJWTConfig(jwtService), func(c *gin.Context) {
		claims := GetJWTClaims(c)
		require.NotNil(t, claims)
		assert.Equal(t, input.AccountID.String(), claims.AccountID)
		assert.Equal(t, input.AccountID.String(), GetJWTAccountID(c))
		assert.Equal(t, "employer", c.GetString(JWTRoleKey))
		assert.Equal(t, input.AccountID.String(), logger.GetAccountID(c.Request.Context()))
		c.Status(http.StatusOK)
	})

	rec := serveWithAuth(router, "/api/v1/accounts/me", "Bearer "+token.AccessToken)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestJWTAuthMiddleware_Rejections(t *testing.T) {
	jwtService := newTestJWTService(15 * time.Minute)
	expired, _ := newTestToken(t, newTestJWTService(-time.Hour))

	tests := []struct {
		name   string
		header string
		code   string
	}{
		{"missing header", "", "ERR_TOKEN_INVALID"},
		{"wrong scheme", "Basic abc", "ERR_TOKEN_INVALID"},
		{"empty token", "Bearer ", "ERR_TOKEN_INVALID"},
		{"garbage token", "Bearer invalid-token", "ERR_TOKEN_INVALID"},
		{"expired token", "Bearer " + expired.AccessToken, "ERR_TOKEN_EXPIRED"},
	}

	router := protectedRouter(DefaultJWTConfig(jwtService), nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serveWithAuth(router, "/api/v1/accounts/me", tt.header)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.code)
		})
	}
}

func TestJWTAuthMiddleware_SkipPaths(t *testing.T) {
	router := protectedRouter(DefaultJWTConfig(newTestJWTService(time.Minute)), nil)

	assert.Equal(t, http.StatusOK, serveWithAuth(router, "/health", "").Code)
	assert.Equal(t, http.StatusOK, serveWithAuth(router, "/payment/vnpay/return", "").Code)
}

func TestJWTAuthMiddleware_RevokedToken(t *testing.T) {
	jwtService := newTestJWTService(15 * time.Minute)
	token, _ := newTestToken(t, jwtService)
	claims, err := jwtService.ValidateToken(token.AccessToken)
	require.NoError(t, err)

	blacklist := auth.NewInMemoryTokenBlacklist()
	require.NoError(t, blacklist.AddToBlacklist(context.Background(), claims.ID, time.Minute))

	cfg := DefaultJWTConfig(jwtService)
	cfg.TokenBlacklist = blacklist
	rec := serveWithAuth(protectedRouter(cfg, nil), "/api/v1/accounts/me", "Bearer "+token.AccessToken)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Token has been revoked")
}

func TestJWTAuthMiddleware_BlacklistOutageFailsOpen(t *testing.T) {
	jwtService := newTestJWTService(15 * time.Minute)
	token, _ := newTestToken(t, jwtService)

	cfg := DefaultJWTConfig(jwtService)
	cfg.TokenBlacklist = failingBlacklist{}
	rec := serveWithAuth(protectedRouter(cfg, nil), "/api/v1/accounts/me", "Bearer "+token.AccessToken)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestJWTAuthMiddleware_CustomOnError(t *testing.T) {
	var captured error
	cfg := DefaultJWTConfig(newTestJWTService(time.Minute))
	cfg.OnError = func(c *gin.Context, err error) {
		captured = err
		c.AbortWithStatus(http.StatusForbidden)
	}

	rec := serveWithAuth(protectedRouter(cfg, nil), "/api/v1/accounts/me", "")

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.ErrorIs(t, captured, auth.ErrInvalidToken)
}

func TestGetJWTClaims_NotFound(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	assert.Nil(t, GetJWTClaims(c))
	assert.Empty(t, GetJWTAccountID(c))
}
