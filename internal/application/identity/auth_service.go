package identity

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jobboard/backend/internal/domain/account"
	"github.com/jobboard/backend/internal/domain/shared"
	"github.com/jobboard/backend/internal/infrastructure/auth"
)

// AuthService handles login, profile and logout
type AuthService struct {
	accounts   account.Repository
	hasher     *auth.PasswordHasher
	jwtService *auth.JWTService
	blacklist  auth.TokenBlacklist
	logger     *zap.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(
	accounts account.Repository,
	hasher *auth.PasswordHasher,
	jwtService *auth.JWTService,
	blacklist auth.TokenBlacklist,
	logger *zap.Logger,
) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		accounts:   accounts,
		hasher:     hasher,
		jwtService: jwtService,
		blacklist:  blacklist,
		logger:     logger,
	}
}

// Login authenticates an account by email and password and returns an access token
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	s.logger.Info("Login attempt", zap.String("email", email))

	acc, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.logger.Warn("Account not found during login", zap.String("email", email))
			return nil, account.ErrInvalidCredentials
		}
		return nil, err
	}

	if !acc.Active {
		s.logger.Warn("Login attempt for disabled account", zap.String("email", email))
		return nil, account.ErrAccountDisabled
	}

	if err := s.hasher.Verify(acc.PasswordHash, input.Password); err != nil {
		s.logger.Warn("Invalid password attempt", zap.String("email", email))
		return nil, account.ErrInvalidCredentials
	}

	token, err := s.jwtService.GenerateToken(auth.TokenInput{
		AccountID: acc.ID,
		Email:     acc.Email,
		Role:      string(acc.Role),
	})
	if err != nil {
		s.logger.Error("Failed to generate access token", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to generate authentication token")
	}

	s.logger.Info("Login successful", zap.String("account_id", acc.ID.String()))

	return &LoginResult{
		AccessToken: token.AccessToken,
		TokenType:   token.TokenType,
		ExpiresAt:   token.ExpiresAt,
		Account:     ToAccountResponse(acc),
	}, nil
}

// Me returns the profile and point balance of the account
func (s *AuthService) Me(ctx context.Context, accountID uuid.UUID) (*AccountResponse, error) {
	acc, err := s.accounts.FindByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	resp := ToAccountResponse(acc)
	return &resp, nil
}

// Logout revokes the token identified by claims until it would have expired
func (s *AuthService) Logout(ctx context.Context, claims *auth.Claims) error {
	if claims == nil || claims.ID == "" {
		return auth.ErrInvalidClaims
	}
	ttl := claims.RemainingTTL()
	if ttl <= 0 {
		return nil
	}
	if err := s.blacklist.AddToBlacklist(ctx, claims.ID, ttl); err != nil {
		s.logger.Error("Failed to revoke token", zap.String("jti", claims.ID), zap.Error(err))
		return err
	}
	s.logger.Info("Logout successful", zap.String("account_id", claims.AccountID))
	return nil
}

// CreateAccount hashes the password and stores a new account
func (s *AuthService) CreateAccount(ctx context.Context, input CreateAccountInput) (*AccountResponse, error) {
	if len(input.Password) < 6 {
		return nil, shared.NewDomainError("INVALID_PASSWORD", "Password must be at least 6 characters")
	}
	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, err
	}
	acc, err := account.NewAccount(input.Email, input.Name, hash, input.Role)
	if err != nil {
		return nil, err
	}
	if err := s.accounts.Create(ctx, acc); err != nil {
		return nil, err
	}

	s.logger.Info("Account created",
		zap.String("account_id", acc.ID.String()),
		zap.String("role", string(acc.Role)))
	resp := ToAccountResponse(acc)
	return &resp, nil
}
