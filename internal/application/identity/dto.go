package identity

import (
	"time"

	"github.com/google/uuid"

	"github.com/jobboard/backend/internal/domain/account"
)

// LoginInput holds the credentials of a login attempt
type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

// LoginResult is returned on successful login
type LoginResult struct {
	AccessToken string          `json:"access_token"`
	TokenType   string          `json:"token_type"`
	ExpiresAt   time.Time       `json:"expires_at"`
	Account     AccountResponse `json:"account"`
}

// CreateAccountInput holds the fields of a new account
type CreateAccountInput struct {
	Email    string
	Name     string
	Password string
	Role     account.Role
}

// AccountResponse is the profile view of an account
type AccountResponse struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	Points    int64     `json:"points"`
	CreatedAt time.Time `json:"created_at"`
}

// ToAccountResponse converts an account to its profile view
func ToAccountResponse(a *account.Account) AccountResponse {
	return AccountResponse{
		ID:        a.ID,
		Email:     a.Email,
		Name:      a.Name,
		Role:      string(a.Role),
		Points:    a.Points,
		CreatedAt: a.CreatedAt,
	}
}
