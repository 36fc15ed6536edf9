package account

import (
	"context"
	"net/mail"
	"strings"

	"github.com/google/uuid"

	"github.com/jobboard/backend/internal/domain/shared"
)

// Role is the kind of account
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleEmployer Role = "employer"
)

// IsValid checks if the role is a valid Role
func (r Role) IsValid() bool {
	return r == RoleAdmin || r == RoleEmployer
}

// Account is an admin or employer account that owns payments and a point balance
type Account struct {
	shared.BaseAggregateRoot
	Email        string
	Name         string
	PasswordHash string
	Role         Role
	Points       int64
	Active       bool
}

// Errors
var (
	ErrAccountNotFound    = shared.NewDomainError("NOT_FOUND", "Account not found")
	ErrInvalidEmail       = shared.NewDomainError("INVALID_EMAIL", "Email address is not valid")
	ErrInvalidRole        = shared.NewDomainError("INVALID_ROLE", "Role must be admin or employer")
	ErrEmptyPasswordHash  = shared.NewDomainError("INVALID_PASSWORD", "Password hash cannot be empty")
	ErrInvalidCredentials = shared.NewDomainError("UNAUTHORIZED", "Invalid email or password")
	ErrAccountDisabled    = shared.NewDomainError("FORBIDDEN", "Account is disabled")
)

// NewAccount creates an active account with a zero point balance
func NewAccount(email, name, passwordHash string, role Role) (*Account, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, ErrInvalidEmail
	}
	if !role.IsValid() {
		return nil, ErrInvalidRole
	}
	if passwordHash == "" {
		return nil, ErrEmptyPasswordHash
	}

	return &Account{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Email:             email,
		Name:              strings.TrimSpace(name),
		PasswordHash:      passwordHash,
		Role:              role,
		Active:            true,
	}, nil
}

// Repository persists accounts. Point balances are only changed by the
// payment settlement transaction, never through this interface.
type Repository interface {
	Create(ctx context.Context, a *Account) error
	FindByID(ctx context.Context, id uuid.UUID) (*Account, error)
	FindByEmail(ctx context.Context, email string) (*Account, error)
}
