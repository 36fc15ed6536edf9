package models

import (
	"github.com/jobboard/backend/internal/domain/account"
)

// AccountModel is the persistence model for the Account aggregate.
// Points is only ever changed with an atomic "points + ?" update.
type AccountModel struct {
	AggregateModel
	Email        string       `gorm:"type:varchar(200);not null;uniqueIndex"`
	Name         string       `gorm:"type:varchar(200)"`
	PasswordHash string       `gorm:"type:varchar(255);not null"`
	Role         account.Role `gorm:"type:varchar(20);not null"`
	Points       int64        `gorm:"not null;default:0;check:chk_accounts_points_non_negative,points >= 0"`
	Active       bool         `gorm:"not null"`
}

// TableName returns the table name for GORM
func (AccountModel) TableName() string {
	return "accounts"
}

// ToDomain converts the persistence model to a domain Account
func (m *AccountModel) ToDomain() *account.Account {
	return &account.Account{
		BaseAggregateRoot: m.Aggregate(),
		Email:             m.Email,
		Name:              m.Name,
		PasswordHash:      m.PasswordHash,
		Role:              m.Role,
		Points:            m.Points,
		Active:            m.Active,
	}
}

// AccountModelFromDomain creates a new persistence model from a domain Account
func AccountModelFromDomain(a *account.Account) *AccountModel {
	m := &AccountModel{
		Email:        a.Email,
		Name:         a.Name,
		PasswordHash: a.PasswordHash,
		Role:         a.Role,
		Points:       a.Points,
		Active:       a.Active,
	}
	m.SetAggregate(a.BaseAggregateRoot)
	return m
}
