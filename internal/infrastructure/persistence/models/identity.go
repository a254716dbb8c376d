package models

import (
	"time"

	"github.com/billpay/backend/internal/domain/identity"
)

// UserModel is the persistence model for API accounts.
type UserModel struct {
	AggregateModel
	Username     string     `gorm:"type:varchar(50);not null;uniqueIndex"`
	PasswordHash string     `gorm:"type:varchar(100);not null"`
	Role         string     `gorm:"type:varchar(20);not null"`
	SubscriberNo string     `gorm:"type:varchar(20);index"`
	LastLoginAt  *time.Time `gorm:""`
}

// TableName returns the table name for GORM
func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts the persistence model to a domain User
func (m *UserModel) ToDomain() *identity.User {
	return &identity.User{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Username:          m.Username,
		PasswordHash:      m.PasswordHash,
		Role:              identity.Role(m.Role),
		SubscriberNo:      m.SubscriberNo,
		LastLoginAt:       m.LastLoginAt,
	}
}

// FromDomain populates the persistence model from a domain User
func (m *UserModel) FromDomain(u *identity.User) {
	m.FromDomainAggregateRoot(u.BaseAggregateRoot)
	m.Username = u.Username
	m.PasswordHash = u.PasswordHash
	m.Role = u.Role.String()
	m.SubscriberNo = u.SubscriberNo
	m.LastLoginAt = u.LastLoginAt
}
