package identity

import (
	"regexp"
	"strings"
	"time"

	"github.com/billpay/backend/internal/domain/shared"
	"golang.org/x/crypto/bcrypt"
)

// Role represents the access level of a user
type Role string

const (
	// RoleAdmin may issue bills and manage subscribers
	RoleAdmin Role = "admin"

	// RoleBanking may list unpaid bills across a subscriber for payment apps
	RoleBanking Role = "banking"

	// RoleSubscriber may query its own bills
	RoleSubscriber Role = "subscriber"
)

// String returns the string representation of Role
func (r Role) String() string {
	return string(r)
}

// IsValid returns true if the role is a known value
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleBanking, RoleSubscriber:
		return true
	}
	return false
}

// Password cost for bcrypt
const bcryptCost = 12

var usernamePattern = regexp.MustCompile(`^[a-z0-9_.-]{3,50}$`)

// User is an API account. Subscriber accounts carry the subscriber
// number their bills are filed under; admin and banking accounts do not.
type User struct {
	shared.BaseAggregateRoot
	Username     string
	PasswordHash string
	Role         Role
	SubscriberNo string
	LastLoginAt  *time.Time
}

// NewUser creates a new user with a hashed password
func NewUser(username, password string, role Role) (*User, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if !usernamePattern.MatchString(username) {
		return nil, shared.NewDomainError("INVALID_USERNAME", "Username must be 3-50 characters of lowercase letters, digits, dot, dash or underscore")
	}
	if len(password) < 8 {
		return nil, shared.NewDomainError("INVALID_PASSWORD", "Password must be at least 8 characters")
	}
	if !role.IsValid() {
		return nil, shared.NewDomainError("INVALID_ROLE", "Unknown role")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}

	return &User{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Username:          username,
		PasswordHash:      string(hash),
		Role:              role,
	}, nil
}

// NewSubscriberUser creates a subscriber account bound to a subscriber number
func NewSubscriberUser(username, password, subscriberNo string) (*User, error) {
	if subscriberNo == "" {
		return nil, shared.NewDomainError("INVALID_SUBSCRIBER", "Subscriber number cannot be empty")
	}
	user, err := NewUser(username, password, RoleSubscriber)
	if err != nil {
		return nil, err
	}
	user.SubscriberNo = subscriberNo
	return user, nil
}

// VerifyPassword checks a plaintext password against the stored hash
func (u *User) VerifyPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// RecordLogin stores the time of a successful login
func (u *User) RecordLogin(at time.Time) {
	u.LastLoginAt = &at
	u.UpdatedAt = at
	u.IncrementVersion()
}
