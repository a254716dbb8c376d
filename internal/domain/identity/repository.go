package identity

import (
	"context"

	"github.com/google/uuid"
)

// UserRepository provides access to API accounts
type UserRepository interface {
	// FindByUsername loads a user by its unique username.
	// Returns shared.ErrNotFound when absent.
	FindByUsername(ctx context.Context, username string) (*User, error)

	// FindByID loads a user by ID. Returns shared.ErrNotFound when absent.
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)

	// Create persists a new user. Returns shared.ErrAlreadyExists when
	// the username is taken.
	Create(ctx context.Context, user *User) error

	// Update persists changes to an existing user
	Update(ctx context.Context, user *User) error
}
