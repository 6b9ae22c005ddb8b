package database

import (
	"context"
	"errors"
	"time"

	"github.com/hushboard/hushboard/internal/model"
)

// DefaultTimeout is the default length of time to wait
// for a database operation to complete.
const DefaultTimeout = time.Second * 3

var (
	// ErrNotFound means no record matched the lookup key.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateUsername means the username is already registered.
	ErrDuplicateUsername = errors.New("username already taken")
)

// UserDB handles all interactions with the user store.
type UserDB interface {
	// RegisterUser persists a new user. The username, when present, must
	// not already be claimed; ErrDuplicateUsername is returned otherwise.
	RegisterUser(ctx context.Context, user *model.User) error

	// GetUserByID retrieves a user by their surrogate id.
	GetUserByID(ctx context.Context, id string) (*model.User, error)

	// GetUserByUsername retrieves a user by exact, case-sensitive username.
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)

	// FindOrCreateBySubject returns the user holding the provider-issued
	// subject id, creating one if none exists. Concurrent calls for the
	// same subject id always converge on a single user.
	FindOrCreateBySubject(ctx context.Context, provider model.Provider, subjectID string) (*model.User, error)

	// UpdateSecret replaces the user's published secret.
	UpdateSecret(ctx context.Context, id, secret string) error

	// ListUsersWithSecrets returns every user with a non-empty secret,
	// for the public listing.
	ListUsersWithSecrets(ctx context.Context) ([]*model.User, error)

	Close() error
}
