package auth

import (
	"context"

	"github.com/gofrs/uuid"
	"github.com/hushboard/hushboard/internal/database"
	"github.com/hushboard/hushboard/internal/model"
	"github.com/hushboard/hushboard/util/passwordutil"
	"github.com/pkg/errors"
)

// dummyHash is compared against when the username is unknown, so that
// lookups for existing and missing users take the same time.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// Verifier proves local username+password credentials against the store.
type Verifier struct {
	db   database.UserDB
	cost int
}

// NewVerifier creates a Verifier backed by db, hashing passwords with the
// given bcrypt cost.
func NewVerifier(db database.UserDB, cost int) *Verifier {
	return &Verifier{db: db, cost: cost}
}

// Register creates a new user for the username and password. The password
// is stored only as a salted one-way hash. Taken usernames surface as
// database.ErrDuplicateUsername.
func (v *Verifier) Register(ctx context.Context, username, password string) (*model.User, error) {
	hash, err := passwordutil.GeneratePasswordHash(password, v.cost)
	if err != nil {
		return nil, errors.Wrap(err, "hashing password")
	}
	id, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	user := &model.User{
		ID:           id.String(),
		Username:     username,
		PasswordHash: hash,
	}
	if err := v.db.RegisterUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Authenticate returns the user matching the username and password, or
// ErrInvalidCredentials. Unknown usernames and wrong passwords are
// indistinguishable to the caller.
func (v *Verifier) Authenticate(ctx context.Context, username, password string) (*model.User, error) {
	user, err := v.db.GetUserByUsername(ctx, username)
	if errors.Is(err, database.ErrNotFound) {
		passwordutil.CheckPasswordHash(password, dummyHash)
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if user.PasswordHash == "" || !passwordutil.CheckPasswordHash(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}
