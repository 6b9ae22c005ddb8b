package auth

import (
	"context"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/hushboard/hushboard/internal/database"
	"github.com/hushboard/hushboard/internal/model"
	"github.com/pkg/errors"
)

// Sessions mints and resolves session cookies. The cookie value is an
// HS256-signed token carrying only the user id; everything else is looked
// up fresh from the store on each request.
type Sessions struct {
	db         database.UserDB
	secret     []byte
	cookieName string
	secure     bool
}

// NewSessions creates a session manager signing cookies with secret.
// Set secure when the site is served over https.
func NewSessions(db database.UserDB, secret []byte, cookieName string, secure bool) *Sessions {
	return &Sessions{
		db:         db,
		secret:     secret,
		cookieName: cookieName,
		secure:     secure,
	}
}

// Issue establishes a session for the user by setting the session cookie.
// The cookie deliberately has no Max-Age: it lives as long as the browser
// session, and logout removes it explicitly.
func (s *Sessions) Issue(w http.ResponseWriter, user *model.User) error {
	claims := jwt.RegisteredClaims{
		Subject:  user.ID,
		IssuedAt: jwt.NewNumericDate(time.Now()),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return errors.Wrap(err, "signing session token")
	}
	http.SetCookie(w, &http.Cookie{
		Name:     s.cookieName,
		Value:    signed,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Resolve returns the user the request's session cookie refers to.
// A missing, forged or stale cookie yields ErrSessionInvalid; only a store
// failure is reported as a different error.
func (s *Sessions) Resolve(ctx context.Context, r *http.Request) (*model.User, error) {
	cookie, err := r.Cookie(s.cookieName)
	if err != nil || cookie.Value == "" {
		return nil, ErrSessionInvalid
	}

	claims := jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(cookie.Value, &claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid || claims.Subject == "" {
		return nil, ErrSessionInvalid
	}

	user, err := s.db.GetUserByID(ctx, claims.Subject)
	if errors.Is(err, database.ErrNotFound) {
		return nil, ErrSessionInvalid
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Clear tears down the session by expiring the cookie.
func (s *Sessions) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
