package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hushboard/hushboard/internal/model"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newSessions(t *testing.T) (*Sessions, *Verifier) {
	t.Helper()
	db := setupDB(t)
	sessions := NewSessions(db, []byte("test secret"), "hushboard_session", false)
	return sessions, NewVerifier(db, bcrypt.MinCost)
}

// ghostUser is a user that was never persisted, standing in for one
// deleted after their cookie was minted.
func ghostUser() *model.User {
	return &model.User{ID: "ghost-id"}
}

func Test_SessionRoundTrip(t *testing.T) {
	sessions, verifier := newSessions(t)
	ctx := context.Background()

	user, err := verifier.Register(ctx, "alice", "pw")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	require.NoError(t, sessions.Issue(w, user))

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	cookie := cookies[0]
	require.Equal(t, "hushboard_session", cookie.Name)
	require.True(t, cookie.HttpOnly)
	// Browser-session cookie: no explicit expiry.
	require.Zero(t, cookie.MaxAge)

	r := httptest.NewRequest(http.MethodGet, "/submit", nil)
	r.AddCookie(cookie)

	resolved, err := sessions.Resolve(ctx, r)
	require.NoError(t, err)
	require.Equal(t, user.ID, resolved.ID)
}

func Test_ResolveWithoutCookie(t *testing.T) {
	sessions, _ := newSessions(t)

	r := httptest.NewRequest(http.MethodGet, "/submit", nil)
	_, err := sessions.Resolve(context.Background(), r)
	require.ErrorIs(t, err, ErrSessionInvalid)
}

func Test_ResolveTamperedToken(t *testing.T) {
	sessions, verifier := newSessions(t)
	ctx := context.Background()

	user, err := verifier.Register(ctx, "alice", "pw")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	require.NoError(t, sessions.Issue(w, user))
	cookie := w.Result().Cookies()[0]

	// Flip a byte of the signed token.
	cookie.Value = cookie.Value[:len(cookie.Value)-2] + "xx"
	r := httptest.NewRequest(http.MethodGet, "/submit", nil)
	r.AddCookie(cookie)

	_, err = sessions.Resolve(ctx, r)
	require.ErrorIs(t, err, ErrSessionInvalid)
}

func Test_ResolveForeignSignature(t *testing.T) {
	sessions, verifier := newSessions(t)
	ctx := context.Background()

	user, err := verifier.Register(ctx, "alice", "pw")
	require.NoError(t, err)

	// A token signed with a different secret must not resolve.
	other := NewSessions(sessions.db, []byte("another secret"), "hushboard_session", false)
	w := httptest.NewRecorder()
	require.NoError(t, other.Issue(w, user))

	r := httptest.NewRequest(http.MethodGet, "/submit", nil)
	r.AddCookie(w.Result().Cookies()[0])

	_, err = sessions.Resolve(ctx, r)
	require.ErrorIs(t, err, ErrSessionInvalid)
}

func Test_ResolveVanishedUser(t *testing.T) {
	sessions, _ := newSessions(t)
	ctx := context.Background()

	// Issue for a user that was never persisted, i.e. one deleted
	// after the cookie was minted.
	w := httptest.NewRecorder()
	require.NoError(t, sessions.Issue(w, ghostUser()))

	r := httptest.NewRequest(http.MethodGet, "/submit", nil)
	r.AddCookie(w.Result().Cookies()[0])

	_, err := sessions.Resolve(ctx, r)
	require.ErrorIs(t, err, ErrSessionInvalid)
}

func Test_ClearExpiresCookie(t *testing.T) {
	sessions, _ := newSessions(t)

	w := httptest.NewRecorder()
	sessions.Clear(w)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, "hushboard_session", cookies[0].Name)
	require.Empty(t, cookies[0].Value)
	require.Negative(t, cookies[0].MaxAge)
}
