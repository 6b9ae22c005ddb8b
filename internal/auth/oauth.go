package auth

import (
	"context"
	"net/http"
	"time"

	"github.com/hushboard/hushboard/internal/auth/provider"
	"github.com/hushboard/hushboard/internal/database"
	"github.com/hushboard/hushboard/internal/logutil"
	"github.com/pkg/errors"
)

// stateCookieName carries the anti-forgery state across the provider
// round trip. One cookie is enough: a browser runs one OAuth dance at a time.
const stateCookieName = "hushboard_oauth_state"

// stateTTL bounds how long a provider round trip may take.
const stateTTL = 10 * time.Minute

type oauthInitiateHandler struct {
	provider provider.Provider
}

func (h oauthInitiateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	state, err := provider.GenerateState()
	if err != nil {
		internalError(w, r, err, "Generating state")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     "/",
		Expires:  time.Now().Add(stateTTL),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.provider.AuthCodeURL(state), http.StatusFound)
}

type oauthCallbackHandler struct {
	provider provider.Provider
	db       database.UserDB
	sessions *Sessions
}

func (h oauthCallbackHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Whatever goes wrong with the provider dance, the visitor ends up
	// back at the login page with no user created and no session issued.
	fail := func(err error) {
		logger := logutil.GetOrDefault(r.Context())
		logger.Warn().
			Err(errors.Wrap(err, ErrProviderAuthFailure.Error())).
			Str("provider", h.provider.Name().String()).
			Msg("Third-party login failed")
		http.Redirect(w, r, LoginEndpoint, http.StatusSeeOther)
	}

	clearStateCookie(w)

	query := r.URL.Query()
	if errParam := query.Get("error"); errParam != "" {
		fail(errors.Errorf("provider denied the request: %s", errParam))
		return
	}

	stateCookie, err := r.Cookie(stateCookieName)
	if err != nil || stateCookie.Value == "" {
		fail(errors.New("missing state cookie"))
		return
	}
	if query.Get("state") != stateCookie.Value {
		fail(errors.New("state mismatch"))
		return
	}

	code := query.Get("code")
	if code == "" {
		fail(errors.New("missing authorization code"))
		return
	}

	subjectID, err := h.provider.Subject(r.Context(), code)
	if err != nil {
		fail(err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), database.DefaultTimeout)
	defer cancel()

	user, err := h.db.FindOrCreateBySubject(ctx, h.provider.Name(), subjectID)
	if err != nil {
		internalError(w, r, err, "Resolving identity")
		return
	}

	if err := h.sessions.Issue(w, user); err != nil {
		internalError(w, r, err, "Issuing session")
		return
	}
	http.Redirect(w, r, SecretsEndpoint, http.StatusSeeOther)
}

func clearStateCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
