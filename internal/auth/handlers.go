package auth

import (
	"context"
	"net/http"
	"net/url"

	"github.com/gorilla/mux"
	"github.com/hushboard/hushboard/internal/auth/provider"
	"github.com/hushboard/hushboard/internal/database"
	"github.com/hushboard/hushboard/internal/logutil"
	"github.com/hushboard/hushboard/internal/templates"
	"github.com/pkg/errors"
)

const (
	// LoginEndpoint renders the login form and authenticates local users.
	LoginEndpoint = "/login"

	// RegisterEndpoint renders the registration form and creates local users.
	RegisterEndpoint = "/register"

	// LogoutEndpoint tears down the current session.
	LogoutEndpoint = "/logout"

	// SecretsEndpoint is where every successful login lands.
	SecretsEndpoint = "/secrets"
)

// SetupRoutes configures authentication routing for the given mux.
func SetupRoutes(r *mux.Router, verifier *Verifier, sessions *Sessions, db database.UserDB, providers []provider.Provider) {
	r.Handle(LoginEndpoint, loginHandler{verifier, sessions}).Methods(http.MethodGet, http.MethodPost)
	r.Handle(RegisterEndpoint, registerHandler{verifier, sessions}).Methods(http.MethodGet, http.MethodPost)
	r.Handle(LogoutEndpoint, RequireUser(sessions)(logoutHandler{sessions})).Methods(http.MethodGet)

	for _, p := range providers {
		name := p.Name().String()
		r.Handle("/auth/"+name, oauthInitiateHandler{p}).Methods(http.MethodGet)
		r.Handle("/auth/"+name+"/secrets", oauthCallbackHandler{p, db, sessions}).Methods(http.MethodGet)
	}
}

type formPage struct {
	Error string
}

type loginHandler struct {
	verifier *Verifier
	sessions *Sessions
}

func (h loginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		templates.Render(w, r, "login", formPage{Error: r.URL.Query().Get("error")})
		return
	}

	err := r.ParseForm()
	if err != nil {
		http.Error(w, "POST endpoint accepts valid form encoding only", http.StatusBadRequest)
		return
	}

	username := r.FormValue("username")
	password := r.FormValue("password")
	if username == "" || password == "" {
		redirectWithError(w, r, LoginEndpoint, "Username and password are required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), database.DefaultTimeout)
	defer cancel()

	user, err := h.verifier.Authenticate(ctx, username, password)
	if errors.Is(err, ErrInvalidCredentials) {
		redirectWithError(w, r, LoginEndpoint, "Incorrect username or password")
		return
	}
	if err != nil {
		internalError(w, r, err, "Authenticating user")
		return
	}

	if err := h.sessions.Issue(w, user); err != nil {
		internalError(w, r, err, "Issuing session")
		return
	}
	http.Redirect(w, r, SecretsEndpoint, http.StatusSeeOther)
}

type registerHandler struct {
	verifier *Verifier
	sessions *Sessions
}

func (h registerHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		templates.Render(w, r, "register", formPage{Error: r.URL.Query().Get("error")})
		return
	}

	err := r.ParseForm()
	if err != nil {
		http.Error(w, "POST endpoint accepts valid form encoding only", http.StatusBadRequest)
		return
	}

	username := r.FormValue("username")
	password := r.FormValue("password")
	if username == "" || password == "" {
		redirectWithError(w, r, RegisterEndpoint, "Username and password are required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), database.DefaultTimeout)
	defer cancel()

	user, err := h.verifier.Register(ctx, username, password)
	if errors.Is(err, database.ErrDuplicateUsername) {
		redirectWithError(w, r, RegisterEndpoint, "That username is already taken")
		return
	}
	if err != nil {
		internalError(w, r, err, "Registering user")
		return
	}

	if err := h.sessions.Issue(w, user); err != nil {
		internalError(w, r, err, "Issuing session")
		return
	}
	http.Redirect(w, r, SecretsEndpoint, http.StatusSeeOther)
}

type logoutHandler struct {
	sessions *Sessions
}

func (h logoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.sessions.Clear(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func redirectWithError(w http.ResponseWriter, r *http.Request, endpoint, message string) {
	http.Redirect(w, r, endpoint+"?error="+url.QueryEscape(message), http.StatusSeeOther)
}

func internalError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	logger := logutil.GetOrDefault(r.Context())
	logger.Error().Err(err).Msg(msg)
	http.Error(w, "Internal server error", http.StatusInternalServerError)
}
