// Package secrets serves the public listing and the submit flow.
package secrets

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/hushboard/hushboard/internal/auth"
	"github.com/hushboard/hushboard/internal/database"
	"github.com/hushboard/hushboard/internal/logutil"
	"github.com/hushboard/hushboard/internal/model"
	"github.com/hushboard/hushboard/internal/templates"
)

// SubmitEndpoint is the only guarded page: reading secrets is public,
// posting one requires an authenticated user.
const SubmitEndpoint = "/submit"

// SetupRoutes configures page routing for the given mux.
func SetupRoutes(r *mux.Router, db database.UserDB, sessions *auth.Sessions) {
	r.HandleFunc("/", servePage("home")).Methods(http.MethodGet)
	r.HandleFunc("/about", servePage("about")).Methods(http.MethodGet)
	r.HandleFunc("/contact", servePage("contact")).Methods(http.MethodGet)

	r.Handle(auth.SecretsEndpoint, listHandler{db}).Methods(http.MethodGet)
	r.Handle("/api"+auth.SecretsEndpoint, apiListHandler{db}).Methods(http.MethodGet)

	guard := auth.RequireUser(sessions)
	r.Handle(SubmitEndpoint, guard(submitHandler{db})).Methods(http.MethodGet, http.MethodPost)
}

func servePage(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		templates.Render(w, r, name, nil)
	}
}

type listHandler struct {
	db database.UserDB
}

// ServeHTTP renders every published secret. The page is deliberately not
// gated: secrets are public and unattributed.
func (h listHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	users, err := fetchUsersWithSecrets(r, h.db)
	if err != nil {
		storeError(w, r, err)
		return
	}

	page := struct{ Secrets []string }{}
	for _, user := range users {
		page.Secrets = append(page.Secrets, user.Secret)
	}
	templates.Render(w, r, "secrets", page)
}

// SecretEntry is one published secret in the JSON listing.
type SecretEntry struct {
	ID     string `json:"id"`
	Secret string `json:"secret"`
}

type apiListHandler struct {
	db database.UserDB
}

func (h apiListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	users, err := fetchUsersWithSecrets(r, h.db)
	if err != nil {
		storeError(w, r, err)
		return
	}

	entries := make([]SecretEntry, 0, len(users))
	for _, user := range users {
		entries = append(entries, SecretEntry{ID: user.ID, Secret: user.Secret})
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(entries); err != nil {
		logger := logutil.GetOrDefault(r.Context())
		logger.Error().Err(err).Msg("Encoding listing")
	}
}

type submitHandler struct {
	db database.UserDB
}

func (h submitHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		templates.Render(w, r, "submit", nil)
		return
	}

	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		// The guard attaches the user; reaching here without one is a
		// routing mistake, not a client error.
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "POST endpoint accepts valid form encoding only", http.StatusBadRequest)
		return
	}
	secret := r.FormValue("secret")
	if secret == "" {
		http.Redirect(w, r, SubmitEndpoint, http.StatusSeeOther)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), database.DefaultTimeout)
	defer cancel()

	if err := h.db.UpdateSecret(ctx, user.ID, secret); err != nil {
		storeError(w, r, err)
		return
	}
	http.Redirect(w, r, auth.SecretsEndpoint, http.StatusSeeOther)
}

func fetchUsersWithSecrets(r *http.Request, db database.UserDB) ([]*model.User, error) {
	ctx, cancel := context.WithTimeout(r.Context(), database.DefaultTimeout)
	defer cancel()
	return db.ListUsersWithSecrets(ctx)
}

func storeError(w http.ResponseWriter, r *http.Request, err error) {
	logger := logutil.GetOrDefault(r.Context())
	logger.Error().Err(err).Msg("Store operation failed")
	http.Error(w, "Internal server error", http.StatusInternalServerError)
}
