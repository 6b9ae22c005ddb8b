package auth

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/hushboard/hushboard/internal/logutil"
	"github.com/hushboard/hushboard/internal/model"
	"github.com/pkg/errors"
)

type userKey string

var userContextKey userKey = "user"

// UserFromContext returns the authenticated user attached by RequireUser.
func UserFromContext(ctx context.Context) (*model.User, bool) {
	user, ok := ctx.Value(userContextKey).(*model.User)
	return user, ok
}

// RequireUser guards protected pages. Requests without a resolvable
// session are redirected to the login page rather than served partially.
func RequireUser(sessions *Sessions) mux.MiddlewareFunc {
	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := sessions.Resolve(r.Context(), r)
			if errors.Is(err, ErrSessionInvalid) {
				http.Redirect(w, r, LoginEndpoint, http.StatusSeeOther)
				return
			}
			if err != nil {
				logger := logutil.GetOrDefault(r.Context())
				logger.Error().Err(err).Msg("Resolving session")
				http.Error(w, "Internal server error", http.StatusInternalServerError)
				return
			}

			ctx := context.WithValue(r.Context(), userContextKey, user)
			h.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
