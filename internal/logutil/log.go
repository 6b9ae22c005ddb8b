package logutil

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type (
	key byte
)

var (
	loggerKey = key(1)
)

// WithLogger attaches a logger to the context.
func WithLogger(ctx context.Context, logger zerolog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// GetOrDefault returns the logger attached to ctx, or the global logger.
func GetOrDefault(ctx context.Context) zerolog.Logger {
	v := ctx.Value(loggerKey)
	if v == nil {
		return log.Logger
	}
	return v.(zerolog.Logger)
}

// RequestLogger attaches a request-scoped logger to each request's context
// and logs the request once served.
func RequestLogger(base zerolog.Logger) mux.MiddlewareFunc {
	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := base.With().
				Str("http.method", r.Method).
				Str("http.path", r.URL.Path).
				Logger()
			start := time.Now()
			h.ServeHTTP(w, r.WithContext(WithLogger(r.Context(), logger)))
			logger.Debug().Dur("http.elapsed", time.Since(start)).Msg("Request served")
		})
	}
}
