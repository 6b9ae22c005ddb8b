package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/hushboard/hushboard/internal/auth"
	"github.com/hushboard/hushboard/internal/auth/provider"
	"github.com/hushboard/hushboard/internal/config"
	"github.com/hushboard/hushboard/internal/database"
	"github.com/hushboard/hushboard/internal/logutil"
	"github.com/hushboard/hushboard/internal/secrets"
	"github.com/hushboard/hushboard/internal/templates"
	"github.com/rs/zerolog"
)

func main() {
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal().Err(err).Msg("Loading configuration")
	}
	if cfg.Session.GeneratedSecret {
		logger.Warn().Msg("No session secret configured; using a random one. Sessions will not survive a restart.")
	}

	if err := templates.Setup(); err != nil {
		logger.Fatal().Err(err).Msg("Parsing templates")
	}

	// Setup database
	db, err := database.InitializeBadgerDB(cfg.Database.Dir, false)
	if err != nil {
		logger.Fatal().Err(err).Msg("Opening database")
	}

	verifier := auth.NewVerifier(db, cfg.Password.Cost)
	sessions := auth.NewSessions(
		db,
		[]byte(cfg.Session.Secret),
		cfg.Session.CookieName,
		cfg.Server.Scheme == "https",
	)

	var providers []provider.Provider
	if cfg.OAuth.Google.Enabled() {
		providers = append(providers, provider.NewGoogle(
			cfg.OAuth.Google.ClientID,
			cfg.OAuth.Google.ClientSecret,
			cfg.Server.URL()+"/auth/google/secrets",
		))
	}
	if cfg.OAuth.Facebook.Enabled() {
		providers = append(providers, provider.NewFacebook(
			cfg.OAuth.Facebook.ClientID,
			cfg.OAuth.Facebook.ClientSecret,
			cfg.Server.URL()+"/auth/facebook/secrets",
		))
	}
	if len(providers) == 0 {
		logger.Warn().Msg("No OAuth providers configured; only local login is available")
	}

	// Setup routing
	r := mux.NewRouter()
	r.Use(logutil.RequestLogger(logger))
	auth.SetupRoutes(r, verifier, sessions, db, providers)
	secrets.SetupRoutes(r, db, sessions)

	addr := cfg.Server.Addr()
	srv := http.Server{
		Addr:    addr,
		Handler: r,

		ReadHeaderTimeout: 30 * time.Second,
		WriteTimeout:      60 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", addr).Msg("Listening")
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Server failed")
		}
	}()

	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)

	<-c

	logger.Info().Msg("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("Shutting down server")
	}

	logger.Info().Msg("Closing database...")
	if err := db.Close(); err != nil {
		logger.Error().Err(err).Msg("Closing database")
	}
}
