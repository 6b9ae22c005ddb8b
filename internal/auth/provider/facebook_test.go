package provider

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hushboard/hushboard/internal/model"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func Test_FacebookSubject(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"fb-tok","token_type":"bearer"}`))
	})
	mux.HandleFunc("/me", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "id", r.URL.Query().Get("fields"))

		// The proof must be the HMAC of the access token under the app secret.
		mac := hmac.New(sha256.New, []byte("app-secret"))
		mac.Write([]byte("fb-tok"))
		require.Equal(t, hex.EncodeToString(mac.Sum(nil)), r.URL.Query().Get("appsecret_proof"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"fb-678"}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	f := NewFacebook("app-id", "app-secret", "http://localhost:3000/auth/facebook/secrets")
	require.Equal(t, model.ProviderFacebook, f.Name())
	f.config.Endpoint = oauth2.Endpoint{AuthURL: srv.URL + "/auth", TokenURL: srv.URL + "/token"}
	f.profileURL = srv.URL + "/me"

	sub, err := f.Subject(context.Background(), "authcode")
	require.NoError(t, err)
	require.Equal(t, "fb-678", sub)
}

func Test_FacebookProfileError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"fb-tok","token_type":"bearer"}`))
	})
	mux.HandleFunc("/me", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "expired token", http.StatusUnauthorized)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	f := NewFacebook("app-id", "app-secret", "http://localhost:3000/auth/facebook/secrets")
	f.config.Endpoint = oauth2.Endpoint{AuthURL: srv.URL + "/auth", TokenURL: srv.URL + "/token"}
	f.profileURL = srv.URL + "/me"

	_, err := f.Subject(context.Background(), "authcode")
	require.Error(t, err)
}
