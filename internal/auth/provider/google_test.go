package provider

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hushboard/hushboard/internal/model"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func Test_GenerateState(t *testing.T) {
	a, err := GenerateState()
	require.NoError(t, err)
	b, err := GenerateState()
	require.NoError(t, err)
	require.NotEqual(t, a, b)

	raw, err := base64.RawURLEncoding.DecodeString(a)
	require.NoError(t, err)
	require.Len(t, raw, 16)
}

func Test_GoogleAuthCodeURL(t *testing.T) {
	g := NewGoogle("client-id", "client-secret", "http://localhost:3000/auth/google/secrets")
	require.Equal(t, model.ProviderGoogle, g.Name())

	u := g.AuthCodeURL("the-state")
	require.Contains(t, u, "state=the-state")
	require.Contains(t, u, "client_id=client-id")
	require.Contains(t, u, "scope=profile")
}

func Test_GoogleSubject(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		require.Equal(t, "authcode", r.FormValue("code"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"tok","token_type":"bearer"}`))
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"sub":"g-12345"}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	g := NewGoogle("client-id", "client-secret", "http://localhost:3000/auth/google/secrets")
	g.config.Endpoint = oauth2.Endpoint{AuthURL: srv.URL + "/auth", TokenURL: srv.URL + "/token"}
	g.userInfoURL = srv.URL + "/userinfo"

	sub, err := g.Subject(context.Background(), "authcode")
	require.NoError(t, err)
	require.Equal(t, "g-12345", sub)
}

func Test_GoogleSubjectMissing(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"tok","token_type":"bearer"}`))
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	g := NewGoogle("client-id", "client-secret", "http://localhost:3000/auth/google/secrets")
	g.config.Endpoint = oauth2.Endpoint{AuthURL: srv.URL + "/auth", TokenURL: srv.URL + "/token"}
	g.userInfoURL = srv.URL + "/userinfo"

	_, err := g.Subject(context.Background(), "authcode")
	require.Error(t, err)
}

func Test_GoogleExchangeFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad code", http.StatusBadRequest)
	}))
	defer srv.Close()

	g := NewGoogle("client-id", "client-secret", "http://localhost:3000/auth/google/secrets")
	g.config.Endpoint = oauth2.Endpoint{AuthURL: srv.URL + "/auth", TokenURL: srv.URL + "/token"}
	g.userInfoURL = srv.URL + "/userinfo"

	_, err := g.Subject(context.Background(), "authcode")
	require.Error(t, err)
}
