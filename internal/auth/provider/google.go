package provider

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/hushboard/hushboard/internal/model"
	"github.com/pkg/errors"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v3/userinfo"

// Google authenticates users against Google's OAuth 2.0 endpoints.
type Google struct {
	config *oauth2.Config

	// Overridable in tests.
	userInfoURL string
}

// NewGoogle creates a Google provider with the given client credentials.
// redirectURL must match a redirect URI registered with Google.
func NewGoogle(clientID, clientSecret, redirectURL string) *Google {
	return &Google{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{"profile"},
			Endpoint:     google.Endpoint,
		},
		userInfoURL: googleUserInfoURL,
	}
}

// Name implements Provider.
func (g *Google) Name() model.Provider {
	return model.ProviderGoogle
}

// AuthCodeURL implements Provider.
func (g *Google) AuthCodeURL(state string) string {
	return g.config.AuthCodeURL(state)
}

// Subject implements Provider. It exchanges the authorization code and
// reads the OpenID "sub" field from Google's userinfo endpoint.
func (g *Google) Subject(ctx context.Context, code string) (string, error) {
	token, err := g.config.Exchange(ctx, code)
	if err != nil {
		return "", errors.Wrap(err, "exchanging authorization code")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.userInfoURL, nil)
	if err != nil {
		return "", err
	}
	resp, err := g.config.Client(ctx, token).Do(req)
	if err != nil {
		return "", errors.Wrap(err, "fetching userinfo")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", errors.Errorf("userinfo endpoint returned %s", resp.Status)
	}

	var info struct {
		Sub string `json:"sub"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return "", errors.Wrap(err, "decoding userinfo")
	}
	if info.Sub == "" {
		return "", errors.New("userinfo response missing subject")
	}
	return info.Sub, nil
}
