package provider

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/hushboard/hushboard/internal/model"
	"github.com/pkg/errors"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/facebook"
)

const facebookProfileURL = "https://graph.facebook.com/v16.0/me"

// Facebook authenticates users against Facebook's Graph API.
type Facebook struct {
	config *oauth2.Config

	// Overridable in tests.
	profileURL string
}

// NewFacebook creates a Facebook provider with the given app credentials.
func NewFacebook(clientID, clientSecret, redirectURL string) *Facebook {
	return &Facebook{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Endpoint:     facebook.Endpoint,
		},
		profileURL: facebookProfileURL,
	}
}

// Name implements Provider.
func (f *Facebook) Name() model.Provider {
	return model.ProviderFacebook
}

// AuthCodeURL implements Provider.
func (f *Facebook) AuthCodeURL(state string) string {
	return f.config.AuthCodeURL(state)
}

// Subject implements Provider. The Graph API call carries an
// appsecret_proof so a leaked access token is useless without the app
// secret.
func (f *Facebook) Subject(ctx context.Context, code string) (string, error) {
	token, err := f.config.Exchange(ctx, code)
	if err != nil {
		return "", errors.Wrap(err, "exchanging authorization code")
	}

	query := url.Values{
		"fields":          {"id"},
		"appsecret_proof": {f.appSecretProof(token.AccessToken)},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.profileURL+"?"+query.Encode(), nil)
	if err != nil {
		return "", err
	}
	resp, err := f.config.Client(ctx, token).Do(req)
	if err != nil {
		return "", errors.Wrap(err, "fetching profile")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", errors.Errorf("profile endpoint returned %s", resp.Status)
	}

	var profile struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return "", errors.Wrap(err, "decoding profile")
	}
	if profile.ID == "" {
		return "", errors.New("profile response missing id")
	}
	return profile.ID, nil
}

// appSecretProof is the HMAC-SHA256 of the access token keyed by the app
// secret, as required when "Require App Secret" is enabled for the app.
func (f *Facebook) appSecretProof(accessToken string) string {
	mac := hmac.New(sha256.New, []byte(f.config.ClientSecret))
	mac.Write([]byte(accessToken))
	return hex.EncodeToString(mac.Sum(nil))
}
