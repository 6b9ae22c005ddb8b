// Package provider implements the third-party login providers. A provider
// redirects the browser out to the identity provider and, on the way back,
// exchanges the authorization code for the stable subject id the provider
// knows the user by.
package provider

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/base64"
	"io"

	"github.com/hushboard/hushboard/internal/model"
)

// Provider performs the redirect and code exchange with one identity provider.
type Provider interface {
	Name() model.Provider

	// AuthCodeURL returns the provider URL to redirect the browser to.
	AuthCodeURL(state string) string

	// Subject exchanges the callback's authorization code and returns the
	// provider-issued subject id for the authenticated user.
	Subject(ctx context.Context, code string) (string, error)
}

// GenerateState produces a new random state for one authorization round trip.
func GenerateState() (string, error) {
	var b bytes.Buffer
	if _, err := io.CopyN(&b, rand.Reader, 16); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b.Bytes()), nil
}
