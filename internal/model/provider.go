package model

// Provider represents a third-party authentication provider.
type Provider string

// Supported authentication providers
const (
	ProviderGoogle   Provider = "google"
	ProviderFacebook Provider = "facebook"
)

// IsValid reports whether the provider is one we support.
func (p Provider) IsValid() bool {
	switch p {
	case ProviderGoogle, ProviderFacebook:
		return true
	}
	return false
}

func (p Provider) String() string {
	return string(p)
}
