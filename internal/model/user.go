package model

import "errors"

// User is a registered principal. One record exists per person, no matter
// which credential they first proved themselves with. The JSON tags describe
// the storage encoding; PasswordHash must never leave the process, so any
// externally visible view of a user is built from a separate type.
type User struct {
	ID           string `json:"id"` // uuid
	Username     string `json:"username,omitempty"`
	PasswordHash string `json:"password_hash,omitempty"`
	GoogleID     string `json:"google_id,omitempty"`
	FacebookID   string `json:"facebook_id,omitempty"`
	Secret       string `json:"secret,omitempty"`
}

// Valid returns an error if the user is missing an ID or has no way
// to authenticate. Every stored user must be reachable through at least
// one credential.
func (u *User) Valid() error {
	if u.ID == "" {
		return errors.New("missing ID")
	}
	hasLocal := u.Username != "" && u.PasswordHash != ""
	if !hasLocal && u.GoogleID == "" && u.FacebookID == "" {
		return errors.New("user has no authentication method")
	}
	return nil
}

// HasSecret reports whether the user has published a secret. Only users
// with a secret appear on the public listing.
func (u *User) HasSecret() bool {
	return u.Secret != ""
}

// SubjectID returns the stored subject id for the given provider.
func (u *User) SubjectID(provider Provider) string {
	switch provider {
	case ProviderGoogle:
		return u.GoogleID
	case ProviderFacebook:
		return u.FacebookID
	}
	return ""
}

// SetSubjectID records the subject id for the given provider.
func (u *User) SetSubjectID(provider Provider, subjectID string) {
	switch provider {
	case ProviderGoogle:
		u.GoogleID = subjectID
	case ProviderFacebook:
		u.FacebookID = subjectID
	}
}
