package domain

import "time"

// Credential holds the encrypted OAuth token pair for one (user, provider).
// Token fields are ciphertext; plaintext tokens never persist.
type Credential struct {
	UserID       string     `json:"user_id"`
	Provider     string     `json:"provider"`
	AccessToken  string     `json:"access_token"`
	RefreshToken string     `json:"refresh_token,omitempty"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
}

// Expired reports whether the access token expiry is known and in the past.
func (c *Credential) Expired(now time.Time) bool {
	return c.ExpiresAt != nil && c.ExpiresAt.Before(now)
}

// TokenPair is a plaintext token pair as returned by an identity provider.
// It only ever lives transiently inside a resolver or linker call.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    *time.Time
}
