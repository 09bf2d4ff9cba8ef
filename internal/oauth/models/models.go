package models

import (
	"crypto/rand"
	"encoding/hex"
	"time"
)

// Client is a registered OAuth2 client application. This deployment
// seeds exactly one, but nothing downstream assumes that.
type Client struct {
	ID     string
	Secret string
}

// AuthState is an ephemeral authorization request, keyed by its opaque
// state token. It correlates an authorize redirect with the eventual
// login submission and pins the redirect target for the whole flow.
type AuthState struct {
	Token       string
	ClientID    string
	RedirectURI string
	Scope       string
	CreatedAt   time.Time
	ExpiresAt   time.Time
}

// Expired reports whether the state is past its expiry at the given time.
func (s *AuthState) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// AuthorizationCode is an issued, not-yet-redeemed authorization code.
// Redemption is destructive; a code never satisfies two redemptions.
type AuthorizationCode struct {
	Code        string
	UserID      string
	ClientID    string
	RedirectURI string
	Scope       string
	CreatedAt   time.Time
	ExpiresAt   time.Time
}

// Expired reports whether the code is past its expiry at the given time.
func (c *AuthorizationCode) Expired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}

// NewOpaqueToken returns a fresh 256-bit random token as hex. Used for
// both state tokens and authorization codes.
func NewOpaqueToken() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failing is unrecoverable for a token issuer.
		panic("opaque token generation: " + err.Error())
	}
	return hex.EncodeToString(buf)
}
