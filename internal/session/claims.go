package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rotisserie/eris"
)

// Claims are the fields the auth server puts in its access tokens.
type Claims struct {
	jwt.RegisteredClaims
	Email      string `json:"email"`
	Nom        string `json:"nom"`
	TypeProfil string `json:"type_profil"`
}

// ParseClaims decodes token without verifying its signature. The result is
// for display only.
func ParseClaims(token string) (*Claims, error) {
	var c Claims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &c); err != nil {
		return nil, eris.Wrap(err, "session: parse token")
	}
	return &c, nil
}

// Expiry returns the token's exp claim, if any.
func (c *Claims) Expiry() (time.Time, bool) {
	if c.RegisteredClaims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return c.RegisteredClaims.ExpiresAt.Time, true
}
