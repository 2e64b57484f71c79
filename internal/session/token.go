package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrNoToken = errors.New("no token stored")

// TokenInfo is what the client can read from its bearer token without the signing
// key. The backend stays the one that verifies it.
type TokenInfo struct {
	Subject   string
	Role      string
	ExpiresAt time.Time
}

// ExpiresWithin reports whether the token has an expiry and it falls before now+d.
func (t TokenInfo) ExpiresWithin(d time.Duration, now time.Time) bool {
	return !t.ExpiresAt.IsZero() && t.ExpiresAt.Before(now.Add(d))
}

// InspectToken decodes a JWT's claims without verifying the signature.
func InspectToken(raw string) (TokenInfo, error) {
	if raw == "" {
		return TokenInfo{}, ErrNoToken
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return TokenInfo{}, fmt.Errorf("inspecting token: %w", err)
	}

	info := TokenInfo{}
	if sub, err := claims.GetSubject(); err == nil {
		info.Subject = sub
	}
	if info.Subject == "" {
		info.Subject, _ = claims["userId"].(string)
	}
	info.Role, _ = claims["role"].(string)
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		info.ExpiresAt = exp.Time
	}
	return info, nil
}
