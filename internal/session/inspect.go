package session

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Info describes a stored credential. Opaque is set when the token is not a
// JWT; the other fields are then empty.
type Info struct {
	Opaque    bool      `json:"opaque"`
	Subject   string    `json:"subject,omitempty"`
	Issuer    string    `json:"issuer,omitempty"`
	Role      string    `json:"role,omitempty"`
	IssuedAt  time.Time `json:"issuedAt,omitempty"`
	ExpiresAt time.Time `json:"expiresAt,omitempty"`
}

// Expired reports whether the token carries an expiry before now.
func (i Info) Expired(now time.Time) bool {
	return !i.ExpiresAt.IsZero() && !now.Before(i.ExpiresAt)
}

// Inspect decodes the claims of token for display, without verifying its
// signature.
func Inspect(token string) (Info, error) {
	if token == "" {
		return Info{}, ErrNoToken
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return Info{Opaque: true}, nil
	}

	var info Info
	var err error
	if info.Subject, err = claims.GetSubject(); err != nil {
		return Info{}, fmt.Errorf("read sub claim: %w", err)
	}
	if info.Subject == "" {
		info.Subject, _ = claims["user_id"].(string)
	}
	if info.Issuer, err = claims.GetIssuer(); err != nil {
		return Info{}, fmt.Errorf("read iss claim: %w", err)
	}
	info.Role, _ = claims["role"].(string)

	if iat, err := claims.GetIssuedAt(); err != nil {
		return Info{}, fmt.Errorf("read iat claim: %w", err)
	} else if iat != nil {
		info.IssuedAt = iat.Time
	}
	if exp, err := claims.GetExpirationTime(); err != nil {
		return Info{}, fmt.Errorf("read exp claim: %w", err)
	} else if exp != nil {
		info.ExpiresAt = exp.Time
	}
	return info, nil
}
