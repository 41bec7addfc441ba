package jwtx

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Token types carried in the "type" claim. The type is fixed at issuance
// and checked again on every verification.
const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
)

// Claims are the token payload: the JWT registered claims (jti, sub, iat,
// exp) plus our own discriminator and the per-workspace permission map.
// We keep additive changes to preserve compatibility for later.
type Claims struct {
	jwt.RegisteredClaims

	// Type is "access" or "refresh". Immutable after issuance.
	Type string `json:"type"`

	// Permissions maps workspace IDs to the permission names the subject
	// holds there. Populated on access tokens only; refresh tokens stay
	// minimal so the stored refresh record carries no authority.
	Permissions map[string][]string `json:"perms,omitempty"`
}

// NewClaims builds minimally-correct claims for one token: a fresh jti,
// iat=now and exp=now+ttl. Extra data (permissions) is set by the caller
// afterwards so that every issuance starts from a clean payload.
func NewClaims(tokenType, subject string, ttl time.Duration, now time.Time) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Type: tokenType,
	}
}

// IssuedAtUnix returns the iat claim as epoch seconds, or 0 when absent.
func (c Claims) IssuedAtUnix() int64 {
	if c.IssuedAt == nil {
		return 0
	}
	return c.IssuedAt.Unix()
}

// ExpiresAtTime returns the exp claim, or the zero time when absent.
func (c Claims) ExpiresAtTime() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}
