package store

import (
	"context"
	"time"

	"github.com/oakmarket/storefront/pkg/jwtx"
)

// RefreshTokens persists the single current refresh token record per
// subject. The key is derived from the subject only — never the jti — so
// issuing a new refresh token overwrites the previous record and silently
// invalidates it. That overwrite IS the rotation mechanism.
type RefreshTokens struct {
	kv  KV
	ttl time.Duration
}

// NewRefreshTokens returns a repository storing records with the given
// TTL, which should equal the refresh token lifetime.
func NewRefreshTokens(kv KV, ttl time.Duration) *RefreshTokens {
	return &RefreshTokens{kv: kv, ttl: ttl}
}

// Put stores claims as the subject's current refresh record, replacing
// any previous one.
func (s *RefreshTokens) Put(ctx context.Context, claims jwtx.Claims) error {
	return s.kv.Set(ctx, refreshKey(claims.Subject), claims, s.ttl)
}

// Get returns the subject's current refresh record, or ErrNotFound when
// none exists (never issued, already consumed, or expired).
func (s *RefreshTokens) Get(ctx context.Context, subject string) (*jwtx.Claims, error) {
	var claims jwtx.Claims
	if err := s.kv.Get(ctx, refreshKey(subject), &claims); err != nil {
		return nil, err
	}
	return &claims, nil
}

// Delete removes the subject's refresh record. Idempotent.
func (s *RefreshTokens) Delete(ctx context.Context, subject string) error {
	return s.kv.Delete(ctx, refreshKey(subject))
}

func refreshKey(subject string) string {
	return subject + ":refresh"
}
