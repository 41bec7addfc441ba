package store

import (
	"context"
	"errors"
	"time"

	"github.com/oakmarket/storefront/internal/auth/domain"
	"github.com/oakmarket/storefront/pkg/jwtx"
)

// Blocklist persists explicit per-token revocations (keyed by jti) and
// per-subject watermarks ("block everything issued at or before T, except
// one jti"). Together these are the revocation state consulted on every
// access token verification.
type Blocklist struct {
	kv        KV
	retention time.Duration
	accessTTL time.Duration

	now func() time.Time
}

// NewBlocklist returns a repository. retention is the minimum time a
// blocklist entry is kept; accessTTL is the configured access token
// lifetime and bounds how long a watermark must survive.
func NewBlocklist(kv KV, retention, accessTTL time.Duration) *Blocklist {
	return &Blocklist{kv: kv, retention: retention, accessTTL: accessTTL, now: time.Now}
}

// Add records the claims of a revoked access token under its jti. The
// entry lives for the retention window or the token's remaining lifetime,
// whichever is longer — an entry that lapsed before the token's own exp
// would silently un-revoke it.
func (s *Blocklist) Add(ctx context.Context, claims jwtx.Claims) error {
	ttl := s.retention
	if remaining := time.Until(claims.ExpiresAtTime()); remaining > ttl {
		ttl = remaining
	}
	return s.kv.Set(ctx, claims.ID, claims, ttl)
}

// Contains reports whether the jti has been explicitly revoked.
func (s *Blocklist) Contains(ctx context.Context, jti string) (bool, error) {
	var stored jwtx.Claims
	err := s.kv.Get(ctx, jti, &stored)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// BlockedByWatermark reports whether the subject's watermark, if any,
// covers the given claims.
func (s *Blocklist) BlockedByWatermark(ctx context.Context, claims jwtx.Claims) (bool, error) {
	var wm domain.Watermark
	err := s.kv.Get(ctx, watermarkKey(claims.Subject), &wm)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return wm.Covers(claims.ID, claims.IssuedAtUnix()), nil
}

// BlockAllExceptCurrent writes a watermark revoking every access token the
// subject holds except the presented one ("log out other sessions").
func (s *Blocklist) BlockAllExceptCurrent(ctx context.Context, claims jwtx.Claims) error {
	return s.putWatermark(ctx, claims.Subject, claims.ID)
}

// BlockAll writes a watermark revoking every access token the subject
// holds ("log out everywhere").
func (s *Blocklist) BlockAll(ctx context.Context, subject string) error {
	return s.putWatermark(ctx, subject, "")
}

func (s *Blocklist) putWatermark(ctx context.Context, subject, exclude string) error {
	wm := domain.Watermark{
		BlockedAt: s.now().UTC().Unix(),
		Exclude:   exclude,
	}
	// Every token the watermark can cover has iat <= blocked_at, so it
	// expires on its own within one access lifetime. Keeping the record
	// any longer buys nothing.
	return s.kv.Set(ctx, watermarkKey(subject), wm, s.accessTTL)
}

func watermarkKey(subject string) string {
	return subject + ":allblock"
}
