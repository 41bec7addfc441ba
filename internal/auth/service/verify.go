package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/oakmarket/storefront/internal/auth/store"
	"github.com/oakmarket/storefront/pkg/jwtx"
)

// Verifier checks presented tokens against the signing key and the
// revocation state. Signature and expiry checks happen first and are
// purely local; revocation checks hit the KV store.
type Verifier struct {
	Codec     *jwtx.Codec
	Blocklist *store.Blocklist
	Refresh   *store.RefreshTokens
}

func NewVerifier(codec *jwtx.Codec, blocklist *store.Blocklist, refresh *store.RefreshTokens) *Verifier {
	return &Verifier{Codec: codec, Blocklist: blocklist, Refresh: refresh}
}

// VerifyAccess validates an access token end to end: signature, expiry,
// token type, per-token blocklist, then the subject watermark.
func (v *Verifier) VerifyAccess(ctx context.Context, token string) (*jwtx.Claims, error) {
	claims, err := v.Codec.Decode(token)
	if err != nil {
		return nil, err
	}
	if claims.Type != jwtx.TypeAccess {
		return nil, &InvalidTokenTypeError{Got: claims.Type, Expected: jwtx.TypeAccess}
	}

	blocked, err := v.Blocklist.Contains(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("check blocklist: %w", err)
	}
	if blocked {
		return nil, ErrTokenRevoked
	}

	covered, err := v.Blocklist.BlockedByWatermark(ctx, *claims)
	if err != nil {
		return nil, fmt.Errorf("check watermark: %w", err)
	}
	if covered {
		return nil, ErrTokenRevoked
	}

	return claims, nil
}

// VerifyRefresh validates a refresh token and confirms it is still the
// subject's current one. A subject has at most one live refresh token;
// presenting any other is either a replay after rotation or a leak.
func (v *Verifier) VerifyRefresh(ctx context.Context, token string) (*jwtx.Claims, error) {
	claims, err := v.Codec.Decode(token)
	if err != nil {
		return nil, err
	}
	if claims.Type != jwtx.TypeRefresh {
		return nil, &InvalidTokenTypeError{Got: claims.Type, Expected: jwtx.TypeRefresh}
	}

	stored, err := v.Refresh.Get(ctx, claims.Subject)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrTokenRevoked
	}
	if err != nil {
		return nil, fmt.Errorf("load refresh record: %w", err)
	}
	if stored.ID != claims.ID {
		return nil, ErrWrongRefreshToken
	}

	return claims, nil
}
