package service

import (
	"context"
	"fmt"
	"time"

	"github.com/oakmarket/storefront/internal/auth/domain"
	"github.com/oakmarket/storefront/internal/auth/store"
	"github.com/oakmarket/storefront/pkg/jwtx"
)

// TokenService issues access/refresh token pairs and drives revocation.
// Issuance is the only place refresh records are written, so creating a
// new pair for a subject implicitly invalidates their previous refresh
// token.
type TokenService struct {
	Codec      *jwtx.Codec
	Refresh    *store.RefreshTokens
	Blocklist  *store.Blocklist
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

func NewTokenService(codec *jwtx.Codec, refresh *store.RefreshTokens, blocklist *store.Blocklist, accessTTL, refreshTTL time.Duration) *TokenService {
	return &TokenService{
		Codec:      codec,
		Refresh:    refresh,
		Blocklist:  blocklist,
		AccessTTL:  accessTTL,
		RefreshTTL: refreshTTL,
	}
}

// CreateAccessToken mints a signed access token for the subject carrying
// the permissions snapshot taken at issuance time.
func (s *TokenService) CreateAccessToken(subject string, permissions map[string][]string) (jwtx.Claims, string, error) {
	claims := jwtx.NewClaims(jwtx.TypeAccess, subject, s.AccessTTL, time.Now())
	claims.Permissions = permissions

	token, err := s.Codec.Encode(claims)
	if err != nil {
		return jwtx.Claims{}, "", fmt.Errorf("encode access token: %w", err)
	}
	return claims, token, nil
}

// CreateRefreshToken mints a signed refresh token and records it as the
// subject's current one, overwriting whatever was there before.
func (s *TokenService) CreateRefreshToken(ctx context.Context, subject string) (jwtx.Claims, string, error) {
	claims := jwtx.NewClaims(jwtx.TypeRefresh, subject, s.RefreshTTL, time.Now())

	if err := s.Refresh.Put(ctx, claims); err != nil {
		return jwtx.Claims{}, "", fmt.Errorf("store refresh record: %w", err)
	}
	token, err := s.Codec.Encode(claims)
	if err != nil {
		return jwtx.Claims{}, "", fmt.Errorf("encode refresh token: %w", err)
	}
	return claims, token, nil
}

// CreateTokens issues a fresh access/refresh pair for the subject.
func (s *TokenService) CreateTokens(ctx context.Context, subject string, permissions map[string][]string) (*domain.TokenPair, error) {
	_, access, err := s.CreateAccessToken(subject, permissions)
	if err != nil {
		return nil, err
	}
	_, refresh, err := s.CreateRefreshToken(ctx, subject)
	if err != nil {
		return nil, err
	}
	return &domain.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.AccessTTL / time.Second),
	}, nil
}

// RevokeTokens revokes the presented access token and deletes the
// subject's refresh record. Other access tokens of the subject stay valid.
func (s *TokenService) RevokeTokens(ctx context.Context, claims jwtx.Claims) error {
	if err := s.Blocklist.Add(ctx, claims); err != nil {
		return fmt.Errorf("blocklist access token: %w", err)
	}
	if err := s.Refresh.Delete(ctx, claims.Subject); err != nil {
		return fmt.Errorf("delete refresh record: %w", err)
	}
	return nil
}

// RevokeAllExceptCurrent revokes every token of the subject except the
// presented access token. The refresh record is deleted too: the caller
// keeps working until their access token expires, then must log in again.
func (s *TokenService) RevokeAllExceptCurrent(ctx context.Context, claims jwtx.Claims) error {
	if err := s.Blocklist.BlockAllExceptCurrent(ctx, claims); err != nil {
		return fmt.Errorf("set watermark: %w", err)
	}
	if err := s.Refresh.Delete(ctx, claims.Subject); err != nil {
		return fmt.Errorf("delete refresh record: %w", err)
	}
	return nil
}

// RevokeAll revokes every outstanding token of the subject, the presented
// one included.
func (s *TokenService) RevokeAll(ctx context.Context, subject string) error {
	if err := s.Blocklist.BlockAll(ctx, subject); err != nil {
		return fmt.Errorf("set watermark: %w", err)
	}
	if err := s.Refresh.Delete(ctx, subject); err != nil {
		return fmt.Errorf("delete refresh record: %w", err)
	}
	return nil
}
