package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/oakmarket/storefront/internal/auth/domain"
	"github.com/oakmarket/storefront/internal/auth/store"
	"github.com/oakmarket/storefront/pkg/cryptox"
	"github.com/oakmarket/storefront/pkg/jwtx"
	"github.com/oakmarket/storefront/pkg/slogx"
)

// AuthContext carries the verified principal of a request. User is only
// populated when the principal was loaded during the same operation, for
// example right after a credential check; otherwise CurrentUser fetches
// it on demand.
type AuthContext struct {
	User   *domain.User
	Claims *jwtx.Claims
}

// AuthService ties credentials, permission grants and token issuance
// together into the login, refresh and session endpoints' behaviour.
type AuthService struct {
	Users    store.Users
	Authz    *AuthzService
	Tokens   *TokenService
	Verifier *Verifier
}

func NewAuthService(users store.Users, authz *AuthzService, tokens *TokenService, verifier *Verifier) *AuthService {
	return &AuthService{Users: users, Authz: authz, Tokens: tokens, Verifier: verifier}
}

// Authenticate checks the credentials and, on success, issues a fresh
// token pair. Issuing the pair rotates out any previous refresh token the
// user held.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*domain.TokenPair, *domain.User, error) {
	user, err := s.verifyCredentials(ctx, username, password)
	if err != nil {
		return nil, nil, err
	}

	perms, err := s.Authz.GetPermissions(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}

	pair, err := s.Tokens.CreateTokens(ctx, user.ID, perms)
	if err != nil {
		return nil, nil, err
	}

	slogx.FromContext(ctx).Info("user authenticated", "user_id", user.ID)
	return pair, &user, nil
}

func (s *AuthService) verifyCredentials(ctx context.Context, username, password string) (domain.User, error) {
	user, err := s.Users.GetUserByUsername(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		slogx.FromContext(ctx).Info("login rejected", "reason", "unknown username")
		return domain.User{}, ErrBadCredentials
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("look up user: %w", err)
	}

	if err := cryptox.VerifyPassword(password, user.PasswordHash); err != nil {
		if errors.Is(err, cryptox.ErrPasswordMismatch) {
			slogx.FromContext(ctx).Info("login rejected", "reason", "wrong password", "user_id", user.ID)
			return domain.User{}, ErrBadCredentials
		}
		return domain.User{}, fmt.Errorf("verify password: %w", err)
	}

	return user, nil
}

// VerifyAccess resolves a bearer access token into an AuthContext.
func (s *AuthService) VerifyAccess(ctx context.Context, token string) (*AuthContext, error) {
	claims, err := s.Verifier.VerifyAccess(ctx, token)
	if err != nil {
		return nil, err
	}
	return &AuthContext{Claims: claims}, nil
}

// Refresh exchanges a valid refresh token for a new access token. The
// refresh token itself stays in place until it expires or the pair is
// rotated by a new login.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.Verifier.VerifyRefresh(ctx, refreshToken)
	if err != nil {
		return "", err
	}

	perms, err := s.Authz.GetPermissions(ctx, claims.Subject)
	if err != nil {
		return "", err
	}

	_, access, err := s.Tokens.CreateAccessToken(claims.Subject, perms)
	if err != nil {
		return "", err
	}

	slogx.FromContext(ctx).Info("access token refreshed", "user_id", claims.Subject)
	return access, nil
}

// ChangePassword verifies the current password, stores the new hash and
// revokes every outstanding token of the user. Forcing re-login on every
// device is the point: a password change usually means the old one leaked.
func (s *AuthService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	user, err := s.Users.GetUserByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("load user: %w", err)
	}

	if err := cryptox.VerifyPassword(currentPassword, user.PasswordHash); err != nil {
		if errors.Is(err, cryptox.ErrPasswordMismatch) {
			return ErrBadCredentials
		}
		return fmt.Errorf("verify password: %w", err)
	}

	hash, err := cryptox.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash new password: %w", err)
	}
	if err := s.Users.UpdatePasswordHash(ctx, userID, hash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	if err := s.Tokens.RevokeAll(ctx, userID); err != nil {
		return fmt.Errorf("revoke sessions: %w", err)
	}

	slogx.FromContext(ctx).Info("password changed", "user_id", userID)
	return nil
}

// CurrentUser returns the principal behind the auth context, loading it
// from the user store when it was not already resolved.
func (s *AuthService) CurrentUser(ctx context.Context, ac *AuthContext) (domain.User, error) {
	if ac.User != nil {
		return *ac.User, nil
	}
	user, err := s.Users.GetUserByID(ctx, ac.Claims.Subject)
	if err != nil {
		return domain.User{}, fmt.Errorf("load current user: %w", err)
	}
	ac.User = &user
	return user, nil
}
