package http

import (
	"errors"
	"net/http"

	"github.com/oakmarket/storefront/internal/auth/service"
	"github.com/oakmarket/storefront/pkg/authapi"
	"github.com/oakmarket/storefront/pkg/httpx"
	"github.com/oakmarket/storefront/pkg/jwtx"
	"github.com/oakmarket/storefront/pkg/slogx"
)

// RefreshHandler serves POST /v1/auth/refresh
// The bearer token on this endpoint is the refresh token.
type RefreshHandler struct {
	AuthService *service.AuthService
}

// ServeHTTP godoc
//
//	@Summary		Token Refresh Endpoint
//	@Description	Exchanges a valid refresh token for a new access token carrying the user's current permissions.
//	@Description	The refresh token itself is not rotated here; it stays valid until it expires or a new login replaces it.
//	@Tags			Auth
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	authapi.TokenResponse	"access_token, token_type, expires_in"
//	@Failure		401	{object}	authapi.ErrorResponse	"error, error_description"
//	@Failure		500	{object}	authapi.ErrorResponse	"error, error_description"
//	@Header			200	{string}	Cache-Control			"no-store"
//	@Router			/v1/auth/refresh [post].
func (h *RefreshHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	raw, ok := httpx.BearerToken(r)
	if !ok {
		authapi.ErrInvalidToken.WriteError(w)
		return
	}

	access, err := h.AuthService.Refresh(ctx, raw)
	if err != nil {
		if isTokenError(err) {
			authapi.ErrInvalidToken.WriteError(w)
			return
		}
		log.Error("refresh failed", "err", err)
		authapi.ErrServerError.WriteError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authapi.TokenResponse{
		AccessToken: access,
		TokenType:   "Bearer",
		ExpiresIn:   int64(h.AuthService.Tokens.AccessTTL.Seconds()),
	})
}

// isTokenError separates token rejections, which the caller caused, from
// infrastructure failures. All rejections surface as the same 401 so the
// response leaks nothing about revocation state.
func isTokenError(err error) bool {
	return errors.Is(err, jwtx.ErrDecode) ||
		errors.Is(err, service.ErrTokenRevoked) ||
		errors.Is(err, service.ErrWrongRefreshToken) ||
		errors.Is(err, service.ErrInvalidTokenType)
}
