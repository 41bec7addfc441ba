package http

import (
	"net/http"

	"github.com/oakmarket/storefront/internal/auth/service"
	"github.com/oakmarket/storefront/pkg/authapi"
	"github.com/oakmarket/storefront/pkg/httpx"
	"github.com/oakmarket/storefront/pkg/slogx"
)

// LogoutHandler serves the three revocation endpoints. All of them sit
// behind the access token middleware, so the claims are already verified
// by the time a handler runs.
type LogoutHandler struct {
	TokenService *service.TokenService
}

// HandleLogout godoc
//
//	@Summary		Logout Endpoint
//	@Description	Revokes the presented access token and deletes the user's refresh token.
//	@Description	Other access tokens of the same user stay valid until they expire.
//	@Tags			Auth
//	@Security		BearerAuth
//	@Success		204	"tokens revoked"
//	@Failure		401	{object}	authapi.ErrorResponse	"error, error_description"
//	@Failure		500	{object}	authapi.ErrorResponse	"error, error_description"
//	@Router			/v1/auth/logout [post].
func (h *LogoutHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	claims := httpx.ClaimsFromContext(ctx)
	if claims == nil {
		authapi.ErrInvalidToken.WriteError(w)
		return
	}

	if err := h.TokenService.RevokeTokens(ctx, *claims); err != nil {
		slogx.FromContext(ctx).Error("logout failed", "err", err)
		authapi.ErrServerError.WriteError(w)
		return
	}

	slogx.FromContext(ctx).Info("session revoked", "user_id", claims.Subject)
	writeRevoked(w)
}

// HandleLogoutOthers godoc
//
//	@Summary		Logout Others Endpoint
//	@Description	Revokes every token of the user except the presented access token.
//	@Description	The refresh token is deleted too, so the current session ends when its access token expires.
//	@Tags			Auth
//	@Security		BearerAuth
//	@Success		204	"other sessions revoked"
//	@Failure		401	{object}	authapi.ErrorResponse	"error, error_description"
//	@Failure		500	{object}	authapi.ErrorResponse	"error, error_description"
//	@Router			/v1/auth/logout-others [post].
func (h *LogoutHandler) HandleLogoutOthers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	claims := httpx.ClaimsFromContext(ctx)
	if claims == nil {
		authapi.ErrInvalidToken.WriteError(w)
		return
	}

	if err := h.TokenService.RevokeAllExceptCurrent(ctx, *claims); err != nil {
		slogx.FromContext(ctx).Error("logout-others failed", "err", err)
		authapi.ErrServerError.WriteError(w)
		return
	}

	slogx.FromContext(ctx).Info("other sessions revoked", "user_id", claims.Subject)
	writeRevoked(w)
}

// HandleLogoutAll godoc
//
//	@Summary		Logout All Endpoint
//	@Description	Revokes every token of the user, the presented one included.
//	@Tags			Auth
//	@Security		BearerAuth
//	@Success		204	"all sessions revoked"
//	@Failure		401	{object}	authapi.ErrorResponse	"error, error_description"
//	@Failure		500	{object}	authapi.ErrorResponse	"error, error_description"
//	@Router			/v1/auth/logout-all [post].
func (h *LogoutHandler) HandleLogoutAll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	claims := httpx.ClaimsFromContext(ctx)
	if claims == nil {
		authapi.ErrInvalidToken.WriteError(w)
		return
	}

	if err := h.TokenService.RevokeAll(ctx, claims.Subject); err != nil {
		slogx.FromContext(ctx).Error("logout-all failed", "err", err)
		authapi.ErrServerError.WriteError(w)
		return
	}

	slogx.FromContext(ctx).Info("all sessions revoked", "user_id", claims.Subject)
	writeRevoked(w)
}

func writeRevoked(w http.ResponseWriter) {
	httpx.NoCache(w)
	w.WriteHeader(http.StatusNoContent)
}
