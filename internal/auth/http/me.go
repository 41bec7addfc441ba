package http

import (
	"net/http"

	"github.com/oakmarket/storefront/internal/auth/service"
	"github.com/oakmarket/storefront/pkg/authapi"
	"github.com/oakmarket/storefront/pkg/httpx"
	"github.com/oakmarket/storefront/pkg/slogx"
)

type MeHandler struct {
	AuthService *service.AuthService
}

// ServeHTTP godoc
//
//	@Summary		Current User Endpoint
//	@Description	Returns the authenticated user together with the workspace permissions captured in the presented access token.
//	@Tags			Auth
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	authapi.UserResponse	"id, username, permissions"
//	@Failure		401	{object}	authapi.ErrorResponse	"error, error_description"
//	@Failure		500	{object}	authapi.ErrorResponse	"error, error_description"
//	@Router			/v1/auth/me [get].
func (h *MeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	claims := httpx.ClaimsFromContext(ctx)
	if claims == nil {
		authapi.ErrInvalidToken.WriteError(w)
		return
	}

	user, err := h.AuthService.CurrentUser(ctx, &service.AuthContext{Claims: claims})
	if err != nil {
		slogx.FromContext(ctx).Error("failed to load user", "user_id", claims.Subject, "err", err)
		authapi.ErrServerError.WriteError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authapi.UserResponse{
		ID:          user.ID,
		Username:    user.Username,
		Permissions: claims.Permissions,
	})
}
