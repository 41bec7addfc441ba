package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/oakmarket/storefront/internal/auth/service"
	"github.com/oakmarket/storefront/pkg/authapi"
	"github.com/oakmarket/storefront/pkg/httpx"
	"github.com/oakmarket/storefront/pkg/slogx"
)

// ChangePasswordHandler serves POST /v1/auth/change-password
type ChangePasswordHandler struct {
	AuthService *service.AuthService
}

// ServeHTTP godoc
//
//	@Summary		Change Password Endpoint
//	@Description	Changes the authenticated user's password and revokes every outstanding token, the presented one included.
//	@Tags			Auth
//	@Security		BearerAuth
//	@Accept			application/x-www-form-urlencoded
//	@Param			current_password	formData	string	true	"Current password"
//	@Param			new_password		formData	string	true	"New password"
//	@Success		204	"password changed, all sessions revoked"
//	@Failure		400	{object}	authapi.ErrorResponse	"error, error_description"
//	@Failure		401	{object}	authapi.ErrorResponse	"error, error_description"
//	@Failure		500	{object}	authapi.ErrorResponse	"error, error_description"
//	@Router			/v1/auth/change-password [post].
func (h *ChangePasswordHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	claims := httpx.ClaimsFromContext(ctx)
	if claims == nil {
		authapi.ErrInvalidToken.WriteError(w)
		return
	}

	if ct := r.Header.Get("Content-Type"); ct != "" &&
		!strings.HasPrefix(ct, "application/x-www-form-urlencoded") {
		authapi.ErrInvalidContentType.WriteError(w)
		return
	}
	if err := r.ParseForm(); err != nil {
		authapi.ErrInvalidRequest.WriteError(w)
		return
	}

	current := r.Form.Get("current_password")
	next := r.Form.Get("new_password")
	if current == "" || next == "" {
		authapi.ErrInvalidRequest.WriteError(w)
		return
	}

	if err := h.AuthService.ChangePassword(ctx, claims.Subject, current, next); err != nil {
		if errors.Is(err, service.ErrBadCredentials) {
			authapi.ErrBadCredentials.WriteError(w)
			return
		}
		slogx.FromContext(ctx).Error("password change failed", "err", err)
		authapi.ErrServerError.WriteError(w)
		return
	}

	writeRevoked(w)
}
