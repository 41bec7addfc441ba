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

// LoginHandler serves POST /v1/auth/login
// Accepts application/x-www-form-urlencoded credentials.
type LoginHandler struct {
	AuthService *service.AuthService
}

// ServeHTTP godoc
//
//	@Summary		Login Endpoint
//	@Description	Exchanges a username and password for an access/refresh token pair.
//	@Description	Logging in rotates the user's refresh token: any previously issued refresh token stops working.
//	@Tags			Auth
//	@Accept			application/x-www-form-urlencoded
//	@Produce		json
//	@Param			username	formData	string					true	"Username"
//	@Param			password	formData	string					true	"Password"
//	@Success		200			{object}	authapi.TokenResponse	"access_token, refresh_token, token_type, expires_in"
//	@Failure		400			{object}	authapi.ErrorResponse	"error, error_description"
//	@Failure		429			{object}	authapi.ErrorResponse	"error, error_description"
//	@Failure		500			{object}	authapi.ErrorResponse	"error, error_description"
//	@Header			200			{string}	Cache-Control			"no-store"
//	@Router			/v1/auth/login [post].
func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	if ct := r.Header.Get("Content-Type"); ct != "" &&
		!strings.HasPrefix(ct, "application/x-www-form-urlencoded") {
		authapi.ErrInvalidContentType.WriteError(w)
		return
	}
	if err := r.ParseForm(); err != nil {
		authapi.ErrInvalidRequest.WriteError(w)
		return
	}

	username := strings.TrimSpace(r.Form.Get("username"))
	password := r.Form.Get("password")
	if username == "" || password == "" {
		authapi.ErrInvalidRequest.WriteError(w)
		return
	}

	pair, _, err := h.AuthService.Authenticate(ctx, username, password)
	if err != nil {
		if errors.Is(err, service.ErrBadCredentials) {
			authapi.ErrBadCredentials.WriteError(w)
			return
		}
		log.Error("login failed", "err", err)
		authapi.ErrServerError.WriteError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authapi.TokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    pair.TokenType,
		ExpiresIn:    pair.ExpiresIn,
	})
}
