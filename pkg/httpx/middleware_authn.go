package httpx

import (
	"context"
	"net/http"
	"strings"

	"github.com/oakmarket/storefront/pkg/jwtx"
	"github.com/oakmarket/storefront/pkg/slogx"
)

// AccessVerifier validates a raw bearer token and returns its claims.
type AccessVerifier interface {
	VerifyAccess(ctx context.Context, token string) (*jwtx.Claims, error)
}

// AuthnMiddleware extracts the bearer token, verifies it as an access
// token and injects the subject and claims into the request context.
func AuthnMiddleware(v AccessVerifier) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			raw, ok := BearerToken(r)
			if !ok {
				writeBearerError(w, "missing bearer token")
				return
			}

			claims, err := v.VerifyAccess(ctx, raw)
			if err != nil {
				slogx.FromContext(ctx).Warn("access token rejected", "err", err)
				writeBearerError(w, "token verification failed")
				return
			}

			ctx = context.WithValue(ctx, CtxKeyUserID, claims.Subject)
			ctx = context.WithValue(ctx, CtxKeyClaims, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// BearerToken pulls the token out of the Authorization header.
func BearerToken(r *http.Request) (string, bool) {
	authz := r.Header.Get("Authorization")
	if !strings.HasPrefix(authz, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer"))
	return token, token != ""
}

// RFC 6750-compliant error response for bearer auth.
func writeBearerError(w http.ResponseWriter, desc string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token", error_description="`+desc+`"`)
	w.WriteHeader(http.StatusUnauthorized)
}
