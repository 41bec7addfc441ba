package httpx

import (
	"context"

	"github.com/oakmarket/storefront/pkg/jwtx"
)

type ctxKey string

const (
	CtxKeyUserID ctxKey = "user_id"
	CtxKeyClaims ctxKey = "claims"
)

// UserIDFromContext returns the authenticated subject, or "" when the
// request did not pass through AuthnMiddleware.
func UserIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(CtxKeyUserID).(string); ok {
		return v
	}
	return ""
}

// ClaimsFromContext returns the verified access token claims, or nil.
func ClaimsFromContext(ctx context.Context) *jwtx.Claims {
	if v, ok := ctx.Value(CtxKeyClaims).(*jwtx.Claims); ok {
		return v
	}
	return nil
}
