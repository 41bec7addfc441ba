package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/oakmarket/storefront/internal/auth/service"
	"github.com/oakmarket/storefront/internal/auth/store"
	"github.com/oakmarket/storefront/pkg/httpx"
	"github.com/oakmarket/storefront/pkg/slogx"

	_ "github.com/oakmarket/storefront/api/auth" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// CachePinger reports whether the revocation store is reachable.
type CachePinger interface {
	Ping(ctx context.Context) error
}

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store store.Store
	cache CachePinger

	AuthService  *service.AuthService
	TokenService *service.TokenService
}

func NewRouter(buildVersion string, st store.Store, cache CachePinger, logger *slog.Logger) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		cache:        cache,
		logger:       logger,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Storefront Authentication Service API
//	@version		0.1.0
//	@description	Token lifecycle and revocation service for the storefront backend.
//	@description
//	@description				Issues JWT access/refresh token pairs signed with HS256, rotates refresh tokens
//	@description				and revokes tokens through a per-token blocklist plus per-subject watermarks.
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	// POST /login - strict rate limit by IP + username to slow brute force
	loginHandler := &LoginHandler{AuthService: r.AuthService}
	r.Mux.Handle("POST /v1/auth/login",
		httpx.Chain(loginHandler,
			httpx.RateLimitByIPAndFormField(httpx.StrictLimit, "username"),
		),
	)

	// POST /refresh - the bearer token is the refresh token itself, so
	// this stays outside the access token middleware
	refreshHandler := &RefreshHandler{AuthService: r.AuthService}
	r.Mux.Handle("POST /v1/auth/refresh",
		httpx.Chain(refreshHandler,
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)

	logoutHandler := &LogoutHandler{TokenService: r.TokenService}
	r.Mux.Handle("POST /v1/auth/logout",
		httpx.Chain(http.HandlerFunc(logoutHandler.HandleLogout),
			httpx.AuthnMiddleware(r.AuthService.Verifier),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("POST /v1/auth/logout-others",
		httpx.Chain(http.HandlerFunc(logoutHandler.HandleLogoutOthers),
			httpx.AuthnMiddleware(r.AuthService.Verifier),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("POST /v1/auth/logout-all",
		httpx.Chain(http.HandlerFunc(logoutHandler.HandleLogoutAll),
			httpx.AuthnMiddleware(r.AuthService.Verifier),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)

	passwordHandler := &ChangePasswordHandler{AuthService: r.AuthService}
	r.Mux.Handle("POST /v1/auth/change-password",
		httpx.Chain(passwordHandler,
			httpx.AuthnMiddleware(r.AuthService.Verifier),
			httpx.RateLimitByUser(httpx.StrictLimit),
		),
	)

	meHandler := &MeHandler{AuthService: r.AuthService}
	r.Mux.Handle("GET /v1/auth/me",
		httpx.Chain(meHandler,
			httpx.AuthnMiddleware(r.AuthService.Verifier),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez", LivezHandler(r.startTime, r.buildVersion))
	r.Mux.Handle("GET /readyz", ReadyzHandler(r.startTime, r.buildVersion, r.store, r.cache))
}
