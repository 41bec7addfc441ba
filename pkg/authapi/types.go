// Package authapi holds the wire types of the authentication service and
// a small client for them. The server handlers and the client share these
// definitions so the two cannot drift apart.
package authapi

// TokenResponse is returned from POST /v1/auth/login.
type TokenResponse struct {
	// AccessToken is the JWT presented on authenticated API requests.
	AccessToken string `json:"access_token"`

	// RefreshToken is the JWT exchanged for new access tokens.
	RefreshToken string `json:"refresh_token,omitempty"`

	// TokenType is always "Bearer".
	TokenType string `json:"token_type"`

	// ExpiresIn is the access token lifetime in seconds.
	ExpiresIn int64 `json:"expires_in"`
}

// UserResponse is returned from GET /v1/auth/me.
type UserResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`

	// Permissions maps workspace id to the permissions granted there, as
	// captured in the presented access token.
	Permissions map[string][]string `json:"permissions,omitempty"`
}

// ErrorResponse is the error payload every endpoint uses.
type ErrorResponse struct {
	Code    string `json:"error"`
	Message string `json:"error_description"`
}

// HealthResponse is returned from /livez and /readyz.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks reports the state of each critical dependency.
type HealthChecks struct {
	Database string `json:"database"`
	Cache    string `json:"cache"`
}
