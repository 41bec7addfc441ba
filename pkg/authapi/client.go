package authapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client is a thin HTTP client for the authentication service.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL:    strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Login exchanges credentials for a token pair.
func (c *Client) Login(ctx context.Context, username, password string) (*TokenResponse, error) {
	form := url.Values{"username": {username}, "password": {password}}
	resp, err := c.postForm(ctx, "/v1/auth/login", form, "")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var tokens TokenResponse
	if err := decodeResponse(resp, &tokens); err != nil {
		return nil, err
	}
	return &tokens, nil
}

// Refresh exchanges a refresh token for a fresh access token.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	resp, err := c.postForm(ctx, "/v1/auth/refresh", nil, refreshToken)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var tokens TokenResponse
	if err := decodeResponse(resp, &tokens); err != nil {
		return nil, err
	}
	return &tokens, nil
}

// Logout revokes the access token and its paired refresh token.
func (c *Client) Logout(ctx context.Context, accessToken string) error {
	return c.postAndDiscard(ctx, "/v1/auth/logout", accessToken)
}

// LogoutOthers revokes every session of the caller except the current one.
func (c *Client) LogoutOthers(ctx context.Context, accessToken string) error {
	return c.postAndDiscard(ctx, "/v1/auth/logout-others", accessToken)
}

// LogoutAll revokes every session of the caller, the current one included.
func (c *Client) LogoutAll(ctx context.Context, accessToken string) error {
	return c.postAndDiscard(ctx, "/v1/auth/logout-all", accessToken)
}

// ChangePassword rotates the password and revokes every session.
func (c *Client) ChangePassword(ctx context.Context, accessToken, currentPassword, newPassword string) error {
	form := url.Values{"current_password": {currentPassword}, "new_password": {newPassword}}
	resp, err := c.postForm(ctx, "/v1/auth/change-password", form, accessToken)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return decodeResponse(resp, nil)
}

// Me returns the authenticated user.
func (c *Client) Me(ctx context.Context, accessToken string) (*UserResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/v1/auth/me", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var user UserResponse
	if err := decodeResponse(resp, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Readyz reports whether the service and its dependencies are up.
func (c *Client) Readyz(ctx context.Context) (*HealthResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/readyz", nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var health HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		return nil, err
	}
	return &health, nil
}

func (c *Client) postForm(ctx context.Context, path string, form url.Values, bearer string) (*http.Response, error) {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, body)
	if err != nil {
		return nil, err
	}
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	return c.HTTPClient.Do(req)
}

func (c *Client) postAndDiscard(ctx context.Context, path, bearer string) error {
	resp, err := c.postForm(ctx, path, nil, bearer)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return decodeResponse(resp, nil)
}

// decodeResponse decodes a 2xx body into dest, or the error payload into
// an *APIError.
func decodeResponse(resp *http.Response, dest any) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if dest == nil {
			_, _ = io.Copy(io.Discard, resp.Body)
			return nil
		}
		return json.NewDecoder(resp.Body).Decode(dest)
	}

	apiErr := &APIError{StatusCode: resp.StatusCode}
	if err := json.NewDecoder(resp.Body).Decode(apiErr); err != nil {
		apiErr.Code = ErrorCodeServerError
		apiErr.Description = resp.Status
	}
	return apiErr
}
