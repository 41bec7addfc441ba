package authapi

import (
	"encoding/json"
	"fmt"
	"net/http"
)

const (
	ErrorCodeInvalidRequest = "invalid_request"
	ErrorCodeBadCredentials = "bad_credentials"
	ErrorCodeInvalidToken   = "invalid_token"
	ErrorCodeServerError    = "server_error"
)

// APIError is the error shape of the service. It implements error so the
// client can surface it, and it knows how to write itself as an HTTP
// response so handlers return it directly.
type APIError struct {
	StatusCode int `json:"-"`

	Code        string `json:"error"`
	Description string `json:"error_description"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// WriteError writes the error as a JSON response.
func (e *APIError) WriteError(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.StatusCode)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Code: e.Code, Message: e.Description})
}

var (
	ErrInvalidRequest = &APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeInvalidRequest,
		Description: "the request is malformed or missing required parameters",
	}

	ErrInvalidContentType = &APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeInvalidRequest,
		Description: "content type must be application/x-www-form-urlencoded",
	}

	// ErrBadCredentials deliberately does not say whether the username or
	// the password was wrong.
	ErrBadCredentials = &APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeBadCredentials,
		Description: "bad credentials",
	}

	// ErrInvalidToken covers every token failure: malformed, expired,
	// revoked, wrong type, rotated out. Collapsing them denies an
	// attacker feedback about revocation state.
	ErrInvalidToken = &APIError{
		StatusCode:  http.StatusUnauthorized,
		Code:        ErrorCodeInvalidToken,
		Description: "token is invalid or revoked",
	}

	ErrServerError = &APIError{
		StatusCode:  http.StatusInternalServerError,
		Code:        ErrorCodeServerError,
		Description: "internal server error",
	}
)
