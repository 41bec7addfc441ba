package service

import (
	"errors"
	"fmt"
)

var (
	// ErrBadCredentials is returned on login when the username is unknown
	// or the password does not match. Deliberately one error for both, so
	// callers cannot probe which factor was wrong.
	ErrBadCredentials = errors.New("bad credentials")

	// ErrTokenRevoked is returned when a token is in the blocklist, caught
	// by a subject watermark, or when no refresh record exists for the
	// subject. An absent refresh record means the token was never issued
	// or was already consumed — either way it is treated as revoked.
	ErrTokenRevoked = errors.New("token revoked")

	// ErrWrongRefreshToken is returned when a presented refresh token does
	// not match the subject's current stored one: a stale, rotated-out
	// token is being replayed. Treat as a possible token theft signal.
	ErrWrongRefreshToken = errors.New("wrong refresh token")

	// ErrInvalidTokenType matches any InvalidTokenTypeError via errors.Is.
	ErrInvalidTokenType = errors.New("invalid token type")
)

// InvalidTokenTypeError reports an access token used where a refresh token
// was required, or vice versa.
type InvalidTokenTypeError struct {
	Got      string
	Expected string
}

func (e *InvalidTokenTypeError) Error() string {
	return fmt.Sprintf("got %s token when %s token was expected", e.Got, e.Expected)
}

func (e *InvalidTokenTypeError) Is(target error) bool {
	return target == ErrInvalidTokenType
}
