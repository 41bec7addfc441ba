package jwtx

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrDecode is returned for any token that fails to decode: bad signature,
// malformed structure, wrong algorithm, or expired. Callers that need to
// distinguish further have no business doing so — a token that fails decode
// is simply not authenticated.
var ErrDecode = errors.New("jwtx: token decode failed")

// Codec signs and verifies token strings with a single symmetric secret
// (HS256). It holds no mutable state and is safe for concurrent use.
type Codec struct {
	secret []byte
	leeway time.Duration
}

// NewCodec returns a Codec signing with the given secret. Leeway allows a
// small clock skew when validating exp, because time sync is never perfect.
func NewCodec(secret []byte, leeway time.Duration) *Codec {
	return &Codec{secret: secret, leeway: leeway}
}

// Encode serializes and signs the claims, producing the standard
// header.payload.signature string.
func (c *Codec) Encode(claims Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("jwtx: sign: %w", err)
	}
	return signed, nil
}

// Decode parses and verifies a token string. Signature, structure and exp
// are all checked here; any failure surfaces as ErrDecode.
func (c *Codec) Decode(tokenStr string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if c.leeway > 0 {
		opts = append(opts, jwt.WithLeeway(c.leeway))
	}

	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return c.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrDecode
	}

	return claims, nil
}
