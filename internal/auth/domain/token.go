package domain

// TokenPair is what a successful login returns: the short-lived access
// token and the long-lived refresh token, both signed JWTs.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type,omitempty"` // typically "Bearer"
	ExpiresIn    int64  `json:"expires_in"`           // access token lifetime in seconds
}

// Watermark is the per-subject "block all except" record. Any access token
// for the subject with iat <= BlockedAt is revoked unless its jti equals
// Exclude. Exclude is empty for a block-everything watermark.
type Watermark struct {
	BlockedAt int64  `json:"blocked_at"`
	Exclude   string `json:"exclude,omitempty"`
}

// Covers reports whether the watermark revokes a token with the given jti
// and issued-at time.
func (w Watermark) Covers(jti string, issuedAt int64) bool {
	return jti != w.Exclude && issuedAt <= w.BlockedAt
}
