package domain

import "time"

// User is the account record backing authentication. Password hashes are
// Argon2id PHC strings; the plaintext never leaves the login handler.
type User struct {
	ID           string
	Username     string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// WorkspacePermission is one row of a user's permission grants: the set of
// permission names they hold inside a single workspace. The full list is
// flattened into the `perms` claim at access-token issuance.
type WorkspacePermission struct {
	WorkspaceID string
	Permissions []string
}
