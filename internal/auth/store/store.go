package store

import (
	"context"
	"errors"
	"time"

	"github.com/oakmarket/storefront/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// KV is the key-value storage abstraction behind the token repositories.
// Values are structured records, opaquely JSON-serialized by the driver.
// Absence is a first-class result (ErrNotFound), not a failure. A ttl of
// zero means no expiry.
type KV interface {
	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value any, ttl time.Duration) error

	// Get loads the value stored under key into dest. Returns ErrNotFound
	// when the key is absent or expired.
	Get(ctx context.Context, key string, dest any) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}

// Users is the relational account store consumed by the authentication
// and authorization services. Concrete drivers (sqlite) implement this.
type Users interface {
	// GetUserByID returns a user by id.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByUsername is used during login.
	GetUserByUsername(ctx context.Context, username string) (domain.User, error)

	// CreateUser inserts a new user (id is provided by the app via ULID).
	CreateUser(ctx context.Context, u domain.User) error

	// UpdatePasswordHash sets the password_hash and bumps updated_at.
	UpdatePasswordHash(ctx context.Context, userID, newHash string) error

	// DeleteUser cascades to workspace_members (per schema).
	DeleteUser(ctx context.Context, userID string) error
}

// Workspaces exposes per-workspace permission grants.
type Workspaces interface {
	// GrantPermissions upserts the permission set a user holds in one
	// workspace.
	GrantPermissions(ctx context.Context, userID, workspaceID string, permissions []string) error

	// ListPermissions returns every workspace grant for a user.
	ListPermissions(ctx context.Context, userID string) ([]domain.WorkspacePermission, error)

	// RevokeMembership removes a user from a workspace.
	RevokeMembership(ctx context.Context, userID, workspaceID string) error
}

// Store is the root relational data access interface. It exposes
// sub-repositories to keep concerns tidy and testable.
type Store interface {
	Users() Users
	Workspaces() Workspaces

	ApplyMigrations() error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}
