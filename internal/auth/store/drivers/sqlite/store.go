package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/oakmarket/storefront/internal/auth/store"
)

// Store implements store.Store on SQLite. The auth subsystem only needs
// account rows and workspace grants here; token state lives in Redis.
type Store struct {
	db *sql.DB
}

func NewStore(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	// Enforce FKs so deleting a user cascades to workspace_members.
	if _, err := db.ExecContext(context.Background(), `PRAGMA foreign_keys = ON;`); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Ping verifies the database connection is still alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Users() store.Users           { return &usersRepo{db: s.db} }
func (s *Store) Workspaces() store.Workspaces { return &workspacesRepo{db: s.db} }

func mapNotFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}

func isUniqueViolation(err error) bool {
	// modernc.org/sqlite surfaces constraint failures as plain errors;
	// matching the message is the documented approach.
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// Permissions are stored space-delimited, matching their use as an opaque
// list the token service copies into claims.
func joinPermissions(perms []string) string {
	return strings.Join(perms, " ")
}

func splitPermissions(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return strings.Fields(s)
}
