package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/oakmarket/storefront/internal/auth/domain"
)

type workspacesRepo struct {
	db *sql.DB
}

func (r *workspacesRepo) GrantPermissions(ctx context.Context, userID, workspaceID string, permissions []string) error {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO workspace_members (user_id, workspace_id, permissions, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (user_id, workspace_id)
		 DO UPDATE SET permissions = excluded.permissions, updated_at = excluded.updated_at`,
		userID, workspaceID, joinPermissions(permissions), now, now)
	return err
}

func (r *workspacesRepo) ListPermissions(ctx context.Context, userID string) ([]domain.WorkspacePermission, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT workspace_id, permissions FROM workspace_members
		 WHERE user_id = ? ORDER BY workspace_id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.WorkspacePermission
	for rows.Next() {
		var workspaceID, perms string
		if err := rows.Scan(&workspaceID, &perms); err != nil {
			return nil, err
		}
		out = append(out, domain.WorkspacePermission{
			WorkspaceID: workspaceID,
			Permissions: splitPermissions(perms),
		})
	}
	return out, rows.Err()
}

func (r *workspacesRepo) RevokeMembership(ctx context.Context, userID, workspaceID string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM workspace_members WHERE user_id = ? AND workspace_id = ?`,
		userID, workspaceID)
	if err != nil {
		return err
	}
	return requireRowAffected(res)
}
