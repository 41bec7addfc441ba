package service

import (
	"context"
	"fmt"

	"github.com/oakmarket/storefront/internal/auth/store"
)

// AuthzService resolves a user's workspace permission grants into the
// claim shape embedded in access tokens.
type AuthzService struct {
	Workspaces store.Workspaces
}

func NewAuthzService(workspaces store.Workspaces) *AuthzService {
	return &AuthzService{Workspaces: workspaces}
}

// GetPermissions returns the user's permissions keyed by workspace id.
// The map is freshly built on every call so callers may mutate it.
func (s *AuthzService) GetPermissions(ctx context.Context, userID string) (map[string][]string, error) {
	grants, err := s.Workspaces.ListPermissions(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list permissions: %w", err)
	}

	perms := make(map[string][]string, len(grants))
	for _, g := range grants {
		perms[g.WorkspaceID] = g.Permissions
	}
	return perms, nil
}
