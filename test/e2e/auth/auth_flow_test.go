package auth_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oakmarket/storefront/pkg/authapi"
)

// TestLoginRefreshRotation covers the main token lifecycle:
// login, refresh, a second login rotating the refresh token out.
func TestLoginRefreshRotation(t *testing.T) {
	baseURL := setupAuthStack(t)
	client := authapi.NewClient(baseURL)

	first, err := client.Login(t.Context(), seedUsername, seedPassword)
	require.NoError(t, err)
	assertTokenPair(t, first)

	// A refresh mints a fresh access token without touching the refresh token.
	refreshed, err := client.Refresh(t.Context(), first.RefreshToken)
	require.NoError(t, err)
	require.NotEmpty(t, refreshed.AccessToken)
	require.NotEqual(t, first.AccessToken, refreshed.AccessToken)
	require.Empty(t, refreshed.RefreshToken)

	// A second login rotates the stored refresh token: the first one is done.
	second, err := client.Login(t.Context(), seedUsername, seedPassword)
	require.NoError(t, err)
	assertTokenPair(t, second)

	_, err = client.Refresh(t.Context(), first.RefreshToken)
	assertInvalidToken(t, err, "stale refresh token after new login")

	_, err = client.Refresh(t.Context(), second.RefreshToken)
	require.NoError(t, err)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	baseURL := setupAuthStack(t)
	client := authapi.NewClient(baseURL)

	_, err := client.Login(t.Context(), seedUsername, "wrong password")
	var apiErr *authapi.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, authapi.ErrorCodeBadCredentials, apiErr.Code)

	// Unknown usernames produce the identical error.
	_, err = client.Login(t.Context(), "mallory", "wrong password")
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, authapi.ErrorCodeBadCredentials, apiErr.Code)
}

func TestMeCarriesSeededPermissions(t *testing.T) {
	baseURL := setupAuthStack(t)
	client := authapi.NewClient(baseURL)

	tokens, err := client.Login(t.Context(), seedUsername, seedPassword)
	require.NoError(t, err)

	me, err := client.Me(t.Context(), tokens.AccessToken)
	require.NoError(t, err)
	require.Equal(t, seedUsername, me.Username)
	require.NotEmpty(t, me.ID)
	require.ElementsMatch(t, []string{"orders:read", "orders:write"}, me.Permissions[seedWorkspace])
}

// TestLogoutFlows exercises the three revocation endpoints end to end.
func TestLogoutFlows(t *testing.T) {
	baseURL := setupAuthStack(t)
	client := authapi.NewClient(baseURL)

	t.Run("logout revokes the pair", func(t *testing.T) {
		tokens, err := client.Login(t.Context(), seedUsername, seedPassword)
		require.NoError(t, err)

		require.NoError(t, client.Logout(t.Context(), tokens.AccessToken))

		_, err = client.Me(t.Context(), tokens.AccessToken)
		assertInvalidToken(t, err, "access token after logout")

		_, err = client.Refresh(t.Context(), tokens.RefreshToken)
		assertInvalidToken(t, err, "refresh token after logout")
	})

	t.Run("logout-others keeps only the current session", func(t *testing.T) {
		older, err := client.Login(t.Context(), seedUsername, seedPassword)
		require.NoError(t, err)
		current, err := client.Login(t.Context(), seedUsername, seedPassword)
		require.NoError(t, err)

		require.NoError(t, client.LogoutOthers(t.Context(), current.AccessToken))

		_, err = client.Me(t.Context(), older.AccessToken)
		assertInvalidToken(t, err, "older access token after logout-others")

		_, err = client.Me(t.Context(), current.AccessToken)
		require.NoError(t, err, "current access token must survive logout-others")

		// The refresh record is gone, so the current session cannot extend itself.
		_, err = client.Refresh(t.Context(), current.RefreshToken)
		assertInvalidToken(t, err, "refresh token after logout-others")
	})

	t.Run("logout-all revokes the current session too", func(t *testing.T) {
		// The watermark set above has second granularity and covers every
		// token issued in the same second, so step past it before logging
		// in again.
		time.Sleep(1100 * time.Millisecond)

		tokens, err := client.Login(t.Context(), seedUsername, seedPassword)
		require.NoError(t, err)

		require.NoError(t, client.LogoutAll(t.Context(), tokens.AccessToken))

		_, err = client.Me(t.Context(), tokens.AccessToken)
		assertInvalidToken(t, err, "access token after logout-all")
	})
}

func TestChangePasswordRevokesEverything(t *testing.T) {
	baseURL := setupAuthStack(t)
	client := authapi.NewClient(baseURL)

	tokens, err := client.Login(t.Context(), seedUsername, seedPassword)
	require.NoError(t, err)

	require.NoError(t, client.ChangePassword(t.Context(), tokens.AccessToken, seedPassword, "Fresh-Stapler-77"))

	_, err = client.Me(t.Context(), tokens.AccessToken)
	assertInvalidToken(t, err, "access token after password change")

	_, err = client.Login(t.Context(), seedUsername, seedPassword)
	var apiErr *authapi.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, authapi.ErrorCodeBadCredentials, apiErr.Code)

	fresh, err := client.Login(t.Context(), seedUsername, "Fresh-Stapler-77")
	require.NoError(t, err)
	assertTokenPair(t, fresh)
}

func TestReadyz(t *testing.T) {
	baseURL := setupAuthStack(t)
	client := authapi.NewClient(baseURL)

	health, err := client.Readyz(t.Context())
	require.NoError(t, err)
	require.Equal(t, "ok", health.Status)
	require.NotNil(t, health.Checks)
	require.Equal(t, "ok", health.Checks.Database)
	require.Equal(t, "ok", health.Checks.Cache)
}
