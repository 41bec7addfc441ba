package service

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/oakmarket/storefront/internal/auth/domain"
	"github.com/oakmarket/storefront/internal/auth/store"
	redisdriver "github.com/oakmarket/storefront/internal/auth/store/drivers/redis"
	"github.com/oakmarket/storefront/internal/auth/store/drivers/sqlite"
	"github.com/oakmarket/storefront/pkg/cryptox"
	"github.com/oakmarket/storefront/pkg/idx"
	"github.com/oakmarket/storefront/pkg/jwtx"
)

type testEnv struct {
	db       *sqlite.Store
	mr       *miniredis.Miniredis
	tokens   *TokenService
	auth     *AuthService
	verifier *Verifier
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.ApplyMigrations())

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	kv := redisdriver.NewKV(client, "")

	codec := jwtx.NewCodec([]byte("service-test-secret"), 0)
	refresh := store.NewRefreshTokens(kv, time.Hour)
	blocklist := store.NewBlocklist(kv, 30*time.Minute, 15*time.Minute)
	verifier := NewVerifier(codec, blocklist, refresh)
	tokens := NewTokenService(codec, refresh, blocklist, 15*time.Minute, time.Hour)
	auth := NewAuthService(db.Users(), NewAuthzService(db.Workspaces()), tokens, verifier)

	return &testEnv{db: db, mr: mr, tokens: tokens, auth: auth, verifier: verifier}
}

func (e *testEnv) createUser(t *testing.T, username, password string) domain.User {
	t.Helper()

	hash, err := cryptox.HashPassword(password)
	require.NoError(t, err)

	now := time.Now()
	user := domain.User{
		ID:           idx.New(),
		Username:     username,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, e.db.Users().CreateUser(context.Background(), user))
	return user
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	alice := env.createUser(t, "alice", "correct horse battery staple")
	require.NoError(t, env.db.Workspaces().GrantPermissions(ctx, alice.ID, "electronics", []string{"orders:read", "orders:write"}))

	t.Run("issues a pair carrying the permission snapshot", func(t *testing.T) {
		pair, user, err := env.auth.Authenticate(ctx, "alice", "correct horse battery staple")
		require.NoError(t, err)
		require.Equal(t, alice.ID, user.ID)
		require.Equal(t, "Bearer", pair.TokenType)
		require.Equal(t, int64(15*60), pair.ExpiresIn)

		claims, err := env.verifier.VerifyAccess(ctx, pair.AccessToken)
		require.NoError(t, err)
		require.Equal(t, alice.ID, claims.Subject)
		require.Equal(t, []string{"orders:read", "orders:write"}, claims.Permissions["electronics"])

		refreshClaims, err := env.verifier.VerifyRefresh(ctx, pair.RefreshToken)
		require.NoError(t, err)
		require.Empty(t, refreshClaims.Permissions)
	})

	t.Run("unknown username", func(t *testing.T) {
		_, _, err := env.auth.Authenticate(ctx, "mallory", "whatever")
		require.ErrorIs(t, err, ErrBadCredentials)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, _, err := env.auth.Authenticate(ctx, "alice", "incorrect horse")
		require.ErrorIs(t, err, ErrBadCredentials)
	})
}

func TestLoginRotatesRefreshToken(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.createUser(t, "alice", "pw-one")

	first, _, err := env.auth.Authenticate(ctx, "alice", "pw-one")
	require.NoError(t, err)
	second, _, err := env.auth.Authenticate(ctx, "alice", "pw-one")
	require.NoError(t, err)

	// The second login overwrote the stored refresh record, so the first
	// refresh token is now a stale replay.
	_, err = env.verifier.VerifyRefresh(ctx, first.RefreshToken)
	require.ErrorIs(t, err, ErrWrongRefreshToken)

	_, err = env.verifier.VerifyRefresh(ctx, second.RefreshToken)
	require.NoError(t, err)

	// Both access tokens stay valid until revoked or expired.
	_, err = env.verifier.VerifyAccess(ctx, first.AccessToken)
	require.NoError(t, err)
	_, err = env.verifier.VerifyAccess(ctx, second.AccessToken)
	require.NoError(t, err)
}

func TestRefresh(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	alice := env.createUser(t, "alice", "pw-one")

	pair, _, err := env.auth.Authenticate(ctx, "alice", "pw-one")
	require.NoError(t, err)

	t.Run("issues a new access token with current permissions", func(t *testing.T) {
		require.NoError(t, env.db.Workspaces().GrantPermissions(ctx, alice.ID, "toys", []string{"catalog:read"}))

		access, err := env.auth.Refresh(ctx, pair.RefreshToken)
		require.NoError(t, err)

		claims, err := env.verifier.VerifyAccess(ctx, access)
		require.NoError(t, err)
		require.Equal(t, alice.ID, claims.Subject)
		require.Equal(t, []string{"catalog:read"}, claims.Permissions["toys"])
	})

	t.Run("rejects an access token in the refresh slot", func(t *testing.T) {
		_, err := env.auth.Refresh(ctx, pair.AccessToken)
		require.ErrorIs(t, err, ErrInvalidTokenType)

		var typeErr *InvalidTokenTypeError
		require.ErrorAs(t, err, &typeErr)
		require.Equal(t, jwtx.TypeAccess, typeErr.Got)
		require.Equal(t, jwtx.TypeRefresh, typeErr.Expected)
	})

	t.Run("rejects a refresh token in the access slot", func(t *testing.T) {
		_, err := env.verifier.VerifyAccess(ctx, pair.RefreshToken)
		require.ErrorIs(t, err, ErrInvalidTokenType)
	})

	t.Run("rejects garbage", func(t *testing.T) {
		_, err := env.auth.Refresh(ctx, "not-a-token")
		require.ErrorIs(t, err, jwtx.ErrDecode)
	})
}

func TestRevokeTokens(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.createUser(t, "alice", "pw-one")

	pair, _, err := env.auth.Authenticate(ctx, "alice", "pw-one")
	require.NoError(t, err)
	claims, err := env.verifier.VerifyAccess(ctx, pair.AccessToken)
	require.NoError(t, err)

	require.NoError(t, env.tokens.RevokeTokens(ctx, *claims))

	_, err = env.verifier.VerifyAccess(ctx, pair.AccessToken)
	require.ErrorIs(t, err, ErrTokenRevoked)
	_, err = env.verifier.VerifyRefresh(ctx, pair.RefreshToken)
	require.ErrorIs(t, err, ErrTokenRevoked)
}

func TestRevokeAllExceptCurrent(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.createUser(t, "alice", "pw-one")

	older, _, err := env.auth.Authenticate(ctx, "alice", "pw-one")
	require.NoError(t, err)
	current, _, err := env.auth.Authenticate(ctx, "alice", "pw-one")
	require.NoError(t, err)

	claims, err := env.verifier.VerifyAccess(ctx, current.AccessToken)
	require.NoError(t, err)
	require.NoError(t, env.tokens.RevokeAllExceptCurrent(ctx, *claims))

	// Only the presented access token survives.
	_, err = env.verifier.VerifyAccess(ctx, current.AccessToken)
	require.NoError(t, err)
	_, err = env.verifier.VerifyAccess(ctx, older.AccessToken)
	require.ErrorIs(t, err, ErrTokenRevoked)

	_, err = env.verifier.VerifyRefresh(ctx, older.RefreshToken)
	require.ErrorIs(t, err, ErrTokenRevoked)
	_, err = env.verifier.VerifyRefresh(ctx, current.RefreshToken)
	require.ErrorIs(t, err, ErrTokenRevoked)
}

func TestRevokeAll(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.createUser(t, "alice", "pw-one")

	pair, _, err := env.auth.Authenticate(ctx, "alice", "pw-one")
	require.NoError(t, err)
	claims, err := env.verifier.VerifyAccess(ctx, pair.AccessToken)
	require.NoError(t, err)

	require.NoError(t, env.tokens.RevokeAll(ctx, claims.Subject))

	// The presented token goes down with everything else.
	_, err = env.verifier.VerifyAccess(ctx, pair.AccessToken)
	require.ErrorIs(t, err, ErrTokenRevoked)
	_, err = env.verifier.VerifyRefresh(ctx, pair.RefreshToken)
	require.ErrorIs(t, err, ErrTokenRevoked)
}

func TestChangePassword(t *testing.T) {
	ctx := context.Background()

	t.Run("rotates the hash and revokes everything", func(t *testing.T) {
		env := newTestEnv(t)
		alice := env.createUser(t, "alice", "old password")

		pair, _, err := env.auth.Authenticate(ctx, "alice", "old password")
		require.NoError(t, err)

		require.NoError(t, env.auth.ChangePassword(ctx, alice.ID, "old password", "new password"))

		// Old credentials are gone, new ones work.
		_, _, err = env.auth.Authenticate(ctx, "alice", "old password")
		require.ErrorIs(t, err, ErrBadCredentials)

		// Every pre-change token is revoked.
		_, err = env.verifier.VerifyAccess(ctx, pair.AccessToken)
		require.ErrorIs(t, err, ErrTokenRevoked)
		_, err = env.verifier.VerifyRefresh(ctx, pair.RefreshToken)
		require.ErrorIs(t, err, ErrTokenRevoked)
	})

	t.Run("wrong current password", func(t *testing.T) {
		env := newTestEnv(t)
		alice := env.createUser(t, "alice", "old password")

		err := env.auth.ChangePassword(ctx, alice.ID, "not the password", "new password")
		require.ErrorIs(t, err, ErrBadCredentials)

		// Unchanged: the old password still logs in.
		_, _, err = env.auth.Authenticate(ctx, "alice", "old password")
		require.NoError(t, err)
	})
}

func TestCurrentUser(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	alice := env.createUser(t, "alice", "pw-one")

	pair, _, err := env.auth.Authenticate(ctx, "alice", "pw-one")
	require.NoError(t, err)

	ac, err := env.auth.VerifyAccess(ctx, pair.AccessToken)
	require.NoError(t, err)
	require.Nil(t, ac.User)

	user, err := env.auth.CurrentUser(ctx, ac)
	require.NoError(t, err)
	require.Equal(t, alice.ID, user.ID)
	require.Equal(t, "alice", user.Username)

	// Resolved once, cached on the context.
	require.NotNil(t, ac.User)
}
