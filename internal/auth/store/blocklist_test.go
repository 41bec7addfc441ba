package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oakmarket/storefront/internal/auth/store"
	"github.com/oakmarket/storefront/pkg/jwtx"
)

func TestBlocklistAddAndContains(t *testing.T) {
	kv, _ := newTestKV(t)
	bl := store.NewBlocklist(kv, time.Hour, time.Hour)
	ctx := context.Background()

	claims := jwtx.NewClaims(jwtx.TypeAccess, "user-1", time.Hour, time.Now().UTC())

	hit, err := bl.Contains(ctx, claims.ID)
	require.NoError(t, err)
	require.False(t, hit)

	require.NoError(t, bl.Add(ctx, claims))

	hit, err = bl.Contains(ctx, claims.ID)
	require.NoError(t, err)
	require.True(t, hit)
}

func TestBlocklistEntryOutlivesToken(t *testing.T) {
	// Retention shorter than the token's remaining lifetime must not
	// reopen a revoked token: the entry TTL stretches to cover exp.
	kv, mr := newTestKV(t)
	bl := store.NewBlocklist(kv, time.Minute, 4*time.Hour)
	ctx := context.Background()

	claims := jwtx.NewClaims(jwtx.TypeAccess, "user-1", 4*time.Hour, time.Now().UTC())
	require.NoError(t, bl.Add(ctx, claims))

	// Fast-forward past the retention window but within token lifetime.
	mr.FastForward(2 * time.Hour)

	hit, err := bl.Contains(ctx, claims.ID)
	require.NoError(t, err)
	require.True(t, hit, "entry must survive until the token itself expires")
}

func TestBlocklistWatermark(t *testing.T) {
	kv, _ := newTestKV(t)
	bl := store.NewBlocklist(kv, time.Hour, time.Hour)
	ctx := context.Background()
	now := time.Now().UTC()

	current := jwtx.NewClaims(jwtx.TypeAccess, "user-1", time.Hour, now)
	older := jwtx.NewClaims(jwtx.TypeAccess, "user-1", time.Hour, now.Add(-10*time.Minute))

	t.Run("no watermark means not blocked", func(t *testing.T) {
		blocked, err := bl.BlockedByWatermark(ctx, older)
		require.NoError(t, err)
		require.False(t, blocked)
	})

	t.Run("except-current spares the presented token", func(t *testing.T) {
		require.NoError(t, bl.BlockAllExceptCurrent(ctx, current))

		blocked, err := bl.BlockedByWatermark(ctx, current)
		require.NoError(t, err)
		require.False(t, blocked, "excluded jti must not be blocked")

		blocked, err = bl.BlockedByWatermark(ctx, older)
		require.NoError(t, err)
		require.True(t, blocked, "older token must be blocked")
	})

	t.Run("block all spares nothing", func(t *testing.T) {
		require.NoError(t, bl.BlockAll(ctx, "user-1"))

		blocked, err := bl.BlockedByWatermark(ctx, current)
		require.NoError(t, err)
		require.True(t, blocked)
	})

	t.Run("tokens issued after the watermark pass", func(t *testing.T) {
		newer := jwtx.NewClaims(jwtx.TypeAccess, "user-1", time.Hour, now.Add(10*time.Minute))

		blocked, err := bl.BlockedByWatermark(ctx, newer)
		require.NoError(t, err)
		require.False(t, blocked)
	})

	t.Run("other subjects unaffected", func(t *testing.T) {
		other := jwtx.NewClaims(jwtx.TypeAccess, "user-2", time.Hour, now.Add(-10*time.Minute))

		blocked, err := bl.BlockedByWatermark(ctx, other)
		require.NoError(t, err)
		require.False(t, blocked)
	})
}

func TestBlocklistWatermarkExpiresAfterAccessLifetime(t *testing.T) {
	kv, mr := newTestKV(t)
	bl := store.NewBlocklist(kv, time.Hour, time.Hour)
	ctx := context.Background()

	claims := jwtx.NewClaims(jwtx.TypeAccess, "user-1", time.Hour, time.Now().UTC().Add(-30*time.Minute))
	require.NoError(t, bl.BlockAll(ctx, "user-1"))

	// Any token the watermark could cover has expired by now anyway.
	mr.FastForward(2 * time.Hour)

	blocked, err := bl.BlockedByWatermark(ctx, claims)
	require.NoError(t, err)
	require.False(t, blocked)
}
