package jwtx_test

import (
	"strings"
	"testing"
	"time"

	"github.com/oakmarket/storefront/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func TestCodecRoundTrip(t *testing.T) {
	t.Parallel()

	codec := jwtx.NewCodec([]byte("test-secret"), 0)
	now := time.Now().UTC().Truncate(time.Second)

	claims := jwtx.NewClaims(jwtx.TypeAccess, "user-123", time.Hour, now)
	claims.Permissions = map[string][]string{
		"ws-1": {"catalog:read", "orders:write"},
	}

	token, err := codec.Encode(claims)
	require.NoError(t, err)
	require.Len(t, strings.Split(token, "."), 3)

	decoded, err := codec.Decode(token)
	require.NoError(t, err)

	require.Equal(t, claims.ID, decoded.ID)
	require.Equal(t, jwtx.TypeAccess, decoded.Type)
	require.Equal(t, "user-123", decoded.Subject)
	require.Equal(t, now.Unix(), decoded.IssuedAtUnix())
	require.Equal(t, now.Add(time.Hour).Unix(), decoded.ExpiresAt.Unix())
	require.Equal(t, claims.Permissions, decoded.Permissions)
}

func TestCodecFreshJTIPerIssuance(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	a := jwtx.NewClaims(jwtx.TypeAccess, "user-123", time.Hour, now)
	b := jwtx.NewClaims(jwtx.TypeAccess, "user-123", time.Hour, now)

	require.NotEmpty(t, a.ID)
	require.NotEqual(t, a.ID, b.ID)
}

func TestCodecDecodeFailures(t *testing.T) {
	t.Parallel()

	codec := jwtx.NewCodec([]byte("test-secret"), 0)
	now := time.Now().UTC()

	valid, err := codec.Encode(jwtx.NewClaims(jwtx.TypeAccess, "user-123", time.Hour, now))
	require.NoError(t, err)

	t.Run("tampered signature", func(t *testing.T) {
		// Flip a byte in the signature segment.
		parts := strings.Split(valid, ".")
		sig := []byte(parts[2])
		if sig[0] == 'A' {
			sig[0] = 'B'
		} else {
			sig[0] = 'A'
		}
		tampered := parts[0] + "." + parts[1] + "." + string(sig)

		_, err := codec.Decode(tampered)
		require.ErrorIs(t, err, jwtx.ErrDecode)
	})

	t.Run("tampered payload", func(t *testing.T) {
		parts := strings.Split(valid, ".")
		tampered := parts[0] + "." + parts[1] + "x." + parts[2]

		_, err := codec.Decode(tampered)
		require.ErrorIs(t, err, jwtx.ErrDecode)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := jwtx.NewCodec([]byte("other-secret"), 0)
		_, err := other.Decode(valid)
		require.ErrorIs(t, err, jwtx.ErrDecode)
	})

	t.Run("expired token", func(t *testing.T) {
		expired, err := codec.Encode(jwtx.NewClaims(jwtx.TypeAccess, "user-123", -time.Minute, now))
		require.NoError(t, err)

		_, err = codec.Decode(expired)
		require.ErrorIs(t, err, jwtx.ErrDecode)
	})

	t.Run("garbage input", func(t *testing.T) {
		_, err := codec.Decode("not-a-token")
		require.ErrorIs(t, err, jwtx.ErrDecode)
	})
}

func TestCodecLeeway(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	codec := jwtx.NewCodec([]byte("test-secret"), 30*time.Second)

	// Expired 5s ago but within the 30s leeway window.
	justExpired, err := codec.Encode(jwtx.NewClaims(jwtx.TypeAccess, "user-123", -5*time.Second, now))
	require.NoError(t, err)

	_, err = codec.Decode(justExpired)
	require.NoError(t, err)
}
