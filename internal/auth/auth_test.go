package auth

import (
	"context"
	"testing"
	"time"

	"CosmicOutfits_OutfitBuilder/internal/cache"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-0123456789"

func TestTokenRoundTrip(t *testing.T) {
	m := NewManager(testSecret, time.Hour, "test")

	token, exp, err := m.GenerateToken("user-1", "a@example.com")
	require.NoError(t, err)
	require.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	claims, err := m.ValidateToken(token)
	require.NoError(t, err)
	require.Equal(t, "user-1", claims.UserID())
	require.Equal(t, "a@example.com", claims.Email)
	require.Equal(t, "test", claims.Issuer)
	require.NotEmpty(t, claims.ID)
}

func TestValidateTokenRejections(t *testing.T) {
	m := NewManager(testSecret, time.Hour, "test")

	expired := NewManager(testSecret, time.Hour, "test")
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	old, _, err := expired.GenerateToken("user-1", "a@example.com")
	require.NoError(t, err)
	_, err = m.ValidateToken(old)
	require.ErrorIs(t, err, ErrTokenExpired)

	other := NewManager("another-secret-987654321", time.Hour, "test")
	forged, _, err := other.GenerateToken("user-1", "a@example.com")
	require.NoError(t, err)
	_, err = m.ValidateToken(forged)
	require.ErrorIs(t, err, ErrInvalidToken)

	_, err = m.ValidateToken("not-a-jwt")
	require.ErrorIs(t, err, ErrInvalidToken)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1"}})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = m.ValidateToken(unsigned)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("correct horse")
	require.NoError(t, err)
	require.NotEqual(t, "correct horse", hash)
	require.True(t, CheckPassword(hash, "correct horse"))
	require.False(t, CheckPassword(hash, "battery staple"))
}

func TestRevocations(t *testing.T) {
	ctx := context.Background()
	r := NewRevocations(cache.NewMemory(time.Minute))

	revoked, err := r.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	require.False(t, revoked)

	require.NoError(t, r.Revoke(ctx, "jti-1", time.Now().Add(time.Hour)))
	revoked, err = r.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	require.True(t, revoked)

	require.NoError(t, r.Revoke(ctx, "jti-2", time.Now().Add(-time.Minute)))
	revoked, err = r.IsRevoked(ctx, "jti-2")
	require.NoError(t, err)
	require.False(t, revoked)
}
