package security

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestPortalToken(t *testing.T) {
	mgr := NewTokenManager(testSecret, time.Hour)

	t.Run("RoundTrip", func(t *testing.T) {
		token, err := mgr.GeneratePortalToken("RES-ABC12345")
		require.NoError(t, err)

		claims, err := mgr.ValidateToken(token)
		require.NoError(t, err)
		assert.Equal(t, "RES-ABC12345", claims.ReservationRef)
	})

	t.Run("Expired", func(t *testing.T) {
		shortLived := NewTokenManager(testSecret, -time.Minute)
		token, err := shortLived.GeneratePortalToken("RES-ABC12345")
		require.NoError(t, err)

		_, err = mgr.ValidateToken(token)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("WrongSecret", func(t *testing.T) {
		other := NewTokenManager("ffffffffffffffffffffffffffffffff", time.Hour)
		token, err := other.GeneratePortalToken("RES-ABC12345")
		require.NoError(t, err)

		_, err = mgr.ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("Garbage", func(t *testing.T) {
		_, err := mgr.ValidateToken("not-a-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
