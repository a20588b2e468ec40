package jwt

import (
	"testing"

	"event-submission-system/config"

	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	cfg := config.Default()
	cfg.JWT.AccessSecret = "unit-test-secret"
	config.Set(cfg)

	token := CreateToken(Payload{UserID: 7, Username: "alice"})
	claims, ok := ParseToken(token)
	require.True(t, ok)
	require.Equal(t, uint(7), claims.UserID)
	require.Equal(t, "alice", claims.Username)

	_, ok = ParseToken(token + "x")
	require.False(t, ok)

	cfg.JWT.AccessExpire = -60
	expired := CreateToken(Payload{UserID: 7})
	_, ok = ParseToken(expired)
	require.False(t, ok)
}
