// internal/pkg/auth/jwt_test.go
package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/your-org/storefront-backend/internal/config"
)

func testJWTManager() *JWTManager {
	return NewJWTManager(&config.Config{
		App: config.AppConfig{Name: "storefront-test"},
		JWT: config.JWTConfig{
			Secret:             "0123456789abcdef0123456789abcdef",
			AccessTokenExpiry:  time.Hour,
			RefreshTokenExpiry: 24 * time.Hour,
		},
	})
}

func TestTokenRoundTrip(t *testing.T) {
	j := testJWTManager()

	token, err := j.GenerateAccessToken(7, "asha@example.com")
	require.NoError(t, err)

	claims, err := j.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, "asha@example.com", claims.Email)
	assert.Equal(t, "7", claims.Subject)
}

func TestTokenKindsAreNotInterchangeable(t *testing.T) {
	j := testJWTManager()

	refresh, err := j.GenerateRefreshToken(7, "asha@example.com")
	require.NoError(t, err)
	_, err = j.ValidateAccessToken(refresh)
	assert.Error(t, err, "refresh token rejected on API routes")

	access, err := j.GenerateAccessToken(7, "asha@example.com")
	require.NoError(t, err)
	_, err = j.ValidateRefreshToken(access)
	assert.Error(t, err, "access token cannot mint a new pair")
}

func TestTokenFromOtherSecretRejected(t *testing.T) {
	other := NewJWTManager(&config.Config{
		App: config.AppConfig{Name: "storefront-test"},
		JWT: config.JWTConfig{Secret: "ffffffffffffffffffffffffffffffff", AccessTokenExpiry: time.Hour},
	})
	token, err := other.GenerateAccessToken(7, "asha@example.com")
	require.NoError(t, err)

	_, err = testJWTManager().ValidateAccessToken(token)
	assert.Error(t, err)
}

func TestExtractTokenFromHeader(t *testing.T) {
	assert.Equal(t, "abc.def.ghi", ExtractTokenFromHeader("Bearer abc.def.ghi"))
	assert.Empty(t, ExtractTokenFromHeader("abc.def.ghi"))
	assert.Empty(t, ExtractTokenFromHeader(""))
	assert.Empty(t, ExtractTokenFromHeader("Basic dXNlcjpwYXNz"))
}
