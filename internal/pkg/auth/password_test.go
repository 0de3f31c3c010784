// internal/pkg/auth/password_test.go
package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/your-org/storefront-backend/internal/config"
)

func testPasswordManager() *PasswordManager {
	return NewPasswordManager(&config.Config{
		Security: config.SecurityConfig{BcryptCost: 4}, // low cost keeps tests fast
	})
}

func TestValidatePassword(t *testing.T) {
	p := testPasswordManager()

	assert.NoError(t, p.ValidatePassword("Sufficient1"))
	assert.Error(t, p.ValidatePassword("short1A"))
	assert.Error(t, p.ValidatePassword("alllowercase1"))
	assert.Error(t, p.ValidatePassword("ALLUPPERCASE1"))
	assert.Error(t, p.ValidatePassword("NoNumbersHere"))
}

func TestHashAndVerifyPassword(t *testing.T) {
	p := testPasswordManager()

	hash, err := p.HashPassword("Sufficient1")
	require.NoError(t, err)
	assert.NotEqual(t, "Sufficient1", hash)

	assert.NoError(t, p.VerifyPassword("Sufficient1", hash))
	assert.Error(t, p.VerifyPassword("Different1", hash))
}
