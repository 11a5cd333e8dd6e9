package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/freshmilk-storefront/internal/config"
)

const testSecret = "a-perfectly-long-secret-for-testing-only"

func testConfig(issuer string) *config.Config {
	return &config.Config{JWT: config.JWTConfig{Secret: testSecret, Issuer: issuer}}
}

func sign(t *testing.T, method jwt.SigningMethod, key interface{}, claims Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func validClaims() Claims {
	now := time.Now()
	return Claims{
		UserID: 7,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "milk-backend",
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
}

func TestValidateAccessToken(t *testing.T) {
	manager := NewJWTManager(testConfig("milk-backend"))

	claims, err := manager.ValidateAccessToken(sign(t, jwt.SigningMethodHS256, []byte(testSecret), validClaims()))
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
}

func TestValidateAccessToken_SubjectFallback(t *testing.T) {
	manager := NewJWTManager(testConfig(""))
	c := validClaims()
	c.UserID = 0
	c.Subject = "user:42"

	claims, err := manager.ValidateAccessToken(sign(t, jwt.SigningMethodHS256, []byte(testSecret), c))
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)

	c.Subject = ""
	_, err = manager.ValidateAccessToken(sign(t, jwt.SigningMethodHS256, []byte(testSecret), c))
	assert.ErrorIs(t, err, ErrMissingUser)
}

func TestValidateAccessToken_Rejects(t *testing.T) {
	manager := NewJWTManager(testConfig("milk-backend"))

	expired := validClaims()
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))

	wrongIssuer := validClaims()
	wrongIssuer.Issuer = "someone-else"

	noExpiry := validClaims()
	noExpiry.ExpiresAt = nil

	refresh := validClaims()
	refresh.TokenType = "refresh"

	tests := []struct {
		name  string
		token string
	}{
		{"expired", sign(t, jwt.SigningMethodHS256, []byte(testSecret), expired)},
		{"wrong issuer", sign(t, jwt.SigningMethodHS256, []byte(testSecret), wrongIssuer)},
		{"no expiry", sign(t, jwt.SigningMethodHS256, []byte(testSecret), noExpiry)},
		{"refresh token", sign(t, jwt.SigningMethodHS256, []byte(testSecret), refresh)},
		{"wrong secret", sign(t, jwt.SigningMethodHS256, []byte("another-secret-of-sufficient-length!"), validClaims())},
		{"other algorithm", sign(t, jwt.SigningMethodHS512, []byte(testSecret), validClaims())},
		{"garbage", "not-a-token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := manager.ValidateAccessToken(tt.token)
			assert.Error(t, err)
		})
	}
}

func TestExtractTokenFromHeader(t *testing.T) {
	assert.Equal(t, "abc", ExtractTokenFromHeader("Bearer abc"))
	assert.Equal(t, "abc", ExtractTokenFromHeader("bearer abc"))
	assert.Empty(t, ExtractTokenFromHeader("Basic abc"))
	assert.Empty(t, ExtractTokenFromHeader(""))
}
