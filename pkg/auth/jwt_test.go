package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidate(t *testing.T) {
	v := NewValidator("s3cret", "garage", time.Hour)
	employee := uint(7)

	token, err := v.GenerateToken(Claims{UserID: 3, EmployeeID: &employee, Username: "linh", Roles: []string{"Manager"}})
	require.NoError(t, err)

	claims, err := v.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, uint(3), claims.UserID)
	require.NotNil(t, claims.EmployeeID)
	assert.Equal(t, uint(7), *claims.EmployeeID)
	assert.Equal(t, "linh", claims.Username)
	assert.Equal(t, []string{"Manager"}, claims.Roles)
}

func TestValidateRejects(t *testing.T) {
	v := NewValidator("s3cret", "garage", time.Hour)

	other, err := NewValidator("other", "garage", time.Hour).GenerateToken(Claims{UserID: 1})
	require.NoError(t, err)
	wrongIssuer, err := NewValidator("s3cret", "elsewhere", time.Hour).GenerateToken(Claims{UserID: 1})
	require.NoError(t, err)
	anonymous, err := v.GenerateToken(Claims{Username: "nobody"})
	require.NoError(t, err)

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		UserID: 1,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "garage",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	})
	expiredToken, err := expired.SignedString([]byte("s3cret"))
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not-a-token"},
		{"wrong secret", other},
		{"wrong issuer", wrongIssuer},
		{"no user", anonymous},
		{"expired", expiredToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.Validate(tt.token)
			assert.Error(t, err)
		})
	}
}

func TestBearerToken(t *testing.T) {
	token, err := BearerToken("Bearer abc.def")
	require.NoError(t, err)
	assert.Equal(t, "abc.def", token)

	token, err = BearerToken("bearer  xyz ")
	require.NoError(t, err)
	assert.Equal(t, "xyz", token)

	for _, h := range []string{"", "Basic abc", "Bearer", "Bearer   "} {
		_, err := BearerToken(h)
		assert.ErrorIs(t, err, ErrMissingToken, h)
	}
}
