package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"go-marketplace/models"
)

func TestGenerateAndParseJWT(t *testing.T) {
	JwtKey = []byte("test_secret")

	user := models.User{
		ID:    primitive.NewObjectID(),
		Name:  "Ada",
		Email: "ada@example.com",
		Role:  models.RoleSeller,
	}

	token, err := GenerateJWT(user)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ParseJWT(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID.Hex(), claims.UserID)
	assert.Equal(t, "Ada", claims.Name)
	assert.Equal(t, "ada@example.com", claims.Email)
	assert.Equal(t, models.RoleSeller, claims.Role)

	// 30-day expiry.
	expiry := time.Unix(claims.ExpiresAt, 0)
	assert.WithinDuration(t, time.Now().Add(TokenLifetime), expiry, time.Minute)
}

func TestParseJWTWrongKey(t *testing.T) {
	JwtKey = []byte("test_secret")
	token, err := GenerateJWT(models.User{ID: primitive.NewObjectID(), Email: "x@example.com"})
	require.NoError(t, err)

	JwtKey = []byte("another_secret")
	_, err = ParseJWT(token)
	assert.Error(t, err)
}

func TestParseJWTGarbage(t *testing.T) {
	JwtKey = []byte("test_secret")
	_, err := ParseJWT("not.a.token")
	assert.Error(t, err)
}

func TestGenerateToken(t *testing.T) {
	a, err := GenerateToken()
	require.NoError(t, err)
	b, err := GenerateToken()
	require.NoError(t, err)

	assert.Len(t, a, 64)
	assert.NotEqual(t, a, b)
}

func TestGenerateOTP(t *testing.T) {
	for i := 0; i < 50; i++ {
		otp, err := GenerateOTP()
		require.NoError(t, err)
		require.Len(t, otp, 6)
		for _, c := range otp {
			require.True(t, c >= '0' && c <= '9', "otp %q contains non-digit", otp)
		}
	}
}

func TestSetJwtSecret(t *testing.T) {
	original := JwtKey
	defer func() { JwtKey = original }()

	require.NoError(t, SetJwtSecret("a-strong-secret"))
	assert.Equal(t, []byte("a-strong-secret"), JwtKey)

	// an empty secret is refused and the installed key stays untouched
	assert.Error(t, SetJwtSecret(""))
	assert.Equal(t, []byte("a-strong-secret"), JwtKey)
}
