package utils

import (
	"errors"
	"time"

	"github.com/dgrijalva/jwt-go"

	"go-marketplace/models"
)

// JWT Secret Key
var JwtKey = []byte("your_secret_key") // This will be loaded from .env

// SetJwtSecret installs the signing key. An empty secret is refused so
// startup fails loudly instead of signing every session with "".
func SetJwtSecret(secret string) error {
	if secret == "" {
		return errors.New("jwt secret must not be empty")
	}
	JwtKey = []byte(secret)
	return nil
}

// Sessions live for 30 days.
const TokenLifetime = 30 * 24 * time.Hour

// Claims represents the JWT claims embedded in a session token.
type Claims struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.StandardClaims
}

// GenerateJWT generates a session token for a user.
func GenerateJWT(user models.User) (string, error) {
	expirationTime := time.Now().Add(TokenLifetime)
	claims := &Claims{
		UserID: user.ID.Hex(),
		Name:   user.Name,
		Email:  user.Email,
		Role:   user.Role,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: expirationTime.Unix(),
			IssuedAt:  time.Now().Unix(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(JwtKey)
}

// ParseJWT validates a session token and returns its claims.
func ParseJWT(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return JwtKey, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.NewValidationError("invalid token", jwt.ValidationErrorSignatureInvalid)
	}
	return claims, nil
}
