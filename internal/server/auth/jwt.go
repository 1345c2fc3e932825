// Package auth integrates the external identity collaborator: it verifies
// bearer tokens and extracts the caller identity used as the sender label.
// The transfer core functions without it; uploads then fall back to an
// anonymized sender.
package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/gursmeep404/sharden/internal/common"
)

// Claims carries the standard claims plus the caller identity string.
type Claims struct {
	jwt.RegisteredClaims
	Identity string
}

// GenerateToken signs an HS256 token for the given identity.
func GenerateToken(identity string, secretKey []byte, validityDuration time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validityDuration)),
		},
		Identity: identity,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// GetIdentityFromToken verifies the token and returns the embedded identity.
func GetIdentityFromToken(tokenString string, secretKey []byte) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	})
	if err != nil {
		return "", err
	}

	if !token.Valid {
		return "", common.ErrInvalidToken
	}

	return claims.Identity, nil
}
