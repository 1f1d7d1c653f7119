// Package auth issues and verifies the bearer tokens accepted by the
// key-value server.
package auth

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/drawersync/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims carries only the registered claims; the subject names the client
// or person the token was issued to.
type Claims struct {
	jwt.RegisteredClaims
}

// GenerateToken signs an HS256 token for subject. A non-positive validity
// produces a token without expiry.
func GenerateToken(subject string, secretKey []byte, validityDuration time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  subject,
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if validityDuration > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(validityDuration))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// SubjectFromToken validates tokenString and returns its subject.
func SubjectFromToken(tokenString string, secretKey []byte) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}

	if !token.Valid {
		return "", common.ErrInvalidToken
	}

	return claims.Subject, nil
}
