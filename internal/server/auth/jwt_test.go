package auth

import (
	"testing"
	"time"

	"github.com/dmitrijs2005/drawersync/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParse(t *testing.T) {
	secret := []byte("s3cret")

	tok, err := GenerateToken("register-1", secret, time.Hour)
	require.NoError(t, err)

	sub, err := SubjectFromToken(tok, secret)
	require.NoError(t, err)
	assert.Equal(t, "register-1", sub)
}

func TestNoExpiry(t *testing.T) {
	secret := []byte("s3cret")

	tok, err := GenerateToken("x", secret, 0)
	require.NoError(t, err)

	claims := &Claims{}
	_, err = jwt.ParseWithClaims(tok, claims, func(*jwt.Token) (interface{}, error) { return secret, nil })
	require.NoError(t, err)
	assert.Nil(t, claims.ExpiresAt)
}

func TestSubjectFromToken_Rejects(t *testing.T) {
	secret := []byte("s3cret")

	expiredTok := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "x",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
	}})
	expired, err := expiredTok.SignedString(secret)
	require.NoError(t, err)

	wrongKey, err := GenerateToken("x", []byte("other"), time.Hour)
	require.NoError(t, err)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "x"}})
	noneTok, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	for name, tok := range map[string]string{
		"expired":   expired,
		"wrong key": wrongKey,
		"alg none":  noneTok,
		"garbage":   "not.a.token",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := SubjectFromToken(tok, secret)
			assert.ErrorIs(t, err, common.ErrInvalidToken)
		})
	}
}
