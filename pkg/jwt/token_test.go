package jwt

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssue(t *testing.T) {
	issuer, err := NewIssuer("secret", "poolgame")
	require.NoError(t, err)

	signed, err := issuer.Issue("operator-1", "operator", time.Hour)
	require.NoError(t, err)

	claims := jwt.MapClaims{}
	_, err = jwt.ParseWithClaims(signed, claims, func(*jwt.Token) (interface{}, error) {
		return []byte("secret"), nil
	})
	require.NoError(t, err)
	assert.Equal(t, "operator-1", claims["sub"])
	assert.Equal(t, "operator", claims["role"])
	assert.Equal(t, "poolgame", claims["iss"])
}

func TestNewIssuerRequiresSecret(t *testing.T) {
	_, err := NewIssuer("", "")
	assert.Error(t, err)
}
