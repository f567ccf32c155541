// Package jwt issues the operator tokens accepted by the API's auth middleware
package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Issuer signs HS256 tokens carrying a subject and a role claim
type Issuer struct {
	secret []byte
	issuer string
}

// NewIssuer creates an Issuer. issuer may be empty.
func NewIssuer(secret, issuer string) (*Issuer, error) {
	if secret == "" {
		return nil, errors.New("jwt secret is required")
	}
	return &Issuer{secret: []byte(secret), issuer: issuer}, nil
}

// Issue returns a signed token for subject with role, valid for ttl
func (i *Issuer) Issue(subject, role string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  subject,
		"role": role,
		"iat":  now.Unix(),
		"exp":  now.Add(ttl).Unix(),
	}
	if i.issuer != "" {
		claims["iss"] = i.issuer
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
}
