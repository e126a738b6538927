// Package auth issues and verifies the bearer tokens that carry a caller
// identity. The identity is the token subject.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid or expired token")

type Claims struct {
	jwt.RegisteredClaims
}

type Authenticator struct {
	secret     []byte
	issuer     string
	expiration time.Duration
}

func NewAuthenticator(secret, issuer string, expiration time.Duration) *Authenticator {
	return &Authenticator{
		secret:     []byte(secret),
		issuer:     issuer,
		expiration: expiration,
	}
}

// Issue signs an HS256 token for identity.
func (a *Authenticator) Issue(identity string, now time.Time) (string, error) {
	if identity == "" {
		return "", errors.New("identity is required")
	}

	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity,
			Issuer:    a.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.expiration)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Identity verifies tokenStr and returns its subject.
func (a *Authenticator) Identity(tokenStr string) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return a.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(a.issuer),
	)
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}
	if claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}
