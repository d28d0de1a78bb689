package server

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidToken is returned when a bearer token fails validation for
// any reason: bad signature, wrong method, malformed, or expired.
var ErrInvalidToken = errors.New("invalid or expired token")

// tokenIssuer mints and verifies the HS256 bearer tokens handed to
// authenticated clients.
type tokenIssuer struct {
	secret []byte
	expiry time.Duration
}

func newTokenIssuer(secret string, expiry time.Duration) *tokenIssuer {
	return &tokenIssuer{secret: []byte(secret), expiry: expiry}
}

// Issue creates a signed token with the username as subject.
func (t *tokenIssuer) Issue(username string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   username,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(t.expiry)),
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

// Verify validates a token and returns its subject.
func (t *tokenIssuer) Verify(tokenStr string) (string, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &jwt.RegisteredClaims{}, func(tok *jwt.Token) (any, error) {
		if tok.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("invalid signing method")
		}
		return t.secret, nil
	})
	if err != nil {
		log.Debug().Err(err).Msg("JWT parse error")
		return "", ErrInvalidToken
	}

	if !parsed.Valid {
		return "", ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok {
		return "", ErrInvalidToken
	}

	if claims.ExpiresAt != nil && claims.ExpiresAt.Before(time.Now()) {
		return "", ErrInvalidToken
	}

	return claims.Subject, nil
}

// checkPassword compares a candidate password against a bcrypt hash.
func checkPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// HashPassword generates a bcrypt hash for server provisioning.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
