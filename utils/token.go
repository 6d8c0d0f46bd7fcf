// utils/token.go
package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt"
)

// ErrInvalidToken is the single outcome for every verification failure.
// Callers must not learn whether a token was malformed, forged or expired.
var ErrInvalidToken = errors.New("invalid token")

// TokenService issues and verifies signed, time-limited bearer tokens.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenService creates a token service signing with the given secret.
func NewTokenService(secret string, ttl time.Duration) *TokenService {
	return &TokenService{secret: []byte(secret), ttl: ttl}
}

// Issue signs a token carrying the subject id and an absolute expiry.
func (s *TokenService) Issue(subjectID string) (string, error) {
	now := time.Now()
	claims := &jwt.StandardClaims{
		Subject:   subjectID,
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(s.ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify checks signature and expiry and returns the subject id.
func (s *TokenService) Verify(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.StandardClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(*jwt.StandardClaims)
	if !ok || claims.Subject == "" || claims.ExpiresAt == 0 {
		return "", ErrInvalidToken
	}

	return claims.Subject, nil
}
