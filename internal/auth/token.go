// Package auth issues and verifies access tokens and hashes passwords.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"course-market/internal/apperr"
	"course-market/internal/domain"
)

// Claims is the payload of an access token.
type Claims struct {
	ID   int64       `json:"id"`
	Role domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// TokenService signs and verifies HS256 access tokens with a process-wide secret.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenService returns a token service. A zero ttl issues tokens that never
// expire.
func NewTokenService(secret string, ttl time.Duration) (*TokenService, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("jwt secret is required")
	}
	return &TokenService{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

// Issue signs a token for the given principal.
func (s *TokenService) Issue(principalID int64, role domain.Role) (string, error) {
	now := s.now()
	claims := Claims{
		ID:   principalID,
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if s.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(s.ttl))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature and returns the embedded claims. Every failure
// is reported as an InvalidToken error.
func (s *TokenService) Verify(raw string) (*Claims, error) {
	if raw == "" {
		return nil, apperr.InvalidToken(errors.New("token missing"))
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, apperr.InvalidToken(err)
	}
	if !token.Valid || claims.ID <= 0 || !claims.Role.Valid() {
		return nil, apperr.InvalidToken(errors.New("malformed claims"))
	}
	return claims, nil
}
