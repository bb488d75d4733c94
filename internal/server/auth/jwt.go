// Package auth issues and verifies session tokens and resolves an incoming
// Authorization value into a Principal.
package auth

import (
	"errors"
	"time"

	"github.com/cocoinbox/cocoinbox/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims carries the user identity and role set alongside the registered
// iat and exp claims.
type Claims struct {
	jwt.RegisteredClaims
	UserID string   `json:"uid"`
	Roles  []string `json:"roles"`
}

// Identity is what a verified token asserts.
type Identity struct {
	UserID string
	Roles  []string
}

type TokenService struct {
	secret   []byte
	lifetime time.Duration
	now      func() time.Time
}

// NewTokenService fails with common.ErrorConfiguration when secret is empty.
func NewTokenService(secret []byte) (*TokenService, error) {
	if len(secret) == 0 {
		return nil, common.ErrorConfiguration
	}
	return &TokenService{secret: secret, lifetime: common.SessionTokenLifetime, now: time.Now}, nil
}

func (s *TokenService) Issue(userID string, roles []string) (string, error) {
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.lifetime)),
		},
		UserID: userID,
		Roles:  roles,
	})

	return token.SignedString(s.secret)
}

// Verify returns common.ErrorTokenExpired for an expired token and
// common.ErrorInvalidToken for anything else that does not check out.
func (s *TokenService) Verify(tokenString string) (*Identity, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrorTokenExpired
		}
		return nil, common.ErrorInvalidToken
	}

	if !token.Valid || claims.UserID == "" || claims.IssuedAt == nil || len(claims.Roles) == 0 {
		return nil, common.ErrorInvalidToken
	}

	return &Identity{UserID: claims.UserID, Roles: claims.Roles}, nil
}
