// Package auth issues and verifies the bearer tokens that identify users.
package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// RoleAdmin may read other users' reports within its scope
const RoleAdmin = "admin"

// ErrInvalidToken indicates a missing, malformed, expired or forged token.
var ErrInvalidToken = errors.New("invalid token")

// Claims carried by a punch token
type Claims struct {
	UserID uint   `json:"uid"`
	Scope  string `json:"scope"`
	Role   string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Issue signs an HS256 token for userID valid for ttl from now
func Issue(secret []byte, userID uint, scope, role string, ttl time.Duration, now time.Time) (string, error) {
	if userID == 0 {
		return "", fmt.Errorf("user id is required")
	}
	claims := Claims{
		UserID: userID,
		Scope:  scope,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// Parse verifies raw and returns its claims
func Parse(secret []byte, raw string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.UserID == 0 {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
