// Package auth issues and verifies the HS256 access tokens returned by the
// login endpoint.
package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims carries the account identity inside an access token.
type Claims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	// Collection records which account collection the subject lives in
	// (employees or utilisateurs).
	Collection string `json:"collection"`
	jwt.RegisteredClaims
}

// NewAccessToken signs a token for the given account id.
func NewAccessToken(secret, accountID string, ttl time.Duration, claims Claims) (string, error) {
	now := time.Now().UTC()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		Subject:   accountID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseToken verifies a token and returns its claims.
func ParseToken(secret, tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}
