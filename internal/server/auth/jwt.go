// Package auth issues and verifies the bearer tokens handed to clients.
//
// A token is an HS256 JWT whose ID (jti) is the id of a server-side
// session row. The signature proves the token was minted here; the session
// row proves it has not been revoked.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dmitrijs2005/gophtasks/internal/common"
)

// Claims is the payload carried by a token. Subject holds the user id and
// ID holds the session id.
type Claims struct {
	jwt.RegisteredClaims
}

func (c *Claims) UserID() string    { return c.Subject }
func (c *Claims) SessionID() string { return c.ID }

// GenerateToken signs a token for the given user and session. A zero
// validity produces a token without an exp claim.
func GenerateToken(userID, sessionID string, secretKey []byte, validity time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  userID,
			ID:       sessionID,
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if validity != 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(validity))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// ParseToken verifies the signature and decodes the claims.
//
// An expired but otherwise genuine token yields its claims together with
// common.ErrTokenExpired, so callers that only need to revoke it can still
// read the session id. Any other failure yields common.ErrInvalidToken.
func ParseToken(tokenString string, secretKey []byte) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return claims, common.ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}

	if !token.Valid || claims.Subject == "" || claims.ID == "" {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}
