// Package auth contains the session primitives of the blog server: password
// hashing, signed session tokens and the session cookie.
package auth

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/miniblog/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims is the only identity shape the server trusts. Subject holds the
// user id.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
	Name  string `json:"name"`
}

// UserID returns the subject of the claims.
func (c *Claims) UserID() string {
	return c.Subject
}

// TokenCodec issues and verifies HS256 session tokens.
type TokenCodec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenCodec returns a codec signing with secret; issued tokens expire
// after ttl.
func NewTokenCodec(secret []byte, ttl time.Duration) *TokenCodec {
	return &TokenCodec{secret: secret, ttl: ttl, now: time.Now}
}

// TTL returns the lifetime of issued tokens.
func (c *TokenCodec) TTL() time.Duration {
	return c.ttl
}

// Issue signs a token for the given identity.
func (c *TokenCodec) Issue(userID, email, name string) (string, error) {
	now := c.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
		Email: email,
		Name:  name,
	})

	tokenString, err := token.SignedString(c.secret)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// Verify parses tokenString and returns its claims. It returns
// common.ErrTokenExpired for expired tokens and common.ErrInvalidToken for
// anything else that is wrong with the token.
func (c *TokenCodec) Verify(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, common.ErrInvalidToken
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrInvalidToken
	}

	if !token.Valid || claims.Subject == "" {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}

// Identify is Verify for callers that treat every failure as "no session".
func (c *TokenCodec) Identify(tokenString string) *Claims {
	claims, err := c.Verify(tokenString)
	if err != nil {
		return nil
	}
	return claims
}
