// Package token mints and parses the access tokens handed out by the local
// identity provider. Tokens are HS256 JWTs signed with a per-process random
// secret; nothing outside this package inspects them, so to every consumer
// they are opaque capability strings.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/minestat/launcher/internal/common"
)

// DefaultTTL bounds the lifetime of a locally minted token.
const DefaultTTL = 24 * time.Hour

var ErrInvalidToken = errors.New("invalid token")

// Claims carries the registered claims plus the authenticated user's id.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"uid"`
}

// Issuer mints tokens for a single process. Each token gets a random jti,
// so repeated calls for the same user still produce distinct tokens.
type Issuer struct {
	secret []byte
	ttl    time.Duration
}

// NewIssuer builds an Issuer. An empty secret is replaced by a random one,
// which is the normal mode: local tokens only need to be valid within the
// process that minted them.
func NewIssuer(secret []byte, ttl time.Duration) *Issuer {
	if len(secret) == 0 {
		secret = common.RandBytes(32)
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Issuer{secret: secret, ttl: ttl}
}

// New mints a token for the given user id.
func (i *Issuer) New(userID string) (string, error) {
	jti, err := common.RandHex(16)
	if err != nil {
		return "", err
	}

	now := time.Now()
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
		UserID: userID,
	})
	return t.SignedString(i.secret)
}

// UserID extracts the user id from a token previously minted by this issuer.
func (i *Issuer) UserID(tokenString string) (string, error) {
	claims := &Claims{}

	t, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return i.secret, nil
	})
	if err != nil {
		return "", err
	}
	if !t.Valid {
		return "", ErrInvalidToken
	}
	return claims.UserID, nil
}
