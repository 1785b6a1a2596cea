package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenType is the token_type of a login response.
const TokenType = "JWT"

// Claims are the claims of an access token. The subject is the lowercase address.
type Claims struct {
	Scope   string `json:"scope"`
	Address string `json:"address"`
	ChainID string `json:"chain_id"`
	Nonce   string `json:"nonce,omitempty"`
	Tenant  string `json:"tenant,omitempty"`
	jwt.RegisteredClaims
}

// AccessToken is the body returned by a successful login.
type AccessToken struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"` // seconds
}

// Tokens signs and verifies access tokens.
type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokens returns a signer for secret issuing tokens valid for ttl.
func NewTokens(secret string, ttl time.Duration) *Tokens {
	return &Tokens{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue signs claims and fills in subject, issue and expiry times.
func (t *Tokens) Issue(c Claims) (*AccessToken, error) {
	now := t.now()

	c.Address = strings.ToLower(c.Address)
	c.Subject = c.Address
	c.IssuedAt = jwt.NewNumericDate(now)
	c.ExpiresAt = jwt.NewNumericDate(now.Add(t.ttl))

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(t.secret)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	return &AccessToken{
		AccessToken: signed,
		TokenType:   TokenType,
		ExpiresIn:   int64(t.ttl / time.Second),
	}, nil
}

// Parse verifies raw and returns its claims.
func (t *Tokens) Parse(raw string) (*Claims, error) {
	c := new(Claims)

	_, err := jwt.ParseWithClaims(raw, c, func(*jwt.Token) (any, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)

	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenRequiredClaimMissing):
		return nil, ErrTokenNoExpiry
	case err != nil:
		return nil, ErrInvalidToken
	}

	if strings.TrimSpace(c.Scope) == "" {
		return nil, ErrTokenNoScope
	}

	return c, nil
}
