package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = strings.Repeat("s", 32)

func TestTokensRoundTrip(t *testing.T) {
	tokens := NewTokens(testSecret, time.Hour)

	at, err := tokens.Issue(Claims{
		Scope:   JoinScope([]string{ScopePublicReader, ScopeBadgeholder}),
		Address: "0xABCDEF0000000000000000000000000000000001",
		ChainID: "10",
		Nonce:   "abcdefgh12345678",
		Tenant:  "optimism",
	})
	require.NoError(t, err)
	assert.Equal(t, TokenType, at.TokenType)
	assert.Equal(t, int64(3600), at.ExpiresIn)

	c, err := tokens.Parse(at.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "0xabcdef0000000000000000000000000000000001", c.Subject)
	assert.Equal(t, c.Subject, c.Address)
	assert.Equal(t, []string{ScopePublicReader, ScopeBadgeholder}, ParseScope(c.Scope))
	assert.Equal(t, "optimism", c.Tenant)
}

func TestTokensParseErrors(t *testing.T) {
	tokens := NewTokens(testSecret, time.Hour)

	expired := NewTokens(testSecret, time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expiredToken, err := expired.Issue(Claims{Scope: ScopePublicReader, Address: "0x1"})
	require.NoError(t, err)

	noScope, err := tokens.Issue(Claims{Address: "0x1"})
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "0x1", "scope": "x"}).
		SignedString([]byte(testSecret))
	require.NoError(t, err)

	wrongAlg, err := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.MapClaims{
		"sub": "0x1", "scope": "x", "exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	otherSecret, err := NewTokens(strings.Repeat("o", 32), time.Hour).Issue(Claims{Scope: "x", Address: "0x1"})
	require.NoError(t, err)

	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{name: "garbage", token: "not-a-jwt", wantErr: ErrInvalidToken},
		{name: "expired", token: expiredToken.AccessToken, wantErr: ErrTokenExpired},
		{name: "no scope", token: noScope.AccessToken, wantErr: ErrTokenNoScope},
		{name: "no expiry", token: noExpiry, wantErr: ErrTokenNoExpiry},
		{name: "wrong algorithm", token: wrongAlg, wantErr: ErrInvalidToken},
		{name: "wrong secret", token: otherSecret.AccessToken, wantErr: ErrInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tokens.Parse(tt.token)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestScopes(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, ParseScope("a;b c"))
	assert.Empty(t, ParseScope(" ; "))
	assert.True(t, HasScope([]string{ScopeAdmin}, ScopeBadgeholder))
	assert.False(t, HasScope([]string{ScopePublicReader}, ScopeBadgeholder))
	assert.Equal(t, "a;b", JoinScope([]string{"a", "b"}))
}

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "abc", BearerToken("Bearer abc"))
	assert.Equal(t, "abc", BearerToken("  Bearer   abc "))
	assert.Empty(t, BearerToken("Basic abc"))
	assert.Empty(t, BearerToken(""))
}
