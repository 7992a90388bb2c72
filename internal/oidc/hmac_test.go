package oidc

import (
	"context"
	"testing"
	"time"

	"github.com/gogotex/docshare/internal/tokens"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestHMACVerifier(t *testing.T) {
	v, err := NewHMACVerifier("s3cret")
	require.NoError(t, err)

	raw, err := tokens.IssueAdminToken("s3cret", "ops", time.Minute)
	require.NoError(t, err)

	tok, err := v.Verify(context.Background(), raw)
	require.NoError(t, err)
	var claims map[string]interface{}
	require.NoError(t, tok.Claims(&claims))
	require.Equal(t, "ops", claims["sub"])
	require.Equal(t, tokens.AdminScope, claims["scope"])
}

func TestHMACVerifierRejects(t *testing.T) {
	v, err := NewHMACVerifier("s3cret")
	require.NoError(t, err)
	ctx := context.Background()

	wrongKey, _ := tokens.IssueAdminToken("other", "ops", time.Minute)
	_, err = v.Verify(ctx, wrongKey)
	require.Error(t, err)

	expired, _ := tokens.IssueAdminToken("s3cret", "ops", -time.Minute)
	_, err = v.Verify(ctx, expired)
	require.Error(t, err)

	noExp, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "ops"}).SignedString([]byte("s3cret"))
	_, err = v.Verify(ctx, noExp)
	require.Error(t, err)

	hs512, _ := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.MapClaims{"sub": "ops", "exp": time.Now().Add(time.Minute).Unix()}).SignedString([]byte("s3cret"))
	_, err = v.Verify(ctx, hs512)
	require.Error(t, err)

	_, err = v.Verify(ctx, "not.a.jwt")
	require.Error(t, err)

	_, err = NewHMACVerifier("")
	require.Error(t, err)
}

func TestIssuerURL(t *testing.T) {
	require.Equal(t, "https://kc.example.com/realms/docshare", IssuerURL("https://kc.example.com/", "docshare"))
}
