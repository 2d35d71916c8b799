package auth

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-jose/go-jose/v4"
	"github.com/go-jose/go-jose/v4/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSigner(t *testing.T, keyID string) (jose.Signer, *rsa.PrivateKey) {
	t.Helper()
	privKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	signer, err := jose.NewSigner(
		jose.SigningKey{Algorithm: jose.RS256, Key: privKey},
		(&jose.SignerOptions{}).WithType("JWT").WithHeader("kid", keyID),
	)
	require.NoError(t, err)
	return signer, privKey
}

func mint(t *testing.T, signer jose.Signer, claims any) string {
	t.Helper()
	tok, err := jwt.Signed(signer).Claims(claims).Serialize()
	require.NoError(t, err)
	return tok
}

func TestStaticVerifier_AcceptsValidToken(t *testing.T) {
	signer, privKey := newSigner(t, "test-key")
	keys := jose.JSONWebKeySet{Keys: []jose.JSONWebKey{
		{Key: &privKey.PublicKey, Use: "sig", Algorithm: "RS256", KeyID: "test-key"},
	}}
	v := NewStaticVerifier(keys, "https://issuer.test", "queryserve")

	tok := mint(t, signer, struct {
		jwt.Claims
		Scope string `json:"scope"`
	}{
		Claims: jwt.Claims{
			Issuer:   "https://issuer.test",
			Subject:  "svc-billing",
			Audience: jwt.Audience{"queryserve"},
			Expiry:   jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Scope: "invoices:read invoices:write",
	})

	p, err := v.Verify(context.Background(), tok)
	require.NoError(t, err)
	assert.Equal(t, "svc-billing", p.Subject)
	assert.Equal(t, "https://issuer.test", p.Issuer)
	assert.Equal(t, []string{"invoices:read", "invoices:write"}, p.Scope)
}

func TestStaticVerifier_RejectsBadTokens(t *testing.T) {
	signer, privKey := newSigner(t, "test-key")
	keys := jose.JSONWebKeySet{Keys: []jose.JSONWebKey{
		{Key: &privKey.PublicKey, Use: "sig", Algorithm: "RS256", KeyID: "test-key"},
	}}
	v := NewStaticVerifier(keys, "https://issuer.test", "queryserve")

	base := jwt.Claims{
		Issuer:   "https://issuer.test",
		Subject:  "svc-billing",
		Audience: jwt.Audience{"queryserve"},
		Expiry:   jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}

	t.Run("wrong issuer", func(t *testing.T) {
		cl := base
		cl.Issuer = "https://other.test"
		_, err := v.Verify(context.Background(), mint(t, signer, cl))
		assert.Error(t, err)
	})

	t.Run("wrong audience", func(t *testing.T) {
		cl := base
		cl.Audience = jwt.Audience{"someone-else"}
		_, err := v.Verify(context.Background(), mint(t, signer, cl))
		assert.Error(t, err)
	})

	t.Run("expired", func(t *testing.T) {
		cl := base
		cl.Expiry = jwt.NewNumericDate(time.Now().Add(-time.Hour))
		_, err := v.Verify(context.Background(), mint(t, signer, cl))
		assert.Error(t, err)
	})

	t.Run("signed by unknown key", func(t *testing.T) {
		other, _ := newSigner(t, "test-key")
		_, err := v.Verify(context.Background(), mint(t, other, base))
		assert.ErrorIs(t, err, ErrNoMatchingKey)
	})

	t.Run("not a jwt", func(t *testing.T) {
		_, err := v.Verify(context.Background(), "not-a-token")
		assert.Error(t, err)
	})
}

func TestStaticVerifier_NoAudienceCheckWhenEmpty(t *testing.T) {
	signer, privKey := newSigner(t, "test-key")
	keys := jose.JSONWebKeySet{Keys: []jose.JSONWebKey{
		{Key: &privKey.PublicKey, Use: "sig", Algorithm: "RS256", KeyID: "test-key"},
	}}
	v := NewStaticVerifier(keys, "https://issuer.test", "")

	tok := mint(t, signer, jwt.Claims{
		Issuer:  "https://issuer.test",
		Subject: "svc-billing",
		Expiry:  jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})

	_, err := v.Verify(context.Background(), tok)
	assert.NoError(t, err)
}

// startOIDCServer serves just enough of the OIDC discovery surface for
// token verification: the configuration document and a JWKS.
func startOIDCServer(t *testing.T, pubKey *rsa.PublicKey) *httptest.Server {
	t.Helper()
	var srv *httptest.Server
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/.well-known/openid-configuration":
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprintf(w, `{
				"issuer": %q,
				"authorization_endpoint": %q,
				"token_endpoint": %q,
				"jwks_uri": %q,
				"id_token_signing_alg_values_supported": ["RS256"]
			}`, srv.URL, srv.URL+"/auth", srv.URL+"/token", srv.URL+"/keys")
		case "/keys":
			jwks := jose.JSONWebKeySet{Keys: []jose.JSONWebKey{
				{Key: pubKey, Use: "sig", Algorithm: "RS256", KeyID: "test-key"},
			}}
			w.Header().Set("Content-Type", "application/json")
			require.NoError(t, json.NewEncoder(w).Encode(jwks))
		default:
			http.NotFound(w, r)
		}
	})
	srv = httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestOIDCVerifier_VerifiesDiscoveredToken(t *testing.T) {
	signer, privKey := newSigner(t, "test-key")
	srv := startOIDCServer(t, &privKey.PublicKey)

	v, err := NewOIDCVerifier(context.Background(), srv.URL, "queryserve")
	require.NoError(t, err)

	tok := mint(t, signer, jwt.Claims{
		Issuer:   srv.URL,
		Subject:  "svc-billing",
		Audience: jwt.Audience{"queryserve"},
		Expiry:   jwt.NewNumericDate(time.Now().Add(time.Hour)),
		IssuedAt: jwt.NewNumericDate(time.Now()),
	})

	p, err := v.Verify(context.Background(), tok)
	require.NoError(t, err)
	assert.Equal(t, "svc-billing", p.Subject)
	assert.Equal(t, srv.URL, p.Issuer)
}

func TestOIDCVerifier_RejectsWrongAudience(t *testing.T) {
	signer, privKey := newSigner(t, "test-key")
	srv := startOIDCServer(t, &privKey.PublicKey)

	v, err := NewOIDCVerifier(context.Background(), srv.URL, "queryserve")
	require.NoError(t, err)

	tok := mint(t, signer, jwt.Claims{
		Issuer:   srv.URL,
		Subject:  "svc-billing",
		Audience: jwt.Audience{"someone-else"},
		Expiry:   jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})

	_, err = v.Verify(context.Background(), tok)
	assert.Error(t, err)
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry()
	tc, err := NewTokenCodec("k1", testKeys())
	require.NoError(t, err)

	reg.Register("internal", tc)

	got, ok := reg.Get("internal")
	require.True(t, ok)
	assert.Same(t, tc, got)

	_, ok = reg.Get("missing")
	assert.False(t, ok)
}
