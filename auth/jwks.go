package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-jose/go-jose/v4"
	"github.com/go-jose/go-jose/v4/jwt"
)

// ErrNoMatchingKey reports a token whose signature matches no key in the
// pinned set.
var ErrNoMatchingKey = errors.New("auth: no key in the set verifies the token")

// StaticVerifier validates JWTs against a pinned JSON Web Key Set. It needs
// no network access, which suits deployments that distribute signing keys
// out of band.
type StaticVerifier struct {
	keys     jose.JSONWebKeySet
	issuer   string
	audience string
	algs     []jose.SignatureAlgorithm

	// now is replaceable in tests.
	now func() time.Time
}

// NewStaticVerifier builds a verifier for tokens signed by one of keys,
// issued by issuer, for audience. An empty audience skips the audience
// check.
func NewStaticVerifier(keys jose.JSONWebKeySet, issuer, audience string) *StaticVerifier {
	return &StaticVerifier{
		keys:     keys,
		issuer:   issuer,
		audience: audience,
		algs:     []jose.SignatureAlgorithm{jose.RS256, jose.ES256, jose.EdDSA},
		now:      time.Now,
	}
}

// Verify implements Verifier.
func (v *StaticVerifier) Verify(_ context.Context, credential string) (*Principal, error) {
	tok, err := jwt.ParseSigned(credential, v.algs)
	if err != nil {
		return nil, fmt.Errorf("auth: parse token: %w", err)
	}

	candidates := v.keys.Keys
	if len(tok.Headers) > 0 && tok.Headers[0].KeyID != "" {
		candidates = v.keys.Key(tok.Headers[0].KeyID)
	}

	var claims struct {
		jwt.Claims
		Scope string `json:"scope"`
	}
	verified := false
	for _, k := range candidates {
		if err := tok.Claims(k, &claims); err == nil {
			verified = true
			break
		}
	}
	if !verified {
		return nil, ErrNoMatchingKey
	}

	expected := jwt.Expected{Issuer: v.issuer, Time: v.now()}
	if v.audience != "" {
		expected.AnyAudience = jwt.Audience{v.audience}
	}
	if err := claims.Validate(expected); err != nil {
		return nil, fmt.Errorf("auth: validate claims: %w", err)
	}

	p := &Principal{Subject: claims.Subject, Issuer: claims.Issuer}
	if claims.Scope != "" {
		p.Scope = strings.Fields(claims.Scope)
	}
	return p, nil
}
