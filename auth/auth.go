// Package auth provides service-to-service authentication layers for
// queryserve routers.
//
// Three credential mechanisms are supported:
//
//   - Bearer tokens verified against an OIDC issuer discovered from its URL
//     (OIDCVerifier).
//   - Bearer tokens verified against a pinned JSON Web Key Set, for
//     deployments that do not want discovery (StaticVerifier).
//   - Self-contained sealed tokens issued and verified by the service
//     itself (TokenCodec), for callers that are not behind an identity
//     provider.
//
// Every mechanism implements Verifier and plugs into RequireBearer, which
// rejects unauthenticated requests with 403 and the AccessDeniedException
// error name before the operation handle runs.
package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/mnehpets/queryserve/middleware"
	"github.com/mnehpets/queryserve/routing"
)

// Principal identifies an authenticated caller.
type Principal struct {
	// Subject is the caller's stable identifier.
	Subject string
	// Issuer names the authority that vouched for the caller; empty for
	// self-contained tokens.
	Issuer string
	// Scope lists the caller's granted scopes, when the credential carries
	// any.
	Scope []string
}

// Verifier validates a presented credential and resolves its principal.
type Verifier interface {
	Verify(ctx context.Context, credential string) (*Principal, error)
}

// Registry manages named verifiers, for services that accept credentials
// from more than one authority.
type Registry struct {
	verifiers map[string]Verifier
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{verifiers: make(map[string]Verifier)}
}

// Register adds a verifier under a name. Registration happens during
// single-threaded setup, before the server is published.
func (r *Registry) Register(name string, v Verifier) {
	r.verifiers[name] = v
}

// Get retrieves a verifier by name.
func (r *Registry) Get(name string) (Verifier, bool) {
	v, ok := r.verifiers[name]
	return v, ok
}

type principalKey struct{}

func withPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext returns the authenticated caller stored by
// RequireBearer, if any.
func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(*Principal)
	return p, ok
}

// RequireBearer returns a layer admitting only requests whose Authorization
// bearer credential the verifier accepts. The resolved principal is stored
// in the request context for the operation handle.
func RequireBearer(v Verifier) middleware.Layer {
	return func(next routing.Service) routing.Service {
		return routing.ServiceFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearerToken(r)
			if !ok {
				writeAccessDenied(w, r)
				return
			}
			p, err := v.Verify(r.Context(), raw)
			if err != nil {
				writeAccessDenied(w, r)
				return
			}
			next.Call(w, r.WithContext(withPrincipal(r.Context(), p)))
		})
	}
}

// bearerToken extracts the credential from "Authorization: Bearer <token>".
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	return header[len(prefix):], true
}

// writeAccessDenied rejects the request. The response keeps the protocol's
// error content type and records the error name extension; the credential
// failure itself is never echoed back.
func writeAccessDenied(w http.ResponseWriter, r *http.Request) {
	routing.SetErrorName(r.Context(), "AccessDeniedException")
	w.Header().Set("Content-Type", "application/x-amz-json-1.1")
	w.WriteHeader(http.StatusForbidden)
}
