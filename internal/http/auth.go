package http

import (
	"context"
	"net/http"
	"strings"
)

// DefaultIdentityHeader is where the trusted front proxy puts the
// authenticated user id.
const DefaultIdentityHeader = "X-User-ID"

// Principal is the authenticated caller of a request.
type Principal struct {
	UserID string
}

// IdentityResolver extracts the caller identity from a request. The
// server trusts whatever the resolver returns; verifying credentials is
// the job of whatever sits in front of this service.
type IdentityResolver interface {
	Resolve(r *http.Request) (Principal, error)
}

// HeaderIdentity resolves the caller from a request header.
type HeaderIdentity struct {
	Header string
}

func NewHeaderIdentity(header string) HeaderIdentity {
	if strings.TrimSpace(header) == "" {
		header = DefaultIdentityHeader
	}
	return HeaderIdentity{Header: header}
}

func (h HeaderIdentity) Resolve(r *http.Request) (Principal, error) {
	id := strings.TrimSpace(r.Header.Get(h.Header))
	if id == "" {
		return Principal{}, errMissingIdentity
	}
	return Principal{UserID: id}, nil
}

type principalKey struct{}

func withPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext returns the authenticated caller stored by the
// identity middleware.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}
