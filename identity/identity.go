// Package identity reduces the authenticated identity attached to a request
// into a UserInfo snapshot for log enrichment.
package identity

import "context"

// Claim is a single (type, value) pair asserted about an identity.
type Claim struct {
	Type  string
	Value string
}

// Identity is the capability set the enricher needs from an authentication
// framework.
type Identity interface {
	IsAuthenticated() bool
	Name() string
	Claims() []Claim
}

// Principal is a plain in-memory Identity.
type Principal struct {
	UserName      string
	Authenticated bool
	ClaimSet      []Claim
}

func (p *Principal) IsAuthenticated() bool { return p != nil && p.Authenticated }
func (p *Principal) Name() string          { return p.UserName }
func (p *Principal) Claims() []Claim       { return p.ClaimSet }

type contextKey struct{}

// NewContext returns a copy of ctx carrying id.
func NewContext(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// FromContext returns the identity stored in ctx, or nil.
func FromContext(ctx context.Context) Identity {
	if ctx == nil {
		return nil
	}
	id, _ := ctx.Value(contextKey{}).(Identity)
	return id
}
