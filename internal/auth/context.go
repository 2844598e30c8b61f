package auth

import "context"

type claimsKey struct{}

// WithClaims returns a context carrying the authenticated identity.
func WithClaims(ctx context.Context, c *Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, c)
}

// FromContext returns the claims stored in ctx, or nil when unauthenticated.
func FromContext(ctx context.Context) *Claims {
	v, _ := ctx.Value(claimsKey{}).(*Claims)
	return v
}
