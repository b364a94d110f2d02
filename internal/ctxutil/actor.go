// Package ctxutil provides context utilities that can be safely imported anywhere.
// This package has no internal dependencies to avoid import cycles.
package ctxutil

import "context"

// ActorKey is the context key for the verified caller address.
// Exported so it can be used consistently across packages.
type ActorKey struct{}

// WithActor returns a context carrying the verified caller address.
// Every role-gated operation reads the caller from here rather than
// from any ambient "current sender" state.
func WithActor(ctx context.Context, addr string) context.Context {
	return context.WithValue(ctx, ActorKey{}, addr)
}

// ActorFromContext returns the caller address from context, or empty string if not set.
func ActorFromContext(ctx context.Context) string {
	if v := ctx.Value(ActorKey{}); v != nil {
		return v.(string)
	}
	return ""
}
