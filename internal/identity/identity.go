// Package identity carries the authenticated caller through a request.
// Authentication itself happens upstream; the lifecycle engine only asks
// a Resolver who is calling.
package identity

import (
	"context"
	"errors"
)

// ErrUnauthenticated is returned when no caller is attached to the
// context.
var ErrUnauthenticated = errors.New("unauthenticated")

// Identity is the resolved caller.
type Identity struct {
	ProfileID string
}

// Resolver resolves the caller of an operation.
type Resolver interface {
	ResolveCaller(ctx context.Context) (Identity, error)
}

type ctxKey struct{}

// WithCaller returns a copy of ctx carrying id.
func WithCaller(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext returns the caller stored by WithCaller.
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(Identity)
	if !ok || id.ProfileID == "" {
		return Identity{}, false
	}
	return id, true
}

// ContextResolver resolves the caller from the request context, where the
// JWT middleware put it.
type ContextResolver struct{}

// ResolveCaller implements Resolver.
func (ContextResolver) ResolveCaller(ctx context.Context) (Identity, error) {
	id, ok := FromContext(ctx)
	if !ok {
		return Identity{}, ErrUnauthenticated
	}
	return id, nil
}
