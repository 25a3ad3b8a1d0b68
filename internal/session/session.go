// Package session identifies who a request acts for: the browser session
// that owns anonymous state, and the signed-in customer if there is one.
package session

import "context"

type Owner struct {
	Scope      string
	CustomerID string
	Email      string
}

func (o Owner) Authenticated() bool {
	return o.CustomerID != ""
}

type ownerKey struct{}

func WithOwner(ctx context.Context, owner Owner) context.Context {
	return context.WithValue(ctx, ownerKey{}, owner)
}

func FromContext(ctx context.Context) Owner {
	owner, _ := ctx.Value(ownerKey{}).(Owner)
	return owner
}
