package auth

import "context"

// Identity is the authenticated principal bound to a request after the
// resolver has verified the bearer token and looked up the user.
type Identity struct {
	UserID   string
	Username string
}

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

// identityContextKey is the context key for storing the Identity.
const identityContextKey contextKey = "identity"

// ContextWithIdentity adds the Identity to the context.
func ContextWithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, id)
}

// IdentityFromContext retrieves the Identity from the context.
// Returns nil if not present.
func IdentityFromContext(ctx context.Context) *Identity {
	id, ok := ctx.Value(identityContextKey).(*Identity)
	if !ok {
		return nil
	}
	return id
}
