package auth

import "context"

type ctxKey string

const (
	uidKey    ctxKey = "uid"
	claimsKey ctxKey = "claims"
)

// WithUID stores the authenticated user id on the context. Exported so
// tests can exercise handlers without going through the middleware.
func WithUID(ctx context.Context, uid string) context.Context {
	return context.WithValue(ctx, uidKey, uid)
}

// UIDFromContext returns the authenticated user id, or "" when the
// request did not pass through Authenticate.
func UIDFromContext(ctx context.Context) string {
	uid, _ := ctx.Value(uidKey).(string)
	return uid
}

func withClaims(ctx context.Context, c *Claims) context.Context {
	return context.WithValue(ctx, claimsKey, c)
}

func ClaimsFromContext(ctx context.Context) *Claims {
	c, _ := ctx.Value(claimsKey).(*Claims)
	return c
}
