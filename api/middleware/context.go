package middleware

import "context"

type contextKey string

const (
	ctxUserID    contextKey = "user_id"
	ctxRole      contextKey = "actor_role"
	ctxContact   contextKey = "contact"
	ctxSessionID contextKey = "session_id"
	ctxClientKey contextKey = "client_key"
)

func stringValue(ctx context.Context, key contextKey) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(key).(string); ok {
		return v
	}
	return ""
}

func UserIDFromContext(ctx context.Context) string {
	return stringValue(ctx, ctxUserID)
}

func RoleFromContext(ctx context.Context) string {
	return stringValue(ctx, ctxRole)
}

// ContactFromContext returns the verified contact of the signed-in customer.
func ContactFromContext(ctx context.Context) string {
	return stringValue(ctx, ctxContact)
}

// SessionIDFromContext returns the token jti, which is the session id.
func SessionIDFromContext(ctx context.Context) string {
	return stringValue(ctx, ctxSessionID)
}

// ClientKeyFromContext returns the browser-scoped key that owns the cart.
func ClientKeyFromContext(ctx context.Context) string {
	return stringValue(ctx, ctxClientKey)
}

// WithUserID injects the user identifier into the context.
func WithUserID(ctx context.Context, userID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxUserID, userID)
}

// WithClientKey injects the client key into the context.
func WithClientKey(ctx context.Context, clientKey string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxClientKey, clientKey)
}
