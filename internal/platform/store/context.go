package store

import "context"

type (
	visitorKey struct{}
	reqIDKey   struct{}
	adminKey   struct{}
)

// WithVisitor attaches a visitor key to the context
func WithVisitor(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, visitorKey{}, key)
}

// VisitorKey retrieves a visitor key from context if present
func VisitorKey(ctx context.Context) (string, bool) {
	v := ctx.Value(visitorKey{})
	if v == nil {
		return "", false
	}
	s, _ := v.(string)
	return s, s != ""
}

// WithAdmin marks the context as an admin/reporting caller
func WithAdmin(ctx context.Context) context.Context {
	return context.WithValue(ctx, adminKey{}, true)
}

// IsAdmin reports if the context is an admin/reporting caller
func IsAdmin(ctx context.Context) bool {
	v := ctx.Value(adminKey{})
	b, _ := v.(bool)
	return b
}

// WithRequestID attaches a request id to the context
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, reqIDKey{}, id)
}

// RequestID retrieves a request id from context if present
func RequestID(ctx context.Context) (string, bool) {
	v := ctx.Value(reqIDKey{})
	if v == nil {
		return "", false
	}
	s, _ := v.(string)
	return s, s != ""
}
