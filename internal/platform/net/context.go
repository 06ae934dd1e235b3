// Package net provides utilities for working with request contexts
package net

import (
	"context"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// ctxKey is an unexported key type for context values
type ctxKey string

const (
	keyVisitorKey ctxKey = "visitor_key"
	keySessionID  ctxKey = "session_id"
)

// WithRequest annotates context with common request scoped ids
func WithRequest(ctx context.Context, reqID, visitorKey string) context.Context {
	if reqID != "" {
		// set chi RequestID so chimw.GetReqID can retrieve it
		ctx = context.WithValue(ctx, chimw.RequestIDKey, reqID)
	}
	if visitorKey != "" {
		ctx = context.WithValue(ctx, keyVisitorKey, visitorKey)
	}
	return ctx
}

// WithSession annotates context with the client session id
func WithSession(ctx context.Context, sessionID string) context.Context {
	if sessionID != "" {
		ctx = context.WithValue(ctx, keySessionID, sessionID)
	}
	return ctx
}

// RequestID returns the request id on the context if present
func RequestID(ctx context.Context) string {
	if v := chimw.GetReqID(ctx); v != "" {
		return v
	}
	return ""
}

// VisitorKey returns the visitor key on the context if present
func VisitorKey(ctx context.Context) string {
	if v, ok := ctx.Value(keyVisitorKey).(string); ok {
		return v
	}
	return ""
}

// SessionID returns the session id on the context if present
func SessionID(ctx context.Context) string {
	if v, ok := ctx.Value(keySessionID).(string); ok {
		return v
	}
	return ""
}
