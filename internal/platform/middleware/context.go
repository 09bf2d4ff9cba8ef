package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// Context keys for values set by the middleware chain.
type contextKeyRequestID struct{}
type contextKeyUserID struct{}
type contextKeyEmail struct{}
type contextKeyName struct{}

var (
	ContextKeyRequestID = contextKeyRequestID{}
	ContextKeyUserID    = contextKeyUserID{}
	ContextKeyEmail     = contextKeyEmail{}
	ContextKeyName      = contextKeyName{}
)

// GetRequestID retrieves the request ID from the context.
func GetRequestID(ctx context.Context) string {
	id, ok := ctx.Value(ContextKeyRequestID).(string)
	if !ok {
		return ""
	}
	return id
}

// GetUserID retrieves the authenticated user ID from the context.
func GetUserID(ctx context.Context) string {
	id, ok := ctx.Value(ContextKeyUserID).(string)
	if !ok {
		return ""
	}
	return id
}

// GetEmail retrieves the authenticated user's email from the context.
func GetEmail(ctx context.Context) string {
	email, ok := ctx.Value(ContextKeyEmail).(string)
	if !ok {
		return ""
	}
	return email
}

// GetName retrieves the authenticated user's display name from the context.
func GetName(ctx context.Context) string {
	name, ok := ctx.Value(ContextKeyName).(string)
	if !ok {
		return ""
	}
	return name
}

// RequestID assigns a fresh request ID to every request.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), ContextKeyRequestID, uuid.NewString())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
