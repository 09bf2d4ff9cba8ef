package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
)

// TokenVerifier validates a bearer access token and extracts its claims.
type TokenVerifier interface {
	VerifyAccess(tokenString string) (*BearerClaims, error)
}

// BearerClaims are the subject claims the middleware places in context.
type BearerClaims struct {
	UserID string
	Email  string
	Name   string
}

// RequireAuth guards API routes with bearer-token authentication. Any
// verification failure collapses to a single invalid_token response;
// expired and tampered tokens are indistinguishable to the caller.
func RequireAuth(verifier TokenVerifier, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok || token == "" {
				logger.WarnContext(r.Context(), "unauthorized access - missing token",
					"request_id", GetRequestID(r.Context()),
				)
				writeInvalidToken(w, "Missing or invalid authorization header")
				return
			}

			claims, err := verifier.VerifyAccess(token)
			if err != nil {
				logger.WarnContext(r.Context(), "unauthorized access - invalid token",
					"request_id", GetRequestID(r.Context()),
					"error", err,
				)
				writeInvalidToken(w, "Invalid or expired token")
				return
			}

			ctx := r.Context()
			ctx = context.WithValue(ctx, ContextKeyUserID, claims.UserID)
			ctx = context.WithValue(ctx, ContextKeyEmail, claims.Email)
			ctx = context.WithValue(ctx, ContextKeyName, claims.Name)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeInvalidToken(w http.ResponseWriter, description string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"invalid_token","error_description":"` + description + `"}`))
}
