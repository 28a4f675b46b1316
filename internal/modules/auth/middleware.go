package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/georgemunganga/vendor-portal/internal/pkg/apperr"
	"github.com/georgemunganga/vendor-portal/internal/pkg/httpx"
	"github.com/google/uuid"
)

type contextKey string

const claimsKey contextKey = "admin_claims"

// Middleware rejects requests without a valid bearer session token.
func Middleware(service Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				httpx.Error(w, apperr.New(apperr.Unauthorized, "authentication required"))
				return
			}

			claims, err := service.ParseToken(token)
			if err != nil {
				httpx.Error(w, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

// WithClaims stores session claims in ctx.
func WithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// ClaimsFromContext returns the session claims set by Middleware.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(*Claims)
	return claims, ok
}

// AdminID returns the authenticated admin's id, or uuid.Nil.
func AdminID(ctx context.Context) uuid.UUID {
	claims, ok := ClaimsFromContext(ctx)
	if !ok {
		return uuid.Nil
	}
	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil
	}
	return id
}
