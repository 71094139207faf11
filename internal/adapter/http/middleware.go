package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/shiftwise/shiftwise/internal/service/logger"
	"github.com/shiftwise/shiftwise/internal/service/ratelimit"
	"github.com/shiftwise/shiftwise/internal/service/token"
)

type identityKey struct{}

// Identity is the authenticated caller context every compliance operation is
// attributed to. There is no ambient tenant: handlers read it here and pass
// it down explicitly.
type Identity struct {
	TenantID string
	ActorUID string
}

// IdentityFrom extracts the caller identity stored by the auth middleware.
func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}

// WithIdentity returns a context carrying the identity. Exported for handler
// tests.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// AuthMiddleware validates bearer identity tokens issued by the platform's
// auth service.
type AuthMiddleware struct {
	tokens *token.Service
}

// NewAuthMiddleware creates the auth middleware.
func NewAuthMiddleware(tokens *token.Service) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

// RequireIdentity rejects requests without a valid bearer token and stores
// the tenant/actor identity in the request context.
func (m *AuthMiddleware) RequireIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing bearer token")
			return
		}
		claims, err := m.tokens.ValidateIdentity(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid or expired token")
			return
		}
		ctx := WithIdentity(r.Context(), Identity{TenantID: claims.TenantID, ActorUID: claims.ActorUID})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RateLimitMiddleware applies a per-tenant fixed-window limit to wrapped
// routes.
type RateLimitMiddleware struct {
	limiter ratelimit.Limiter
	limit   int
	window  time.Duration
	logger  logger.Logger
}

// NewRateLimitMiddleware creates the rate limit middleware.
func NewRateLimitMiddleware(limiter ratelimit.Limiter, limit int, window time.Duration, log logger.Logger) *RateLimitMiddleware {
	return &RateLimitMiddleware{limiter: limiter, limit: limit, window: window, logger: log}
}

// Limit wraps a handler with the tenant-scoped rate limit.
func (m *RateLimitMiddleware) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := IdentityFrom(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing identity")
			return
		}
		key := "ratelimit:compliance:" + id.TenantID
		allowed, err := m.limiter.Allow(r.Context(), key, m.limit, m.window)
		if err != nil {
			// The limiter failing must not take the API down with it.
			m.logger.Error(r.Context(), "Rate limit check failed", err, map[string]interface{}{
				"tenant_id": id.TenantID,
			})
			next.ServeHTTP(w, r)
			return
		}
		if !allowed {
			writeError(w, http.StatusTooManyRequests, "RATE_LIMITED", "too many requests")
			return
		}
		next.ServeHTTP(w, r)
	})
}
