package http

import (
	"context"
	"net"
	"net/http"
	"strings"

	"github.com/vegatran/GaraManager-sub003/internal/inventory/domain"
	"github.com/vegatran/GaraManager-sub003/pkg/auth"
	"github.com/vegatran/GaraManager-sub003/pkg/logger"
)

type contextKey string

const actorKey contextKey = "actor"

// TokenValidator verifies bearer tokens.
type TokenValidator interface {
	Validate(raw string) (*auth.Claims, error)
}

// AuthMiddleware validates the bearer token and stores the resolved actor in
// the request context.
func AuthMiddleware(validator TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := auth.BearerToken(r.Header.Get("Authorization"))
			if err != nil {
				logger.Warn(r.Context()).Msg("Missing or malformed authorization header")
				respondJSON(w, http.StatusUnauthorized, Response{
					Success: false,
					Error:   "Authorization header required",
				})
				return
			}

			claims, err := validator.Validate(token)
			if err != nil {
				logger.Warn(r.Context()).Err(err).Msg("Invalid token")
				respondJSON(w, http.StatusUnauthorized, Response{
					Success: false,
					Error:   "Invalid token",
				})
				return
			}

			actor := domain.Actor{
				UserID:     claims.UserID,
				EmployeeID: claims.EmployeeID,
				Name:       claims.Username,
				Roles:      claims.Roles,
				IPAddress:  clientIP(r),
				UserAgent:  r.UserAgent(),
			}

			logger.Debug(r.Context()).
				Uint("user_id", actor.UserID).
				Str("username", actor.Name).
				Msg("User authenticated")

			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
		})
	}
}

// WithActor stores the caller identity on ctx.
func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

// ActorFromContext returns the caller identity set by AuthMiddleware.
func ActorFromContext(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorKey).(domain.Actor)
	return actor, ok
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		return strings.TrimSpace(first)
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
