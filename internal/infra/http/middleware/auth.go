package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/xavierca1/frontdesk/internal/infra/session"
	"github.com/xavierca1/frontdesk/internal/logger"
	"github.com/xavierca1/frontdesk/internal/usecase"
)

type SessionParser interface {
	Parse(token string) (*session.Claims, error)
}

type actorKey struct{}

// RequireSession rejects requests without a valid bearer session token and
// stores the caller as a usecase.Actor in the context.
func RequireSession(parser SessionParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log := logger.FromContext(r.Context())

			authHeader := r.Header.Get("Authorization")
			scheme, token, found := strings.Cut(authHeader, " ")
			if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
				writeUnauthorized(w, "missing bearer token")
				return
			}

			claims, err := parser.Parse(strings.TrimSpace(token))
			if err != nil {
				log.Warn("invalid session token", zap.Error(err))
				writeUnauthorized(w, "invalid or expired session")
				return
			}

			actor := usecase.Actor{
				Username:     claims.Username,
				Chiropractor: claims.Chiropractor,
				Role:         claims.Role,
			}
			ctx := WithActor(r.Context(), actor)
			ctx = logger.WithContext(ctx, log.With(
				zap.String("username", actor.Username),
				zap.String("chiropractor", actor.Chiropractor),
			))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func WithActor(ctx context.Context, actor usecase.Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

func ActorFromContext(ctx context.Context) (usecase.Actor, bool) {
	actor, ok := ctx.Value(actorKey{}).(usecase.Actor)
	return actor, ok
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	writeJSONError(w, http.StatusUnauthorized, "unauthorized", message)
}

func writeJSONError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": code, "message": message})
}
