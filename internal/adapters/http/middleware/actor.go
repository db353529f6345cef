package middleware

import (
	"context"
	"net/http"
	"strings"
)

// contextKey is an unexported type for context keys in this package.
type contextKey string

const actorContextKey contextKey = "actor"

// ActorHeader names the header an upstream gateway sets to the authenticated user id.
const ActorHeader = "X-Actor-ID"

// maxActorLength bounds the header value copied into audit events.
const maxActorLength = 128

// Actor returns middleware that reads the acting user from ActorHeader and
// stores it in the request context. It does NOT block anonymous requests;
// their actor is the empty string.
func Actor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor := strings.TrimSpace(r.Header.Get(ActorHeader))
		if len(actor) > maxActorLength {
			actor = actor[:maxActorLength]
		}
		if actor != "" {
			r = r.WithContext(ContextWithActor(r.Context(), actor))
		}
		next.ServeHTTP(w, r)
	})
}

// ActorFromContext returns the acting user id, or "" when none was supplied.
func ActorFromContext(ctx context.Context) string {
	actor, _ := ctx.Value(actorContextKey).(string)
	return actor
}

// ContextWithActor returns a new context carrying the actor id.
func ContextWithActor(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, actorContextKey, actor)
}
