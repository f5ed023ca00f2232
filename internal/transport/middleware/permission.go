package middleware

import (
	"log/slog"
	"net/http"

	"github.com/pcoutinho/legal-management/internal"
	"github.com/pcoutinho/legal-management/internal/authz"
)

// RequirePermission gates a route on a (resource, action) pair using the
// actor the auth middleware resolved. Services re-check inside the guarded
// use-case layer; this keeps obviously unauthorized traffic off them.
func RequirePermission(authorizer authz.Authorizer, resource, action string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := internal.ActorFromContext(r.Context())
			if !ok || actor == nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			if !authorizer.Authorize(actor, resource, action, internal.RequestContext(r.Context())) {
				slog.Warn("access denied: insufficient permissions",
					"actor_id", actor.ID,
					"resource", resource,
					"action", action)
				http.Error(w, "Forbidden: insufficient permissions", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
