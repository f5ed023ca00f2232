package authz

import "log/slog"

// Authorizer decides whether an actor may perform an action on a resource.
type Authorizer interface {
	Authorize(actor *Actor, resource, action string, rctx Context) bool
}

// Engine is the attribute-based permission resolver. The model is
// allow-only with default deny: a grant from any of the three paths
// (direct, role, group role) satisfies the check, and nothing can
// subtract access. IsSuperuser is deliberately not consulted.
type Engine struct {
	logger *slog.Logger
}

func NewEngine(logger *slog.Logger) *Engine {
	return &Engine{logger: logger}
}

// Authorize walks the actor's grant graph and returns true on the first
// permission matching (resource, action) whose conditions hold. Order does
// not affect the outcome; the walk is a pure OR.
func (e *Engine) Authorize(actor *Actor, resource, action string, rctx Context) bool {
	if actor == nil {
		return false
	}

	for _, perm := range actor.DirectPermissions {
		if matches(perm, resource, action, rctx) {
			return true
		}
	}

	for _, role := range actor.Roles {
		for _, perm := range role.Permissions {
			if matches(perm, resource, action, rctx) {
				return true
			}
		}
	}

	for _, group := range actor.Groups {
		for _, role := range group.Roles {
			for _, perm := range role.Permissions {
				if matches(perm, resource, action, rctx) {
					return true
				}
			}
		}
	}

	if e.logger != nil {
		e.logger.Debug("authorization denied",
			"actor_id", actor.ID,
			"resource", resource,
			"action", action)
	}

	return false
}

func matches(perm Permission, resource, action string, rctx Context) bool {
	return perm.Resource == resource &&
		perm.Action == action &&
		Evaluate(perm.Conditions, rctx)
}
