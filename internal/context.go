package internal

import (
	"context"
	"time"

	"github.com/pcoutinho/legal-management/internal/authz"
)

type ctxKey string

const (
	ContextActorKey    ctxKey = "actor"
	ContextClientIPKey ctxKey = "clientIP"
)

func ActorFromContext(ctx context.Context) (*authz.Actor, bool) {
	a, ok := ctx.Value(ContextActorKey).(*authz.Actor)
	return a, ok
}

func ContextWithActor(ctx context.Context, actor *authz.Actor) context.Context {
	return context.WithValue(ctx, ContextActorKey, actor)
}

func ClientIPFromContext(ctx context.Context) string {
	if ip, ok := ctx.Value(ContextClientIPKey).(string); ok {
		return ip
	}
	return ""
}

func ContextWithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, ContextClientIPKey, ip)
}

// RequestContext builds the attribute context the permission resolver
// evaluates conditions against, from what the request carried.
func RequestContext(ctx context.Context) authz.Context {
	return authz.Context{
		Now:       time.Now(),
		IPAddress: ClientIPFromContext(ctx),
	}
}

// WithTimeout returns a context with timeout, defaulting to 5 seconds if duration is zero or negative.
func WithTimeout(ctx context.Context, duration time.Duration) (context.Context, context.CancelFunc) {
	if duration <= 0 {
		duration = 5 * time.Second
	}
	return context.WithTimeout(ctx, duration)
}
