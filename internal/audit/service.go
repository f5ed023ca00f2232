package audit

import (
	"context"
	"log/slog"

	"github.com/pcoutinho/legal-management/internal"
	"github.com/pcoutinho/legal-management/internal/authz"
)

const resourceType = "audit_logs"

// Service exposes the read path over the audit trail, gated like every
// other resource. There is no write path here: rows only arrive through the
// recorder.
type Service struct {
	repo       Repository
	authorizer authz.Authorizer
	logger     *slog.Logger
}

func NewService(repo Repository, authorizer authz.Authorizer, logger *slog.Logger) *Service {
	return &Service{
		repo:       repo,
		authorizer: authorizer,
		logger:     logger,
	}
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*AuditLog, error) {
	actor, ok := internal.ActorFromContext(ctx)
	if !ok || !s.authorizer.Authorize(actor, resourceType, "read", internal.RequestContext(ctx)) {
		return nil, internal.ErrPermissionDenied
	}

	if limit <= 0 || limit > 200 {
		limit = 50
	}

	logs, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		s.logger.Error("failed to list audit logs", "error", err)
		return nil, err
	}
	return logs, nil
}
