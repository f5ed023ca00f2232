package permission

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/pcoutinho/legal-management/internal"
	"github.com/pcoutinho/legal-management/internal/audit"
	"github.com/pcoutinho/legal-management/internal/authz"
	"github.com/pcoutinho/legal-management/internal/core/database"
)

type Service struct {
	repo       Repository
	authorizer authz.Authorizer
	recorder   audit.Recorder
	logger     *slog.Logger
}

func NewService(repo Repository, authorizer authz.Authorizer, recorder audit.Recorder, logger *slog.Logger) *Service {
	return &Service{
		repo:       repo,
		authorizer: authorizer,
		recorder:   recorder,
		logger:     logger,
	}
}

func (s *Service) Create(ctx context.Context, dto CreatePermissionDTO) (*Permission, error) {
	actor, err := s.authorize(ctx, "create")
	if err != nil {
		return nil, err
	}

	if err := dto.Validate(); err != nil {
		return nil, err
	}

	now := time.Now()
	perm := &Permission{
		ID:          uuid.NewString(),
		Name:        dto.Name,
		Resource:    dto.Resource,
		Action:      dto.Action,
		Conditions:  dto.Conditions,
		Description: dto.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, perm); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, internal.ErrDuplicatePermission
		}
		return nil, internal.NewInternalError("failed to create permission", err)
	}

	s.record(ctx, actor, "create", perm.ID, map[string]any{
		"name":     perm.Name,
		"resource": perm.Resource,
		"action":   perm.Action,
	})

	return perm, nil
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Permission, error) {
	if _, err := s.authorize(ctx, "read"); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.repo.List(ctx, limit, offset)
}

func (s *Service) Get(ctx context.Context, id string) (*Permission, error) {
	if _, err := s.authorize(ctx, "read"); err != nil {
		return nil, err
	}
	return s.lookup(ctx, id)
}

// Update cannot change the (resource, action) pair; grants referencing
// the permission would silently change meaning. Create a new permission
// instead.
func (s *Service) Update(ctx context.Context, id string, dto UpdatePermissionDTO) (*Permission, error) {
	actor, err := s.authorize(ctx, "update")
	if err != nil {
		return nil, err
	}

	perm, err := s.lookup(ctx, id)
	if err != nil {
		return nil, err
	}

	changes := map[string]any{}
	if dto.Name != nil {
		perm.Name = *dto.Name
		changes["name"] = *dto.Name
	}
	if dto.Conditions != nil {
		perm.Conditions = *dto.Conditions
		changes["conditions"] = *dto.Conditions
	}
	if dto.Description != nil {
		perm.Description = *dto.Description
		changes["description"] = *dto.Description
	}

	if len(changes) > 0 {
		perm.UpdatedAt = time.Now()
		if err := s.repo.Update(ctx, perm); err != nil {
			if database.IsUniqueViolation(err) {
				return nil, internal.ErrDuplicatePermission
			}
			return nil, internal.NewInternalError("failed to update permission", err)
		}
	}

	s.record(ctx, actor, "update", id, changes)

	return perm, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	actor, err := s.authorize(ctx, "delete")
	if err != nil {
		return err
	}

	perm, err := s.lookup(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return internal.NewInternalError("failed to delete permission", err)
	}

	s.record(ctx, actor, "delete", id, map[string]any{
		"name":     perm.Name,
		"resource": perm.Resource,
		"action":   perm.Action,
	})

	return nil
}

func (s *Service) lookup(ctx context.Context, id string) (*Permission, error) {
	perm, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, internal.ErrPermissionNotFound
		}
		return nil, internal.NewInternalError("permission lookup failed", err)
	}
	return perm, nil
}

func (s *Service) authorize(ctx context.Context, action string) (*authz.Actor, error) {
	actor, ok := internal.ActorFromContext(ctx)
	if !ok || actor == nil {
		return nil, internal.ErrPermissionDenied
	}
	if !s.authorizer.Authorize(actor, ResourceType, action, internal.RequestContext(ctx)) {
		s.logger.Warn("permission operation denied",
			"actor_id", actor.ID,
			"action", action)
		return nil, internal.ErrPermissionDenied
	}
	return actor, nil
}

func (s *Service) record(ctx context.Context, actor *authz.Actor, action, resourceID string, details map[string]any) {
	s.recorder.Record(ctx, audit.Entry{
		ActorID:      &actor.ID,
		Action:       action,
		ResourceType: ResourceType,
		ResourceID:   &resourceID,
		Details:      details,
		IPAddress:    internal.ClientIPFromContext(ctx),
	})
}
