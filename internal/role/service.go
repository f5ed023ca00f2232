package role

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

// ActorInvalidator drops a cached actor snapshot after a grant mutation
// that targets a specific user.
type ActorInvalidator interface {
	InvalidateActor(userID string)
}

type Service struct {
	repo        Repository
	authorizer  authz.Authorizer
	recorder    audit.Recorder
	invalidator ActorInvalidator
	logger      *slog.Logger
}

func NewService(repo Repository, authorizer authz.Authorizer, recorder audit.Recorder, invalidator ActorInvalidator, logger *slog.Logger) *Service {
	return &Service{
		repo:        repo,
		authorizer:  authorizer,
		recorder:    recorder,
		invalidator: invalidator,
		logger:      logger,
	}
}

func (s *Service) Create(ctx context.Context, dto CreateRoleDTO) (*Role, error) {
	actor, err := s.authorize(ctx, "create")
	if err != nil {
		return nil, err
	}

	if err := dto.Validate(); err != nil {
		return nil, err
	}

	now := time.Now()
	role := &Role{
		ID:          uuid.NewString(),
		Name:        dto.Name,
		Description: dto.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, role); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, internal.ErrDuplicateRole
		}
		return nil, internal.NewInternalError("failed to create role", err)
	}

	s.record(ctx, actor, "create", role.ID, map[string]any{"name": role.Name})

	return role, nil
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Role, error) {
	if _, err := s.authorize(ctx, "read"); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.repo.List(ctx, limit, offset)
}

func (s *Service) Get(ctx context.Context, id string) (*RoleDetail, error) {
	if _, err := s.authorize(ctx, "read"); err != nil {
		return nil, err
	}

	role, err := s.lookup(ctx, id)
	if err != nil {
		return nil, err
	}

	permIDs, err := s.repo.PermissionIDs(ctx, id)
	if err != nil {
		return nil, internal.NewInternalError("failed to load role permissions", err)
	}

	return &RoleDetail{Role: role, PermissionIDs: permIDs}, nil
}

func (s *Service) Update(ctx context.Context, id string, dto UpdateRoleDTO) (*Role, error) {
	actor, err := s.authorize(ctx, "update")
	if err != nil {
		return nil, err
	}

	role, err := s.lookup(ctx, id)
	if err != nil {
		return nil, err
	}

	changes := map[string]any{}
	if dto.Name != nil {
		role.Name = *dto.Name
		changes["name"] = *dto.Name
	}
	if dto.Description != nil {
		role.Description = *dto.Description
		changes["description"] = *dto.Description
	}

	if len(changes) > 0 {
		role.UpdatedAt = time.Now()
		if err := s.repo.Update(ctx, role); err != nil {
			if database.IsUniqueViolation(err) {
				return nil, internal.ErrDuplicateRole
			}
			return nil, internal.NewInternalError("failed to update role", err)
		}
	}

	s.record(ctx, actor, "update", id, changes)

	return role, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	actor, err := s.authorize(ctx, "delete")
	if err != nil {
		return err
	}

	role, err := s.lookup(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return internal.NewInternalError("failed to delete role", err)
	}

	s.record(ctx, actor, "delete", id, map[string]any{"name": role.Name})

	return nil
}

func (s *Service) AddPermission(ctx context.Context, roleID string, dto PermissionGrantDTO) error {
	actor, err := s.authorize(ctx, "update")
	if err != nil {
		return err
	}
	if err := dto.Validate(); err != nil {
		return err
	}

	if _, err := s.lookup(ctx, roleID); err != nil {
		return err
	}

	if err := s.repo.AddPermission(ctx, roleID, dto.PermissionID); err != nil {
		if database.IsUniqueViolation(err) {
			return nil
		}
		return internal.NewInternalError("failed to add permission to role", err)
	}

	s.record(ctx, actor, "update", roleID, map[string]any{"permission_added": dto.PermissionID})
	return nil
}

func (s *Service) RemovePermission(ctx context.Context, roleID, permissionID string) error {
	actor, err := s.authorize(ctx, "update")
	if err != nil {
		return err
	}

	if _, err := s.lookup(ctx, roleID); err != nil {
		return err
	}

	if err := s.repo.RemovePermission(ctx, roleID, permissionID); err != nil {
		return internal.NewInternalError("failed to remove permission from role", err)
	}

	s.record(ctx, actor, "update", roleID, map[string]any{"permission_removed": permissionID})
	return nil
}

func (s *Service) AssignUser(ctx context.Context, roleID string, dto UserAssignmentDTO) error {
	actor, err := s.authorize(ctx, "update")
	if err != nil {
		return err
	}
	if err := dto.Validate(); err != nil {
		return err
	}

	if _, err := s.lookup(ctx, roleID); err != nil {
		return err
	}

	if err := s.repo.AssignUser(ctx, roleID, dto.UserID); err != nil {
		if database.IsUniqueViolation(err) {
			return nil
		}
		return internal.NewInternalError("failed to assign role to user", err)
	}
	s.invalidator.InvalidateActor(dto.UserID)

	s.record(ctx, actor, "update", roleID, map[string]any{"user_assigned": dto.UserID})
	return nil
}

func (s *Service) UnassignUser(ctx context.Context, roleID, userID string) error {
	actor, err := s.authorize(ctx, "update")
	if err != nil {
		return err
	}

	if _, err := s.lookup(ctx, roleID); err != nil {
		return err
	}

	if err := s.repo.UnassignUser(ctx, roleID, userID); err != nil {
		return internal.NewInternalError("failed to unassign role from user", err)
	}
	s.invalidator.InvalidateActor(userID)

	s.record(ctx, actor, "update", roleID, map[string]any{"user_unassigned": userID})
	return nil
}

func (s *Service) lookup(ctx context.Context, id string) (*Role, error) {
	role, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, internal.ErrRoleNotFound
		}
		return nil, internal.NewInternalError("role lookup failed", err)
	}
	return role, nil
}

func (s *Service) authorize(ctx context.Context, action string) (*authz.Actor, error) {
	actor, ok := internal.ActorFromContext(ctx)
	if !ok || actor == nil {
		return nil, internal.ErrPermissionDenied
	}
	if !s.authorizer.Authorize(actor, ResourceType, action, internal.RequestContext(ctx)) {
		s.logger.Warn("role operation denied",
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
