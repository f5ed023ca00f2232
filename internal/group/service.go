package group

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

// ActorInvalidator drops a cached actor snapshot after a membership
// change alters what the user may do.
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

func (s *Service) Create(ctx context.Context, dto CreateGroupDTO) (*Group, error) {
	actor, err := s.authorize(ctx, "create")
	if err != nil {
		return nil, err
	}

	if err := dto.Validate(); err != nil {
		return nil, err
	}

	now := time.Now()
	group := &Group{
		ID:          uuid.NewString(),
		Name:        dto.Name,
		Description: dto.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, group); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, internal.ErrDuplicateGroup
		}
		return nil, internal.NewInternalError("failed to create group", err)
	}

	s.record(ctx, actor, "create", group.ID, map[string]any{"name": group.Name})

	return group, nil
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Group, error) {
	if _, err := s.authorize(ctx, "read"); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.repo.List(ctx, limit, offset)
}

func (s *Service) Get(ctx context.Context, id string) (*GroupDetail, error) {
	if _, err := s.authorize(ctx, "read"); err != nil {
		return nil, err
	}

	group, err := s.lookup(ctx, id)
	if err != nil {
		return nil, err
	}

	roleIDs, err := s.repo.RoleIDs(ctx, id)
	if err != nil {
		return nil, internal.NewInternalError("failed to load group roles", err)
	}
	memberIDs, err := s.repo.UserIDs(ctx, id)
	if err != nil {
		return nil, internal.NewInternalError("failed to load group members", err)
	}

	return &GroupDetail{Group: group, RoleIDs: roleIDs, MemberIDs: memberIDs}, nil
}

func (s *Service) Update(ctx context.Context, id string, dto UpdateGroupDTO) (*Group, error) {
	actor, err := s.authorize(ctx, "update")
	if err != nil {
		return nil, err
	}

	group, err := s.lookup(ctx, id)
	if err != nil {
		return nil, err
	}

	changes := map[string]any{}
	if dto.Name != nil {
		group.Name = *dto.Name
		changes["name"] = *dto.Name
	}
	if dto.Description != nil {
		group.Description = *dto.Description
		changes["description"] = *dto.Description
	}

	if len(changes) > 0 {
		group.UpdatedAt = time.Now()
		if err := s.repo.Update(ctx, group); err != nil {
			if database.IsUniqueViolation(err) {
				return nil, internal.ErrDuplicateGroup
			}
			return nil, internal.NewInternalError("failed to update group", err)
		}
	}

	s.record(ctx, actor, "update", id, changes)

	return group, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	actor, err := s.authorize(ctx, "delete")
	if err != nil {
		return err
	}

	group, err := s.lookup(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return internal.NewInternalError("failed to delete group", err)
	}

	s.record(ctx, actor, "delete", id, map[string]any{"name": group.Name})

	return nil
}

func (s *Service) AddRole(ctx context.Context, groupID string, dto RoleGrantDTO) error {
	actor, err := s.authorize(ctx, "update")
	if err != nil {
		return err
	}
	if err := dto.Validate(); err != nil {
		return err
	}

	if _, err := s.lookup(ctx, groupID); err != nil {
		return err
	}

	if err := s.repo.AddRole(ctx, groupID, dto.RoleID); err != nil {
		if database.IsUniqueViolation(err) {
			return nil
		}
		return internal.NewInternalError("failed to add role to group", err)
	}

	s.record(ctx, actor, "update", groupID, map[string]any{"role_added": dto.RoleID})
	return nil
}

func (s *Service) RemoveRole(ctx context.Context, groupID, roleID string) error {
	actor, err := s.authorize(ctx, "update")
	if err != nil {
		return err
	}

	if _, err := s.lookup(ctx, groupID); err != nil {
		return err
	}

	if err := s.repo.RemoveRole(ctx, groupID, roleID); err != nil {
		return internal.NewInternalError("failed to remove role from group", err)
	}

	s.record(ctx, actor, "update", groupID, map[string]any{"role_removed": roleID})
	return nil
}

func (s *Service) AddUser(ctx context.Context, groupID string, dto MemberDTO) error {
	actor, err := s.authorize(ctx, "update")
	if err != nil {
		return err
	}
	if err := dto.Validate(); err != nil {
		return err
	}

	if _, err := s.lookup(ctx, groupID); err != nil {
		return err
	}

	if err := s.repo.AddUser(ctx, groupID, dto.UserID); err != nil {
		if database.IsUniqueViolation(err) {
			return nil
		}
		return internal.NewInternalError("failed to add user to group", err)
	}
	s.invalidator.InvalidateActor(dto.UserID)

	s.record(ctx, actor, "update", groupID, map[string]any{"user_added": dto.UserID})
	return nil
}

func (s *Service) RemoveUser(ctx context.Context, groupID, userID string) error {
	actor, err := s.authorize(ctx, "update")
	if err != nil {
		return err
	}

	if _, err := s.lookup(ctx, groupID); err != nil {
		return err
	}

	if err := s.repo.RemoveUser(ctx, groupID, userID); err != nil {
		return internal.NewInternalError("failed to remove user from group", err)
	}
	s.invalidator.InvalidateActor(userID)

	s.record(ctx, actor, "update", groupID, map[string]any{"user_removed": userID})
	return nil
}

func (s *Service) lookup(ctx context.Context, id string) (*Group, error) {
	group, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, internal.ErrGroupNotFound
		}
		return nil, internal.NewInternalError("group lookup failed", err)
	}
	return group, nil
}

func (s *Service) authorize(ctx context.Context, action string) (*authz.Actor, error) {
	actor, ok := internal.ActorFromContext(ctx)
	if !ok || actor == nil {
		return nil, internal.ErrPermissionDenied
	}
	if !s.authorizer.Authorize(actor, ResourceType, action, internal.RequestContext(ctx)) {
		s.logger.Warn("group operation denied",
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
