package user

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

// PasswordHasher abstracts password hashing so the auth layer owns the
// bcrypt cost in one place.
type PasswordHasher interface {
	HashPassword(password string) (string, error)
}

// ActorInvalidator drops a cached actor snapshot after a mutation that
// changes what the actor may do.
type ActorInvalidator interface {
	InvalidateActor(userID string)
}

type Service struct {
	repo        Repository
	authorizer  authz.Authorizer
	recorder    audit.Recorder
	hasher      PasswordHasher
	invalidator ActorInvalidator
	logger      *slog.Logger
}

func NewService(repo Repository, authorizer authz.Authorizer, recorder audit.Recorder, hasher PasswordHasher, invalidator ActorInvalidator, logger *slog.Logger) *Service {
	return &Service{
		repo:        repo,
		authorizer:  authorizer,
		recorder:    recorder,
		hasher:      hasher,
		invalidator: invalidator,
		logger:      logger,
	}
}

// Signup is the one unauthenticated write: self-registration. The new
// account starts active and never privileged.
func (s *Service) Signup(ctx context.Context, dto SignupDTO) (*User, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	hash, err := s.hasher.HashPassword(dto.Password)
	if err != nil {
		return nil, internal.NewInternalError("failed to hash password", err)
	}

	now := time.Now()
	u := &User{
		ID:           uuid.NewString(),
		Username:     dto.Username,
		Email:        dto.Email,
		FullName:     dto.FullName,
		PasswordHash: hash,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, u); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, internal.ErrDuplicateUser
		}
		s.logger.Error("failed to create user", "error", err)
		return nil, internal.NewInternalError("failed to create user", err)
	}

	s.recorder.Record(ctx, audit.Entry{
		ActorID:      &u.ID,
		Action:       "signup",
		ResourceType: ResourceType,
		ResourceID:   &u.ID,
		Details:      map[string]any{"username": u.Username, "email": u.Email},
		IPAddress:    internal.ClientIPFromContext(ctx),
	})

	return u, nil
}

func (s *Service) Create(ctx context.Context, dto CreateUserDTO) (*User, error) {
	actor, err := s.authorize(ctx, "create")
	if err != nil {
		return nil, err
	}

	if err := dto.Validate(); err != nil {
		return nil, err
	}

	hash, err := s.hasher.HashPassword(dto.Password)
	if err != nil {
		return nil, internal.NewInternalError("failed to hash password", err)
	}

	now := time.Now()
	u := &User{
		ID:           uuid.NewString(),
		Username:     dto.Username,
		Email:        dto.Email,
		FullName:     dto.FullName,
		PasswordHash: hash,
		IsActive:     true,
		IsSuperuser:  dto.IsSuperuser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if dto.IsActive != nil {
		u.IsActive = *dto.IsActive
	}

	if err := s.repo.Create(ctx, u); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, internal.ErrDuplicateUser
		}
		return nil, internal.NewInternalError("failed to create user", err)
	}

	s.record(ctx, actor, "create", u.ID, map[string]any{
		"username":     u.Username,
		"email":        u.Email,
		"is_superuser": u.IsSuperuser,
	})

	return u, nil
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*User, error) {
	if _, err := s.authorize(ctx, "read"); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.repo.List(ctx, limit, offset)
}

func (s *Service) Get(ctx context.Context, id string) (*User, error) {
	if _, err := s.authorize(ctx, "read"); err != nil {
		return nil, err
	}
	return s.lookup(ctx, id)
}

// Me returns the caller's own record with the session's resolved role and
// group names. No permission grant is needed to read yourself.
func (s *Service) Me(ctx context.Context) (*MeView, error) {
	actor, ok := internal.ActorFromContext(ctx)
	if !ok || actor == nil {
		return nil, internal.ErrPermissionDenied
	}

	u, err := s.lookup(ctx, actor.ID)
	if err != nil {
		return nil, err
	}

	view := &MeView{User: u, Roles: []string{}, Groups: []string{}}
	for _, r := range actor.Roles {
		view.Roles = append(view.Roles, r.Name)
	}
	for _, g := range actor.Groups {
		view.Groups = append(view.Groups, g.Name)
	}
	return view, nil
}

func (s *Service) Update(ctx context.Context, id string, dto UpdateUserDTO) (*User, error) {
	actor, err := s.authorize(ctx, "update")
	if err != nil {
		return nil, err
	}

	if err := dto.Validate(); err != nil {
		return nil, err
	}

	u, err := s.lookup(ctx, id)
	if err != nil {
		return nil, err
	}

	changes := map[string]any{}
	if dto.Email != nil {
		u.Email = *dto.Email
		changes["email"] = *dto.Email
	}
	if dto.FullName != nil {
		u.FullName = *dto.FullName
		changes["full_name"] = *dto.FullName
	}
	if dto.Password != nil {
		hash, err := s.hasher.HashPassword(*dto.Password)
		if err != nil {
			return nil, internal.NewInternalError("failed to hash password", err)
		}
		u.PasswordHash = hash
		changes["password"] = "changed"
	}
	if dto.IsActive != nil {
		u.IsActive = *dto.IsActive
		changes["is_active"] = *dto.IsActive
	}
	if dto.IsSuperuser != nil {
		u.IsSuperuser = *dto.IsSuperuser
		changes["is_superuser"] = *dto.IsSuperuser
	}

	if len(changes) > 0 {
		u.UpdatedAt = time.Now()
		if err := s.repo.Update(ctx, u); err != nil {
			if database.IsUniqueViolation(err) {
				return nil, internal.ErrDuplicateUser
			}
			return nil, internal.NewInternalError("failed to update user", err)
		}
		s.invalidator.InvalidateActor(id)
	}

	s.record(ctx, actor, "update", id, changes)

	return u, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	actor, err := s.authorize(ctx, "delete")
	if err != nil {
		return err
	}

	u, err := s.lookup(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return internal.NewInternalError("failed to delete user", err)
	}
	s.invalidator.InvalidateActor(id)

	s.record(ctx, actor, "delete", id, map[string]any{
		"username": u.Username,
		"email":    u.Email,
	})

	return nil
}

func (s *Service) lookup(ctx context.Context, id string) (*User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, internal.ErrUserNotFound
		}
		return nil, internal.NewInternalError("user lookup failed", err)
	}
	return u, nil
}

func (s *Service) authorize(ctx context.Context, action string) (*authz.Actor, error) {
	actor, ok := internal.ActorFromContext(ctx)
	if !ok || actor == nil {
		return nil, internal.ErrPermissionDenied
	}
	if !s.authorizer.Authorize(actor, ResourceType, action, internal.RequestContext(ctx)) {
		s.logger.Warn("user operation denied",
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
