package legalcase

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

func (s *Service) Create(ctx context.Context, dto CreateLegalCaseDTO) (*LegalCase, error) {
	actor, err := s.authorize(ctx, "create")
	if err != nil {
		return nil, err
	}

	if err := dto.Validate(); err != nil {
		return nil, err
	}

	now := time.Now()
	lc := &LegalCase{
		ID:          uuid.NewString(),
		CaseNumber:  dto.CaseNumber,
		CreatedByID: actor.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	dto.CaseFieldsDTO.apply(lc)

	if err := s.repo.Create(ctx, lc); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, internal.ErrDuplicateCaseNumber
		}
		s.logger.Error("failed to create legal case", "error", err)
		return nil, internal.NewInternalError("failed to create legal case", err)
	}

	s.record(ctx, actor, "create", lc.ID, map[string]any{"case_number": lc.CaseNumber})

	return lc, nil
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*LegalCase, error) {
	if _, err := s.authorize(ctx, "read"); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.repo.List(ctx, limit, offset)
}

func (s *Service) Get(ctx context.Context, id string) (*LegalCase, error) {
	if _, err := s.authorize(ctx, "read"); err != nil {
		return nil, err
	}
	return s.lookup(ctx, id)
}

func (s *Service) Update(ctx context.Context, id string, dto UpdateLegalCaseDTO) (*LegalCase, error) {
	actor, err := s.authorize(ctx, "update")
	if err != nil {
		return nil, err
	}

	if err := dto.Validate(); err != nil {
		return nil, err
	}

	lc, err := s.lookup(ctx, id)
	if err != nil {
		return nil, err
	}

	changed := dto.CaseFieldsDTO.apply(lc)
	if len(changed) > 0 {
		lc.UpdatedAt = time.Now()
		if err := s.repo.Update(ctx, lc); err != nil {
			return nil, internal.NewInternalError("failed to update legal case", err)
		}
	}

	details := map[string]any{}
	if len(changed) > 0 {
		details["fields"] = changed
	}
	s.record(ctx, actor, "update", id, details)

	return lc, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	actor, err := s.authorize(ctx, "delete")
	if err != nil {
		return err
	}

	lc, err := s.lookup(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.SoftDelete(ctx, id, actor.ID); err != nil {
		return internal.NewInternalError("failed to delete legal case", err)
	}

	s.record(ctx, actor, "delete", id, map[string]any{"case_number": lc.CaseNumber})

	return nil
}

func (s *Service) lookup(ctx context.Context, id string) (*LegalCase, error) {
	lc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, internal.ErrLegalCaseNotFound
		}
		return nil, internal.NewInternalError("legal case lookup failed", err)
	}
	return lc, nil
}

func (s *Service) authorize(ctx context.Context, action string) (*authz.Actor, error) {
	actor, ok := internal.ActorFromContext(ctx)
	if !ok || actor == nil {
		return nil, internal.ErrPermissionDenied
	}
	if !s.authorizer.Authorize(actor, ResourceType, action, internal.RequestContext(ctx)) {
		s.logger.Warn("legal case operation denied",
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
