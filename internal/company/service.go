package company

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

// Service is the guarded use-case layer for companies: every mutation is
// identity-resolved upstream, authorized here, committed in one transaction
// and audited off the critical path.
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

func (s *Service) Create(ctx context.Context, dto CreateCompanyDTO) (*Company, error) {
	actor, err := s.authorize(ctx, "create")
	if err != nil {
		return nil, err
	}

	if err := dto.Validate(); err != nil {
		return nil, err
	}

	now := time.Now()
	company := &Company{
		ID:          uuid.NewString(),
		Name:        dto.Name,
		CNPJ:        dto.CNPJ,
		IsActive:    true,
		OwnerID:     dto.OwnerID,
		CreatedByID: actor.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if dto.IsActive != nil {
		company.IsActive = *dto.IsActive
	}
	if company.OwnerID == "" {
		company.OwnerID = actor.ID
	}

	if err := s.repo.Create(ctx, company); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, internal.ErrDuplicateCNPJ
		}
		s.logger.Error("failed to create company", "error", err)
		return nil, internal.NewInternalError("failed to create company", err)
	}

	s.record(ctx, actor, "create", company.ID, map[string]any{
		"name":      company.Name,
		"cnpj":      company.CNPJ,
		"is_active": company.IsActive,
	})

	return company, nil
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Company, error) {
	if _, err := s.authorize(ctx, "read"); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.repo.List(ctx, limit, offset)
}

func (s *Service) Get(ctx context.Context, id string) (*CompanyDetail, error) {
	if _, err := s.authorize(ctx, "read"); err != nil {
		return nil, err
	}

	company, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapLookupError(err)
	}

	members, err := s.repo.MemberIDs(ctx, id)
	if err != nil {
		return nil, internal.NewInternalError("failed to load company members", err)
	}

	return &CompanyDetail{Company: company, MemberIDs: members}, nil
}

// Update applies only the fields present in the payload. An empty payload
// mutates nothing, still succeeds, and still audits with empty details.
func (s *Service) Update(ctx context.Context, id string, dto UpdateCompanyDTO) (*Company, error) {
	actor, err := s.authorize(ctx, "update")
	if err != nil {
		return nil, err
	}

	company, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapLookupError(err)
	}

	changes := map[string]any{}
	if dto.Name != nil {
		company.Name = *dto.Name
		changes["name"] = *dto.Name
	}
	if dto.IsActive != nil {
		company.IsActive = *dto.IsActive
		changes["is_active"] = *dto.IsActive
	}

	if len(changes) > 0 {
		company.UpdatedAt = time.Now()
		if err := s.repo.Update(ctx, company); err != nil {
			if database.IsUniqueViolation(err) {
				return nil, internal.ErrDuplicateCNPJ
			}
			return nil, internal.NewInternalError("failed to update company", err)
		}
	}

	s.record(ctx, actor, "update", id, changes)

	return company, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	actor, err := s.authorize(ctx, "delete")
	if err != nil {
		return err
	}

	company, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return s.mapLookupError(err)
	}

	if err := s.repo.SoftDelete(ctx, id, actor.ID); err != nil {
		return internal.NewInternalError("failed to delete company", err)
	}

	s.record(ctx, actor, "delete", id, map[string]any{
		"name":      company.Name,
		"cnpj":      company.CNPJ,
		"is_active": company.IsActive,
	})

	return nil
}

func (s *Service) AddMember(ctx context.Context, companyID string, dto MemberDTO) error {
	actor, err := s.authorize(ctx, "update")
	if err != nil {
		return err
	}
	if err := dto.Validate(); err != nil {
		return err
	}

	if _, err := s.repo.GetByID(ctx, companyID); err != nil {
		return s.mapLookupError(err)
	}

	if err := s.repo.AddMember(ctx, companyID, dto.UserID); err != nil {
		if database.IsUniqueViolation(err) {
			// already a member; treat as idempotent
			return nil
		}
		return internal.NewInternalError("failed to add company member", err)
	}

	s.record(ctx, actor, "update", companyID, map[string]any{"member_added": dto.UserID})
	return nil
}

func (s *Service) RemoveMember(ctx context.Context, companyID, userID string) error {
	actor, err := s.authorize(ctx, "update")
	if err != nil {
		return err
	}

	if _, err := s.repo.GetByID(ctx, companyID); err != nil {
		return s.mapLookupError(err)
	}

	if err := s.repo.RemoveMember(ctx, companyID, userID); err != nil {
		return internal.NewInternalError("failed to remove company member", err)
	}

	s.record(ctx, actor, "update", companyID, map[string]any{"member_removed": userID})
	return nil
}

func (s *Service) authorize(ctx context.Context, action string) (*authz.Actor, error) {
	actor, ok := internal.ActorFromContext(ctx)
	if !ok || actor == nil {
		return nil, internal.ErrPermissionDenied
	}
	if !s.authorizer.Authorize(actor, ResourceType, action, internal.RequestContext(ctx)) {
		s.logger.Warn("company operation denied",
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

func (s *Service) mapLookupError(err error) error {
	if database.IsNotFound(err) {
		return internal.ErrCompanyNotFound
	}
	if _, ok := internal.IsAppError(err); ok {
		return err
	}
	return internal.NewInternalError("company lookup failed", err)
}
