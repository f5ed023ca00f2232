package legalcalc

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

func (s *Service) Create(ctx context.Context, dto CreateCalculationDTO) (*LegalCalculation, error) {
	actor, err := s.authorize(ctx, "create")
	if err != nil {
		return nil, err
	}

	if err := dto.Validate(); err != nil {
		return nil, err
	}

	exists, err := s.repo.CaseExists(ctx, dto.LegalCaseID)
	if err != nil {
		return nil, internal.NewInternalError("legal case lookup failed", err)
	}
	if !exists {
		return nil, internal.ErrLegalCaseNotFound
	}

	now := time.Now()
	calc := &LegalCalculation{
		ID:              uuid.NewString(),
		CalculationType: dto.CalculationType,
		Description:     dto.Description,
		LegalCaseID:     dto.LegalCaseID,
		CalculationDate: dto.CalculationDate,

		NumberOfPayments: dto.NumberOfPayments,
		PaymentDates:     dto.PaymentDates,
		PaymentAmounts:   dto.PaymentAmounts,

		NominalMoralDamage:     dto.NominalMoralDamage,
		MoralInterestStartDate: dto.MoralInterestStartDate,
		MoralIndexStartDate:    dto.MoralIndexStartDate,
		MoralEndDate:           dto.MoralEndDate,
		MoralIndexType:         dto.MoralIndexType,
		MoralInterestIndexType: dto.MoralInterestIndexType,

		CorrectedMoralValue:    dto.CorrectedMoralValue,
		MoralInterestValue:     dto.MoralInterestValue,
		MoralTotalUpdatedValue: dto.MoralTotalUpdatedValue,

		NominalMaterialDamage:     dto.NominalMaterialDamage,
		MaterialInterestStartDate: dto.MaterialInterestStartDate,
		MaterialIndexStartDate:    dto.MaterialIndexStartDate,
		MaterialEndDate:           dto.MaterialEndDate,
		MaterialIndexType:         dto.MaterialIndexType,
		MaterialInterestIndexType: dto.MaterialInterestIndexType,

		CorrectedMaterialValue:    dto.CorrectedMaterialValue,
		MaterialInterestValue:     dto.MaterialInterestValue,
		MaterialTotalUpdatedValue: dto.MaterialTotalUpdatedValue,

		TotalJudgementAmount:         dto.TotalJudgementAmount,
		TotalJudgmentWithoutInterest: dto.TotalJudgmentWithoutInterest,
		TotalInterestAmount:          dto.TotalInterestAmount,

		CreatedByID: &actor.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, calc); err != nil {
		s.logger.Error("failed to create legal calculation", "error", err)
		return nil, internal.NewInternalError("failed to create legal calculation", err)
	}

	s.record(ctx, actor, "create", calc.ID, map[string]any{
		"legal_case_id":    calc.LegalCaseID,
		"calculation_type": calc.CalculationType,
	})

	return calc, nil
}

func (s *Service) ListByCase(ctx context.Context, legalCaseID string, limit, offset int) ([]*LegalCalculation, error) {
	if _, err := s.authorize(ctx, "read"); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.repo.ListByCase(ctx, legalCaseID, limit, offset)
}

func (s *Service) Get(ctx context.Context, id string) (*LegalCalculation, error) {
	if _, err := s.authorize(ctx, "read"); err != nil {
		return nil, err
	}
	return s.lookup(ctx, id)
}

func (s *Service) Update(ctx context.Context, id string, dto UpdateCalculationDTO) (*LegalCalculation, error) {
	actor, err := s.authorize(ctx, "update")
	if err != nil {
		return nil, err
	}

	if err := dto.Validate(); err != nil {
		return nil, err
	}

	calc, err := s.lookup(ctx, id)
	if err != nil {
		return nil, err
	}

	changes := map[string]any{}
	if dto.Description != nil {
		calc.Description = dto.Description
		changes["description"] = *dto.Description
	}
	if dto.CalculationDate != nil {
		calc.CalculationDate = dto.CalculationDate
		changes["calculation_date"] = *dto.CalculationDate
	}
	if dto.CorrectedMoralValue != nil {
		calc.CorrectedMoralValue = *dto.CorrectedMoralValue
		changes["corrected_moral_value"] = *dto.CorrectedMoralValue
	}
	if dto.MoralInterestValue != nil {
		calc.MoralInterestValue = *dto.MoralInterestValue
		changes["moral_interest_value"] = *dto.MoralInterestValue
	}
	if dto.MoralTotalUpdatedValue != nil {
		calc.MoralTotalUpdatedValue = *dto.MoralTotalUpdatedValue
		changes["moral_total_updated_value"] = *dto.MoralTotalUpdatedValue
	}
	if dto.CorrectedMaterialValue != nil {
		calc.CorrectedMaterialValue = *dto.CorrectedMaterialValue
		changes["corrected_material_value"] = *dto.CorrectedMaterialValue
	}
	if dto.MaterialInterestValue != nil {
		calc.MaterialInterestValue = *dto.MaterialInterestValue
		changes["material_interest_value"] = *dto.MaterialInterestValue
	}
	if dto.MaterialTotalUpdatedValue != nil {
		calc.MaterialTotalUpdatedValue = *dto.MaterialTotalUpdatedValue
		changes["material_total_updated_value"] = *dto.MaterialTotalUpdatedValue
	}
	if dto.TotalJudgementAmount != nil {
		calc.TotalJudgementAmount = *dto.TotalJudgementAmount
		changes["total_judgement_amount"] = *dto.TotalJudgementAmount
	}
	if dto.TotalJudgmentWithoutInterest != nil {
		calc.TotalJudgmentWithoutInterest = *dto.TotalJudgmentWithoutInterest
		changes["total_judgment_without_interest"] = *dto.TotalJudgmentWithoutInterest
	}
	if dto.TotalInterestAmount != nil {
		calc.TotalInterestAmount = *dto.TotalInterestAmount
		changes["total_interest_amount"] = *dto.TotalInterestAmount
	}

	if len(changes) > 0 {
		calc.UpdatedAt = time.Now()
		if err := s.repo.Update(ctx, calc); err != nil {
			return nil, internal.NewInternalError("failed to update legal calculation", err)
		}
	}

	s.record(ctx, actor, "update", id, changes)

	return calc, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	actor, err := s.authorize(ctx, "delete")
	if err != nil {
		return err
	}

	calc, err := s.lookup(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return internal.NewInternalError("failed to delete legal calculation", err)
	}

	s.record(ctx, actor, "delete", id, map[string]any{
		"legal_case_id":    calc.LegalCaseID,
		"calculation_type": calc.CalculationType,
	})

	return nil
}

func (s *Service) lookup(ctx context.Context, id string) (*LegalCalculation, error) {
	calc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, internal.ErrCalculationNotFound
		}
		return nil, internal.NewInternalError("legal calculation lookup failed", err)
	}
	return calc, nil
}

func (s *Service) authorize(ctx context.Context, action string) (*authz.Actor, error) {
	actor, ok := internal.ActorFromContext(ctx)
	if !ok || actor == nil {
		return nil, internal.ErrPermissionDenied
	}
	if !s.authorizer.Authorize(actor, ResourceType, action, internal.RequestContext(ctx)) {
		s.logger.Warn("legal calculation operation denied",
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
