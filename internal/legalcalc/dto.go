package legalcalc

import (
	"time"

	"github.com/pcoutinho/legal-management/internal"
)

type CreateCalculationDTO struct {
	CalculationType string     `json:"calculation_type"`
	Description     *string    `json:"description,omitempty"`
	LegalCaseID     string     `json:"legal_case_id"`
	CalculationDate *time.Time `json:"calculation_date,omitempty"`

	NumberOfPayments *int  `json:"number_of_payments,omitempty"`
	PaymentDates     []any `json:"payment_dates,omitempty"`
	PaymentAmounts   []any `json:"payment_amounts,omitempty"`

	NominalMoralDamage     *float64   `json:"nominal_moral_damage,omitempty"`
	MoralInterestStartDate *time.Time `json:"moral_interest_start_date,omitempty"`
	MoralIndexStartDate    *time.Time `json:"moral_index_start_date,omitempty"`
	MoralEndDate           *time.Time `json:"moral_end_date,omitempty"`
	MoralIndexType         *string    `json:"moral_index_type,omitempty"`
	MoralInterestIndexType *string    `json:"moral_interest_index_type,omitempty"`

	CorrectedMoralValue    float64 `json:"corrected_moral_value,omitempty"`
	MoralInterestValue     float64 `json:"moral_interest_value,omitempty"`
	MoralTotalUpdatedValue float64 `json:"moral_total_updated_value,omitempty"`

	NominalMaterialDamage     *float64   `json:"nominal_material_damage,omitempty"`
	MaterialInterestStartDate *time.Time `json:"material_interest_start_date,omitempty"`
	MaterialIndexStartDate    *time.Time `json:"material_index_start_date,omitempty"`
	MaterialEndDate           *time.Time `json:"material_end_date,omitempty"`
	MaterialIndexType         *string    `json:"material_index_type,omitempty"`
	MaterialInterestIndexType *string    `json:"material_interest_index_type,omitempty"`

	CorrectedMaterialValue    float64 `json:"corrected_material_value,omitempty"`
	MaterialInterestValue     float64 `json:"material_interest_value,omitempty"`
	MaterialTotalUpdatedValue float64 `json:"material_total_updated_value,omitempty"`

	TotalJudgementAmount         float64 `json:"total_judgement_amount,omitempty"`
	TotalJudgmentWithoutInterest float64 `json:"total_judgment_without_interest,omitempty"`
	TotalInterestAmount          float64 `json:"total_interest_amount,omitempty"`
}

func (d CreateCalculationDTO) Validate() error {
	if d.CalculationType == "" {
		return internal.NewValidationError("calculation_type is required", internal.ErrCodeValidationFailed)
	}
	if d.LegalCaseID == "" {
		return internal.NewValidationError("legal_case_id is required", internal.ErrCodeValidationFailed)
	}
	if d.Description != nil && len(*d.Description) > 140 {
		return internal.NewValidationError("description must be at most 140 characters", internal.ErrCodeValidationFailed)
	}
	if len(d.PaymentDates) != len(d.PaymentAmounts) {
		return internal.NewValidationError("payment_dates and payment_amounts must have the same length", internal.ErrCodeValidationFailed)
	}
	return nil
}

// UpdateCalculationDTO uses pointers so absent fields are left untouched.
// The owning case cannot change.
type UpdateCalculationDTO struct {
	Description     *string    `json:"description,omitempty"`
	CalculationDate *time.Time `json:"calculation_date,omitempty"`

	CorrectedMoralValue    *float64 `json:"corrected_moral_value,omitempty"`
	MoralInterestValue     *float64 `json:"moral_interest_value,omitempty"`
	MoralTotalUpdatedValue *float64 `json:"moral_total_updated_value,omitempty"`

	CorrectedMaterialValue    *float64 `json:"corrected_material_value,omitempty"`
	MaterialInterestValue     *float64 `json:"material_interest_value,omitempty"`
	MaterialTotalUpdatedValue *float64 `json:"material_total_updated_value,omitempty"`

	TotalJudgementAmount         *float64 `json:"total_judgement_amount,omitempty"`
	TotalJudgmentWithoutInterest *float64 `json:"total_judgment_without_interest,omitempty"`
	TotalInterestAmount          *float64 `json:"total_interest_amount,omitempty"`
}

func (d UpdateCalculationDTO) Validate() error {
	if d.Description != nil && len(*d.Description) > 140 {
		return internal.NewValidationError("description must be at most 140 characters", internal.ErrCodeValidationFailed)
	}
	return nil
}
