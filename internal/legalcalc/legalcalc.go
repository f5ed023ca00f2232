package legalcalc

import (
	"context"
	"time"

	"github.com/pcoutinho/legal-management/internal/core/database"
)

// ResourceType is the authorization key legal calculations are gated under.
const ResourceType = "legal_calculations"

// LegalCalculation is one damages-update computation attached to a legal
// case: nominal amounts brought to present value by a monetary index plus
// interest, with per-regime accumulators kept for auditability.
type LegalCalculation struct {
	ID              string     `json:"id" gorm:"primaryKey;size:36"`
	CalculationType string     `json:"calculation_type" gorm:"size:50;not null"`
	Description     *string    `json:"description,omitempty" gorm:"size:140"`
	LegalCaseID     string     `json:"legal_case_id" gorm:"size:36;index;not null"`
	CalculationDate *time.Time `json:"calculation_date,omitempty"`

	NumberOfPayments *int               `json:"number_of_payments,omitempty"`
	PaymentDates     database.JSONSlice `json:"payment_dates,omitempty" gorm:"type:jsonb"`
	PaymentAmounts   database.JSONSlice `json:"payment_amounts,omitempty" gorm:"type:jsonb"`

	NominalMoralDamage     *float64   `json:"nominal_moral_damage,omitempty"`
	MoralInterestStartDate *time.Time `json:"moral_interest_start_date,omitempty"`
	MoralIndexStartDate    *time.Time `json:"moral_index_start_date,omitempty"`
	MoralEndDate           *time.Time `json:"moral_end_date,omitempty"`
	MoralIndexType         *string    `json:"moral_index_type,omitempty" gorm:"size:20"`
	MoralInterestIndexType *string    `json:"moral_interest_index_type,omitempty" gorm:"size:20"`

	CorrectedMoralValue    float64 `json:"corrected_moral_value" gorm:"default:0"`
	MoralInterestValue     float64 `json:"moral_interest_value" gorm:"default:0"`
	MoralTotalUpdatedValue float64 `json:"moral_total_updated_value" gorm:"default:0"`

	AccumulatedMoralIndex         float64 `json:"accumulated_moral_index" gorm:"default:0"`
	AccumulatedMoralInterest1Pct  float64 `json:"accumulated_moral_interest_1pct" gorm:"default:0"`
	AccumulatedMoralInterestSelic float64 `json:"accumulated_moral_interest_selic" gorm:"default:0"`
	AccumulatedMoralInterestLegal float64 `json:"accumulated_moral_interest_legal" gorm:"default:0"`

	NominalMaterialDamage     *float64   `json:"nominal_material_damage,omitempty"`
	MaterialInterestStartDate *time.Time `json:"material_interest_start_date,omitempty"`
	MaterialIndexStartDate    *time.Time `json:"material_index_start_date,omitempty"`
	MaterialEndDate           *time.Time `json:"material_end_date,omitempty"`
	MaterialIndexType         *string    `json:"material_index_type,omitempty" gorm:"size:20"`
	MaterialInterestIndexType *string    `json:"material_interest_index_type,omitempty" gorm:"size:20"`

	CorrectedMaterialValue    float64 `json:"corrected_material_value" gorm:"default:0"`
	MaterialInterestValue     float64 `json:"material_interest_value" gorm:"default:0"`
	MaterialTotalUpdatedValue float64 `json:"material_total_updated_value" gorm:"default:0"`

	TotalJudgementAmount         float64 `json:"total_judgement_amount" gorm:"default:0"`
	TotalJudgmentWithoutInterest float64 `json:"total_judgment_without_interest" gorm:"default:0"`
	TotalInterestAmount          float64 `json:"total_interest_amount" gorm:"default:0"`

	CreatedByID *string   `json:"created_by_id,omitempty" gorm:"size:36"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (LegalCalculation) TableName() string {
	return "legal_calculations"
}

type Repository interface {
	Create(ctx context.Context, calc *LegalCalculation) error
	GetByID(ctx context.Context, id string) (*LegalCalculation, error)
	ListByCase(ctx context.Context, legalCaseID string, limit, offset int) ([]*LegalCalculation, error)
	Update(ctx context.Context, calc *LegalCalculation) error
	Delete(ctx context.Context, id string) error

	// CaseExists reports whether the referenced case exists and is not
	// soft-deleted.
	CaseExists(ctx context.Context, legalCaseID string) (bool, error)
}
