package legalcase

import (
	"context"
	"time"

	"github.com/pcoutinho/legal-management/internal/core/database"
)

// ResourceType is the authorization key legal cases are gated under.
const ResourceType = "legal_cases"

// Monetary correction indexes used by Brazilian courts.
const (
	IndexIPCA  = "IPCA"
	IndexINPC  = "INPC"
	IndexIGPM  = "IGP-M"
	IndexOther = "OTHER"
)

// Interest rate regimes.
const (
	InterestOnePercent = "1_PERCENT"
	InterestSelic      = "SELIC"
	InterestLegalRate  = "LEGAL_RATE"
	InterestOther      = "OTHER"
)

// Case value basis.
const (
	BasisCondemnationAmount = "CONDEMNATION_AMOUNT"
	BasisClaimAmount        = "CLAIM_AMOUNT"
	BasisSpecifiedAmount    = "SPECIFIED_AMOUNT"
)

// LegalCase is a lawsuit record. Deletion is soft, matching companies:
// the row keeps its history and disappears from default reads.
type LegalCase struct {
	ID               string             `json:"id" gorm:"primaryKey;size:36"`
	CaseNumber       string             `json:"case_number" gorm:"column:case_number;size:50;uniqueIndex;not null"`
	Subject          *string            `json:"subject,omitempty"`
	State            *string            `json:"state,omitempty" gorm:"size:50"`
	Jurisdiction     *string            `json:"jurisdiction,omitempty" gorm:"size:100"`
	JudicialDistrict *string            `json:"judicial_district,omitempty" gorm:"size:100"`
	Court            *string            `json:"court,omitempty" gorm:"size:100"`
	Defendant        *string            `json:"defendant,omitempty" gorm:"size:200"`
	Attorney         *string            `json:"attorney,omitempty" gorm:"size:200"`
	Clients          database.JSONSlice `json:"clients,omitempty" gorm:"type:jsonb"`
	Status           *string            `json:"status,omitempty" gorm:"size:50"`

	FilingDate            *time.Time `json:"filing_date,omitempty"`
	CitationDate          *time.Time `json:"citation_date,omitempty"`
	DamageEventDate       *time.Time `json:"damage_event_date,omitempty"`
	JudgmentDate          *time.Time `json:"judgment_date,omitempty"`
	AppellateDecisionDate *time.Time `json:"appellate_decision_date,omitempty"`
	FinalJudgmentDate     *time.Time `json:"final_judgment_date,omitempty"`

	NominalMoralDamage     *float64   `json:"nominal_moral_damage,omitempty"`
	MoralInterestStartDate *time.Time `json:"moral_interest_start_date,omitempty"`
	MoralIndexStartDate    *time.Time `json:"moral_index_start_date,omitempty"`
	MoralEndDate           *time.Time `json:"moral_end_date,omitempty"`
	MoralIndexType         *string    `json:"moral_index_type,omitempty" gorm:"size:20"`
	MoralInterestIndexType *string    `json:"moral_interest_index_type,omitempty" gorm:"size:20"`

	NominalMaterialDamage     *float64   `json:"nominal_material_damage,omitempty"`
	MaterialInterestStartDate *time.Time `json:"material_interest_start_date,omitempty"`
	MaterialIndexStartDate    *time.Time `json:"material_index_start_date,omitempty"`
	MaterialEndDate           *time.Time `json:"material_end_date,omitempty"`
	MaterialIndexType         *string    `json:"material_index_type,omitempty" gorm:"size:20"`
	MaterialInterestIndexType *string    `json:"material_interest_index_type,omitempty" gorm:"size:20"`

	FirstInstallmentDate   *time.Time `json:"first_installment_date,omitempty"`
	LastInstallmentDate    *time.Time `json:"last_installment_date,omitempty"`
	FirstInstallmentAmount *float64   `json:"first_installment_amount,omitempty"`
	LastInstallmentAmount  *float64   `json:"last_installment_amount,omitempty"`

	CaseValue                          *float64 `json:"case_value,omitempty"`
	CaseValueBasis                     *string  `json:"case_value_basis,omitempty" gorm:"size:30"`
	AttorneyFeesValue                  *float64 `json:"attorney_fees_value,omitempty"`
	PercentageCourtAwardedAttorneyFees *float64 `json:"percentage_court_awarded_attorney_fees,omitempty"`
	ProportionCourtAwardedAttorneyFees *float64 `json:"proportion_court_awarded_attorney_fees,omitempty"`
	PercentageContractualAttorneyFees  *float64 `json:"percentage_contractual_attorney_fees,omitempty"`

	CreatedByID          string  `json:"created_by_id" gorm:"size:36;not null"`
	JuridicalAssigneeID  *string `json:"juridical_assignee_id,omitempty" gorm:"size:36"`
	LitigationAssigneeID *string `json:"litigation_assignee_id,omitempty" gorm:"size:36"`

	IsDeleted   bool       `json:"-" gorm:"not null;default:false"`
	DeletedAt   *time.Time `json:"-"`
	DeletedByID *string    `json:"-" gorm:"size:36"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (LegalCase) TableName() string {
	return "legal_cases"
}

// Repository is the persistence port. Reads exclude soft-deleted rows.
type Repository interface {
	Create(ctx context.Context, lc *LegalCase) error
	GetByID(ctx context.Context, id string) (*LegalCase, error)
	List(ctx context.Context, limit, offset int) ([]*LegalCase, error)
	Update(ctx context.Context, lc *LegalCase) error
	SoftDelete(ctx context.Context, id, deletedByID string) error
}
