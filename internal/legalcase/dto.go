package legalcase

import (
	"time"

	"github.com/pcoutinho/legal-management/internal"
)

// CaseFieldsDTO carries every optional lawsuit attribute. Absent fields
// are left untouched on update.
type CaseFieldsDTO struct {
	Subject          *string `json:"subject,omitempty"`
	State            *string `json:"state,omitempty"`
	Jurisdiction     *string `json:"jurisdiction,omitempty"`
	JudicialDistrict *string `json:"judicial_district,omitempty"`
	Court            *string `json:"court,omitempty"`
	Defendant        *string `json:"defendant,omitempty"`
	Attorney         *string `json:"attorney,omitempty"`
	Clients          []any   `json:"clients,omitempty"`
	Status           *string `json:"status,omitempty"`

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
	MoralIndexType         *string    `json:"moral_index_type,omitempty"`
	MoralInterestIndexType *string    `json:"moral_interest_index_type,omitempty"`

	NominalMaterialDamage     *float64   `json:"nominal_material_damage,omitempty"`
	MaterialInterestStartDate *time.Time `json:"material_interest_start_date,omitempty"`
	MaterialIndexStartDate    *time.Time `json:"material_index_start_date,omitempty"`
	MaterialEndDate           *time.Time `json:"material_end_date,omitempty"`
	MaterialIndexType         *string    `json:"material_index_type,omitempty"`
	MaterialInterestIndexType *string    `json:"material_interest_index_type,omitempty"`

	FirstInstallmentDate   *time.Time `json:"first_installment_date,omitempty"`
	LastInstallmentDate    *time.Time `json:"last_installment_date,omitempty"`
	FirstInstallmentAmount *float64   `json:"first_installment_amount,omitempty"`
	LastInstallmentAmount  *float64   `json:"last_installment_amount,omitempty"`

	CaseValue                          *float64 `json:"case_value,omitempty"`
	CaseValueBasis                     *string  `json:"case_value_basis,omitempty"`
	AttorneyFeesValue                  *float64 `json:"attorney_fees_value,omitempty"`
	PercentageCourtAwardedAttorneyFees *float64 `json:"percentage_court_awarded_attorney_fees,omitempty"`
	ProportionCourtAwardedAttorneyFees *float64 `json:"proportion_court_awarded_attorney_fees,omitempty"`
	PercentageContractualAttorneyFees  *float64 `json:"percentage_contractual_attorney_fees,omitempty"`

	JuridicalAssigneeID  *string `json:"juridical_assignee_id,omitempty"`
	LitigationAssigneeID *string `json:"litigation_assignee_id,omitempty"`
}

func (d CaseFieldsDTO) Validate() error {
	if d.MoralIndexType != nil && !validIndexType(*d.MoralIndexType) {
		return internal.NewValidationError("moral_index_type is invalid", internal.ErrCodeValidationFailed)
	}
	if d.MaterialIndexType != nil && !validIndexType(*d.MaterialIndexType) {
		return internal.NewValidationError("material_index_type is invalid", internal.ErrCodeValidationFailed)
	}
	if d.MoralInterestIndexType != nil && !validInterestType(*d.MoralInterestIndexType) {
		return internal.NewValidationError("moral_interest_index_type is invalid", internal.ErrCodeValidationFailed)
	}
	if d.MaterialInterestIndexType != nil && !validInterestType(*d.MaterialInterestIndexType) {
		return internal.NewValidationError("material_interest_index_type is invalid", internal.ErrCodeValidationFailed)
	}
	if d.CaseValueBasis != nil && !validCaseValueBasis(*d.CaseValueBasis) {
		return internal.NewValidationError("case_value_basis is invalid", internal.ErrCodeValidationFailed)
	}
	return nil
}

// apply copies present fields onto the case and returns the names of the
// fields it touched.
func (d CaseFieldsDTO) apply(lc *LegalCase) []string {
	var changed []string
	set := func(name string, dst, src any) {
		changed = append(changed, name)
		switch dst := dst.(type) {
		case **string:
			*dst = src.(*string)
		case **float64:
			*dst = src.(*float64)
		case **time.Time:
			*dst = src.(*time.Time)
		}
	}

	if d.Subject != nil {
		set("subject", &lc.Subject, d.Subject)
	}
	if d.State != nil {
		set("state", &lc.State, d.State)
	}
	if d.Jurisdiction != nil {
		set("jurisdiction", &lc.Jurisdiction, d.Jurisdiction)
	}
	if d.JudicialDistrict != nil {
		set("judicial_district", &lc.JudicialDistrict, d.JudicialDistrict)
	}
	if d.Court != nil {
		set("court", &lc.Court, d.Court)
	}
	if d.Defendant != nil {
		set("defendant", &lc.Defendant, d.Defendant)
	}
	if d.Attorney != nil {
		set("attorney", &lc.Attorney, d.Attorney)
	}
	if d.Clients != nil {
		lc.Clients = d.Clients
		changed = append(changed, "clients")
	}
	if d.Status != nil {
		set("status", &lc.Status, d.Status)
	}

	if d.FilingDate != nil {
		set("filing_date", &lc.FilingDate, d.FilingDate)
	}
	if d.CitationDate != nil {
		set("citation_date", &lc.CitationDate, d.CitationDate)
	}
	if d.DamageEventDate != nil {
		set("damage_event_date", &lc.DamageEventDate, d.DamageEventDate)
	}
	if d.JudgmentDate != nil {
		set("judgment_date", &lc.JudgmentDate, d.JudgmentDate)
	}
	if d.AppellateDecisionDate != nil {
		set("appellate_decision_date", &lc.AppellateDecisionDate, d.AppellateDecisionDate)
	}
	if d.FinalJudgmentDate != nil {
		set("final_judgment_date", &lc.FinalJudgmentDate, d.FinalJudgmentDate)
	}

	if d.NominalMoralDamage != nil {
		set("nominal_moral_damage", &lc.NominalMoralDamage, d.NominalMoralDamage)
	}
	if d.MoralInterestStartDate != nil {
		set("moral_interest_start_date", &lc.MoralInterestStartDate, d.MoralInterestStartDate)
	}
	if d.MoralIndexStartDate != nil {
		set("moral_index_start_date", &lc.MoralIndexStartDate, d.MoralIndexStartDate)
	}
	if d.MoralEndDate != nil {
		set("moral_end_date", &lc.MoralEndDate, d.MoralEndDate)
	}
	if d.MoralIndexType != nil {
		set("moral_index_type", &lc.MoralIndexType, d.MoralIndexType)
	}
	if d.MoralInterestIndexType != nil {
		set("moral_interest_index_type", &lc.MoralInterestIndexType, d.MoralInterestIndexType)
	}

	if d.NominalMaterialDamage != nil {
		set("nominal_material_damage", &lc.NominalMaterialDamage, d.NominalMaterialDamage)
	}
	if d.MaterialInterestStartDate != nil {
		set("material_interest_start_date", &lc.MaterialInterestStartDate, d.MaterialInterestStartDate)
	}
	if d.MaterialIndexStartDate != nil {
		set("material_index_start_date", &lc.MaterialIndexStartDate, d.MaterialIndexStartDate)
	}
	if d.MaterialEndDate != nil {
		set("material_end_date", &lc.MaterialEndDate, d.MaterialEndDate)
	}
	if d.MaterialIndexType != nil {
		set("material_index_type", &lc.MaterialIndexType, d.MaterialIndexType)
	}
	if d.MaterialInterestIndexType != nil {
		set("material_interest_index_type", &lc.MaterialInterestIndexType, d.MaterialInterestIndexType)
	}

	if d.FirstInstallmentDate != nil {
		set("first_installment_date", &lc.FirstInstallmentDate, d.FirstInstallmentDate)
	}
	if d.LastInstallmentDate != nil {
		set("last_installment_date", &lc.LastInstallmentDate, d.LastInstallmentDate)
	}
	if d.FirstInstallmentAmount != nil {
		set("first_installment_amount", &lc.FirstInstallmentAmount, d.FirstInstallmentAmount)
	}
	if d.LastInstallmentAmount != nil {
		set("last_installment_amount", &lc.LastInstallmentAmount, d.LastInstallmentAmount)
	}

	if d.CaseValue != nil {
		set("case_value", &lc.CaseValue, d.CaseValue)
	}
	if d.CaseValueBasis != nil {
		set("case_value_basis", &lc.CaseValueBasis, d.CaseValueBasis)
	}
	if d.AttorneyFeesValue != nil {
		set("attorney_fees_value", &lc.AttorneyFeesValue, d.AttorneyFeesValue)
	}
	if d.PercentageCourtAwardedAttorneyFees != nil {
		set("percentage_court_awarded_attorney_fees", &lc.PercentageCourtAwardedAttorneyFees, d.PercentageCourtAwardedAttorneyFees)
	}
	if d.ProportionCourtAwardedAttorneyFees != nil {
		set("proportion_court_awarded_attorney_fees", &lc.ProportionCourtAwardedAttorneyFees, d.ProportionCourtAwardedAttorneyFees)
	}
	if d.PercentageContractualAttorneyFees != nil {
		set("percentage_contractual_attorney_fees", &lc.PercentageContractualAttorneyFees, d.PercentageContractualAttorneyFees)
	}

	if d.JuridicalAssigneeID != nil {
		set("juridical_assignee_id", &lc.JuridicalAssigneeID, d.JuridicalAssigneeID)
	}
	if d.LitigationAssigneeID != nil {
		set("litigation_assignee_id", &lc.LitigationAssigneeID, d.LitigationAssigneeID)
	}

	return changed
}

type CreateLegalCaseDTO struct {
	CaseNumber string `json:"case_number"`
	CaseFieldsDTO
}

func (d CreateLegalCaseDTO) Validate() error {
	if d.CaseNumber == "" {
		return internal.NewValidationError("case_number is required", internal.ErrCodeValidationFailed)
	}
	if len(d.CaseNumber) > 50 {
		return internal.NewValidationError("case_number must be at most 50 characters", internal.ErrCodeValidationFailed)
	}
	return d.CaseFieldsDTO.Validate()
}

// UpdateLegalCaseDTO cannot change the case number; it is the external
// identity of the record.
type UpdateLegalCaseDTO struct {
	CaseFieldsDTO
}

func validIndexType(v string) bool {
	switch v {
	case IndexIPCA, IndexINPC, IndexIGPM, IndexOther:
		return true
	}
	return false
}

func validInterestType(v string) bool {
	switch v {
	case InterestOnePercent, InterestSelic, InterestLegalRate, InterestOther:
		return true
	}
	return false
}

func validCaseValueBasis(v string) bool {
	switch v {
	case BasisCondemnationAmount, BasisClaimAmount, BasisSpecifiedAmount:
		return true
	}
	return false
}
