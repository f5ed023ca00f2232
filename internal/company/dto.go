package company

import "github.com/pcoutinho/legal-management/internal"

type CreateCompanyDTO struct {
	Name     string `json:"name"`
	CNPJ     string `json:"cnpj"`
	IsActive *bool  `json:"is_active,omitempty"`
	OwnerID  string `json:"owner_id,omitempty"`
}

func (d CreateCompanyDTO) Validate() error {
	if d.Name == "" {
		return internal.NewValidationError("name is required", internal.ErrCodeValidationFailed)
	}
	if len(d.CNPJ) < 14 || len(d.CNPJ) > 18 {
		return internal.NewValidationError("cnpj must be between 14 and 18 characters", internal.ErrCodeValidationFailed)
	}
	return nil
}

// UpdateCompanyDTO uses pointers so absent fields are left untouched. An
// empty payload is a valid no-op update.
type UpdateCompanyDTO struct {
	Name     *string `json:"name,omitempty"`
	IsActive *bool   `json:"is_active,omitempty"`
}

type MemberDTO struct {
	UserID string `json:"user_id"`
}

func (d MemberDTO) Validate() error {
	if d.UserID == "" {
		return internal.NewValidationError("user_id is required", internal.ErrCodeValidationFailed)
	}
	return nil
}

type CompanyDetail struct {
	*Company
	MemberIDs []string `json:"member_ids"`
}
