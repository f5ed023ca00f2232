package group

import "github.com/pcoutinho/legal-management/internal"

type CreateGroupDTO struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

func (d CreateGroupDTO) Validate() error {
	if d.Name == "" {
		return internal.NewValidationError("name is required", internal.ErrCodeValidationFailed)
	}
	return nil
}

// UpdateGroupDTO uses pointers so absent fields are left untouched.
type UpdateGroupDTO struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

type RoleGrantDTO struct {
	RoleID string `json:"role_id"`
}

func (d RoleGrantDTO) Validate() error {
	if d.RoleID == "" {
		return internal.NewValidationError("role_id is required", internal.ErrCodeValidationFailed)
	}
	return nil
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

type GroupDetail struct {
	*Group
	RoleIDs   []string `json:"role_ids"`
	MemberIDs []string `json:"member_ids"`
}
