package role

import "github.com/pcoutinho/legal-management/internal"

type CreateRoleDTO struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

func (d CreateRoleDTO) Validate() error {
	if d.Name == "" {
		return internal.NewValidationError("name is required", internal.ErrCodeValidationFailed)
	}
	return nil
}

// UpdateRoleDTO uses pointers so absent fields are left untouched.
type UpdateRoleDTO struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

type PermissionGrantDTO struct {
	PermissionID string `json:"permission_id"`
}

func (d PermissionGrantDTO) Validate() error {
	if d.PermissionID == "" {
		return internal.NewValidationError("permission_id is required", internal.ErrCodeValidationFailed)
	}
	return nil
}

type UserAssignmentDTO struct {
	UserID string `json:"user_id"`
}

func (d UserAssignmentDTO) Validate() error {
	if d.UserID == "" {
		return internal.NewValidationError("user_id is required", internal.ErrCodeValidationFailed)
	}
	return nil
}

type RoleDetail struct {
	*Role
	PermissionIDs []string `json:"permission_ids"`
}
