package permission

import "github.com/pcoutinho/legal-management/internal"

type CreatePermissionDTO struct {
	Name        string         `json:"name"`
	Resource    string         `json:"resource"`
	Action      string         `json:"action"`
	Conditions  map[string]any `json:"conditions,omitempty"`
	Description string         `json:"description,omitempty"`
}

func (d CreatePermissionDTO) Validate() error {
	if d.Name == "" {
		return internal.NewValidationError("name is required", internal.ErrCodeValidationFailed)
	}
	if d.Resource == "" {
		return internal.NewValidationError("resource is required", internal.ErrCodeValidationFailed)
	}
	if d.Action == "" {
		return internal.NewValidationError("action is required", internal.ErrCodeValidationFailed)
	}
	return nil
}

// UpdatePermissionDTO uses pointers so absent fields are left untouched.
// Conditions, when present, replace the whole bag.
type UpdatePermissionDTO struct {
	Name        *string         `json:"name,omitempty"`
	Conditions  *map[string]any `json:"conditions,omitempty"`
	Description *string         `json:"description,omitempty"`
}
