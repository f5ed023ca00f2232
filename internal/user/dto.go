package user

import (
	"net/mail"
	"unicode"

	"github.com/pcoutinho/legal-management/internal"
)

type SignupDTO struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Password string `json:"password"`
}

func (d SignupDTO) Validate() error {
	if d.Username == "" {
		return internal.NewValidationError("username is required", internal.ErrCodeValidationFailed)
	}
	if _, err := mail.ParseAddress(d.Email); err != nil {
		return internal.NewValidationError("email is invalid", internal.ErrCodeValidationFailed)
	}
	return validatePassword(d.Password)
}

type CreateUserDTO struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	FullName    string `json:"full_name"`
	Password    string `json:"password"`
	IsActive    *bool  `json:"is_active,omitempty"`
	IsSuperuser bool   `json:"is_superuser,omitempty"`
}

func (d CreateUserDTO) Validate() error {
	return SignupDTO{
		Username: d.Username,
		Email:    d.Email,
		Password: d.Password,
	}.Validate()
}

// UpdateUserDTO uses pointers so absent fields are left untouched.
type UpdateUserDTO struct {
	Email       *string `json:"email,omitempty"`
	FullName    *string `json:"full_name,omitempty"`
	Password    *string `json:"password,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
	IsSuperuser *bool   `json:"is_superuser,omitempty"`
}

func (d UpdateUserDTO) Validate() error {
	if d.Email != nil {
		if _, err := mail.ParseAddress(*d.Email); err != nil {
			return internal.NewValidationError("email is invalid", internal.ErrCodeValidationFailed)
		}
	}
	if d.Password != nil {
		return validatePassword(*d.Password)
	}
	return nil
}

// MeView is the caller's own record together with the role and group
// names resolved for the session.
type MeView struct {
	*User
	Roles  []string `json:"roles"`
	Groups []string `json:"groups"`
}

// validatePassword enforces the minimum policy: at least 8 characters,
// one digit and one uppercase letter.
func validatePassword(password string) error {
	if len(password) < 8 {
		return internal.NewValidationError("password must be at least 8 characters", internal.ErrCodeWeakPassword)
	}
	var hasDigit, hasUpper bool
	for _, r := range password {
		switch {
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsUpper(r):
			hasUpper = true
		}
	}
	if !hasDigit {
		return internal.NewValidationError("password must contain at least one digit", internal.ErrCodeWeakPassword)
	}
	if !hasUpper {
		return internal.NewValidationError("password must contain at least one uppercase letter", internal.ErrCodeWeakPassword)
	}
	return nil
}
