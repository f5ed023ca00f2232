package permission

import (
	"context"
	"time"

	"github.com/pcoutinho/legal-management/internal/core/database"
)

// ResourceType is the authorization key permissions are gated under.
const ResourceType = "permissions"

// Permission is a grantable (resource, action) pair with an optional
// conditions bag evaluated at decision time.
type Permission struct {
	ID          string           `json:"id" gorm:"primaryKey;size:36"`
	Name        string           `json:"name" gorm:"size:150;uniqueIndex;not null"`
	Resource    string           `json:"resource" gorm:"size:100;uniqueIndex:idx_permissions_resource_action;not null"`
	Action      string           `json:"action" gorm:"size:50;uniqueIndex:idx_permissions_resource_action;not null"`
	Conditions  database.JSONMap `json:"conditions" gorm:"type:jsonb"`
	Description string           `json:"description"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

func (Permission) TableName() string {
	return "permissions"
}

type Repository interface {
	Create(ctx context.Context, perm *Permission) error
	GetByID(ctx context.Context, id string) (*Permission, error)
	List(ctx context.Context, limit, offset int) ([]*Permission, error)
	Update(ctx context.Context, perm *Permission) error
	Delete(ctx context.Context, id string) error
}
