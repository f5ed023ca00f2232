package role

import (
	"context"
	"time"
)

// ResourceType is the authorization key roles are gated under.
const ResourceType = "roles"

// Role is a named bundle of permissions assignable to users directly or
// through groups.
type Role struct {
	ID          string    `json:"id" gorm:"primaryKey;size:36"`
	Name        string    `json:"name" gorm:"size:150;uniqueIndex;not null"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Role) TableName() string {
	return "roles"
}

type Repository interface {
	Create(ctx context.Context, role *Role) error
	GetByID(ctx context.Context, id string) (*Role, error)
	List(ctx context.Context, limit, offset int) ([]*Role, error)
	Update(ctx context.Context, role *Role) error
	Delete(ctx context.Context, id string) error

	AddPermission(ctx context.Context, roleID, permissionID string) error
	RemovePermission(ctx context.Context, roleID, permissionID string) error
	PermissionIDs(ctx context.Context, roleID string) ([]string, error)

	AssignUser(ctx context.Context, roleID, userID string) error
	UnassignUser(ctx context.Context, roleID, userID string) error
}
