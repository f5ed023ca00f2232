package group

import (
	"context"
	"time"
)

// ResourceType is the authorization key groups are gated under.
const ResourceType = "groups"

// Group bundles roles and hands them to its members. A user's effective
// permissions include every permission of every role of every group they
// belong to.
type Group struct {
	ID          string    `json:"id" gorm:"primaryKey;size:36"`
	Name        string    `json:"name" gorm:"size:150;uniqueIndex;not null"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Group) TableName() string {
	return "groups"
}

type Repository interface {
	Create(ctx context.Context, group *Group) error
	GetByID(ctx context.Context, id string) (*Group, error)
	List(ctx context.Context, limit, offset int) ([]*Group, error)
	Update(ctx context.Context, group *Group) error
	Delete(ctx context.Context, id string) error

	AddRole(ctx context.Context, groupID, roleID string) error
	RemoveRole(ctx context.Context, groupID, roleID string) error
	RoleIDs(ctx context.Context, groupID string) ([]string, error)

	AddUser(ctx context.Context, groupID, userID string) error
	RemoveUser(ctx context.Context, groupID, userID string) error
	UserIDs(ctx context.Context, groupID string) ([]string, error)
}
