package company

import (
	"context"
	"time"
)

// ResourceType is the authorization key companies are gated under.
const ResourceType = "companies"

// Company is an organization owned by one user with a member set. Deletion
// is soft: the row keeps its audit trail and is excluded from default reads.
type Company struct {
	ID          string     `json:"id" gorm:"primaryKey;size:36"`
	Name        string     `json:"name" gorm:"not null"`
	CNPJ        string     `json:"cnpj" gorm:"size:18;uniqueIndex;not null"`
	IsActive    bool       `json:"is_active" gorm:"not null;default:true"`
	OwnerID     string     `json:"owner_id" gorm:"size:36;not null"`
	CreatedByID string     `json:"created_by_id" gorm:"size:36;not null"`
	IsDeleted   bool       `json:"-" gorm:"not null;default:false"`
	DeletedAt   *time.Time `json:"-"`
	DeletedByID *string    `json:"-" gorm:"size:36"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (Company) TableName() string {
	return "companies"
}

// Repository is the persistence port. Reads exclude soft-deleted rows.
type Repository interface {
	Create(ctx context.Context, company *Company) error
	GetByID(ctx context.Context, id string) (*Company, error)
	List(ctx context.Context, limit, offset int) ([]*Company, error)
	Update(ctx context.Context, company *Company) error
	SoftDelete(ctx context.Context, id, deletedByID string) error
	AddMember(ctx context.Context, companyID, userID string) error
	RemoveMember(ctx context.Context, companyID, userID string) error
	MemberIDs(ctx context.Context, companyID string) ([]string, error)
}
