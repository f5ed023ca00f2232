package audit

import (
	"context"
	"time"

	"github.com/pcoutinho/legal-management/internal/core/database"
)

// AuditLog is an immutable append-only record of a state-changing decision.
// Rows are never updated or deleted after insertion.
type AuditLog struct {
	ID           string             `json:"id" gorm:"primaryKey;size:26"`
	UserID       *string            `json:"user_id" gorm:"column:user_id;size:36"`
	Action       string             `json:"action" gorm:"size:50;not null"`
	ResourceType string             `json:"resource_type" gorm:"size:50;not null"`
	ResourceID   *string            `json:"resource_id,omitempty" gorm:"size:36"`
	Details      database.JSONMap   `json:"details,omitempty" gorm:"type:jsonb"`
	IPAddress    *string            `json:"ip_address,omitempty" gorm:"size:45"`
	CreatedAt    time.Time          `json:"created_at"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}

// Entry is what callers hand to the recorder. ActorID is nil for system
// actions.
type Entry struct {
	ActorID      *string
	Action       string
	ResourceType string
	ResourceID   *string
	Details      map[string]any
	IPAddress    string
}

// Recorder accepts entries off the critical path. Implementations never
// return errors to the caller: a failed audit write is logged internally and
// does not undo the business effect it describes.
type Recorder interface {
	Record(ctx context.Context, entry Entry)
}

// Repository persists and reads audit rows.
type Repository interface {
	Create(ctx context.Context, log *AuditLog) error
	List(ctx context.Context, limit, offset int) ([]*AuditLog, error)
}
