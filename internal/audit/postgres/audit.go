package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/pcoutinho/legal-management/internal/audit"
)

// AuditRepository implements audit.Repository using GORM. Append and read
// only; there is no update or delete path.
type AuditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) audit.Repository {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) Create(ctx context.Context, log *audit.AuditLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

func (r *AuditRepository) List(ctx context.Context, limit, offset int) ([]*audit.AuditLog, error) {
	var logs []*audit.AuditLog
	err := r.db.WithContext(ctx).
		Order("id DESC").
		Limit(limit).
		Offset(offset).
		Find(&logs).Error
	return logs, err
}
