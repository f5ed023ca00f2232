package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/pcoutinho/legal-management/internal/legalcase"
)

type LegalCaseRepository struct {
	db *gorm.DB
}

func NewLegalCaseRepository(db *gorm.DB) *LegalCaseRepository {
	return &LegalCaseRepository{db: db}
}

func (r *LegalCaseRepository) Create(ctx context.Context, lc *legalcase.LegalCase) error {
	return r.db.WithContext(ctx).Create(lc).Error
}

func (r *LegalCaseRepository) GetByID(ctx context.Context, id string) (*legalcase.LegalCase, error) {
	var lc legalcase.LegalCase
	err := r.db.WithContext(ctx).
		Where("id = ? AND is_deleted = ?", id, false).
		First(&lc).Error
	if err != nil {
		return nil, err
	}
	return &lc, nil
}

func (r *LegalCaseRepository) List(ctx context.Context, limit, offset int) ([]*legalcase.LegalCase, error) {
	var cases []*legalcase.LegalCase
	err := r.db.WithContext(ctx).
		Where("is_deleted = ?", false).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&cases).Error
	return cases, err
}

// Update saves the full row; the service owns field-level merge logic
// and never hands us a soft-deleted case.
func (r *LegalCaseRepository) Update(ctx context.Context, lc *legalcase.LegalCase) error {
	return r.db.WithContext(ctx).Save(lc).Error
}

func (r *LegalCaseRepository) SoftDelete(ctx context.Context, id, deletedByID string) error {
	now := time.Now()
	result := r.db.WithContext(ctx).
		Model(&legalcase.LegalCase{}).
		Where("id = ? AND is_deleted = ?", id, false).
		Updates(map[string]any{
			"is_deleted":    true,
			"deleted_at":    now,
			"deleted_by_id": deletedByID,
			"updated_at":    now,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
