package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/pcoutinho/legal-management/internal/legalcalc"
)

type CalculationRepository struct {
	db *gorm.DB
}

func NewCalculationRepository(db *gorm.DB) *CalculationRepository {
	return &CalculationRepository{db: db}
}

func (r *CalculationRepository) Create(ctx context.Context, calc *legalcalc.LegalCalculation) error {
	return r.db.WithContext(ctx).Create(calc).Error
}

func (r *CalculationRepository) GetByID(ctx context.Context, id string) (*legalcalc.LegalCalculation, error) {
	var calc legalcalc.LegalCalculation
	if err := r.db.WithContext(ctx).First(&calc, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &calc, nil
}

func (r *CalculationRepository) ListByCase(ctx context.Context, legalCaseID string, limit, offset int) ([]*legalcalc.LegalCalculation, error) {
	var calcs []*legalcalc.LegalCalculation
	err := r.db.WithContext(ctx).
		Where("legal_case_id = ?", legalCaseID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&calcs).Error
	return calcs, err
}

func (r *CalculationRepository) Update(ctx context.Context, calc *legalcalc.LegalCalculation) error {
	return r.db.WithContext(ctx).Save(calc).Error
}

func (r *CalculationRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&legalcalc.LegalCalculation{}, "id = ?", id).Error
}

func (r *CalculationRepository) CaseExists(ctx context.Context, legalCaseID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("legal_cases").
		Where("id = ? AND is_deleted = ?", legalCaseID, false).
		Count(&count).Error
	return count > 0, err
}
