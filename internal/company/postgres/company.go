package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/pcoutinho/legal-management/internal/company"
)

// CompanyRepository is the GORM-backed persistence adapter. Every read
// filters soft-deleted rows out.
type CompanyRepository struct {
	db *gorm.DB
}

func NewCompanyRepository(db *gorm.DB) *CompanyRepository {
	return &CompanyRepository{db: db}
}

func (r *CompanyRepository) Create(ctx context.Context, c *company.Company) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *CompanyRepository) GetByID(ctx context.Context, id string) (*company.Company, error) {
	var c company.Company
	err := r.db.WithContext(ctx).
		Where("id = ? AND is_deleted = ?", id, false).
		First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CompanyRepository) List(ctx context.Context, limit, offset int) ([]*company.Company, error) {
	var companies []*company.Company
	err := r.db.WithContext(ctx).
		Where("is_deleted = ?", false).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&companies).Error
	return companies, err
}

func (r *CompanyRepository) Update(ctx context.Context, c *company.Company) error {
	return r.db.WithContext(ctx).
		Model(&company.Company{}).
		Where("id = ? AND is_deleted = ?", c.ID, false).
		Updates(map[string]any{
			"name":       c.Name,
			"cnpj":       c.CNPJ,
			"is_active":  c.IsActive,
			"updated_at": c.UpdatedAt,
		}).Error
}

func (r *CompanyRepository) SoftDelete(ctx context.Context, id, deletedByID string) error {
	now := time.Now()
	result := r.db.WithContext(ctx).
		Model(&company.Company{}).
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

func (r *CompanyRepository) AddMember(ctx context.Context, companyID, userID string) error {
	return r.db.WithContext(ctx).
		Exec("INSERT INTO company_users (company_id, user_id) VALUES (?, ?)", companyID, userID).
		Error
}

func (r *CompanyRepository) RemoveMember(ctx context.Context, companyID, userID string) error {
	return r.db.WithContext(ctx).
		Exec("DELETE FROM company_users WHERE company_id = ? AND user_id = ?", companyID, userID).
		Error
}

func (r *CompanyRepository) MemberIDs(ctx context.Context, companyID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Raw("SELECT user_id FROM company_users WHERE company_id = ? ORDER BY user_id", companyID).
		Scan(&ids).Error
	return ids, err
}
