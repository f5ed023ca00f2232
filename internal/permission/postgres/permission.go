package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/pcoutinho/legal-management/internal/permission"
)

type PermissionRepository struct {
	db *gorm.DB
}

func NewPermissionRepository(db *gorm.DB) *PermissionRepository {
	return &PermissionRepository{db: db}
}

func (r *PermissionRepository) Create(ctx context.Context, perm *permission.Permission) error {
	return r.db.WithContext(ctx).Create(perm).Error
}

func (r *PermissionRepository) GetByID(ctx context.Context, id string) (*permission.Permission, error) {
	var perm permission.Permission
	if err := r.db.WithContext(ctx).First(&perm, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &perm, nil
}

func (r *PermissionRepository) List(ctx context.Context, limit, offset int) ([]*permission.Permission, error) {
	var perms []*permission.Permission
	err := r.db.WithContext(ctx).
		Order("resource ASC, action ASC").
		Limit(limit).
		Offset(offset).
		Find(&perms).Error
	return perms, err
}

func (r *PermissionRepository) Update(ctx context.Context, perm *permission.Permission) error {
	return r.db.WithContext(ctx).
		Model(&permission.Permission{}).
		Where("id = ?", perm.ID).
		Updates(map[string]any{
			"name":        perm.Name,
			"conditions":  perm.Conditions,
			"description": perm.Description,
			"updated_at":  perm.UpdatedAt,
		}).Error
}

// Delete removes the permission and any grants pointing at it.
func (r *PermissionRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, table := range []string{"user_permissions", "role_permissions"} {
			if err := tx.Exec("DELETE FROM "+table+" WHERE permission_id = ?", id).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&permission.Permission{}, "id = ?", id).Error
	})
}
