package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/pcoutinho/legal-management/internal/role"
)

type RoleRepository struct {
	db *gorm.DB
}

func NewRoleRepository(db *gorm.DB) *RoleRepository {
	return &RoleRepository{db: db}
}

func (r *RoleRepository) Create(ctx context.Context, ro *role.Role) error {
	return r.db.WithContext(ctx).Create(ro).Error
}

func (r *RoleRepository) GetByID(ctx context.Context, id string) (*role.Role, error) {
	var ro role.Role
	if err := r.db.WithContext(ctx).First(&ro, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &ro, nil
}

func (r *RoleRepository) List(ctx context.Context, limit, offset int) ([]*role.Role, error) {
	var roles []*role.Role
	err := r.db.WithContext(ctx).
		Order("name ASC").
		Limit(limit).
		Offset(offset).
		Find(&roles).Error
	return roles, err
}

func (r *RoleRepository) Update(ctx context.Context, ro *role.Role) error {
	return r.db.WithContext(ctx).
		Model(&role.Role{}).
		Where("id = ?", ro.ID).
		Updates(map[string]any{
			"name":        ro.Name,
			"description": ro.Description,
			"updated_at":  ro.UpdatedAt,
		}).Error
}

// Delete removes the role and every grant that references it.
func (r *RoleRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, table := range []string{"role_permissions", "user_roles", "group_roles"} {
			if err := tx.Exec("DELETE FROM "+table+" WHERE role_id = ?", id).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&role.Role{}, "id = ?", id).Error
	})
}

func (r *RoleRepository) AddPermission(ctx context.Context, roleID, permissionID string) error {
	return r.db.WithContext(ctx).
		Exec("INSERT INTO role_permissions (role_id, permission_id) VALUES (?, ?)", roleID, permissionID).
		Error
}

func (r *RoleRepository) RemovePermission(ctx context.Context, roleID, permissionID string) error {
	return r.db.WithContext(ctx).
		Exec("DELETE FROM role_permissions WHERE role_id = ? AND permission_id = ?", roleID, permissionID).
		Error
}

func (r *RoleRepository) PermissionIDs(ctx context.Context, roleID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Raw("SELECT permission_id FROM role_permissions WHERE role_id = ? ORDER BY permission_id", roleID).
		Scan(&ids).Error
	return ids, err
}

func (r *RoleRepository) AssignUser(ctx context.Context, roleID, userID string) error {
	return r.db.WithContext(ctx).
		Exec("INSERT INTO user_roles (user_id, role_id) VALUES (?, ?)", userID, roleID).
		Error
}

func (r *RoleRepository) UnassignUser(ctx context.Context, roleID, userID string) error {
	return r.db.WithContext(ctx).
		Exec("DELETE FROM user_roles WHERE user_id = ? AND role_id = ?", userID, roleID).
		Error
}
