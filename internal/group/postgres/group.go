package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/pcoutinho/legal-management/internal/group"
)

type GroupRepository struct {
	db *gorm.DB
}

func NewGroupRepository(db *gorm.DB) *GroupRepository {
	return &GroupRepository{db: db}
}

func (r *GroupRepository) Create(ctx context.Context, g *group.Group) error {
	return r.db.WithContext(ctx).Create(g).Error
}

func (r *GroupRepository) GetByID(ctx context.Context, id string) (*group.Group, error) {
	var g group.Group
	if err := r.db.WithContext(ctx).First(&g, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *GroupRepository) List(ctx context.Context, limit, offset int) ([]*group.Group, error) {
	var groups []*group.Group
	err := r.db.WithContext(ctx).
		Order("name ASC").
		Limit(limit).
		Offset(offset).
		Find(&groups).Error
	return groups, err
}

func (r *GroupRepository) Update(ctx context.Context, g *group.Group) error {
	return r.db.WithContext(ctx).
		Model(&group.Group{}).
		Where("id = ?", g.ID).
		Updates(map[string]any{
			"name":        g.Name,
			"description": g.Description,
			"updated_at":  g.UpdatedAt,
		}).Error
}

// Delete removes the group and its role and member links.
func (r *GroupRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, table := range []string{"group_roles", "user_groups"} {
			if err := tx.Exec("DELETE FROM "+table+" WHERE group_id = ?", id).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&group.Group{}, "id = ?", id).Error
	})
}

func (r *GroupRepository) AddRole(ctx context.Context, groupID, roleID string) error {
	return r.db.WithContext(ctx).
		Exec("INSERT INTO group_roles (group_id, role_id) VALUES (?, ?)", groupID, roleID).
		Error
}

func (r *GroupRepository) RemoveRole(ctx context.Context, groupID, roleID string) error {
	return r.db.WithContext(ctx).
		Exec("DELETE FROM group_roles WHERE group_id = ? AND role_id = ?", groupID, roleID).
		Error
}

func (r *GroupRepository) RoleIDs(ctx context.Context, groupID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Raw("SELECT role_id FROM group_roles WHERE group_id = ? ORDER BY role_id", groupID).
		Scan(&ids).Error
	return ids, err
}

func (r *GroupRepository) AddUser(ctx context.Context, groupID, userID string) error {
	return r.db.WithContext(ctx).
		Exec("INSERT INTO user_groups (user_id, group_id) VALUES (?, ?)", userID, groupID).
		Error
}

func (r *GroupRepository) RemoveUser(ctx context.Context, groupID, userID string) error {
	return r.db.WithContext(ctx).
		Exec("DELETE FROM user_groups WHERE user_id = ? AND group_id = ?", userID, groupID).
		Error
}

func (r *GroupRepository) UserIDs(ctx context.Context, groupID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Raw("SELECT user_id FROM user_groups WHERE group_id = ? ORDER BY user_id", groupID).
		Scan(&ids).Error
	return ids, err
}
