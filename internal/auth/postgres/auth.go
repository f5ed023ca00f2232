package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/pcoutinho/legal-management/internal/auth"
	"github.com/pcoutinho/legal-management/internal/authz"
	"github.com/pcoutinho/legal-management/internal/core/database"
)

// Repository implements auth.Repository. The grant graph models below are
// read-only projections over the same tables the entity packages write to;
// keeping them here lets one Preload chain fetch the whole graph without
// import cycles between entity packages.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

type permissionModel struct {
	ID          string           `gorm:"primaryKey;size:36"`
	Name        string           `gorm:"size:100"`
	Resource    string           `gorm:"size:100"`
	Action      string           `gorm:"size:50"`
	Conditions  database.JSONMap `gorm:"type:json"`
	Description *string
}

func (permissionModel) TableName() string { return "permissions" }

type roleModel struct {
	ID          string `gorm:"primaryKey;size:36"`
	Name        string `gorm:"size:50"`
	Permissions []permissionModel `gorm:"many2many:role_permissions;foreignKey:ID;joinForeignKey:role_id;references:ID;joinReferences:permission_id"`
}

func (roleModel) TableName() string { return "roles" }

type groupModel struct {
	ID    string      `gorm:"primaryKey;size:36"`
	Name  string      `gorm:"size:100"`
	Roles []roleModel `gorm:"many2many:group_roles;foreignKey:ID;joinForeignKey:group_id;references:ID;joinReferences:role_id"`
}

func (groupModel) TableName() string { return "groups" }

type companyRef struct {
	ID string `gorm:"primaryKey;size:36"`
}

func (companyRef) TableName() string { return "companies" }

type userModel struct {
	ID                string `gorm:"primaryKey;size:36"`
	Username          string
	Email             string
	PasswordHash      string
	IsActive          bool
	IsSuperuser       bool
	CreatedAt         time.Time
	DirectPermissions []permissionModel `gorm:"many2many:user_permissions;foreignKey:ID;joinForeignKey:user_id;references:ID;joinReferences:permission_id"`
	Roles             []roleModel       `gorm:"many2many:user_roles;foreignKey:ID;joinForeignKey:user_id;references:ID;joinReferences:role_id"`
	Groups            []groupModel      `gorm:"many2many:user_groups;foreignKey:ID;joinForeignKey:user_id;references:ID;joinReferences:group_id"`
	Companies         []companyRef      `gorm:"many2many:company_users;foreignKey:ID;joinForeignKey:user_id;references:ID;joinReferences:company_id"`
}

func (userModel) TableName() string { return "users" }

func (r *Repository) GetCredentialsByUsername(ctx context.Context, username string) (*auth.Credentials, error) {
	var creds auth.Credentials
	row := r.db.WithContext(ctx).
		Raw("SELECT id, password_hash, is_active FROM users WHERE username = ?", username).
		Row()
	if err := row.Scan(&creds.UserID, &creds.PasswordHash, &creds.IsActive); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, auth.ErrUserNotFound
		}
		return nil, err
	}
	return &creds, nil
}

// GetActorByID loads the user and every grant path in a single eager fetch:
// direct permissions, roles with their permissions, groups with their roles
// and those roles' permissions, plus company membership ids.
func (r *Repository) GetActorByID(ctx context.Context, userID string) (*authz.Actor, error) {
	var user userModel
	err := r.db.WithContext(ctx).
		Preload("DirectPermissions").
		Preload("Roles.Permissions").
		Preload("Groups.Roles.Permissions").
		Preload("Companies").
		First(&user, "id = ?", userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, auth.ErrUserNotFound
		}
		return nil, err
	}

	return toActor(&user), nil
}

func (r *Repository) StoreRefreshToken(ctx context.Context, token *auth.RefreshToken) error {
	return r.db.WithContext(ctx).Create(token).Error
}

func (r *Repository) GetRefreshToken(ctx context.Context, token string) (*auth.RefreshToken, error) {
	var stored auth.RefreshToken
	err := r.db.WithContext(ctx).Where("token = ?", token).First(&stored).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, auth.ErrInvalidToken
		}
		return nil, err
	}
	return &stored, nil
}

func (r *Repository) RevokeRefreshToken(ctx context.Context, token string) error {
	return r.db.WithContext(ctx).
		Model(&auth.RefreshToken{}).
		Where("token = ?", token).
		Update("revoked", true).Error
}

func toActor(user *userModel) *authz.Actor {
	actor := &authz.Actor{
		ID:          user.ID,
		Username:    user.Username,
		Email:       user.Email,
		IsActive:    user.IsActive,
		IsSuperuser: user.IsSuperuser,
	}

	for _, p := range user.DirectPermissions {
		actor.DirectPermissions = append(actor.DirectPermissions, toPermission(p))
	}
	for _, role := range user.Roles {
		actor.Roles = append(actor.Roles, toRole(role))
	}
	for _, group := range user.Groups {
		g := authz.Group{ID: group.ID, Name: group.Name}
		for _, role := range group.Roles {
			g.Roles = append(g.Roles, toRole(role))
		}
		actor.Groups = append(actor.Groups, g)
	}
	for _, company := range user.Companies {
		actor.CompanyIDs = append(actor.CompanyIDs, company.ID)
	}

	return actor
}

func toRole(role roleModel) authz.Role {
	out := authz.Role{ID: role.ID, Name: role.Name}
	for _, p := range role.Permissions {
		out.Permissions = append(out.Permissions, toPermission(p))
	}
	return out
}

func toPermission(p permissionModel) authz.Permission {
	perm := authz.Permission{
		ID:         p.ID,
		Name:       p.Name,
		Resource:   p.Resource,
		Action:     p.Action,
		Conditions: authz.Conditions(p.Conditions),
	}
	if p.Description != nil {
		perm.Description = *p.Description
	}
	return perm
}
