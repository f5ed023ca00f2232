package cmd

import (
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with an admin account and baseline grants",
	Long:  `Seed the database with an administrator, the full permission catalog and an admin role for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		_, db, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}

		if clearData {
			for _, table := range []string{
				"user_permissions", "user_roles", "user_groups", "group_roles",
				"role_permissions", "company_users", "refresh_tokens",
			} {
				if err := db.Exec("DELETE FROM " + table).Error; err != nil {
					log.Fatalf("failed to clear %s: %v", table, err)
				}
			}
			fmt.Println("cleared grant tables")
		}

		hash, _ := bcrypt.GenerateFromPassword([]byte("Admin123"), cfg.Security.BCryptCost)

		adminID := ensureUser(db, "admin", "admin@legal.local", "Administrator", string(hash))

		resources := []string{
			"users", "companies", "roles", "permissions", "groups",
			"legal_cases", "legal_calculations", "audit_logs",
		}
		actions := []string{"create", "read", "update", "delete"}

		var permissionIDs []string
		for _, resource := range resources {
			for _, action := range actions {
				if resource == "audit_logs" && action != "read" {
					continue
				}
				permissionIDs = append(permissionIDs, ensurePermission(db, resource, action))
			}
		}

		roleID := ensureRole(db, "admin", "full administrator")
		for _, pid := range permissionIDs {
			link(db,
				"SELECT 1 FROM role_permissions WHERE role_id = ? AND permission_id = ?",
				"INSERT INTO role_permissions (role_id, permission_id) VALUES (?, ?)",
				roleID, pid)
		}

		link(db,
			"SELECT 1 FROM user_roles WHERE user_id = ? AND role_id = ?",
			"INSERT INTO user_roles (user_id, role_id) VALUES (?, ?)",
			adminID, roleID)

		fmt.Println("seeded admin user: admin@legal.local (password Admin123)")
	},
}

func ensureUser(db *gorm.DB, username, email, fullName, passwordHash string) string {
	var id string
	if err := db.Raw("SELECT id FROM users WHERE username = ?", username).Row().Scan(&id); err == nil {
		fmt.Println("user already exists:", username)
		return id
	}

	id = uuid.NewString()
	err := db.Exec(
		`INSERT INTO users (id, username, email, full_name, password_hash, is_active, is_superuser, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, true, true, now(), now())`,
		id, username, email, fullName, passwordHash).Error
	if err != nil {
		log.Fatalf("failed to insert user %s: %v", username, err)
	}
	fmt.Println("seeded user:", username)
	return id
}

func ensurePermission(db *gorm.DB, resource, action string) string {
	var id string
	if err := db.Raw("SELECT id FROM permissions WHERE resource = ? AND action = ?", resource, action).Row().Scan(&id); err == nil {
		return id
	}

	id = uuid.NewString()
	name := resource + ":" + action
	err := db.Exec(
		`INSERT INTO permissions (id, name, resource, action, description, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, now(), now())`,
		id, name, resource, action, "can "+action+" "+resource).Error
	if err != nil {
		log.Fatalf("failed to insert permission %s: %v", name, err)
	}
	return id
}

func ensureRole(db *gorm.DB, name, description string) string {
	var id string
	if err := db.Raw("SELECT id FROM roles WHERE name = ?", name).Row().Scan(&id); err == nil {
		return id
	}

	id = uuid.NewString()
	err := db.Exec(
		`INSERT INTO roles (id, name, description, created_at, updated_at) VALUES (?, ?, ?, now(), now())`,
		id, name, description).Error
	if err != nil {
		log.Fatalf("failed to insert role %s: %v", name, err)
	}
	return id
}

func link(db *gorm.DB, checkSQL, insertSQL string, a, b string) {
	var exists int
	if err := db.Raw(checkSQL, a, b).Row().Scan(&exists); err == nil {
		return
	}
	if err := db.Exec(insertSQL, a, b).Error; err != nil {
		log.Fatalf("failed to link %s -> %s: %v", a, b, err)
	}
}
