package main

import (
	"database/sql"
	"fmt"
	"log"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/authgate/authgate/config"
	"github.com/authgate/authgate/pkg/helpers"
)

type seedPermission struct {
	name string
	code string
}

var permissionCatalog = []seedPermission{
	{"Create Product", "CREATE_PRODUCT"},
	{"Read Product", "READ_PRODUCT"},
	{"Update Product", "UPDATE_PRODUCT"},
	{"Delete Product", "DELETE_PRODUCT"},
	{"Create Order", "CREATE_ORDER"},
	{"Read Order", "READ_ORDER"},
	{"Update Order", "UPDATE_ORDER"},
	{"Delete Order", "DELETE_ORDER"},
	{"Manage Users", "MANAGE_USERS"},
	{"Manage Roles", "MANAGE_ROLES"},
}

var userRolePermissions = []string{"READ_PRODUCT", "CREATE_ORDER", "READ_ORDER"}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := sql.Open("pgx", cfg.PostgresDSN())
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer func() { _ = db.Close() }()

	// Permission catalog
	permIDs := make(map[string]string, len(permissionCatalog))
	for _, p := range permissionCatalog {
		var id string
		err := db.QueryRow(`
			INSERT INTO permissions (name, code)
			VALUES ($1, $2)
			ON CONFLICT (code) DO UPDATE SET name = EXCLUDED.name, updated_at = now()
			RETURNING id
		`, p.name, p.code).Scan(&id)
		if err != nil {
			log.Fatalf("failed to upsert permission %s: %v", p.code, err)
		}
		permIDs[p.code] = id
	}
	fmt.Printf("permissions ensured: %d\n", len(permIDs))

	// Base roles
	adminRoleID := upsertRole(db, "Administrator", "ADMIN")
	userRoleID := upsertRole(db, "User", "USER")
	fmt.Printf("roles ensured: admin=%s user=%s\n", adminRoleID, userRoleID)

	// ADMIN gets the full catalog, USER a read-mostly subset
	for _, id := range permIDs {
		grant(db, adminRoleID, id)
	}
	for _, code := range userRolePermissions {
		grant(db, userRoleID, permIDs[code])
	}

	// Bootstrap admin account
	email := cfg.SeedAdminEmail
	password := cfg.SeedAdminPassword
	hash, err := helpers.HashPassword(password)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	var adminID string
	err = db.QueryRow(`
		INSERT INTO users (email, password_hash, name, status, is_email_verified)
		VALUES ($1, $2, $3, 'ACTIVE', true)
		ON CONFLICT (email) DO UPDATE SET name = EXCLUDED.name
		RETURNING id
	`, email, hash, "Admin").Scan(&adminID)
	if err != nil {
		log.Fatalf("failed to seed admin user: %v", err)
	}

	if _, err := db.Exec(`
		INSERT INTO user_roles (user_id, role_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, role_id) DO NOTHING
	`, adminID, adminRoleID); err != nil {
		log.Fatalf("failed to assign admin role: %v", err)
	}
	fmt.Printf("seeded admin: id=%s email=%s\n", adminID, email)
}

func upsertRole(db *sql.DB, name, code string) string {
	var id string
	err := db.QueryRow(`
		INSERT INTO roles (name, code)
		VALUES ($1, $2)
		ON CONFLICT (code) DO UPDATE SET name = EXCLUDED.name, updated_at = now()
		RETURNING id
	`, name, code).Scan(&id)
	if err != nil {
		log.Fatalf("failed to upsert role %s: %v", code, err)
	}
	return id
}

func grant(db *sql.DB, roleID, permissionID string) {
	if _, err := db.Exec(`
		INSERT INTO role_permissions (role_id, permission_id)
		VALUES ($1, $2)
		ON CONFLICT (role_id, permission_id) DO NOTHING
	`, roleID, permissionID); err != nil {
		log.Fatalf("failed to grant permission: %v", err)
	}
}
