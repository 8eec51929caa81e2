package repository

import (
	"context"

	"github.com/authgate/authgate/internal/domain/entity"
)

// RBACRepository owns roles, permissions and the two assignment joins.
// Pair uniqueness is enforced by the store; duplicate pairs surface as
// Conflict, dangling references as NotFound.
type RBACRepository interface {
	// Roles
	CreateRole(ctx context.Context, r *entity.Role) error
	GetRoleByID(ctx context.Context, id string) (*entity.RoleWithPermissions, error)
	GetRoleByCode(ctx context.Context, code string) (*entity.RoleWithPermissions, error)
	ListRoles(ctx context.Context) ([]entity.RoleWithPermissions, error)
	UpdateRole(ctx context.Context, r *entity.Role) error
	DeleteRole(ctx context.Context, id string) error

	// Permissions
	CreatePermission(ctx context.Context, p *entity.Permission) error
	GetPermissionByID(ctx context.Context, id string) (*entity.Permission, error)
	GetPermissionByCode(ctx context.Context, code string) (*entity.Permission, error)
	ListPermissions(ctx context.Context) ([]entity.Permission, error)
	UpdatePermission(ctx context.Context, p *entity.Permission) error
	DeletePermission(ctx context.Context, id string) error

	// Assignments
	AssignPermissionToRole(ctx context.Context, roleID, permissionID string) error
	RemovePermissionFromRole(ctx context.Context, roleID, permissionID string) error
	AssignRoleToUser(ctx context.Context, userID, roleID string) error
	RemoveRoleFromUser(ctx context.Context, userID, roleID string) error
	GetUserRoles(ctx context.Context, userID string) ([]entity.RoleWithPermissions, error)

	// Authorization checks; absence of a relation is false, not an error.
	UserHasRole(ctx context.Context, userID, roleCode string) (bool, error)
	UserHasPermission(ctx context.Context, userID, permissionCode string) (bool, error)
}
