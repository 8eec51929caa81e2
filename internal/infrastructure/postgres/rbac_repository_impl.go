package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/authgate/authgate/internal/domain/entity"
	"github.com/authgate/authgate/internal/domain/repository"
)

type RBACRepository struct {
	pool *pgxpool.Pool
}

func NewRBACRepository(pool *pgxpool.Pool) *RBACRepository {
	return &RBACRepository{pool: pool}
}

// Roles

func (r *RBACRepository) CreateRole(ctx context.Context, role *entity.Role) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO roles (name, code)
		VALUES ($1, $2)
		RETURNING id, created_at, updated_at
	`, role.Name, role.Code)
	if err := row.Scan(&role.ID, &role.CreatedAt, &role.UpdatedAt); err != nil {
		return translate(err, "role not found", "role code already exists")
	}
	return nil
}

func (r *RBACRepository) GetRoleByID(ctx context.Context, id string) (*entity.RoleWithPermissions, error) {
	return r.getRole(ctx, "id", id)
}

func (r *RBACRepository) GetRoleByCode(ctx context.Context, code string) (*entity.RoleWithPermissions, error) {
	return r.getRole(ctx, "code", code)
}

func (r *RBACRepository) getRole(ctx context.Context, column, value string) (*entity.RoleWithPermissions, error) {
	out := &entity.RoleWithPermissions{}
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, code, created_at, updated_at
		FROM roles
		WHERE `+column+` = $1
	`, value)
	if err := row.Scan(&out.ID, &out.Name, &out.Code, &out.CreatedAt, &out.UpdatedAt); err != nil {
		return nil, translate(err, "role not found", "")
	}
	perms, err := r.rolePermissions(ctx, out.ID)
	if err != nil {
		return nil, err
	}
	out.Permissions = perms
	return out, nil
}

func (r *RBACRepository) rolePermissions(ctx context.Context, roleID string) ([]entity.Permission, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT p.id, p.name, p.code, p.created_at, p.updated_at
		FROM role_permissions rp
		JOIN permissions p ON p.id = rp.permission_id
		WHERE rp.role_id = $1
		ORDER BY p.code
	`, roleID)
	if err != nil {
		return nil, translate(err, "role not found", "")
	}
	defer rows.Close()

	perms := []entity.Permission{}
	for rows.Next() {
		var p entity.Permission
		if err := rows.Scan(&p.ID, &p.Name, &p.Code, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, translate(err, "role not found", "")
		}
		perms = append(perms, p)
	}
	return perms, rows.Err()
}

func (r *RBACRepository) ListRoles(ctx context.Context) ([]entity.RoleWithPermissions, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, code, created_at, updated_at FROM roles ORDER BY code
	`)
	if err != nil {
		return nil, translate(err, "role not found", "")
	}
	defer rows.Close()

	var out []entity.RoleWithPermissions
	for rows.Next() {
		var role entity.RoleWithPermissions
		if err := rows.Scan(&role.ID, &role.Name, &role.Code, &role.CreatedAt, &role.UpdatedAt); err != nil {
			return nil, translate(err, "role not found", "")
		}
		out = append(out, role)
	}
	if err := rows.Err(); err != nil {
		return nil, translate(err, "role not found", "")
	}
	for i := range out {
		perms, err := r.rolePermissions(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Permissions = perms
	}
	return out, nil
}

func (r *RBACRepository) UpdateRole(ctx context.Context, role *entity.Role) error {
	res, err := r.pool.Exec(ctx, `
		UPDATE roles SET name = $1, code = $2, updated_at = now() WHERE id = $3
	`, role.Name, role.Code, role.ID)
	if err != nil {
		return translate(err, "role not found", "role code already exists")
	}
	if res.RowsAffected() == 0 {
		return translate(errNoRowsAffected, "role not found", "")
	}
	return nil
}

func (r *RBACRepository) DeleteRole(ctx context.Context, id string) error {
	res, err := r.pool.Exec(ctx, `DELETE FROM roles WHERE id = $1`, id)
	if err != nil {
		return translate(err, "role not found", "")
	}
	if res.RowsAffected() == 0 {
		return translate(errNoRowsAffected, "role not found", "")
	}
	return nil
}

// Permissions

func (r *RBACRepository) CreatePermission(ctx context.Context, p *entity.Permission) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO permissions (name, code)
		VALUES ($1, $2)
		RETURNING id, created_at, updated_at
	`, p.Name, p.Code)
	if err := row.Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return translate(err, "permission not found", "permission code already exists")
	}
	return nil
}

func (r *RBACRepository) GetPermissionByID(ctx context.Context, id string) (*entity.Permission, error) {
	return r.getPermission(ctx, "id", id)
}

func (r *RBACRepository) GetPermissionByCode(ctx context.Context, code string) (*entity.Permission, error) {
	return r.getPermission(ctx, "code", code)
}

func (r *RBACRepository) getPermission(ctx context.Context, column, value string) (*entity.Permission, error) {
	p := &entity.Permission{}
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, code, created_at, updated_at
		FROM permissions
		WHERE `+column+` = $1
	`, value)
	if err := row.Scan(&p.ID, &p.Name, &p.Code, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, translate(err, "permission not found", "")
	}
	return p, nil
}

func (r *RBACRepository) ListPermissions(ctx context.Context) ([]entity.Permission, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, code, created_at, updated_at FROM permissions ORDER BY code
	`)
	if err != nil {
		return nil, translate(err, "permission not found", "")
	}
	defer rows.Close()

	var out []entity.Permission
	for rows.Next() {
		var p entity.Permission
		if err := rows.Scan(&p.ID, &p.Name, &p.Code, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, translate(err, "permission not found", "")
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *RBACRepository) UpdatePermission(ctx context.Context, p *entity.Permission) error {
	res, err := r.pool.Exec(ctx, `
		UPDATE permissions SET name = $1, code = $2, updated_at = now() WHERE id = $3
	`, p.Name, p.Code, p.ID)
	if err != nil {
		return translate(err, "permission not found", "permission code already exists")
	}
	if res.RowsAffected() == 0 {
		return translate(errNoRowsAffected, "permission not found", "")
	}
	return nil
}

func (r *RBACRepository) DeletePermission(ctx context.Context, id string) error {
	res, err := r.pool.Exec(ctx, `DELETE FROM permissions WHERE id = $1`, id)
	if err != nil {
		return translate(err, "permission not found", "")
	}
	if res.RowsAffected() == 0 {
		return translate(errNoRowsAffected, "permission not found", "")
	}
	return nil
}

// Assignments

func (r *RBACRepository) AssignPermissionToRole(ctx context.Context, roleID, permissionID string) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO role_permissions (role_id, permission_id)
		VALUES ($1, $2)
		ON CONFLICT (role_id, permission_id) DO NOTHING
	`, roleID, permissionID)
	return translate(err, "role or permission not found", "permission already assigned")
}

func (r *RBACRepository) RemovePermissionFromRole(ctx context.Context, roleID, permissionID string) error {
	res, err := r.pool.Exec(ctx, `
		DELETE FROM role_permissions WHERE role_id = $1 AND permission_id = $2
	`, roleID, permissionID)
	if err != nil {
		return translate(err, "assignment not found", "")
	}
	if res.RowsAffected() == 0 {
		return translate(errNoRowsAffected, "assignment not found", "")
	}
	return nil
}

func (r *RBACRepository) AssignRoleToUser(ctx context.Context, userID, roleID string) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO user_roles (user_id, role_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, role_id) DO NOTHING
	`, userID, roleID)
	return translate(err, "user or role not found", "role already assigned")
}

func (r *RBACRepository) RemoveRoleFromUser(ctx context.Context, userID, roleID string) error {
	res, err := r.pool.Exec(ctx, `
		DELETE FROM user_roles WHERE user_id = $1 AND role_id = $2
	`, userID, roleID)
	if err != nil {
		return translate(err, "assignment not found", "")
	}
	if res.RowsAffected() == 0 {
		return translate(errNoRowsAffected, "assignment not found", "")
	}
	return nil
}

func (r *RBACRepository) GetUserRoles(ctx context.Context, userID string) ([]entity.RoleWithPermissions, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT r.id, r.name, r.code, r.created_at, r.updated_at
		FROM user_roles ur
		JOIN roles r ON r.id = ur.role_id
		WHERE ur.user_id = $1
		ORDER BY r.code
	`, userID)
	if err != nil {
		return nil, translate(err, "user not found", "")
	}
	defer rows.Close()

	out := []entity.RoleWithPermissions{}
	for rows.Next() {
		var role entity.RoleWithPermissions
		if err := rows.Scan(&role.ID, &role.Name, &role.Code, &role.CreatedAt, &role.UpdatedAt); err != nil {
			return nil, translate(err, "user not found", "")
		}
		out = append(out, role)
	}
	if err := rows.Err(); err != nil {
		return nil, translate(err, "user not found", "")
	}
	for i := range out {
		perms, err := r.rolePermissions(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Permissions = perms
	}
	return out, nil
}

// Authorization checks

func (r *RBACRepository) UserHasRole(ctx context.Context, userID, roleCode string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1
			FROM user_roles ur
			JOIN roles r ON r.id = ur.role_id
			WHERE ur.user_id = $1 AND r.code = $2
		)
	`, userID, roleCode).Scan(&exists)
	if err != nil {
		return false, translate(err, "user not found", "")
	}
	return exists, nil
}

func (r *RBACRepository) UserHasPermission(ctx context.Context, userID, permissionCode string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1
			FROM user_roles ur
			JOIN role_permissions rp ON rp.role_id = ur.role_id
			JOIN permissions p ON p.id = rp.permission_id
			WHERE ur.user_id = $1 AND p.code = $2
		)
	`, userID, permissionCode).Scan(&exists)
	if err != nil {
		return false, translate(err, "user not found", "")
	}
	return exists, nil
}

var _ repository.RBACRepository = (*RBACRepository)(nil)
