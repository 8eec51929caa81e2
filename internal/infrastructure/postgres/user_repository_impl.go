package postgres

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/authgate/authgate/internal/domain/entity"
	"github.com/authgate/authgate/internal/domain/repository"
)

const userColumns = `id, email, password_hash, name, phone, avatar, status, is_email_verified, created_at, updated_at`

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (email, password_hash, name, phone, avatar, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`, u.Email, u.Password, u.Name, u.Phone, u.Avatar, u.Status)

	if err := row.Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return translate(err, "user not found", "email already in use")
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return r.getBy(ctx, "id", id)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.getBy(ctx, "email", email)
}

func (r *UserRepository) getBy(ctx context.Context, column, value string) (*entity.User, error) {
	u := &entity.User{}
	row := r.pool.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE `+column+` = $1
	`, value)

	if err := scanUser(row, u); err != nil {
		return nil, translate(err, "user not found", "email already in use")
	}
	return u, nil
}

func (r *UserRepository) GetByIDWithRoles(ctx context.Context, id string) (*entity.UserWithRoles, error) {
	return r.getWithRoles(ctx, "id", id)
}

func (r *UserRepository) GetByEmailWithRoles(ctx context.Context, email string) (*entity.UserWithRoles, error) {
	return r.getWithRoles(ctx, "email", email)
}

// getWithRoles materializes the full authorization aggregate: the user row
// plus every role code and permission code reachable through the join graph.
func (r *UserRepository) getWithRoles(ctx context.Context, column, value string) (*entity.UserWithRoles, error) {
	u, err := r.getBy(ctx, column, value)
	if err != nil {
		return nil, err
	}
	out := &entity.UserWithRoles{User: *u}

	rows, err := r.pool.Query(ctx, `
		SELECT r.code
		FROM user_roles ur
		JOIN roles r ON r.id = ur.role_id
		WHERE ur.user_id = $1
		ORDER BY r.code
	`, u.ID)
	if err != nil {
		return nil, translate(err, "user not found", "")
	}
	defer rows.Close()
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, translate(err, "user not found", "")
		}
		out.RoleCodes = append(out.RoleCodes, code)
	}
	if err := rows.Err(); err != nil {
		return nil, translate(err, "user not found", "")
	}

	prows, err := r.pool.Query(ctx, `
		SELECT DISTINCT p.code
		FROM user_roles ur
		JOIN role_permissions rp ON rp.role_id = ur.role_id
		JOIN permissions p ON p.id = rp.permission_id
		WHERE ur.user_id = $1
		ORDER BY p.code
	`, u.ID)
	if err != nil {
		return nil, translate(err, "user not found", "")
	}
	defer prows.Close()
	for prows.Next() {
		var code string
		if err := prows.Scan(&code); err != nil {
			return nil, translate(err, "user not found", "")
		}
		out.PermissionCodes = append(out.PermissionCodes, code)
	}
	if err := prows.Err(); err != nil {
		return nil, translate(err, "user not found", "")
	}
	return out, nil
}

func (r *UserRepository) Update(ctx context.Context, u *entity.User) error {
	u.UpdatedAt = time.Now()
	res, err := r.pool.Exec(ctx, `
		UPDATE users
		SET name = $1, phone = $2, avatar = $3, updated_at = $4
		WHERE id = $5
	`, u.Name, u.Phone, u.Avatar, u.UpdatedAt, u.ID)
	if err != nil {
		return translate(err, "user not found", "email already in use")
	}
	if res.RowsAffected() == 0 {
		return translate(errNoRowsAffected, "user not found", "")
	}
	return nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	res, err := r.pool.Exec(ctx, `
		UPDATE users SET password_hash = $1, updated_at = now() WHERE id = $2
	`, passwordHash, id)
	if err != nil {
		return translate(err, "user not found", "")
	}
	if res.RowsAffected() == 0 {
		return translate(errNoRowsAffected, "user not found", "")
	}
	return nil
}

func (r *UserRepository) UpdateStatus(ctx context.Context, id string, status entity.UserStatus) error {
	res, err := r.pool.Exec(ctx, `
		UPDATE users SET status = $1, updated_at = now() WHERE id = $2
	`, status, id)
	if err != nil {
		return translate(err, "user not found", "")
	}
	if res.RowsAffected() == 0 {
		return translate(errNoRowsAffected, "user not found", "")
	}
	return nil
}

func (r *UserRepository) SetEmailVerified(ctx context.Context, id string) error {
	res, err := r.pool.Exec(ctx, `
		UPDATE users SET is_email_verified = true, updated_at = now() WHERE id = $1
	`, id)
	if err != nil {
		return translate(err, "user not found", "")
	}
	if res.RowsAffected() == 0 {
		return translate(errNoRowsAffected, "user not found", "")
	}
	return nil
}

func (r *UserRepository) List(ctx context.Context, p repository.ListUsersParams) ([]entity.User, error) {
	where, args := listFilter(p)
	limit := p.Limit
	if limit <= 0 {
		limit = 10
	}
	page := p.Page
	if page <= 0 {
		page = 1
	}
	offset := (page - 1) * limit

	query := `SELECT ` + userColumns + ` FROM users` + where +
		` ORDER BY created_at DESC LIMIT $` + strconv.Itoa(len(args)+1) +
		` OFFSET $` + strconv.Itoa(len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, translate(err, "user not found", "")
	}
	defer rows.Close()

	var out []entity.User
	for rows.Next() {
		var u entity.User
		if err := scanUser(rows, &u); err != nil {
			return nil, translate(err, "user not found", "")
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, translate(err, "user not found", "")
	}
	return out, nil
}

func (r *UserRepository) Count(ctx context.Context, p repository.ListUsersParams) (int64, error) {
	where, args := listFilter(p)
	var n int64
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM users`+where, args...).Scan(&n); err != nil {
		return 0, translate(err, "user not found", "")
	}
	return n, nil
}

// listFilter builds the WHERE clause shared by List and Count.
func listFilter(p repository.ListUsersParams) (string, []any) {
	var conds []string
	var args []any
	if p.Status != "" {
		args = append(args, p.Status)
		conds = append(conds, "status = $"+strconv.Itoa(len(args)))
	}
	if p.Search != "" {
		args = append(args, "%"+p.Search+"%")
		n := strconv.Itoa(len(args))
		conds = append(conds, "(name ILIKE $"+n+" OR email ILIKE $"+n+" OR phone ILIKE $"+n+")")
	}
	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(row scanner, u *entity.User) error {
	return row.Scan(&u.ID, &u.Email, &u.Password, &u.Name, &u.Phone, &u.Avatar,
		&u.Status, &u.IsEmailVerified, &u.CreatedAt, &u.UpdatedAt)
}

var _ repository.UserRepository = (*UserRepository)(nil)
