package application

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/authgate/authgate/internal/domain/entity"
	"github.com/authgate/authgate/internal/domain/repository"
	"github.com/authgate/authgate/pkg/apperr"
	"github.com/authgate/authgate/pkg/helpers"
)

// fakeUserRepo is an in-memory UserRepository keyed by id and email.
type fakeUserRepo struct {
	mu    sync.Mutex
	seq   int
	users map[string]*entity.User // by id
	roles map[string][]string     // user id -> role codes
	perms map[string][]string     // user id -> permission codes
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		users: make(map[string]*entity.User),
		roles: make(map[string][]string),
		perms: make(map[string][]string),
	}
}

func (f *fakeUserRepo) Create(_ context.Context, u *entity.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ex := range f.users {
		if ex.Email == u.Email {
			return apperr.Conflict("email already in use")
		}
	}
	f.seq++
	u.ID = "user-" + strconv.Itoa(f.seq)
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	cp := *u
	f.users[u.ID] = &cp
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, apperr.NotFound("user not found")
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperr.NotFound("user not found")
}

func (f *fakeUserRepo) GetByIDWithRoles(ctx context.Context, id string) (*entity.UserWithRoles, error) {
	u, err := f.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return f.withRoles(u), nil
}

func (f *fakeUserRepo) GetByEmailWithRoles(ctx context.Context, email string) (*entity.UserWithRoles, error) {
	u, err := f.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return f.withRoles(u), nil
}

func (f *fakeUserRepo) withRoles(u *entity.User) *entity.UserWithRoles {
	f.mu.Lock()
	defer f.mu.Unlock()
	return &entity.UserWithRoles{User: *u, RoleCodes: f.roles[u.ID], PermissionCodes: f.perms[u.ID]}
}

func (f *fakeUserRepo) Update(_ context.Context, u *entity.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[u.ID]; !ok {
		return apperr.NotFound("user not found")
	}
	cp := *u
	cp.UpdatedAt = time.Now()
	f.users[u.ID] = &cp
	return nil
}

func (f *fakeUserRepo) UpdatePassword(_ context.Context, id, passwordHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return apperr.NotFound("user not found")
	}
	u.Password = passwordHash
	return nil
}

func (f *fakeUserRepo) UpdateStatus(_ context.Context, id string, status entity.UserStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return apperr.NotFound("user not found")
	}
	u.Status = status
	return nil
}

func (f *fakeUserRepo) SetEmailVerified(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return apperr.NotFound("user not found")
	}
	u.IsEmailVerified = true
	return nil
}

func (f *fakeUserRepo) List(_ context.Context, p repository.ListUsersParams) ([]entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []entity.User
	for _, u := range f.users {
		if f.matches(u, p) {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (f *fakeUserRepo) Count(_ context.Context, p repository.ListUsersParams) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, u := range f.users {
		if f.matches(u, p) {
			n++
		}
	}
	return n, nil
}

func (f *fakeUserRepo) matches(u *entity.User, p repository.ListUsersParams) bool {
	if p.Status != "" && u.Status != p.Status {
		return false
	}
	if p.Search != "" {
		q := strings.ToLower(p.Search)
		if !strings.Contains(strings.ToLower(u.Name), q) &&
			!strings.Contains(strings.ToLower(u.Email), q) &&
			!strings.Contains(strings.ToLower(u.Phone), q) {
			return false
		}
	}
	return true
}

var _ repository.UserRepository = (*fakeUserRepo)(nil)

// fakeTokenRepo is an in-memory RefreshTokenRepository with the same
// compare-and-set revoke semantics as the SQL implementation.
type fakeTokenRepo struct {
	mu     sync.Mutex
	tokens map[string]*entity.RefreshToken
	users  *fakeUserRepo
}

func newFakeTokenRepo(users *fakeUserRepo) *fakeTokenRepo {
	return &fakeTokenRepo{tokens: make(map[string]*entity.RefreshToken), users: users}
}

func (f *fakeTokenRepo) Create(_ context.Context, tokenID, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens[tokenID] = &entity.RefreshToken{ID: tokenID, UserID: userID, CreatedAt: time.Now()}
	return nil
}

func (f *fakeTokenRepo) GetWithUser(ctx context.Context, tokenID string) (*entity.RefreshTokenWithUser, error) {
	f.mu.Lock()
	tok, ok := f.tokens[tokenID]
	if !ok {
		f.mu.Unlock()
		return nil, apperr.NotFound("refresh token not found")
	}
	cp := *tok
	f.mu.Unlock()

	u, err := f.users.GetByID(ctx, cp.UserID)
	if err != nil {
		return nil, err
	}
	return &entity.RefreshTokenWithUser{RefreshToken: cp, User: *u}, nil
}

func (f *fakeTokenRepo) Revoke(_ context.Context, tokenID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	tok, ok := f.tokens[tokenID]
	if !ok || tok.Revoked {
		return 0, nil
	}
	now := time.Now()
	tok.Revoked = true
	tok.RevokedAt = &now
	return 1, nil
}

func (f *fakeTokenRepo) RevokeAllForUser(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now()
	for _, tok := range f.tokens {
		if tok.UserID == userID && !tok.Revoked {
			tok.Revoked = true
			tok.RevokedAt = &now
		}
	}
	return nil
}

func (f *fakeTokenRepo) DeleteCreatedBefore(_ context.Context, cutoff time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for id, tok := range f.tokens {
		if tok.CreatedAt.Before(cutoff) {
			delete(f.tokens, id)
			n++
		}
	}
	return n, nil
}

func (f *fakeTokenRepo) live(userID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, tok := range f.tokens {
		if tok.UserID == userID && !tok.Revoked {
			n++
		}
	}
	return n
}

var _ repository.RefreshTokenRepository = (*fakeTokenRepo)(nil)

// fakePublisher records published jobs.
type fakePublisher struct {
	mu   sync.Mutex
	jobs []any
	err  error
}

func (f *fakePublisher) PublishJSON(_ context.Context, body any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.jobs = append(f.jobs, body)
	return nil
}

func (f *fakePublisher) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.jobs)
}

var _ EventPublisher = (*fakePublisher)(nil)

// fakeRBACRepo is an in-memory RBACRepository.
type fakeRBACRepo struct {
	mu        sync.Mutex
	seq       int
	roles     map[string]*entity.Role
	perms     map[string]*entity.Permission
	rolePerms map[string]map[string]bool // role id -> permission ids
	userRoles map[string]map[string]bool // user id -> role ids
}

func newFakeRBACRepo() *fakeRBACRepo {
	return &fakeRBACRepo{
		roles:     make(map[string]*entity.Role),
		perms:     make(map[string]*entity.Permission),
		rolePerms: make(map[string]map[string]bool),
		userRoles: make(map[string]map[string]bool),
	}
}

func (f *fakeRBACRepo) nextID(prefix string) string {
	f.seq++
	return prefix + "-" + strconv.Itoa(f.seq)
}

func (f *fakeRBACRepo) CreateRole(_ context.Context, r *entity.Role) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ex := range f.roles {
		if ex.Code == r.Code {
			return apperr.Conflict("role code already exists")
		}
	}
	r.ID = f.nextID("role")
	r.CreatedAt = time.Now()
	r.UpdatedAt = r.CreatedAt
	cp := *r
	f.roles[r.ID] = &cp
	return nil
}

func (f *fakeRBACRepo) GetRoleByID(_ context.Context, id string) (*entity.RoleWithPermissions, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.roles[id]
	if !ok {
		return nil, apperr.NotFound("role not found")
	}
	return f.roleWithPerms(r), nil
}

func (f *fakeRBACRepo) GetRoleByCode(_ context.Context, code string) (*entity.RoleWithPermissions, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.roles {
		if r.Code == code {
			return f.roleWithPerms(r), nil
		}
	}
	return nil, apperr.NotFound("role not found")
}

func (f *fakeRBACRepo) roleWithPerms(r *entity.Role) *entity.RoleWithPermissions {
	out := &entity.RoleWithPermissions{Role: *r, Permissions: []entity.Permission{}}
	for pid := range f.rolePerms[r.ID] {
		if p, ok := f.perms[pid]; ok {
			out.Permissions = append(out.Permissions, *p)
		}
	}
	return out
}

func (f *fakeRBACRepo) ListRoles(_ context.Context) ([]entity.RoleWithPermissions, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]entity.RoleWithPermissions, 0, len(f.roles))
	for _, r := range f.roles {
		out = append(out, *f.roleWithPerms(r))
	}
	return out, nil
}

func (f *fakeRBACRepo) UpdateRole(_ context.Context, r *entity.Role) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.roles[r.ID]; !ok {
		return apperr.NotFound("role not found")
	}
	cp := *r
	cp.UpdatedAt = time.Now()
	f.roles[r.ID] = &cp
	return nil
}

func (f *fakeRBACRepo) DeleteRole(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.roles[id]; !ok {
		return apperr.NotFound("role not found")
	}
	delete(f.roles, id)
	delete(f.rolePerms, id)
	for _, rs := range f.userRoles {
		delete(rs, id)
	}
	return nil
}

func (f *fakeRBACRepo) CreatePermission(_ context.Context, p *entity.Permission) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ex := range f.perms {
		if ex.Code == p.Code {
			return apperr.Conflict("permission code already exists")
		}
	}
	p.ID = f.nextID("perm")
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	cp := *p
	f.perms[p.ID] = &cp
	return nil
}

func (f *fakeRBACRepo) GetPermissionByID(_ context.Context, id string) (*entity.Permission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.perms[id]
	if !ok {
		return nil, apperr.NotFound("permission not found")
	}
	cp := *p
	return &cp, nil
}

func (f *fakeRBACRepo) GetPermissionByCode(_ context.Context, code string) (*entity.Permission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.perms {
		if p.Code == code {
			cp := *p
			return &cp, nil
		}
	}
	return nil, apperr.NotFound("permission not found")
}

func (f *fakeRBACRepo) ListPermissions(_ context.Context) ([]entity.Permission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]entity.Permission, 0, len(f.perms))
	for _, p := range f.perms {
		out = append(out, *p)
	}
	return out, nil
}

func (f *fakeRBACRepo) UpdatePermission(_ context.Context, p *entity.Permission) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.perms[p.ID]; !ok {
		return apperr.NotFound("permission not found")
	}
	cp := *p
	cp.UpdatedAt = time.Now()
	f.perms[p.ID] = &cp
	return nil
}

func (f *fakeRBACRepo) DeletePermission(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.perms[id]; !ok {
		return apperr.NotFound("permission not found")
	}
	delete(f.perms, id)
	for _, ps := range f.rolePerms {
		delete(ps, id)
	}
	return nil
}

func (f *fakeRBACRepo) AssignPermissionToRole(_ context.Context, roleID, permissionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.rolePerms[roleID] == nil {
		f.rolePerms[roleID] = make(map[string]bool)
	}
	f.rolePerms[roleID][permissionID] = true
	return nil
}

func (f *fakeRBACRepo) RemovePermissionFromRole(_ context.Context, roleID, permissionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.rolePerms[roleID][permissionID] {
		return apperr.NotFound("assignment not found")
	}
	delete(f.rolePerms[roleID], permissionID)
	return nil
}

func (f *fakeRBACRepo) AssignRoleToUser(_ context.Context, userID, roleID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.userRoles[userID] == nil {
		f.userRoles[userID] = make(map[string]bool)
	}
	f.userRoles[userID][roleID] = true
	return nil
}

func (f *fakeRBACRepo) RemoveRoleFromUser(_ context.Context, userID, roleID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.userRoles[userID][roleID] {
		return apperr.NotFound("assignment not found")
	}
	delete(f.userRoles[userID], roleID)
	return nil
}

func (f *fakeRBACRepo) GetUserRoles(_ context.Context, userID string) ([]entity.RoleWithPermissions, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []entity.RoleWithPermissions{}
	for rid := range f.userRoles[userID] {
		if r, ok := f.roles[rid]; ok {
			out = append(out, *f.roleWithPerms(r))
		}
	}
	return out, nil
}

func (f *fakeRBACRepo) UserHasRole(_ context.Context, userID, roleCode string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for rid := range f.userRoles[userID] {
		if r, ok := f.roles[rid]; ok && r.Code == roleCode {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRBACRepo) UserHasPermission(_ context.Context, userID, permissionCode string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for rid := range f.userRoles[userID] {
		for pid := range f.rolePerms[rid] {
			if p, ok := f.perms[pid]; ok && p.Code == permissionCode {
				return true, nil
			}
		}
	}
	return false, nil
}

var _ repository.RBACRepository = (*fakeRBACRepo)(nil)

// seedUser inserts an ACTIVE user with a real bcrypt hash and returns it.
func seedUser(t *testing.T, repo *fakeUserRepo, email, password string) *entity.User {
	t.Helper()
	hash, err := helpers.HashPassword(password)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	u := &entity.User{Email: email, Password: hash, Name: "Test User", Status: entity.StatusActive}
	if err := repo.Create(context.Background(), u); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}
