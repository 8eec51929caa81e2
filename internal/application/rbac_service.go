package application

import (
	"context"

	"github.com/authgate/authgate/internal/domain/entity"
	"github.com/authgate/authgate/internal/domain/repository"
	"github.com/authgate/authgate/pkg/apperr"
)

// RBACService owns role/permission definitions and their assignment graph,
// and answers the boolean authorization queries used by the route guards.
type RBACService struct {
	Repo repository.RBACRepository
}

func NewRBACService(repo repository.RBACRepository) *RBACService {
	return &RBACService{Repo: repo}
}

type RoleInput struct {
	Name string
	Code string
}

type PermissionInput struct {
	Name string
	Code string
}

// Role management

func (s *RBACService) CreateRole(ctx context.Context, in RoleInput) (*entity.Role, error) {
	if existing, err := s.Repo.GetRoleByCode(ctx, in.Code); err == nil && existing != nil {
		return nil, apperr.Conflict("role code already exists")
	} else if err != nil && !apperr.IsNotFound(err) {
		return nil, err
	}
	role := &entity.Role{Name: in.Name, Code: in.Code}
	if err := s.Repo.CreateRole(ctx, role); err != nil {
		return nil, err
	}
	return role, nil
}

func (s *RBACService) GetRoleByID(ctx context.Context, id string) (*entity.RoleWithPermissions, error) {
	return s.Repo.GetRoleByID(ctx, id)
}

func (s *RBACService) GetRoleByCode(ctx context.Context, code string) (*entity.RoleWithPermissions, error) {
	return s.Repo.GetRoleByCode(ctx, code)
}

func (s *RBACService) ListRoles(ctx context.Context) ([]entity.RoleWithPermissions, error) {
	return s.Repo.ListRoles(ctx)
}

// UpdateRole re-checks code uniqueness excluding the role itself.
func (s *RBACService) UpdateRole(ctx context.Context, id string, in RoleInput) (*entity.Role, error) {
	current, err := s.Repo.GetRoleByID(ctx, id)
	if err != nil {
		return nil, err
	}
	role := current.Role
	if in.Name != "" {
		role.Name = in.Name
	}
	if in.Code != "" && in.Code != role.Code {
		if existing, err := s.Repo.GetRoleByCode(ctx, in.Code); err == nil && existing != nil {
			return nil, apperr.Conflict("role code already exists")
		} else if err != nil && !apperr.IsNotFound(err) {
			return nil, err
		}
		role.Code = in.Code
	}
	if err := s.Repo.UpdateRole(ctx, &role); err != nil {
		return nil, err
	}
	return &role, nil
}

func (s *RBACService) DeleteRole(ctx context.Context, id string) error {
	if _, err := s.Repo.GetRoleByID(ctx, id); err != nil {
		return err
	}
	return s.Repo.DeleteRole(ctx, id)
}

// Permission management

func (s *RBACService) CreatePermission(ctx context.Context, in PermissionInput) (*entity.Permission, error) {
	if existing, err := s.Repo.GetPermissionByCode(ctx, in.Code); err == nil && existing != nil {
		return nil, apperr.Conflict("permission code already exists")
	} else if err != nil && !apperr.IsNotFound(err) {
		return nil, err
	}
	perm := &entity.Permission{Name: in.Name, Code: in.Code}
	if err := s.Repo.CreatePermission(ctx, perm); err != nil {
		return nil, err
	}
	return perm, nil
}

func (s *RBACService) GetPermissionByID(ctx context.Context, id string) (*entity.Permission, error) {
	return s.Repo.GetPermissionByID(ctx, id)
}

func (s *RBACService) GetPermissionByCode(ctx context.Context, code string) (*entity.Permission, error) {
	return s.Repo.GetPermissionByCode(ctx, code)
}

func (s *RBACService) ListPermissions(ctx context.Context) ([]entity.Permission, error) {
	return s.Repo.ListPermissions(ctx)
}

func (s *RBACService) UpdatePermission(ctx context.Context, id string, in PermissionInput) (*entity.Permission, error) {
	perm, err := s.Repo.GetPermissionByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != "" {
		perm.Name = in.Name
	}
	if in.Code != "" && in.Code != perm.Code {
		if existing, err := s.Repo.GetPermissionByCode(ctx, in.Code); err == nil && existing != nil {
			return nil, apperr.Conflict("permission code already exists")
		} else if err != nil && !apperr.IsNotFound(err) {
			return nil, err
		}
		perm.Code = in.Code
	}
	if err := s.Repo.UpdatePermission(ctx, perm); err != nil {
		return nil, err
	}
	return perm, nil
}

func (s *RBACService) DeletePermission(ctx context.Context, id string) error {
	if _, err := s.Repo.GetPermissionByID(ctx, id); err != nil {
		return err
	}
	return s.Repo.DeletePermission(ctx, id)
}

// Assignments. Both sides are checked to exist before the join row is
// written; the store's pair-uniqueness constraint handles the rest.

func (s *RBACService) AssignPermissionToRole(ctx context.Context, roleID, permissionID string) error {
	if _, err := s.Repo.GetRoleByID(ctx, roleID); err != nil {
		return err
	}
	if _, err := s.Repo.GetPermissionByID(ctx, permissionID); err != nil {
		return err
	}
	return s.Repo.AssignPermissionToRole(ctx, roleID, permissionID)
}

func (s *RBACService) RemovePermissionFromRole(ctx context.Context, roleID, permissionID string) error {
	return s.Repo.RemovePermissionFromRole(ctx, roleID, permissionID)
}

func (s *RBACService) AssignRoleToUser(ctx context.Context, userID, roleID string) error {
	if _, err := s.Repo.GetRoleByID(ctx, roleID); err != nil {
		return err
	}
	return s.Repo.AssignRoleToUser(ctx, userID, roleID)
}

func (s *RBACService) RemoveRoleFromUser(ctx context.Context, userID, roleID string) error {
	return s.Repo.RemoveRoleFromUser(ctx, userID, roleID)
}

func (s *RBACService) GetUserRoles(ctx context.Context, userID string) ([]entity.RoleWithPermissions, error) {
	return s.Repo.GetUserRoles(ctx, userID)
}

// Authorization checks

func (s *RBACService) UserHasRole(ctx context.Context, userID, roleCode string) (bool, error) {
	return s.Repo.UserHasRole(ctx, userID, roleCode)
}

func (s *RBACService) UserHasPermission(ctx context.Context, userID, permissionCode string) (bool, error) {
	return s.Repo.UserHasPermission(ctx, userID, permissionCode)
}

// UserHasAnyRole short-circuits on the first match; an empty code set is
// false. Checks run sequentially against the store, so the result is not a
// consistent snapshot under concurrent role mutation.
func (s *RBACService) UserHasAnyRole(ctx context.Context, userID string, roleCodes []string) (bool, error) {
	for _, code := range roleCodes {
		ok, err := s.Repo.UserHasRole(ctx, userID, code)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// UserHasAllRoles short-circuits on the first miss; an empty code set is
// vacuously true.
func (s *RBACService) UserHasAllRoles(ctx context.Context, userID string, roleCodes []string) (bool, error) {
	for _, code := range roleCodes {
		ok, err := s.Repo.UserHasRole(ctx, userID, code)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}
