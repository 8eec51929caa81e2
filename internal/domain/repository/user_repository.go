package repository

import (
	"context"

	"github.com/authgate/authgate/internal/domain/entity"
)

// ListUsersParams filters and pages the admin user listing.
// Search matches name, email and phone case-insensitively.
type ListUsersParams struct {
	Page   int
	Limit  int
	Status entity.UserStatus
	Search string
}

// UserRepository defines the store contract for user records.
// Implementations translate driver errors into the apperr taxonomy:
// duplicate email -> Conflict, missing row -> NotFound.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	GetByIDWithRoles(ctx context.Context, id string) (*entity.UserWithRoles, error)
	GetByEmailWithRoles(ctx context.Context, email string) (*entity.UserWithRoles, error)
	Update(ctx context.Context, u *entity.User) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	UpdateStatus(ctx context.Context, id string, status entity.UserStatus) error
	SetEmailVerified(ctx context.Context, id string) error
	List(ctx context.Context, p ListUsersParams) ([]entity.User, error)
	Count(ctx context.Context, p ListUsersParams) (int64, error)
}
