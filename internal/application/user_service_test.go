package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/authgate/authgate/internal/domain/entity"
	"github.com/authgate/authgate/internal/domain/repository"
	"github.com/authgate/authgate/pkg/apperr"
)

func newUserFixture() (*UserService, *fakeUserRepo, *fakePublisher) {
	repo := newFakeUserRepo()
	pub := &fakePublisher{}
	return NewUserService(repo, pub, nil, nil, "", nil, ""), repo, pub
}

func TestCreateUserHashesPassword(t *testing.T) {
	t.Parallel()
	svc, _, _ := newUserFixture()
	ctx := context.Background()

	u, err := svc.CreateUser(ctx, CreateUserInput{Email: "a@b.c", Password: "password123", Name: "A"})
	require.NoError(t, err)
	require.NotEmpty(t, u.ID)
	require.NotEqual(t, "password123", u.Password)
	require.Equal(t, entity.StatusActive, u.Status)
	require.True(t, svc.ValidatePassword(u, "password123"))
	require.False(t, svc.ValidatePassword(u, "other"))
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	t.Parallel()
	svc, _, _ := newUserFixture()
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, CreateUserInput{Email: "dup@b.c", Password: "password123", Name: "A"})
	require.NoError(t, err)
	_, err = svc.CreateUser(ctx, CreateUserInput{Email: "dup@b.c", Password: "password123", Name: "B"})
	require.True(t, apperr.IsConflict(err))
}

func TestChangePasswordWrongOldLeavesHash(t *testing.T) {
	t.Parallel()
	svc, repo, _ := newUserFixture()
	ctx := context.Background()

	u, err := svc.CreateUser(ctx, CreateUserInput{Email: "pw@b.c", Password: "old-password", Name: "P"})
	require.NoError(t, err)

	err = svc.ChangePassword(ctx, u.ID, "wrong-old", "new-password")
	require.True(t, apperr.IsConflict(err), "got %v", err)

	// the stored hash is untouched, old password still works
	stored, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	require.True(t, svc.ValidatePassword(stored, "old-password"))
	require.False(t, svc.ValidatePassword(stored, "new-password"))
}

func TestChangePasswordSuccessPublishesEvent(t *testing.T) {
	t.Parallel()
	svc, repo, pub := newUserFixture()
	ctx := context.Background()

	u, err := svc.CreateUser(ctx, CreateUserInput{Email: "pw2@b.c", Password: "old-password", Name: "P"})
	require.NoError(t, err)

	require.NoError(t, svc.ChangePassword(ctx, u.ID, "old-password", "new-password"))

	stored, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	require.True(t, svc.ValidatePassword(stored, "new-password"))
	require.False(t, svc.ValidatePassword(stored, "old-password"))
	require.Equal(t, 1, pub.count())
}

func TestUpdateUserPartialFields(t *testing.T) {
	t.Parallel()
	svc, _, _ := newUserFixture()
	ctx := context.Background()

	u, err := svc.CreateUser(ctx, CreateUserInput{Email: "u@b.c", Password: "password123", Name: "Before", Phone: "+628111111111"})
	require.NoError(t, err)

	updated, err := svc.UpdateUser(ctx, u.ID, UpdateUserInput{Name: "After"})
	require.NoError(t, err)
	require.Equal(t, "After", updated.Name)
	require.Equal(t, "+628111111111", updated.Phone, "unset fields are preserved")

	_, err = svc.UpdateUser(ctx, "missing", UpdateUserInput{Name: "X"})
	require.True(t, apperr.IsNotFound(err))
}

func TestDeleteIsSoft(t *testing.T) {
	t.Parallel()
	svc, repo, _ := newUserFixture()
	ctx := context.Background()

	u, err := svc.CreateUser(ctx, CreateUserInput{Email: "soft@b.c", Password: "password123", Name: "S"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, u.ID))

	// the row survives with status BANNED
	stored, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, entity.StatusBanned, stored.Status)
}

func TestVerifyEmail(t *testing.T) {
	t.Parallel()
	svc, repo, _ := newUserFixture()
	ctx := context.Background()

	u, err := svc.CreateUser(ctx, CreateUserInput{Email: "v@b.c", Password: "password123", Name: "V"})
	require.NoError(t, err)
	require.False(t, u.IsEmailVerified)

	require.NoError(t, svc.VerifyEmail(ctx, u.ID))
	stored, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	require.True(t, stored.IsEmailVerified)

	require.True(t, apperr.IsNotFound(svc.VerifyEmail(ctx, "missing")))
}

func TestListClampsPagination(t *testing.T) {
	t.Parallel()
	svc, _, _ := newUserFixture()
	ctx := context.Background()

	for _, email := range []string{"l1@b.c", "l2@b.c", "l3@b.c"} {
		_, err := svc.CreateUser(ctx, CreateUserInput{Email: email, Password: "password123", Name: "L"})
		require.NoError(t, err)
	}

	out, meta, err := svc.List(ctx, repository.ListUsersParams{Page: -5, Limit: 1000})
	require.NoError(t, err)
	require.Equal(t, 1, meta.Page)
	require.Equal(t, 10, meta.Limit)
	require.Equal(t, int64(3), meta.Total)
	require.Equal(t, 1, meta.TotalPages)
	require.Len(t, out, 3)

	// projections never leak the password hash shape; spot-check one
	require.NotEmpty(t, out[0].Email)
}

func TestListFiltersByStatusAndSearch(t *testing.T) {
	t.Parallel()
	svc, _, _ := newUserFixture()
	ctx := context.Background()

	active, err := svc.CreateUser(ctx, CreateUserInput{Email: "alice@b.c", Password: "password123", Name: "Alice"})
	require.NoError(t, err)
	banned, err := svc.CreateUser(ctx, CreateUserInput{Email: "bob@b.c", Password: "password123", Name: "Bob"})
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, banned.ID))

	out, meta, err := svc.List(ctx, repository.ListUsersParams{Status: entity.StatusActive})
	require.NoError(t, err)
	require.Equal(t, int64(1), meta.Total)
	require.Equal(t, active.ID, out[0].ID)

	out, meta, err = svc.List(ctx, repository.ListUsersParams{Search: "BOB"})
	require.NoError(t, err)
	require.Equal(t, int64(1), meta.Total)
	require.Equal(t, banned.ID, out[0].ID)
}

func TestUploadAvatarUnconfigured(t *testing.T) {
	t.Parallel()
	svc, _, _ := newUserFixture()
	ctx := context.Background()

	_, err := svc.UploadAvatar(ctx, "user-1", nil, "a.png", "image/png")
	require.Error(t, err)
}

func TestSearchWithoutESReturnsEmpty(t *testing.T) {
	t.Parallel()
	svc, _, _ := newUserFixture()
	ctx := context.Background()

	out, err := svc.Search(ctx, "alice", 10)
	require.NoError(t, err)
	require.Empty(t, out)
}
