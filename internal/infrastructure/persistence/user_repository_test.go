package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vertinimas/portal/internal/domain/identity"
	"github.com/vertinimas/portal/internal/domain/shared"
)

func newClient(t *testing.T, email, name string) *identity.User {
	t.Helper()
	u, err := identity.NewClient(email, "slaptas123", name, "")
	require.NoError(t, err)
	return u
}

func TestGormUserRepository_CreateAndFind(t *testing.T) {
	repo := NewGormUserRepository(newSQLiteDB(t))
	ctx := context.Background()

	u := newClient(t, "ona@example.lt", "Ona Onaitė")
	require.NoError(t, repo.Create(ctx, u))

	found, err := repo.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "ona@example.lt", found.Email)
	assert.Equal(t, identity.RoleClient, found.Role)
	assert.True(t, found.VerifyPassword("slaptas123"))

	found, err = repo.FindByEmail(ctx, "  ONA@example.LT ")
	require.NoError(t, err)
	assert.Equal(t, u.ID, found.ID)

	exists, err := repo.ExistsByEmail(ctx, "Ona@Example.lt")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestGormUserRepository_DuplicateEmail(t *testing.T) {
	repo := NewGormUserRepository(newSQLiteDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newClient(t, "ona@example.lt", "Ona")))

	err := repo.Create(ctx, newClient(t, "ona@example.lt", "Kita Ona"))
	require.Error(t, err)
	assert.ErrorIs(t, err, identity.ErrEmailTaken)
	assert.ErrorIs(t, err, shared.ErrAlreadyExists)
}

func TestGormUserRepository_NotFound(t *testing.T) {
	repo := NewGormUserRepository(newSQLiteDB(t))
	ctx := context.Background()

	_, err := repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)

	_, err = repo.FindByEmail(ctx, "")
	assert.ErrorIs(t, err, identity.ErrUserNotFound)

	assert.ErrorIs(t, repo.Delete(ctx, uuid.New()), shared.ErrNotFound)
	assert.ErrorIs(t, repo.Update(ctx, newClient(t, "x@example.lt", "X")), shared.ErrNotFound)
}

func TestGormUserRepository_Update(t *testing.T) {
	repo := NewGormUserRepository(newSQLiteDB(t))
	ctx := context.Background()

	u := newClient(t, "ona@example.lt", "Ona")
	require.NoError(t, repo.Create(ctx, u))

	require.NoError(t, u.UpdateProfile("Ona Naujoji", "+37061111111", "UAB Namai"))
	u.Disable()
	require.NoError(t, repo.Update(ctx, u))

	found, err := repo.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ona Naujoji", found.Name)
	assert.Equal(t, "UAB Namai", found.Company)
	assert.Equal(t, identity.UserStatusDisabled, found.Status)
}

func TestGormUserRepository_FindAll(t *testing.T) {
	repo := NewGormUserRepository(newSQLiteDB(t))
	ctx := context.Background()

	for _, name := range []string{"Ona", "Petras", "Jonas"} {
		require.NoError(t, repo.Create(ctx, newClient(t, name+"@example.lt", name)))
	}
	admin, err := identity.NewAdmin("admin@example.lt", "admin1234", "Admin")
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, admin))

	role := identity.RoleClient
	filter := identity.NewUserFilter()
	filter.Role = &role
	filter.SortBy = "name"
	filter.SortOrder = "asc"

	users, total, err := repo.FindAll(ctx, filter)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, users, 3)
	assert.Equal(t, "Jonas", users[0].Name)

	filter.Search = "PETR"
	users, total, err = repo.FindAll(ctx, filter)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, users, 1)
	assert.Equal(t, "Petras", users[0].Name)

	filter.Search = ""
	filter.PageSize = 2
	filter.Page = 2
	users, total, err = repo.FindAll(ctx, filter)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, users, 1)
}

func TestGormUserRepository_CountCreatedBetween(t *testing.T) {
	repo := NewGormUserRepository(newSQLiteDB(t))
	ctx := context.Background()

	base := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	for i, offset := range []int{-40, -3, 0, 5} {
		u := newClient(t, uuid.NewString()+"@example.lt", "Client")
		u.CreatedAt = base.AddDate(0, 0, offset)
		u.UpdatedAt = u.CreatedAt
		require.NoError(t, repo.Create(ctx, u), "client %d", i)
	}

	count, err := repo.CountCreatedBetween(ctx, identity.RoleClient, base.AddDate(0, 0, -7), base.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	count, err = repo.CountCreatedBetween(ctx, identity.RoleAdmin, base.AddDate(0, 0, -7), base.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestGormUserRepository_FindByID_Postgres(t *testing.T) {
	db, mock, mockDB := newMockPostgres(t)
	defer mockDB.Close()
	repo := NewGormUserRepository(db)

	id := uuid.New()
	rows := sqlmock.NewRows([]string{"id", "email", "name", "role", "status"}).
		AddRow(id, "ona@example.lt", "Ona", "client", "active")
	mock.ExpectQuery(`SELECT \* FROM "users" WHERE id = \$1 ORDER BY .* LIMIT .*`).
		WithArgs(id, 1).
		WillReturnRows(rows)

	u, err := repo.FindByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "ona@example.lt", u.Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}
