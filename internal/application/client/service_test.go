package client

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vertinimas/portal/internal/domain/identity"
	"github.com/vertinimas/portal/internal/domain/shared"
	"github.com/vertinimas/portal/internal/infrastructure/auth"
	"github.com/vertinimas/portal/internal/testutil"
)

type fixture struct {
	svc       *Service
	users     *testutil.MockUserRepository
	orders    *testutil.MockOrderRepository
	blacklist *auth.InMemoryTokenBlacklist
}

func newFixture() *fixture {
	f := &fixture{
		users:     new(testutil.MockUserRepository),
		orders:    new(testutil.MockOrderRepository),
		blacklist: auth.NewInMemoryTokenBlacklist(),
	}
	f.svc = NewService(f.users, f.orders, f.blacklist, time.Hour, zap.NewNop())
	return f
}

func newClient(t *testing.T) *identity.User {
	t.Helper()
	u, err := identity.NewClient("ona@example.lt", "slaptas123", "Ona Onaitė", "")
	require.NoError(t, err)
	return u
}

func newAdmin(t *testing.T) *identity.User {
	t.Helper()
	u, err := identity.NewAdmin("admin@example.lt", "Admin12345", "Admin")
	require.NoError(t, err)
	return u
}

func sessionRevoked(t *testing.T, f *fixture, u *identity.User) bool {
	t.Helper()
	revoked, err := f.blacklist.IsUserTokenInvalidated(context.Background(), u.ID.String(), time.Now().Add(-time.Minute))
	require.NoError(t, err)
	return revoked
}

func TestService_List(t *testing.T) {
	f := newFixture()
	f.users.On("FindAll", mock.Anything, mock.MatchedBy(func(fl identity.UserFilter) bool {
		return fl.Role != nil && *fl.Role == identity.RoleClient &&
			fl.Status != nil && *fl.Status == identity.UserStatusDisabled &&
			fl.Search == "ona" && fl.Page == 1 && fl.PageSize == 20
	})).Return([]*identity.User{newClient(t)}, int64(1), nil)

	page, err := f.svc.List(context.Background(), ListClientsQuery{Search: "ona", Status: "disabled"})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "ona@example.lt", page.Items[0].Email)

	_, err = f.svc.List(context.Background(), ListClientsQuery{Status: "deleted"})
	assert.ErrorIs(t, err, identity.ErrInvalidStatus)
}

func TestService_Get(t *testing.T) {
	f := newFixture()
	u := newClient(t)
	adm := newAdmin(t)
	f.users.On("FindByID", mock.Anything, u.ID).Return(u, nil)
	f.users.On("FindByID", mock.Anything, adm.ID).Return(adm, nil)
	f.orders.On("CountByEmail", mock.Anything, "ona@example.lt").Return(int64(3), nil)

	resp, err := f.svc.Get(context.Background(), u.ID)
	require.NoError(t, err)
	require.NotNil(t, resp.OrderCount)
	assert.Equal(t, int64(3), *resp.OrderCount)

	_, err = f.svc.Get(context.Background(), adm.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestService_Update_DisableRevokesSessions(t *testing.T) {
	f := newFixture()
	u := newClient(t)
	f.users.On("FindByID", mock.Anything, u.ID).Return(u, nil)
	f.users.On("Update", mock.Anything, u).Return(nil)

	company := "UAB Būstas"
	status := "disabled"
	resp, err := f.svc.Update(context.Background(), u.ID, UpdateClientInput{Company: &company, Status: &status})
	require.NoError(t, err)

	assert.Equal(t, "disabled", resp.Status)
	assert.Equal(t, "UAB Būstas", resp.Company)
	assert.Equal(t, "Ona Onaitė", resp.Name)
	assert.False(t, u.CanLogin())
	assert.True(t, sessionRevoked(t, f, u))
}

func TestService_Update_ProfileOnlyKeepsSessions(t *testing.T) {
	f := newFixture()
	u := newClient(t)
	f.users.On("FindByID", mock.Anything, u.ID).Return(u, nil)
	f.users.On("Update", mock.Anything, u).Return(nil)

	phone := "+37061111111"
	_, err := f.svc.Update(context.Background(), u.ID, UpdateClientInput{Phone: &phone})
	require.NoError(t, err)
	assert.False(t, sessionRevoked(t, f, u))
}

func TestService_Update_Rejections(t *testing.T) {
	f := newFixture()
	adm := newAdmin(t)
	u := newClient(t)
	f.users.On("FindByID", mock.Anything, adm.ID).Return(adm, nil)
	f.users.On("FindByID", mock.Anything, u.ID).Return(u, nil)

	_, err := f.svc.Update(context.Background(), adm.ID, UpdateClientInput{})
	assert.ErrorIs(t, err, shared.ErrForbidden)

	bad := "abc"
	_, err = f.svc.Update(context.Background(), u.ID, UpdateClientInput{Phone: &bad})
	assert.ErrorIs(t, err, identity.ErrInvalidPhone)
	f.users.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("admin is forbidden", func(t *testing.T) {
		f := newFixture()
		adm := newAdmin(t)
		f.users.On("FindByID", mock.Anything, adm.ID).Return(adm, nil)

		err := f.svc.Delete(ctx, adm.ID)
		assert.ErrorIs(t, err, ErrAdminNotDeletable)
		assert.ErrorIs(t, err, shared.ErrForbidden)
	})

	t.Run("client with orders", func(t *testing.T) {
		f := newFixture()
		u := newClient(t)
		f.users.On("FindByID", mock.Anything, u.ID).Return(u, nil)
		f.orders.On("CountByEmail", mock.Anything, u.Email).Return(int64(2), nil)

		err := f.svc.Delete(ctx, u.ID)
		assert.ErrorIs(t, err, shared.ErrConflict)
		assert.EqualError(t, err, "Client has 2 orders and cannot be deleted")
		f.users.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("client without orders", func(t *testing.T) {
		f := newFixture()
		u := newClient(t)
		f.users.On("FindByID", mock.Anything, u.ID).Return(u, nil)
		f.users.On("Delete", mock.Anything, u.ID).Return(nil)
		f.orders.On("CountByEmail", mock.Anything, u.Email).Return(int64(0), nil)

		require.NoError(t, f.svc.Delete(ctx, u.ID))
		assert.True(t, sessionRevoked(t, f, u))
	})
}
