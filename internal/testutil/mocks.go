// Package testutil holds testify mocks of the domain repositories shared by
// the application service tests.
package testutil

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/vertinimas/portal/internal/domain/geo"
	"github.com/vertinimas/portal/internal/domain/identity"
	"github.com/vertinimas/portal/internal/domain/order"
	"github.com/vertinimas/portal/internal/domain/valuator"
)

// MockUserRepository is a mock implementation of identity.UserRepository
type MockUserRepository struct {
	mock.Mock
}

var _ identity.UserRepository = (*MockUserRepository)(nil)

func (m *MockUserRepository) Create(ctx context.Context, user *identity.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) Update(ctx context.Context, user *identity.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) FindAll(ctx context.Context, filter identity.UserFilter) ([]*identity.User, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*identity.User), args.Get(1).(int64), args.Error(2)
}

func (m *MockUserRepository) CountCreatedBetween(ctx context.Context, role identity.Role, from, to time.Time) (int64, error) {
	args := m.Called(ctx, role, from, to)
	return args.Get(0).(int64), args.Error(1)
}

// MockValuatorRepository is a mock implementation of valuator.ValuatorRepository
type MockValuatorRepository struct {
	mock.Mock
}

var _ valuator.ValuatorRepository = (*MockValuatorRepository)(nil)

func (m *MockValuatorRepository) Create(ctx context.Context, v *valuator.Valuator) error {
	return m.Called(ctx, v).Error(0)
}

func (m *MockValuatorRepository) Update(ctx context.Context, v *valuator.Valuator) error {
	return m.Called(ctx, v).Error(0)
}

func (m *MockValuatorRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockValuatorRepository) FindByID(ctx context.Context, id uuid.UUID) (*valuator.Valuator, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*valuator.Valuator), args.Error(1)
}

func (m *MockValuatorRepository) FindByCode(ctx context.Context, code string) (*valuator.Valuator, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*valuator.Valuator), args.Error(1)
}

func (m *MockValuatorRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	args := m.Called(ctx, code)
	return args.Bool(0), args.Error(1)
}

func (m *MockValuatorRepository) FindAll(ctx context.Context, filter valuator.ValuatorFilter) ([]*valuator.Valuator, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*valuator.Valuator), args.Get(1).(int64), args.Error(2)
}

func (m *MockValuatorRepository) FindByCodes(ctx context.Context, codes []string) (map[string]*valuator.Valuator, error) {
	args := m.Called(ctx, codes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]*valuator.Valuator), args.Error(1)
}

// MockOrderRepository is a mock implementation of order.OrderRepository
type MockOrderRepository struct {
	mock.Mock
}

var _ order.OrderRepository = (*MockOrderRepository)(nil)

func (m *MockOrderRepository) Create(ctx context.Context, o *order.Order) error {
	return m.Called(ctx, o).Error(0)
}

func (m *MockOrderRepository) Update(ctx context.Context, o *order.Order) error {
	return m.Called(ctx, o).Error(0)
}

func (m *MockOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) FindAll(ctx context.Context, filter order.OrderFilter) ([]*order.Order, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*order.Order), args.Get(1).(int64), args.Error(2)
}

func (m *MockOrderRepository) CountByEmail(ctx context.Context, email string) (int64, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderRepository) CountByAssignee(ctx context.Context, code string) (int64, error) {
	args := m.Called(ctx, code)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderRepository) ListForReport(ctx context.Context, from, to time.Time) ([]order.ReportRow, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.ReportRow), args.Error(1)
}

// MockGeocoder is a mock implementation of geo.Geocoder
type MockGeocoder struct {
	mock.Mock
}

var _ geo.Geocoder = (*MockGeocoder)(nil)

func (m *MockGeocoder) Geocode(ctx context.Context, address string) (*geo.Location, error) {
	args := m.Called(ctx, address)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*geo.Location), args.Error(1)
}
