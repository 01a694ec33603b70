// Package client lets administrators manage client accounts.
package client

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vertinimas/portal/internal/domain/identity"
	"github.com/vertinimas/portal/internal/domain/order"
	"github.com/vertinimas/portal/internal/domain/shared"
	"github.com/vertinimas/portal/internal/infrastructure/auth"
)

var (
	ErrAdminNotDeletable = shared.ErrForbidden.WithReason("client.is_admin", "Administrator accounts cannot be deleted here")
	ErrAdminNotEditable  = shared.ErrForbidden.WithReason("client.admin_not_editable", "Administrator accounts cannot be edited here")
	ErrHasOrders         = shared.ErrConflict.WithReason("client.has_orders", "Client has %d orders and cannot be deleted")
)

// Service handles client account administration
type Service struct {
	users     identity.UserRepository
	orders    order.OrderRepository
	blacklist auth.TokenBlacklist
	// sessionTTL bounds how long a revocation must be remembered
	sessionTTL time.Duration
	logger     *zap.Logger
}

// NewService creates a new client service. sessionTTL is the session token
// lifetime.
func NewService(
	users identity.UserRepository,
	orders order.OrderRepository,
	blacklist auth.TokenBlacklist,
	sessionTTL time.Duration,
	logger *zap.Logger,
) *Service {
	return &Service{
		users:      users,
		orders:     orders,
		blacklist:  blacklist,
		sessionTTL: sessionTTL,
		logger:     logger,
	}
}

// List returns a page of client accounts
func (s *Service) List(ctx context.Context, q ListClientsQuery) (*shared.Paginated[ClientResponse], error) {
	filter := identity.NewUserFilter()
	role := identity.RoleClient
	filter.Role = &role
	filter.Search = q.Search

	p := shared.NormalizePage(q.Page, q.PageSize)
	filter.Page, filter.PageSize = p.Page, p.PageSize
	if q.SortBy != "" {
		filter.SortBy = q.SortBy
	}
	if q.SortOrder != "" {
		filter.SortOrder = q.SortOrder
	}
	if q.Status != "" {
		status := identity.UserStatus(q.Status)
		if !status.IsValid() {
			return nil, identity.ErrInvalidStatus
		}
		filter.Status = &status
	}

	users, total, err := s.users.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]ClientResponse, len(users))
	for i, u := range users {
		items[i] = ToClientResponse(u)
	}
	page := shared.NewPaginated(items, total, p.Page, p.PageSize)
	return &page, nil
}

// Get returns a client account with the number of orders placed with its email
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*ClientResponse, error) {
	u, err := s.findClient(ctx, id)
	if err != nil {
		return nil, err
	}
	count, err := s.orders.CountByEmail(ctx, u.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to count client orders: %w", err)
	}
	resp := ToClientResponse(u)
	resp.OrderCount = &count
	return &resp, nil
}

// findClient loads a client account; administrators are reported as not found
func (s *Service) findClient(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u.IsAdmin() {
		return nil, identity.ErrUserNotFound
	}
	return u, nil
}

// Update changes profile fields and the account status. Disabling an
// account ends its sessions.
func (s *Service) Update(ctx context.Context, id uuid.UUID, input UpdateClientInput) (*ClientResponse, error) {
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u.IsAdmin() {
		return nil, ErrAdminNotEditable
	}

	name, phone, company := u.Name, u.Phone, u.Company
	if input.Name != nil {
		name = *input.Name
	}
	if input.Phone != nil {
		phone = *input.Phone
	}
	if input.Company != nil {
		company = *input.Company
	}
	if err := u.UpdateProfile(name, phone, company); err != nil {
		return nil, err
	}

	disabled := false
	if input.Status != nil {
		next := identity.UserStatus(*input.Status)
		disabled = next == identity.UserStatusDisabled && u.Status != identity.UserStatusDisabled
		if err := u.SetStatus(next); err != nil {
			return nil, err
		}
	}

	if err := s.users.Update(ctx, u); err != nil {
		return nil, err
	}
	if disabled {
		s.endSessions(ctx, u)
	}

	resp := ToClientResponse(u)
	return &resp, nil
}

// Delete removes a client account without orders
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if u.IsAdmin() {
		return ErrAdminNotDeletable
	}
	count, err := s.orders.CountByEmail(ctx, u.Email)
	if err != nil {
		return fmt.Errorf("failed to count client orders: %w", err)
	}
	if count > 0 {
		return ErrHasOrders.WithArgs(count)
	}
	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}
	s.endSessions(ctx, u)
	s.logger.Info("Client deleted", zap.String("user_id", id.String()))
	return nil
}

func (s *Service) endSessions(ctx context.Context, u *identity.User) {
	if err := s.blacklist.AddUserTokensToBlacklist(ctx, u.ID.String(), s.sessionTTL); err != nil {
		s.logger.Error("Failed to revoke client sessions",
			zap.String("user_id", u.ID.String()),
			zap.Error(err))
	}
}
