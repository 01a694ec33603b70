// Package valuator manages the valuators orders are assigned to.
package valuator

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vertinimas/portal/internal/domain/order"
	"github.com/vertinimas/portal/internal/domain/shared"
	"github.com/vertinimas/portal/internal/domain/valuator"
)

// Service handles valuator administration
type Service struct {
	valuators valuator.ValuatorRepository
	orders    order.OrderRepository
	logger    *zap.Logger
}

// NewService creates a new valuator service
func NewService(valuators valuator.ValuatorRepository, orders order.OrderRepository, logger *zap.Logger) *Service {
	return &Service{valuators: valuators, orders: orders, logger: logger}
}

// List returns a page of valuators
func (s *Service) List(ctx context.Context, q ListValuatorsQuery) (*shared.Paginated[ValuatorResponse], error) {
	p := shared.NormalizePage(q.Page, q.PageSize)
	items, total, err := s.valuators.FindAll(ctx, valuator.ValuatorFilter{
		Search:   q.Search,
		Active:   q.Active,
		Page:     p.Page,
		PageSize: p.PageSize,
	})
	if err != nil {
		return nil, err
	}
	out := make([]ValuatorResponse, len(items))
	for i, v := range items {
		out[i] = ToValuatorResponse(v)
	}
	page := shared.NewPaginated(out, total, p.Page, p.PageSize)
	return &page, nil
}

// Get returns a valuator with the number of orders assigned to it
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*ValuatorResponse, error) {
	v, err := s.valuators.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	count, err := s.orders.CountByAssignee(ctx, v.Code)
	if err != nil {
		return nil, fmt.Errorf("failed to count assigned orders: %w", err)
	}
	resp := ToValuatorResponse(v)
	resp.AssignedOrders = &count
	return &resp, nil
}

// Create adds an active valuator
func (s *Service) Create(ctx context.Context, input CreateValuatorInput) (*ValuatorResponse, error) {
	v, err := valuator.NewValuator(input.Code, input.Name)
	if err != nil {
		return nil, err
	}
	if err := v.Update(v.Name, input.Email, input.Phone); err != nil {
		return nil, err
	}

	exists, err := s.valuators.ExistsByCode(ctx, v.Code)
	if err != nil {
		return nil, fmt.Errorf("failed to check valuator code: %w", err)
	}
	if exists {
		return nil, valuator.ErrCodeTaken
	}
	if err := s.valuators.Create(ctx, v); err != nil {
		return nil, err
	}

	s.logger.Info("Valuator created", zap.String("code", v.Code))
	resp := ToValuatorResponse(v)
	return &resp, nil
}

// Update changes contact details and toggles whether new orders can be assigned
func (s *Service) Update(ctx context.Context, id uuid.UUID, input UpdateValuatorInput) (*ValuatorResponse, error) {
	v, err := s.valuators.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	name, email, phone := v.Name, v.Email, v.Phone
	if input.Name != nil {
		name = *input.Name
	}
	if input.Email != nil {
		email = *input.Email
	}
	if input.Phone != nil {
		phone = *input.Phone
	}
	if err := v.Update(name, email, phone); err != nil {
		return nil, err
	}
	if input.Active != nil {
		if *input.Active {
			v.Activate()
		} else {
			v.Deactivate()
		}
	}

	if err := s.valuators.Update(ctx, v); err != nil {
		return nil, err
	}
	resp := ToValuatorResponse(v)
	return &resp, nil
}

// Delete removes a valuator that has no orders assigned
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	v, err := s.valuators.FindByID(ctx, id)
	if err != nil {
		return err
	}
	count, err := s.orders.CountByAssignee(ctx, v.Code)
	if err != nil {
		return fmt.Errorf("failed to count assigned orders: %w", err)
	}
	if count > 0 {
		return valuator.ErrHasOrders.WithArgs(count)
	}
	if err := s.valuators.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Valuator deleted", zap.String("code", v.Code))
	return nil
}
