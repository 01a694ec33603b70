package order

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderRepository defines the interface for order persistence
type OrderRepository interface {
	Create(ctx context.Context, o *Order) error
	Update(ctx context.Context, o *Order) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)
	FindAll(ctx context.Context, filter OrderFilter) ([]*Order, int64, error)

	// CountByEmail counts orders placed with the contact email
	CountByEmail(ctx context.Context, email string) (int64, error)

	// CountByAssignee counts orders assigned to the valuator code
	CountByAssignee(ctx context.Context, code string) (int64, error)

	// ListForReport returns lightweight rows for orders created or completed in [from, to]
	ListForReport(ctx context.Context, from, to time.Time) ([]ReportRow, error)
}

// OrderFilter contains filter options for listing orders
type OrderFilter struct {
	Email       string
	Status      *Status
	AssignedTo  *string
	ServiceType *ServiceType
	// Search matches number, client name, email and address
	Search string
	From   *time.Time
	To     *time.Time

	Page     int
	PageSize int

	SortBy    string
	SortOrder string
}

// NewOrderFilter creates a filter with default paging and sorting
func NewOrderFilter() OrderFilter {
	return OrderFilter{
		Page:      1,
		PageSize:  20,
		SortBy:    "created_at",
		SortOrder: "desc",
	}
}

// ReportRow is the projection of an order used by aggregate reports
type ReportRow struct {
	ID           uuid.UUID
	CreatedAt    time.Time
	CompletedAt  *time.Time
	Status       Status
	ServiceType  ServiceType
	PropertyType PropertyType
	AssignedTo   string
	Price        decimal.Decimal
	HasPrice     bool
}

// RevenueAt returns the instant revenue is recognized: completion, or creation
// for legacy rows without a completion stamp
func (r ReportRow) RevenueAt() time.Time {
	if r.CompletedAt != nil {
		return *r.CompletedAt
	}
	return r.CreatedAt
}

// IsRevenue reports whether the row contributes to revenue
func (r ReportRow) IsRevenue() bool {
	return r.Status == StatusCompleted && r.HasPrice
}
