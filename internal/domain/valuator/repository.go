package valuator

import (
	"context"

	"github.com/google/uuid"
)

// ValuatorRepository defines the interface for valuator persistence
type ValuatorRepository interface {
	Create(ctx context.Context, v *Valuator) error
	Update(ctx context.Context, v *Valuator) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*Valuator, error)
	FindByCode(ctx context.Context, code string) (*Valuator, error)
	ExistsByCode(ctx context.Context, code string) (bool, error)
	FindAll(ctx context.Context, filter ValuatorFilter) ([]*Valuator, int64, error)

	// FindByCodes returns valuators keyed by code; unknown codes are omitted
	FindByCodes(ctx context.Context, codes []string) (map[string]*Valuator, error)
}

// ValuatorFilter contains filter options for listing valuators
type ValuatorFilter struct {
	Search   string
	Active   *bool
	Page     int
	PageSize int
}
