package valuator

import (
	"time"

	"github.com/google/uuid"

	"github.com/vertinimas/portal/internal/domain/valuator"
)

// CreateValuatorInput contains the input for adding a valuator
type CreateValuatorInput struct {
	Code  string `json:"code" binding:"required,min=2,max=16"`
	Name  string `json:"name" binding:"required,max=200"`
	Email string `json:"email" binding:"omitempty,email,max=254"`
	Phone string `json:"phone" binding:"omitempty,max=32"`
}

// UpdateValuatorInput is a partial update. The code cannot change because
// orders refer to it.
type UpdateValuatorInput struct {
	Name   *string `json:"name" binding:"omitempty,max=200"`
	Email  *string `json:"email" binding:"omitempty,max=254"`
	Phone  *string `json:"phone" binding:"omitempty,max=32"`
	Active *bool   `json:"active"`
}

// ListValuatorsQuery contains query parameters for the valuator listing
type ListValuatorsQuery struct {
	Search   string `form:"q" binding:"omitempty,max=100"`
	Active   *bool  `form:"active"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// ValuatorResponse is the wire representation of a valuator
type ValuatorResponse struct {
	ID        uuid.UUID `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	// AssignedOrders is only filled by Get
	AssignedOrders *int64 `json:"assigned_orders,omitempty"`
}

// ToValuatorResponse converts a domain valuator
func ToValuatorResponse(v *valuator.Valuator) ValuatorResponse {
	return ValuatorResponse{
		ID:        v.ID,
		Code:      v.Code,
		Name:      v.Name,
		Email:     v.Email,
		Phone:     v.Phone,
		Active:    v.Active,
		CreatedAt: v.CreatedAt,
		UpdatedAt: v.UpdatedAt,
	}
}
