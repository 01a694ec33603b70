package client

import (
	"time"

	"github.com/google/uuid"

	"github.com/vertinimas/portal/internal/domain/identity"
)

// ListClientsQuery contains query parameters for the client listing
type ListClientsQuery struct {
	Search    string `form:"q" binding:"omitempty,max=100"`
	Status    string `form:"status" binding:"omitempty,oneof=active disabled"`
	Page      int    `form:"page" binding:"omitempty,min=1"`
	PageSize  int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	SortBy    string `form:"sort_by" binding:"omitempty,oneof=created_at email name last_login_at"`
	SortOrder string `form:"sort_order" binding:"omitempty,oneof=asc desc"`
}

// UpdateClientInput is a partial update of a client account
type UpdateClientInput struct {
	Name    *string `json:"name" binding:"omitempty,max=200"`
	Phone   *string `json:"phone" binding:"omitempty,max=32"`
	Company *string `json:"company" binding:"omitempty,max=200"`
	Status  *string `json:"status" binding:"omitempty,oneof=active disabled"`
}

// ClientResponse is the admin view of a client account
type ClientResponse struct {
	ID          uuid.UUID  `json:"id"`
	Email       string     `json:"email"`
	Name        string     `json:"name"`
	Phone       string     `json:"phone,omitempty"`
	Company     string     `json:"company,omitempty"`
	Status      string     `json:"status"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	// OrderCount is only filled by Get
	OrderCount *int64 `json:"order_count,omitempty"`
}

// ToClientResponse converts a domain user
func ToClientResponse(u *identity.User) ClientResponse {
	return ClientResponse{
		ID:          u.ID,
		Email:       u.Email,
		Name:        u.Name,
		Phone:       u.Phone,
		Company:     u.Company,
		Status:      string(u.Status),
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}
