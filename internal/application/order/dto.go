package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vertinimas/portal/internal/domain/order"
)

// CreateOrderInput contains the fields a client fills in when ordering a
// valuation. Name and email come from the account.
type CreateOrderInput struct {
	Phone        string `json:"telefonas" binding:"omitempty,max=32"`
	Address      string `json:"adresas" binding:"required,max=300"`
	City         string `json:"miestas" binding:"omitempty,max=100"`
	PropertyType string `json:"turto_tipas" binding:"required,oneof=butas namas sklypas komercinis kita"`
	ServiceType  string `json:"paslauga" binding:"required,oneof=rinkos_verte bankui paveldejimui teismui kita"`
	Purpose      string `json:"tikslas" binding:"omitempty,max=2000"`
}

// ListOrdersQuery contains query parameters for order listings
type ListOrdersQuery struct {
	Status      string `form:"statusas" binding:"omitempty,oneof=nauja vykdoma atlikta atsaukta"`
	ServiceType string `form:"paslauga" binding:"omitempty,oneof=rinkos_verte bankui paveldejimui teismui kita"`
	AssignedTo  string `form:"priskirta" binding:"omitempty,max=16"`
	Search      string `form:"q" binding:"omitempty,max=100"`
	From        string `form:"from" binding:"omitempty,datetime=2006-01-02"`
	To          string `form:"to" binding:"omitempty,datetime=2006-01-02"`
	Page        int    `form:"page" binding:"omitempty,min=1"`
	PageSize    int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	SortBy      string `form:"sort_by" binding:"omitempty,oneof=created_at updated_at numeris statusas kaina"`
	SortOrder   string `form:"sort_order" binding:"omitempty,oneof=asc desc"`
}

// UpdateOrderInput is a partial admin update. Nil fields are left unchanged.
type UpdateOrderInput struct {
	Status *string `json:"statusas" binding:"omitempty,oneof=nauja vykdoma atlikta atsaukta"`
	// Price is a decimal string; an empty string clears the price
	Price        *string `json:"kaina" binding:"omitempty,max=32"`
	AssignedTo   *string `json:"priskirta" binding:"omitempty,max=16"`
	Notes        *string `json:"pastabos" binding:"omitempty,max=4000"`
	Address      *string `json:"adresas" binding:"omitempty,max=300"`
	City         *string `json:"miestas" binding:"omitempty,max=100"`
	ServiceType  *string `json:"paslauga" binding:"omitempty,oneof=rinkos_verte bankui paveldejimui teismui kita"`
	PropertyType *string `json:"turto_tipas" binding:"omitempty,oneof=butas namas sklypas komercinis kita"`
}

// OrderResponse is the wire representation of an order
type OrderResponse struct {
	ID           uuid.UUID        `json:"id"`
	Number       string           `json:"numeris"`
	ClientName   string           `json:"vardas"`
	Email        string           `json:"el_pastas"`
	Phone        string           `json:"telefonas"`
	Address      string           `json:"adresas"`
	City         string           `json:"miestas"`
	PropertyType string           `json:"turto_tipas"`
	ServiceType  string           `json:"paslauga"`
	Purpose      string           `json:"tikslas"`
	Status       string           `json:"statusas"`
	Price        *decimal.Decimal `json:"kaina"`
	AssignedTo   string           `json:"priskirta"`
	Notes        string           `json:"pastabos,omitempty"`
	Latitude     *float64         `json:"platuma"`
	Longitude    *float64         `json:"ilguma"`
	HasReport    bool             `json:"turi_ataskaita"`
	CompletedAt  *time.Time       `json:"atlikta_at"`
	CreatedAt    time.Time        `json:"sukurta"`
	UpdatedAt    time.Time        `json:"atnaujinta"`
}

// ToOrderResponse converts a domain order. Admin notes are only included
// when withNotes is set.
func ToOrderResponse(o *order.Order, withNotes bool) OrderResponse {
	resp := OrderResponse{
		ID:           o.ID,
		Number:       o.Number,
		ClientName:   o.ClientName,
		Email:        o.Email,
		Phone:        o.Phone,
		Address:      o.Address,
		City:         o.City,
		PropertyType: string(o.PropertyType),
		ServiceType:  string(o.ServiceType),
		Purpose:      o.Purpose,
		Status:       string(o.Status),
		Price:        o.Price,
		AssignedTo:   o.AssignedTo,
		Latitude:     o.Latitude,
		Longitude:    o.Longitude,
		HasReport:    o.HasReport(),
		CompletedAt:  o.CompletedAt,
		CreatedAt:    o.CreatedAt,
		UpdatedAt:    o.UpdatedAt,
	}
	if withNotes {
		resp.Notes = o.Notes
	}
	return resp
}

// ToOrderResponses converts a slice of domain orders
func ToOrderResponses(orders []*order.Order, withNotes bool) []OrderResponse {
	out := make([]OrderResponse, len(orders))
	for i, o := range orders {
		out[i] = ToOrderResponse(o, withNotes)
	}
	return out
}

// ReportLink is a time-limited download link for a valuation report
type ReportLink struct {
	URL       string    `json:"url"`
	Filename  string    `json:"filename"`
	ExpiresAt time.Time `json:"expires_at"`
}

// UploadReportInput describes an uploaded valuation report file
type UploadReportInput struct {
	Filename    string
	ContentType string
	Size        int64
}
