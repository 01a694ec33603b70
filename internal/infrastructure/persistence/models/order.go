package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/vertinimas/portal/internal/domain/order"
	"github.com/vertinimas/portal/internal/domain/shared"
)

// OrderModel is the persistence model for valuation orders. Column names
// follow the Lithuanian field names used on the wire.
type OrderModel struct {
	ID           uuid.UUID        `gorm:"column:id;type:uuid;primaryKey"`
	Number       string           `gorm:"column:numeris;type:varchar(32);not null;uniqueIndex"`
	ClientName   string           `gorm:"column:vardas;type:varchar(200);not null"`
	Email        string           `gorm:"column:el_pastas;type:varchar(255);not null;index"`
	Phone        string           `gorm:"column:telefonas;type:varchar(50)"`
	Address      string           `gorm:"column:adresas;type:varchar(500);not null"`
	City         string           `gorm:"column:miestas;type:varchar(100)"`
	PropertyType string           `gorm:"column:turto_tipas;type:varchar(20);not null"`
	ServiceType  string           `gorm:"column:paslauga;type:varchar(20);not null;index"`
	Purpose      string           `gorm:"column:tikslas;type:text"`
	Status       string           `gorm:"column:statusas;type:varchar(20);not null;index"`
	Price        *decimal.Decimal `gorm:"column:kaina;type:decimal(12,2)"`
	AssignedTo   string           `gorm:"column:priskirta;type:varchar(16);index"`
	Notes        string           `gorm:"column:pastabos;type:text"`
	Latitude     *float64         `gorm:"column:platuma"`
	Longitude    *float64         `gorm:"column:ilguma"`
	ReportKey    string           `gorm:"column:ataskaita;type:varchar(500)"`
	CompletedAt  *time.Time       `gorm:"column:atlikta_at"`
	CreatedAt    time.Time        `gorm:"column:sukurta;not null;index"`
	UpdatedAt    time.Time        `gorm:"column:atnaujinta;not null"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// ToDomain converts the persistence model to a domain Order
func (m *OrderModel) ToDomain() *order.Order {
	return &order.Order{
		BaseEntity: shared.BaseEntity{
			ID:        m.ID,
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		Number:       m.Number,
		ClientName:   m.ClientName,
		Email:        m.Email,
		Phone:        m.Phone,
		Address:      m.Address,
		City:         m.City,
		PropertyType: order.PropertyType(m.PropertyType),
		ServiceType:  order.ServiceType(m.ServiceType),
		Purpose:      m.Purpose,
		Status:       order.Status(m.Status),
		Price:        m.Price,
		AssignedTo:   m.AssignedTo,
		Notes:        m.Notes,
		Latitude:     m.Latitude,
		Longitude:    m.Longitude,
		ReportKey:    m.ReportKey,
		CompletedAt:  m.CompletedAt,
	}
}

// OrderModelFromDomain creates a persistence model from a domain Order
func OrderModelFromDomain(o *order.Order) *OrderModel {
	return &OrderModel{
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
		Notes:        o.Notes,
		Latitude:     o.Latitude,
		Longitude:    o.Longitude,
		ReportKey:    o.ReportKey,
		CompletedAt:  utcPtr(o.CompletedAt),
		CreatedAt:    o.CreatedAt.UTC(),
		UpdatedAt:    o.UpdatedAt.UTC(),
	}
}

// ReportRowModel is the projection scanned by report queries
type ReportRowModel struct {
	ID           uuid.UUID        `gorm:"column:id"`
	CreatedAt    time.Time        `gorm:"column:sukurta"`
	CompletedAt  *time.Time       `gorm:"column:atlikta_at"`
	Status       string           `gorm:"column:statusas"`
	ServiceType  string           `gorm:"column:paslauga"`
	PropertyType string           `gorm:"column:turto_tipas"`
	AssignedTo   string           `gorm:"column:priskirta"`
	Price        *decimal.Decimal `gorm:"column:kaina"`
}

// ToDomain converts the projection to a domain ReportRow
func (m *ReportRowModel) ToDomain() order.ReportRow {
	row := order.ReportRow{
		ID:           m.ID,
		CreatedAt:    m.CreatedAt,
		CompletedAt:  m.CompletedAt,
		Status:       order.Status(m.Status),
		ServiceType:  order.ServiceType(m.ServiceType),
		PropertyType: order.PropertyType(m.PropertyType),
		AssignedTo:   m.AssignedTo,
	}
	if m.Price != nil {
		row.Price = *m.Price
		row.HasPrice = true
	}
	return row
}
