package models

import "github.com/vertinimas/portal/internal/domain/valuator"

// ValuatorModel is the persistence model for valuators
type ValuatorModel struct {
	BaseModel
	Code   string `gorm:"type:varchar(16);not null;uniqueIndex"`
	Name   string `gorm:"type:varchar(200);not null"`
	Email  string `gorm:"type:varchar(255)"`
	Phone  string `gorm:"type:varchar(50)"`
	Active bool   `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ValuatorModel) TableName() string {
	return "valuators"
}

// ToDomain converts the persistence model to a domain Valuator
func (m *ValuatorModel) ToDomain() *valuator.Valuator {
	return &valuator.Valuator{
		BaseEntity: m.BaseModel.ToDomain(),
		Code:       m.Code,
		Name:       m.Name,
		Email:      m.Email,
		Phone:      m.Phone,
		Active:     m.Active,
	}
}

// ValuatorModelFromDomain creates a persistence model from a domain Valuator
func ValuatorModelFromDomain(v *valuator.Valuator) *ValuatorModel {
	m := &ValuatorModel{
		Code:   v.Code,
		Name:   v.Name,
		Email:  v.Email,
		Phone:  v.Phone,
		Active: v.Active,
	}
	m.FromDomainBaseEntity(v.BaseEntity)
	return m
}
