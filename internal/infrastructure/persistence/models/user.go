package models

import (
	"time"

	"github.com/vertinimas/portal/internal/domain/identity"
)

// UserModel is the persistence model for portal accounts
type UserModel struct {
	BaseModel
	Email        string `gorm:"type:varchar(255);not null;uniqueIndex"`
	PasswordHash string `gorm:"type:varchar(255);not null"`
	Name         string `gorm:"type:varchar(200);not null"`
	Phone        string `gorm:"type:varchar(50)"`
	Company      string `gorm:"type:varchar(200)"`
	Role         string `gorm:"type:varchar(20);not null;index"`
	Status       string `gorm:"type:varchar(20);not null"`
	LastLoginAt  *time.Time
}

// TableName returns the table name for GORM
func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts the persistence model to a domain User
func (m *UserModel) ToDomain() *identity.User {
	return &identity.User{
		BaseEntity:   m.BaseModel.ToDomain(),
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		Name:         m.Name,
		Phone:        m.Phone,
		Company:      m.Company,
		Role:         identity.Role(m.Role),
		Status:       identity.UserStatus(m.Status),
		LastLoginAt:  m.LastLoginAt,
	}
}

// UserModelFromDomain creates a persistence model from a domain User
func UserModelFromDomain(u *identity.User) *UserModel {
	m := &UserModel{
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Name:         u.Name,
		Phone:        u.Phone,
		Company:      u.Company,
		Role:         string(u.Role),
		Status:       string(u.Status),
		LastLoginAt:  utcPtr(u.LastLoginAt),
	}
	m.FromDomainBaseEntity(u.BaseEntity)
	return m
}
