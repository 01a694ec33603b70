package auth

import (
	"time"

	"github.com/google/uuid"

	"github.com/vertinimas/portal/internal/domain/identity"
)

// RegisterInput contains the input for client self-registration
type RegisterInput struct {
	Email    string `json:"email" binding:"required,email,max=254"`
	Password string `json:"password" binding:"required,min=8,max=72"`
	Name     string `json:"name" binding:"required,max=200"`
	Phone    string `json:"phone" binding:"omitempty,max=32"`
	Company  string `json:"company" binding:"omitempty,max=200"`
}

// LoginInput contains the input for user login
type LoginInput struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UpdateProfileInput contains the editable profile fields
type UpdateProfileInput struct {
	Name    string `json:"name" binding:"required,max=200"`
	Phone   string `json:"phone" binding:"omitempty,max=32"`
	Company string `json:"company" binding:"omitempty,max=200"`
}

// ChangePasswordInput contains the input for a password change
type ChangePasswordInput struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8,max=72"`
}

// UserInfo is the public view of an account
type UserInfo struct {
	ID          uuid.UUID  `json:"id"`
	Email       string     `json:"email"`
	Name        string     `json:"name"`
	Phone       string     `json:"phone,omitempty"`
	Company     string     `json:"company,omitempty"`
	Role        string     `json:"role"`
	Status      string     `json:"status"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// ToUserInfo converts a domain user to its public view
func ToUserInfo(u *identity.User) UserInfo {
	return UserInfo{
		ID:          u.ID,
		Email:       u.Email,
		Name:        u.Name,
		Phone:       u.Phone,
		Company:     u.Company,
		Role:        string(u.Role),
		Status:      string(u.Status),
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
	}
}

// SessionResult is returned after a successful login or registration
type SessionResult struct {
	User      UserInfo
	Token     string
	TokenID   string
	ExpiresAt time.Time
}
