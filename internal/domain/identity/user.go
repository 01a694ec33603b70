package identity

import (
	"regexp"
	"strings"
	"time"

	"github.com/vertinimas/portal/internal/domain/shared"
	"golang.org/x/crypto/bcrypt"
)

// Role is the portal role of a user
type Role string

const (
	RoleClient Role = "client"
	RoleAdmin  Role = "admin"
)

// IsValid reports whether the role is known
func (r Role) IsValid() bool {
	return r == RoleClient || r == RoleAdmin
}

// UserStatus represents the status of a user account
type UserStatus string

const (
	UserStatusActive   UserStatus = "active"
	UserStatusDisabled UserStatus = "disabled"
)

// IsValid reports whether the status is known
func (s UserStatus) IsValid() bool {
	return s == UserStatusActive || s == UserStatusDisabled
}

// Password cost for bcrypt
const bcryptCost = 12

var (
	emailRegex     = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	phoneRegex     = regexp.MustCompile(`^\+?[0-9 ()\-]{6,20}$`)
	hasLetterRegex = regexp.MustCompile(`\pL`)
	hasDigitRegex  = regexp.MustCompile(`[0-9]`)
)

// Errors returned by user operations
var (
	ErrUserNotFound       = shared.ErrNotFound.WithReason("user.not_found", "User not found")
	ErrEmailTaken         = shared.ErrAlreadyExists.WithReason("user.email_taken", "Email is already registered")
	ErrInvalidEmail       = shared.ErrInvalidInput.WithReason("user.email_invalid", "Invalid email format")
	ErrInvalidPhone       = shared.ErrInvalidInput.WithReason("user.phone_invalid", "Invalid phone number")
	ErrNameRequired       = shared.ErrInvalidInput.WithReason("user.name_required", "Name is required")
	ErrWeakPassword       = shared.ErrInvalidInput.WithReason("user.password_weak", "Password must be at least 8 characters and contain a letter and a digit")
	ErrInvalidCredentials = shared.ErrUnauthorized.WithReason("auth.invalid_credentials", "Invalid email or password")
	ErrAccountDisabled    = shared.ErrUnauthorized.WithReason("auth.account_disabled", "Account is disabled")
	ErrWrongPassword      = shared.ErrUnauthorized.WithReason("auth.wrong_password", "Current password is incorrect")
	ErrInvalidStatus      = shared.ErrInvalidInput.WithReason("user.status_invalid", "Invalid user status")
)

// User is a portal account: either a client placing orders or an administrator
type User struct {
	shared.BaseEntity
	Email        string
	PasswordHash string
	Name         string
	Phone        string
	Company      string
	Role         Role
	Status       UserStatus
	LastLoginAt  *time.Time
}

// NewClient creates an active client account
func NewClient(email, password, name, phone string) (*User, error) {
	return newUser(RoleClient, email, password, name, phone)
}

// NewAdmin creates an active administrator account
func NewAdmin(email, password, name string) (*User, error) {
	return newUser(RoleAdmin, email, password, name, "")
}

func newUser(role Role, email, password, name, phone string) (*User, error) {
	u := &User{
		BaseEntity: shared.NewBaseEntity(),
		Role:       role,
		Status:     UserStatusActive,
	}
	if err := u.SetEmail(email); err != nil {
		return nil, err
	}
	if err := u.UpdateProfile(name, phone, ""); err != nil {
		return nil, err
	}
	if err := u.SetPassword(password); err != nil {
		return nil, err
	}
	return u, nil
}

// NormalizeEmail lowercases and trims an email address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SetEmail validates and sets the email
func (u *User) SetEmail(email string) error {
	email = NormalizeEmail(email)
	if err := validateEmail(email); err != nil {
		return err
	}
	u.Email = email
	u.Touch()
	return nil
}

// UpdateProfile sets contact details. Empty phone and company are allowed.
func (u *User) UpdateProfile(name, phone, company string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrNameRequired
	}
	phone = strings.TrimSpace(phone)
	if phone != "" && !phoneRegex.MatchString(phone) {
		return ErrInvalidPhone
	}
	u.Name = name
	u.Phone = phone
	u.Company = strings.TrimSpace(company)
	u.Touch()
	return nil
}

// SetPassword validates and hashes a new password
func (u *User) SetPassword(password string) error {
	if err := validatePassword(password); err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	u.Touch()
	return nil
}

// ChangePassword verifies the current password before setting a new one
func (u *User) ChangePassword(oldPassword, newPassword string) error {
	if !u.VerifyPassword(oldPassword) {
		return ErrWrongPassword
	}
	return u.SetPassword(newPassword)
}

// VerifyPassword checks the password against the stored hash
func (u *User) VerifyPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// SetStatus changes the account status
func (u *User) SetStatus(status UserStatus) error {
	if !status.IsValid() {
		return ErrInvalidStatus
	}
	u.Status = status
	u.Touch()
	return nil
}

// Disable blocks the account from logging in
func (u *User) Disable() {
	u.Status = UserStatusDisabled
	u.Touch()
}

// Enable re-activates the account
func (u *User) Enable() {
	u.Status = UserStatusActive
	u.Touch()
}

// RecordLogin stamps the last successful login
func (u *User) RecordLogin(now time.Time) {
	u.LastLoginAt = &now
}

// IsAdmin reports whether the user is an administrator
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// CanLogin reports whether the account may authenticate
func (u *User) CanLogin() bool {
	return u.Status == UserStatusActive
}

func validateEmail(email string) error {
	if email == "" || len(email) > 254 || !emailRegex.MatchString(email) {
		return ErrInvalidEmail
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < 8 || len(password) > 72 {
		return ErrWeakPassword
	}
	if !hasLetterRegex.MatchString(password) || !hasDigitRegex.MatchString(password) {
		return ErrWeakPassword
	}
	return nil
}
