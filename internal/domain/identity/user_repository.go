package identity

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// UserRepository defines the interface for user persistence
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	Update(ctx context.Context, user *User) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)

	// FindByEmail matches case-insensitively
	FindByEmail(ctx context.Context, email string) (*User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// FindAll returns a page of users and the total count matching the filter
	FindAll(ctx context.Context, filter UserFilter) ([]*User, int64, error)

	// CountCreatedBetween counts accounts with the given role registered in the range
	CountCreatedBetween(ctx context.Context, role Role, from, to time.Time) (int64, error)
}

// UserFilter contains filter options for querying users
type UserFilter struct {
	// Search matches email, name, phone or company
	Search string
	Role   *Role
	Status *UserStatus

	Page     int
	PageSize int

	SortBy    string
	SortOrder string
}

// NewUserFilter creates a new UserFilter with default values
func NewUserFilter() UserFilter {
	return UserFilter{
		Page:      1,
		PageSize:  20,
		SortBy:    "created_at",
		SortOrder: "desc",
	}
}
