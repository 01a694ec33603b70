// Package auth implements registration, login and profile management for
// portal accounts.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vertinimas/portal/internal/domain/identity"
	"github.com/vertinimas/portal/internal/domain/shared"
	"github.com/vertinimas/portal/internal/infrastructure/auth"
)

// Service handles authentication operations
type Service struct {
	users     identity.UserRepository
	jwt       *auth.JWTService
	blacklist auth.TokenBlacklist
	now       func() time.Time
	logger    *zap.Logger
}

// NewService creates a new authentication service
func NewService(
	users identity.UserRepository,
	jwt *auth.JWTService,
	blacklist auth.TokenBlacklist,
	logger *zap.Logger,
) *Service {
	return &Service{
		users:     users,
		jwt:       jwt,
		blacklist: blacklist,
		now:       time.Now,
		logger:    logger,
	}
}

// Register creates a client account and signs it in
func (s *Service) Register(ctx context.Context, input RegisterInput) (*SessionResult, error) {
	user, err := identity.NewClient(input.Email, input.Password, input.Name, input.Phone)
	if err != nil {
		return nil, err
	}
	if input.Company != "" {
		if err := user.UpdateProfile(user.Name, user.Phone, input.Company); err != nil {
			return nil, err
		}
	}

	exists, err := s.users.ExistsByEmail(ctx, user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return nil, identity.ErrEmailTaken
	}

	user.RecordLogin(s.now())
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("Client registered",
		zap.String("user_id", user.ID.String()),
		zap.String("email", user.Email))

	return s.session(user)
}

// Login verifies credentials and issues a session token
func (s *Service) Login(ctx context.Context, input LoginInput) (*SessionResult, error) {
	user, err := s.users.FindByEmail(ctx, identity.NormalizeEmail(input.Email))
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.logger.Warn("Login attempt for unknown email")
			return nil, identity.ErrInvalidCredentials
		}
		return nil, err
	}

	if !user.VerifyPassword(input.Password) {
		s.logger.Warn("Invalid password attempt", zap.String("user_id", user.ID.String()))
		return nil, identity.ErrInvalidCredentials
	}
	if !user.CanLogin() {
		s.logger.Warn("Login attempt for disabled account", zap.String("user_id", user.ID.String()))
		return nil, identity.ErrAccountDisabled
	}

	user.RecordLogin(s.now())
	if err := s.users.Update(ctx, user); err != nil {
		// login still succeeds
		s.logger.Error("Failed to record login time", zap.Error(err))
	}

	s.logger.Info("User logged in",
		zap.String("user_id", user.ID.String()),
		zap.String("role", string(user.Role)))

	return s.session(user)
}

func (s *Service) session(user *identity.User) (*SessionResult, error) {
	token, err := s.jwt.GenerateToken(auth.GenerateTokenInput{
		UserID: user.ID,
		Email:  user.Email,
		Role:   string(user.Role),
	})
	if err != nil {
		s.logger.Error("Failed to generate token", zap.Error(err))
		return nil, shared.ErrInternal
	}
	return &SessionResult{
		User:      ToUserInfo(user),
		Token:     token.Value,
		TokenID:   token.ID,
		ExpiresAt: token.ExpiresAt,
	}, nil
}

// Logout revokes the token until it would have expired anyway
func (s *Service) Logout(ctx context.Context, tokenID string, expiresAt time.Time) error {
	if tokenID == "" {
		return nil
	}
	ttl := expiresAt.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	if err := s.blacklist.AddToBlacklist(ctx, tokenID, ttl); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

// CurrentUser returns the signed-in account
func (s *Service) CurrentUser(ctx context.Context, userID uuid.UUID) (*UserInfo, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	info := ToUserInfo(user)
	return &info, nil
}

// UpdateProfile changes the name, phone and company of the signed-in account
func (s *Service) UpdateProfile(ctx context.Context, userID uuid.UUID, input UpdateProfileInput) (*UserInfo, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := user.UpdateProfile(input.Name, input.Phone, input.Company); err != nil {
		return nil, err
	}
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	info := ToUserInfo(user)
	return &info, nil
}

// ChangePassword replaces the password after checking the current one
func (s *Service) ChangePassword(ctx context.Context, userID uuid.UUID, input ChangePasswordInput) error {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := user.ChangePassword(input.OldPassword, input.NewPassword); err != nil {
		return err
	}
	if err := s.users.Update(ctx, user); err != nil {
		return err
	}
	s.logger.Info("Password changed", zap.String("user_id", userID.String()))
	return nil
}

// EnsureAdmin creates the bootstrap administrator when no account uses the
// email yet. An existing account is left untouched.
func (s *Service) EnsureAdmin(ctx context.Context, email, password, name string) error {
	if email == "" {
		return nil
	}
	exists, err := s.users.ExistsByEmail(ctx, identity.NormalizeEmail(email))
	if err != nil {
		return fmt.Errorf("failed to check admin account: %w", err)
	}
	if exists {
		return nil
	}
	if name == "" {
		name = "Administratorius"
	}
	admin, err := identity.NewAdmin(email, password, name)
	if err != nil {
		return fmt.Errorf("invalid admin account settings: %w", err)
	}
	if err := s.users.Create(ctx, admin); err != nil {
		return fmt.Errorf("failed to create admin account: %w", err)
	}
	s.logger.Info("Admin account created", zap.String("email", admin.Email))
	return nil
}
