package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vertinimas/portal/internal/infrastructure/auth"
	"github.com/vertinimas/portal/internal/infrastructure/logger"
	"github.com/vertinimas/portal/internal/interfaces/http/dto"
)

// Context keys set by the JWT middleware
const (
	JWTClaimsKey = "jwt_claims"
	JWTUserIDKey = "jwt_user_id"
	JWTRoleKey   = "jwt_role"
)

var errMissingToken = errors.New("missing session token")

// JWTMiddlewareConfig holds configuration for session authentication
type JWTMiddlewareConfig struct {
	JWTService *auth.JWTService
	// TokenBlacklist is optional; without it revoked tokens stay valid
	// until they expire
	TokenBlacklist auth.TokenBlacklist
	// CookieName is the session cookie checked before the Authorization header
	CookieName string
	Logger     *zap.Logger
}

// JWTAuth authenticates the request from the session cookie or a Bearer
// token and stores the claims in the context
func JWTAuth(cfg JWTMiddlewareConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractToken(c, cfg.CookieName)
		if tokenString == "" {
			handleAuthError(c, cfg, errMissingToken)
			return
		}

		claims, err := cfg.JWTService.ValidateToken(tokenString)
		if err != nil {
			handleAuthError(c, cfg, err)
			return
		}

		if cfg.TokenBlacklist != nil {
			ctx := c.Request.Context()

			if claims.ID != "" {
				revoked, err := cfg.TokenBlacklist.IsBlacklisted(ctx, claims.ID)
				if err != nil {
					// fail open: the blacklist store being down must not lock everyone out
					logError(cfg, "Failed to check token blacklist", zap.String("jti", claims.ID), zap.Error(err))
				} else if revoked {
					handleAuthError(c, cfg, auth.ErrTokenBlacklisted)
					return
				}
			}

			invalidated, err := cfg.TokenBlacklist.IsUserTokenInvalidated(ctx, claims.UserID, claims.GetIssuedAtTime())
			if err != nil {
				logError(cfg, "Failed to check user token invalidation", zap.String("user_id", claims.UserID), zap.Error(err))
			} else if invalidated {
				handleAuthError(c, cfg, auth.ErrTokenBlacklisted)
				return
			}
		}

		c.Set(JWTClaimsKey, claims)
		c.Set(JWTUserIDKey, claims.UserID)
		c.Set(JWTRoleKey, claims.Role)

		ctx := c.Request.Context()
		ctx, _ = logger.WithUserID(ctx, logger.FromContext(ctx), claims.UserID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// extractToken prefers the session cookie and falls back to a Bearer header
func extractToken(c *gin.Context, cookieName string) string {
	if cookieName != "" {
		if v, err := c.Cookie(cookieName); err == nil && v != "" {
			return v
		}
	}
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func handleAuthError(c *gin.Context, cfg JWTMiddlewareConfig, err error) {
	if cfg.Logger != nil {
		cfg.Logger.Debug("Session authentication failed",
			zap.Error(err),
			zap.String("path", c.Request.URL.Path),
		)
	}

	code, key := dto.ErrCodeUnauthorized, "auth.unauthenticated"
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		code, key = dto.ErrCodeTokenExpired, "auth.token_expired"
	case errors.Is(err, auth.ErrTokenBlacklisted):
		key = "auth.token_revoked"
	case errors.Is(err, errMissingToken):
	default:
		code, key = dto.ErrCodeTokenInvalid, "auth.token_invalid"
	}
	AbortWithError(c, code, key)
}

func logError(cfg JWTMiddlewareConfig, msg string, fields ...zap.Field) {
	if cfg.Logger != nil {
		cfg.Logger.Error(msg, fields...)
	}
}

// RequireAdmin rejects authenticated non-administrators with 403. It must
// run after JWTAuth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetJWTClaims(c)
		if claims == nil {
			AbortWithError(c, dto.ErrCodeUnauthorized, "auth.unauthenticated")
			return
		}
		if !claims.IsAdmin() {
			AbortWithError(c, dto.ErrCodeForbidden, "auth.admin_required")
			return
		}
		c.Next()
	}
}

// GetJWTClaims retrieves JWT claims from gin.Context
func GetJWTClaims(c *gin.Context) *auth.Claims {
	if claims, exists := c.Get(JWTClaimsKey); exists {
		if jwtClaims, ok := claims.(*auth.Claims); ok {
			return jwtClaims
		}
	}
	return nil
}

// GetJWTUserID retrieves the user ID from JWT claims in context
func GetJWTUserID(c *gin.Context) string {
	return c.GetString(JWTUserIDKey)
}

// GetUserUUID returns the authenticated user's id
func GetUserUUID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(GetJWTUserID(c))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
