package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	appauth "github.com/vertinimas/portal/internal/application/auth"
	"github.com/vertinimas/portal/internal/infrastructure/config"
	"github.com/vertinimas/portal/internal/interfaces/http/dto"
	"github.com/vertinimas/portal/internal/interfaces/http/middleware"
)

// AuthResponse is returned by login and registration. The token is also
// set as the session cookie; API clients may send it as a Bearer token.
type AuthResponse struct {
	User      appauth.UserInfo `json:"user"`
	Token     string           `json:"token"`
	ExpiresAt time.Time        `json:"expires_at"`
}

// LogoutResponse confirms the session was ended
type LogoutResponse struct {
	LoggedOut bool `json:"logged_out"`
}

// PasswordChangedResponse confirms a password change
type PasswordChangedResponse struct {
	Changed bool `json:"changed"`
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	BaseHandler
	authService *appauth.Service
	cookie      config.CookieConfig
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *appauth.Service, cookie config.CookieConfig) *AuthHandler {
	return &AuthHandler{authService: authService, cookie: cookie}
}

// Register godoc
// @Summary      Register a client account
// @Description  Creates a client account and starts a session
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body appauth.RegisterInput true "Account details"
// @Success      201 {object} APIResponse[AuthResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      429 {object} ErrorResponse
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req appauth.RegisterInput
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.authService.Register(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.setSessionCookie(c, result.Token, result.ExpiresAt)
	h.Created(c, AuthResponse{User: result.User, Token: result.Token, ExpiresAt: result.ExpiresAt})
}

// Login godoc
// @Summary      Log in
// @Description  Authenticates with email and password and starts a session
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body appauth.LoginInput true "Credentials"
// @Success      200 {object} APIResponse[AuthResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      429 {object} ErrorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req appauth.LoginInput
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.setSessionCookie(c, result.Token, result.ExpiresAt)
	h.Success(c, AuthResponse{User: result.User, Token: result.Token, ExpiresAt: result.ExpiresAt})
}

// Logout godoc
// @Summary      Log out
// @Description  Revokes the current session token and clears the cookie
// @Tags         auth
// @Produce      json
// @Success      200 {object} APIResponse[LogoutResponse]
// @Failure      401 {object} ErrorResponse
// @Security     CookieAuth
// @Security     BearerAuth
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	claims := middleware.GetJWTClaims(c)
	if claims == nil {
		h.Error(c, dto.ErrCodeUnauthorized, "auth.unauthenticated")
		return
	}

	var expiresAt time.Time
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}
	if err := h.authService.Logout(c.Request.Context(), claims.ID, expiresAt); err != nil {
		h.HandleError(c, err)
		return
	}

	h.clearSessionCookie(c)
	h.Success(c, LogoutResponse{LoggedOut: true})
}

// Me godoc
// @Summary      Current account
// @Tags         auth
// @Produce      json
// @Success      200 {object} APIResponse[appauth.UserInfo]
// @Failure      401 {object} ErrorResponse
// @Security     CookieAuth
// @Security     BearerAuth
// @Router       /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	user, err := h.authService.CurrentUser(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, user)
}

// UpdateMe godoc
// @Summary      Update own profile
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body appauth.UpdateProfileInput true "Profile"
// @Success      200 {object} APIResponse[appauth.UserInfo]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Security     CookieAuth
// @Security     BearerAuth
// @Router       /auth/me [patch]
func (h *AuthHandler) UpdateMe(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}
	var req appauth.UpdateProfileInput
	if !h.bindJSON(c, &req) {
		return
	}

	user, err := h.authService.UpdateProfile(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, user)
}

// ChangePassword godoc
// @Summary      Change own password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body appauth.ChangePasswordInput true "Old and new password"
// @Success      200 {object} APIResponse[PasswordChangedResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Security     CookieAuth
// @Security     BearerAuth
// @Router       /auth/password [put]
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}
	var req appauth.ChangePasswordInput
	if !h.bindJSON(c, &req) {
		return
	}

	if err := h.authService.ChangePassword(c.Request.Context(), userID, req); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, PasswordChangedResponse{Changed: true})
}

func (h *AuthHandler) setSessionCookie(c *gin.Context, token string, expiresAt time.Time) {
	maxAge := int(time.Until(expiresAt).Seconds())
	if maxAge < 1 {
		maxAge = 1
	}
	http.SetCookie(c.Writer, h.sessionCookie(token, maxAge, expiresAt))
}

func (h *AuthHandler) clearSessionCookie(c *gin.Context) {
	http.SetCookie(c.Writer, h.sessionCookie("", -1, time.Unix(0, 0)))
}

func (h *AuthHandler) sessionCookie(value string, maxAge int, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     h.cookie.Name,
		Value:    value,
		Path:     h.cookie.Path,
		Domain:   h.cookie.Domain,
		Expires:  expires,
		MaxAge:   maxAge,
		Secure:   h.cookie.Secure,
		HttpOnly: true,
		SameSite: sameSite(h.cookie.SameSite),
	}
}

func sameSite(mode string) http.SameSite {
	switch strings.ToLower(mode) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}
