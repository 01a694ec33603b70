package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vertinimas/portal/internal/infrastructure/auth"
	"github.com/vertinimas/portal/internal/infrastructure/config"
	"github.com/vertinimas/portal/internal/interfaces/http/dto"
)

const testCookie = "vp_session"

func testJWTService() *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret:     "test-secret-key-32-characters-long",
		Expiration: time.Hour,
		Issuer:     "test-issuer",
	})
}

func issueToken(t *testing.T, svc *auth.JWTService, role string) (*auth.Token, uuid.UUID) {
	t.Helper()
	userID := uuid.New()
	tok, err := svc.GenerateToken(auth.GenerateTokenInput{UserID: userID, Email: "a@b.lt", Role: role})
	require.NoError(t, err)
	return tok, userID
}

func jwtEngine(t *testing.T, svc *auth.JWTService, bl auth.TokenBlacklist) *gin.Engine {
	r := newTestEngine(t)
	protected := r.Group("/api", JWTAuth(JWTMiddlewareConfig{
		JWTService:     svc,
		TokenBlacklist: bl,
		CookieName:     testCookie,
	}))
	protected.GET("/me", func(c *gin.Context) {
		id, ok := GetUserUUID(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.String(http.StatusOK, id.String())
	})
	protected.GET("/admin", RequireAdmin(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func TestJWTAuth_Cookie(t *testing.T) {
	svc := testJWTService()
	tok, userID := issueToken(t, svc, "client")
	r := jwtEngine(t, svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.AddCookie(&http.Cookie{Name: testCookie, Value: tok.Value})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, userID.String(), w.Body.String())
}

func TestJWTAuth_BearerHeader(t *testing.T) {
	svc := testJWTService()
	tok, userID := issueToken(t, svc, "client")
	r := jwtEngine(t, svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("Authorization", "Bearer "+tok.Value)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, userID.String(), w.Body.String())
}

func TestJWTAuth_Rejections(t *testing.T) {
	svc := testJWTService()
	other := auth.NewJWTService(config.JWTConfig{
		Secret:     "another-secret-key-32-characters-x",
		Expiration: time.Hour,
		Issuer:     "test-issuer",
	})
	foreign, _ := issueToken(t, other, "client")

	tests := []struct {
		name         string
		setup        func(*http.Request)
		expectedCode string
	}{
		{"no token", func(*http.Request) {}, dto.ErrCodeUnauthorized},
		{"malformed header", func(r *http.Request) { r.Header.Set("Authorization", "Token abc") }, dto.ErrCodeUnauthorized},
		{"garbage token", func(r *http.Request) { r.Header.Set("Authorization", "Bearer abc.def.ghi") }, dto.ErrCodeTokenInvalid},
		{"wrong signature", func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: testCookie, Value: foreign.Value})
		}, dto.ErrCodeTokenInvalid},
	}

	r := jwtEngine(t, svc, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
			tt.setup(req)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			resp := decodeResponse(t, w)
			assert.False(t, resp.Success)
			assert.Equal(t, tt.expectedCode, resp.Error.Code)
		})
	}
}

func TestJWTAuth_RevokedToken(t *testing.T) {
	svc := testJWTService()
	tok, _ := issueToken(t, svc, "client")
	bl := auth.NewInMemoryTokenBlacklist()
	require.NoError(t, bl.AddToBlacklist(context.Background(), tok.ID, time.Hour))
	r := jwtEngine(t, svc, bl)

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.AddCookie(&http.Cookie{Name: testCookie, Value: tok.Value})
	req.Header.Set("Accept-Language", "en")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	resp := decodeResponse(t, w)
	assert.Equal(t, dto.ErrCodeUnauthorized, resp.Error.Code)
	assert.Equal(t, "Session was revoked, please log in again", resp.Error.Message)
}

func TestJWTAuth_UserSessionsEnded(t *testing.T) {
	svc := testJWTService()
	tok, userID := issueToken(t, svc, "client")
	bl := auth.NewInMemoryTokenBlacklist()
	require.NoError(t, bl.AddUserTokensToBlacklist(context.Background(), userID.String(), time.Hour))
	r := jwtEngine(t, svc, bl)

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.AddCookie(&http.Cookie{Name: testCookie, Value: tok.Value})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

type failingBlacklist struct{ auth.TokenBlacklist }

func (failingBlacklist) IsBlacklisted(context.Context, string) (bool, error) {
	return false, errors.New("redis down")
}

func (failingBlacklist) IsUserTokenInvalidated(context.Context, string, time.Time) (bool, error) {
	return false, errors.New("redis down")
}

func TestJWTAuth_BlacklistFailureFailsOpen(t *testing.T) {
	svc := testJWTService()
	tok, _ := issueToken(t, svc, "client")
	r := jwtEngine(t, svc, failingBlacklist{})

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.AddCookie(&http.Cookie{Name: testCookie, Value: tok.Value})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireAdmin(t *testing.T) {
	svc := testJWTService()
	r := jwtEngine(t, svc, nil)

	t.Run("client is forbidden", func(t *testing.T) {
		tok, _ := issueToken(t, svc, "client")
		req := httptest.NewRequest(http.MethodGet, "/api/admin", nil)
		req.AddCookie(&http.Cookie{Name: testCookie, Value: tok.Value})
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, dto.ErrCodeForbidden, decodeResponse(t, w).Error.Code)
	})

	t.Run("admin passes", func(t *testing.T) {
		tok, _ := issueToken(t, svc, "admin")
		req := httptest.NewRequest(http.MethodGet, "/api/admin", nil)
		req.AddCookie(&http.Cookie{Name: testCookie, Value: tok.Value})
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("without authentication", func(t *testing.T) {
		rr := newTestEngine(t)
		rr.GET("/admin", RequireAdmin(), func(c *gin.Context) { c.Status(http.StatusOK) })
		w := httptest.NewRecorder()
		rr.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
