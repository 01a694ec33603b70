package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vertinimas/portal/internal/infrastructure/auth"
	"github.com/vertinimas/portal/internal/infrastructure/config"
	"github.com/vertinimas/portal/internal/infrastructure/i18n"
	"github.com/vertinimas/portal/internal/interfaces/http/dto"
	"github.com/vertinimas/portal/internal/interfaces/http/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

var testCookie = config.CookieConfig{
	Name:     "vp_session",
	Path:     "/",
	SameSite: "lax",
}

func newTestJWT() *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret:     "test-secret-key-for-testing-purposes-only",
		Expiration: time.Hour,
		Issuer:     "vertinimas-portal",
	})
}

// newTestEngine returns an engine with the request-scoped middleware the
// server installs before any route
func newTestEngine(t *testing.T) *gin.Engine {
	t.Helper()
	tr, err := i18n.New("lt")
	require.NoError(t, err)

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Locale(tr))
	return r
}

// authMiddleware validates tokens the way the protected route groups do
func authMiddleware(jwt *auth.JWTService, blacklist auth.TokenBlacklist) gin.HandlerFunc {
	return middleware.JWTAuth(middleware.JWTMiddlewareConfig{
		JWTService:     jwt,
		TokenBlacklist: blacklist,
		CookieName:     testCookie.Name,
		Logger:         zap.NewNop(),
	})
}

func doRequest(r http.Handler, method, target string, body any, opts ...func(*http.Request)) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			reader = bytes.NewBufferString(b)
		default:
			data, _ := json.Marshal(b)
			reader = bytes.NewReader(data)
		}
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, o := range opts {
		o(req)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func withBearer(token string) func(*http.Request) {
	return func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) }
}

func withLanguage(lang string) func(*http.Request) {
	return func(r *http.Request) { r.Header.Set("Accept-Language", lang) }
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}

// decodeData unmarshals the data field of a success envelope into out
func decodeData(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	var env struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	require.True(t, env.Success, w.Body.String())
	require.NoError(t, json.Unmarshal(env.Data, out))
}
