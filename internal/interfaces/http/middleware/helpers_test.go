package middleware

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/vertinimas/portal/internal/infrastructure/i18n"
	"github.com/vertinimas/portal/internal/interfaces/http/dto"
)

func newTestEngine(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tr, err := i18n.New("lt")
	require.NoError(t, err)

	r := gin.New()
	r.Use(RequestID(), Locale(tr))
	return r
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}
