package handler

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appclient "github.com/vertinimas/portal/internal/application/client"
	"github.com/vertinimas/portal/internal/domain/identity"
	"github.com/vertinimas/portal/internal/infrastructure/auth"
	"github.com/vertinimas/portal/internal/interfaces/http/dto"
	"github.com/vertinimas/portal/internal/testutil"
)

func TestClientHandler_DisableEndsSessions(t *testing.T) {
	users := new(testutil.MockUserRepository)
	orders := new(testutil.MockOrderRepository)
	jwt := newTestJWT()
	blacklist := auth.NewInMemoryTokenBlacklist()
	h := NewClientHandler(appclient.NewService(users, orders, blacklist, time.Hour, zap.NewNop()))

	client, err := identity.NewClient("jonas@example.lt", "slaptas123", "Jonas", "")
	require.NoError(t, err)
	users.On("FindByID", mock.Anything, client.ID).Return(client, nil)
	users.On("Update", mock.Anything, client).Return(nil)

	token, err := jwt.GenerateToken(auth.GenerateTokenInput{UserID: client.ID, Email: client.Email, Role: string(client.Role)})
	require.NoError(t, err)

	r := newTestEngine(t)
	r.PATCH("/api/admin/clients/:id", h.Update)
	r.GET("/api/orders", authMiddleware(jwt, blacklist), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := doRequest(r, http.MethodGet, "/api/orders", nil, withBearer(token.Value))
	require.Equal(t, http.StatusNoContent, w.Code)

	w = doRequest(r, http.MethodPatch, "/api/admin/clients/"+client.ID.String(), map[string]string{"status": "disabled"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var out appclient.ClientResponse
	decodeData(t, w, &out)
	assert.Equal(t, "disabled", out.Status)

	w = doRequest(r, http.MethodGet, "/api/orders", nil, withBearer(token.Value))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestClientHandler_Update_AdminForbidden(t *testing.T) {
	users := new(testutil.MockUserRepository)
	h := NewClientHandler(appclient.NewService(users, new(testutil.MockOrderRepository), auth.NewInMemoryTokenBlacklist(), time.Hour, zap.NewNop()))

	admin, err := identity.NewAdmin("admin@example.lt", "slaptas123", "Admin")
	require.NoError(t, err)
	users.On("FindByID", mock.Anything, admin.ID).Return(admin, nil)

	r := newTestEngine(t)
	r.PATCH("/api/admin/clients/:id", h.Update)

	w := doRequest(r, http.MethodPatch, "/api/admin/clients/"+admin.ID.String(), map[string]string{"status": "disabled"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, dto.ErrCodeForbidden, decodeResponse(t, w).Error.Code)
	users.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestClientHandler_List_RejectsUnknownSort(t *testing.T) {
	h := NewClientHandler(nil)
	r := newTestEngine(t)
	r.GET("/api/admin/clients", h.List)

	w := doRequest(r, http.MethodGet, "/api/admin/clients?sort_by=password_hash", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeResponse(t, w)
	require.Len(t, resp.Error.Details, 1)
	assert.Equal(t, "sort_by", resp.Error.Details[0].Field)
}
