package handler

import (
	"bytes"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apporder "github.com/vertinimas/portal/internal/application/order"
	"github.com/vertinimas/portal/internal/domain/geo"
	"github.com/vertinimas/portal/internal/domain/identity"
	"github.com/vertinimas/portal/internal/domain/order"
	"github.com/vertinimas/portal/internal/infrastructure/auth"
	"github.com/vertinimas/portal/internal/infrastructure/storage"
	"github.com/vertinimas/portal/internal/interfaces/http/dto"
	"github.com/vertinimas/portal/internal/testutil"
)

type orderFixture struct {
	router   *gin.Engine
	users    *testutil.MockUserRepository
	orders   *testutil.MockOrderRepository
	geocoder *testutil.MockGeocoder
	storage  *storage.MemoryObjectStorage
	client   *identity.User
	token    string
}

func newOrderFixture(t *testing.T) *orderFixture {
	t.Helper()
	f := &orderFixture{
		users:    new(testutil.MockUserRepository),
		orders:   new(testutil.MockOrderRepository),
		geocoder: new(testutil.MockGeocoder),
		storage:  storage.NewMemoryObjectStorage("http://localhost/files"),
	}
	svc := apporder.NewService(f.orders, f.users, new(testutil.MockValuatorRepository), f.geocoder, f.storage,
		apporder.Config{MaxReportSize: 1 << 20}, zap.NewNop())
	h := NewOrderHandler(svc)

	client, err := identity.NewClient("jonas@example.lt", "slaptas123", "Jonas Jonaitis", "+37060000000")
	require.NoError(t, err)
	f.client = client
	f.users.On("FindByID", mock.Anything, client.ID).Return(client, nil)

	jwt := newTestJWT()
	token, err := jwt.GenerateToken(auth.GenerateTokenInput{UserID: client.ID, Email: client.Email, Role: string(client.Role)})
	require.NoError(t, err)
	f.token = token.Value

	r := newTestEngine(t)
	g := r.Group("/api/orders", authMiddleware(jwt, auth.NewInMemoryTokenBlacklist()))
	g.POST("", h.Create)
	g.GET("", h.List)
	g.GET("/:id", h.Get)
	g.GET("/:id/report", h.ReportLink)
	f.router = r
	return f
}

var newOrderBody = map[string]string{
	"adresas":     "Gedimino pr. 1",
	"miestas":     "Vilnius",
	"turto_tipas": "butas",
	"paslauga":    "bankui",
}

func TestOrderHandler_Create(t *testing.T) {
	f := newOrderFixture(t)
	f.geocoder.On("Geocode", mock.Anything, mock.MatchedBy(func(a string) bool {
		return strings.Contains(a, "Gedimino pr. 1")
	})).Return(&geo.Location{Lat: 54.687, Lng: 25.279}, nil)
	f.orders.On("Create", mock.Anything, mock.AnythingOfType("*order.Order")).Return(nil)

	w := doRequest(f.router, http.MethodPost, "/api/orders", newOrderBody, withBearer(f.token))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var out apporder.OrderResponse
	decodeData(t, w, &out)
	assert.Equal(t, "jonas@example.lt", out.Email)
	assert.Equal(t, "Jonas Jonaitis", out.ClientName)
	assert.Equal(t, "+37060000000", out.Phone, "phone falls back to the profile")
	assert.Equal(t, string(order.StatusNew), out.Status)
	require.NotNil(t, out.Latitude)
	assert.InDelta(t, 54.687, *out.Latitude, 1e-9)
}

func TestOrderHandler_Create_GeocodingIsBestEffort(t *testing.T) {
	f := newOrderFixture(t)
	f.geocoder.On("Geocode", mock.Anything, mock.Anything).Return(nil, errors.New("upstream timeout"))
	f.orders.On("Create", mock.Anything, mock.AnythingOfType("*order.Order")).Return(nil)

	w := doRequest(f.router, http.MethodPost, "/api/orders", newOrderBody, withBearer(f.token))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var out apporder.OrderResponse
	decodeData(t, w, &out)
	assert.Nil(t, out.Latitude)
	assert.Nil(t, out.Longitude)
}

func TestOrderHandler_Create_Validation(t *testing.T) {
	f := newOrderFixture(t)

	w := doRequest(f.router, http.MethodPost, "/api/orders", map[string]string{
		"adresas":     "Gedimino pr. 1",
		"turto_tipas": "butas",
		"paslauga":    "pigiai",
	}, withBearer(f.token))
	require.Equal(t, http.StatusBadRequest, w.Code)

	resp := decodeResponse(t, w)
	assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
	require.Len(t, resp.Error.Details, 1)
	assert.Equal(t, "paslauga", resp.Error.Details[0].Field)
	f.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestOrderHandler_RequiresSession(t *testing.T) {
	f := newOrderFixture(t)

	w := doRequest(f.router, http.MethodGet, "/api/orders", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, decodeResponse(t, w).Success)
}

func TestOrderHandler_Get_OtherClientsOrder(t *testing.T) {
	f := newOrderFixture(t)
	o := testOrder(t)
	o.Email = "kitas@example.lt"
	f.orders.On("FindByID", mock.Anything, o.ID).Return(o, nil)

	w := doRequest(f.router, http.MethodGet, "/api/orders/"+o.ID.String(), nil, withBearer(f.token))
	assert.Equal(t, http.StatusNotFound, w.Code)
	resp := decodeResponse(t, w)
	assert.Equal(t, dto.ErrCodeNotFound, resp.Error.Code)
	assert.Equal(t, "Užsakymas nerastas", resp.Error.Message)
}

func TestOrderHandler_ReportLink(t *testing.T) {
	t.Run("not uploaded yet", func(t *testing.T) {
		f := newOrderFixture(t)
		o := testOrder(t)
		f.orders.On("FindByID", mock.Anything, o.ID).Return(o, nil)

		w := doRequest(f.router, http.MethodGet, "/api/orders/"+o.ID.String()+"/report", nil, withBearer(f.token))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("presigned link", func(t *testing.T) {
		f := newOrderFixture(t)
		o := testOrder(t)
		key := "orders/" + o.ID.String() + "/vertinimas.pdf"
		pdf := []byte("%PDF-1.7")
		require.NoError(t, f.storage.Upload(t.Context(), key, bytes.NewReader(pdf), int64(len(pdf)), "application/pdf"))
		o.AttachReport(key)
		f.orders.On("FindByID", mock.Anything, o.ID).Return(o, nil)

		w := doRequest(f.router, http.MethodGet, "/api/orders/"+o.ID.String()+"/report", nil, withBearer(f.token))
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var link apporder.ReportLink
		decodeData(t, w, &link)
		assert.Equal(t, "vertinimas.pdf", link.Filename)
		assert.Contains(t, link.URL, key)
		assert.False(t, link.ExpiresAt.IsZero())
	})

	t.Run("bad id", func(t *testing.T) {
		f := newOrderFixture(t)
		w := doRequest(f.router, http.MethodGet, "/api/orders/not-a-uuid/report", nil, withBearer(f.token))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestOrderHandler_List_OwnOrdersOnly(t *testing.T) {
	f := newOrderFixture(t)
	o := testOrder(t)
	f.orders.On("FindAll", mock.Anything, mock.MatchedBy(func(filter order.OrderFilter) bool {
		return filter.Email == "jonas@example.lt"
	})).Return([]*order.Order{o}, int64(1), nil)

	w := doRequest(f.router, http.MethodGet, "/api/orders?statusas=nauja", nil, withBearer(f.token))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var out []apporder.OrderResponse
	decodeData(t, w, &out)
	require.Len(t, out, 1)
	assert.Equal(t, o.ID, out[0].ID)
	assert.Empty(t, out[0].Notes)
}
