package order

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vertinimas/portal/internal/domain/geo"
	"github.com/vertinimas/portal/internal/domain/identity"
	"github.com/vertinimas/portal/internal/domain/order"
	"github.com/vertinimas/portal/internal/domain/shared"
	"github.com/vertinimas/portal/internal/domain/valuator"
	"github.com/vertinimas/portal/internal/testutil"
)

// fakeStorage keeps uploaded objects in a map
type fakeStorage struct {
	objects   map[string][]byte
	deleted   []string
	uploadErr error
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: map[string][]byte{}}
}

func (f *fakeStorage) Upload(_ context.Context, key string, body io.Reader, _ int64, _ string) error {
	if f.uploadErr != nil {
		return f.uploadErr
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	f.objects[key] = data
	return nil
}

func (f *fakeStorage) DownloadURL(_ context.Context, key, filename string) (string, time.Time, error) {
	if _, ok := f.objects[key]; !ok {
		return "", time.Time{}, errors.New("no such object")
	}
	return "https://files.example.lt/" + key + "?download=" + filename, time.Date(2024, 5, 1, 12, 15, 0, 0, time.UTC), nil
}

func (f *fakeStorage) Delete(_ context.Context, key string) error {
	delete(f.objects, key)
	f.deleted = append(f.deleted, key)
	return nil
}

type fixture struct {
	svc       *Service
	orders    *testutil.MockOrderRepository
	users     *testutil.MockUserRepository
	valuators *testutil.MockValuatorRepository
	geocoder  *testutil.MockGeocoder
	storage   *fakeStorage
}

func newFixture() *fixture {
	f := &fixture{
		orders:    new(testutil.MockOrderRepository),
		users:     new(testutil.MockUserRepository),
		valuators: new(testutil.MockValuatorRepository),
		geocoder:  new(testutil.MockGeocoder),
		storage:   newFakeStorage(),
	}
	f.svc = NewService(f.orders, f.users, f.valuators, f.geocoder, f.storage, Config{Location: time.UTC, MaxReportSize: 1024}, zap.NewNop())
	f.svc.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }
	return f
}

func client(t *testing.T, email string) *identity.User {
	t.Helper()
	u, err := identity.NewClient(email, "slaptas123", "Jonas Jonaitis", "+37060000000")
	require.NoError(t, err)
	return u
}

func admin(t *testing.T) *identity.User {
	t.Helper()
	u, err := identity.NewAdmin("admin@example.lt", "Admin12345", "Admin")
	require.NoError(t, err)
	return u
}

func newOrder(t *testing.T, email string) *order.Order {
	t.Helper()
	o, err := order.NewOrder(order.NewOrderInput{
		ClientName:   "Jonas Jonaitis",
		Email:        email,
		Address:      "Gedimino pr. 1",
		City:         "Vilnius",
		PropertyType: order.PropertyApartment,
		ServiceType:  order.ServiceBank,
	})
	require.NoError(t, err)
	return o
}

func strPtr(s string) *string { return &s }

func validInput() CreateOrderInput {
	return CreateOrderInput{
		Address:      "Gedimino pr. 1",
		City:         "Vilnius",
		PropertyType: "butas",
		ServiceType:  "bankui",
		Purpose:      "Paskolai",
	}
}

func TestService_CreateOrder(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	user := client(t, "jonas@example.lt")

	f.users.On("FindByID", mock.Anything, user.ID).Return(user, nil)
	f.geocoder.On("Geocode", mock.Anything, "Gedimino pr. 1, Vilnius").
		Return(&geo.Location{Lat: 54.687, Lng: 25.279}, nil)
	f.orders.On("Create", mock.Anything, mock.MatchedBy(func(o *order.Order) bool {
		return o.Email == "jonas@example.lt" && o.ClientName == "Jonas Jonaitis" && o.Status == order.StatusNew
	})).Return(nil)

	resp, err := f.svc.CreateOrder(ctx, user.ID, validInput())
	require.NoError(t, err)

	assert.Equal(t, "nauja", resp.Status)
	assert.Equal(t, "+37060000000", resp.Phone, "phone falls back to the account")
	assert.True(t, strings.HasPrefix(resp.Number, "VRT-"))
	require.NotNil(t, resp.Latitude)
	assert.InDelta(t, 54.687, *resp.Latitude, 0.0001)
	f.orders.AssertExpectations(t)
}

func TestService_CreateOrder_GeocodingIsBestEffort(t *testing.T) {
	f := newFixture()
	user := client(t, "jonas@example.lt")

	f.users.On("FindByID", mock.Anything, user.ID).Return(user, nil)
	f.geocoder.On("Geocode", mock.Anything, mock.Anything).Return(nil, geo.ErrUnavailable)
	f.orders.On("Create", mock.Anything, mock.Anything).Return(nil)

	resp, err := f.svc.CreateOrder(context.Background(), user.ID, validInput())
	require.NoError(t, err)
	assert.Nil(t, resp.Latitude)
	assert.Nil(t, resp.Longitude)
}

func TestService_CreateOrder_RetriesTakenNumber(t *testing.T) {
	f := newFixture()
	user := client(t, "jonas@example.lt")

	f.users.On("FindByID", mock.Anything, user.ID).Return(user, nil)
	f.geocoder.On("Geocode", mock.Anything, mock.Anything).Return(nil, geo.ErrNoMatch)
	f.orders.On("Create", mock.Anything, mock.Anything).Return(order.ErrNumberTaken).Twice()
	f.orders.On("Create", mock.Anything, mock.Anything).Return(nil).Once()

	_, err := f.svc.CreateOrder(context.Background(), user.ID, validInput())
	require.NoError(t, err)
	f.orders.AssertNumberOfCalls(t, "Create", 3)
}

func TestService_CreateOrder_GivesUpAfterRepeatedCollisions(t *testing.T) {
	f := newFixture()
	user := client(t, "jonas@example.lt")

	f.users.On("FindByID", mock.Anything, user.ID).Return(user, nil)
	f.geocoder.On("Geocode", mock.Anything, mock.Anything).Return(nil, geo.ErrNoMatch)
	f.orders.On("Create", mock.Anything, mock.Anything).Return(order.ErrNumberTaken)

	_, err := f.svc.CreateOrder(context.Background(), user.ID, validInput())
	assert.ErrorIs(t, err, order.ErrNumberTaken)
	f.orders.AssertNumberOfCalls(t, "Create", maxNumberAttempts)
}

func TestService_CreateOrder_Validation(t *testing.T) {
	f := newFixture()
	user := client(t, "jonas@example.lt")
	f.users.On("FindByID", mock.Anything, user.ID).Return(user, nil)

	in := validInput()
	in.ServiceType = "draudimui"
	_, err := f.svc.CreateOrder(context.Background(), user.ID, in)
	assert.ErrorIs(t, err, order.ErrInvalidServiceType)

	in = validInput()
	in.Address = "  "
	_, err = f.svc.CreateOrder(context.Background(), user.ID, in)
	assert.ErrorIs(t, err, order.ErrAddressRequired)

	f.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestService_ListMyOrders_ScopesToEmail(t *testing.T) {
	f := newFixture()
	user := client(t, "jonas@example.lt")
	o := newOrder(t, "jonas@example.lt")
	o.SetNotes("vidinė pastaba")

	f.users.On("FindByID", mock.Anything, user.ID).Return(user, nil)
	f.orders.On("FindAll", mock.Anything, mock.MatchedBy(func(fl order.OrderFilter) bool {
		return fl.Email == "jonas@example.lt" && fl.AssignedTo == nil && fl.Status != nil && *fl.Status == order.StatusNew
	})).Return([]*order.Order{o}, int64(1), nil)

	page, err := f.svc.ListMyOrders(context.Background(), user.ID, ListOrdersQuery{Status: "nauja", AssignedTo: "JJ"})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, int64(1), page.Total)
	assert.Equal(t, 1, page.TotalPages)
	assert.Empty(t, page.Items[0].Notes, "clients do not see admin notes")
}

func TestService_List_Filters(t *testing.T) {
	f := newFixture()
	f.orders.On("FindAll", mock.Anything, mock.MatchedBy(func(fl order.OrderFilter) bool {
		return fl.From != nil && fl.From.Equal(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)) &&
			fl.To != nil && fl.To.Day() == 31 && fl.To.Hour() == 23 &&
			fl.AssignedTo != nil && *fl.AssignedTo == "JJ" &&
			fl.PageSize == 100 && fl.Page == 2
	})).Return([]*order.Order{}, int64(0), nil)

	page, err := f.svc.List(context.Background(), ListOrdersQuery{
		From: "2024-05-01", To: "2024-05-31", AssignedTo: " jj ", Page: 2, PageSize: 500,
	})
	require.NoError(t, err)
	assert.Empty(t, page.Items)

	_, err = f.svc.List(context.Background(), ListOrdersQuery{From: "01/05/2024"})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestService_GetMyOrder(t *testing.T) {
	ctx := context.Background()
	owner := client(t, "jonas@example.lt")
	other := client(t, "petras@example.lt")
	o := newOrder(t, "jonas@example.lt")

	f := newFixture()
	f.orders.On("FindByID", mock.Anything, o.ID).Return(o, nil)
	f.users.On("FindByID", mock.Anything, owner.ID).Return(owner, nil)
	f.users.On("FindByID", mock.Anything, other.ID).Return(other, nil)

	resp, err := f.svc.GetMyOrder(ctx, owner.ID, o.ID)
	require.NoError(t, err)
	assert.Equal(t, o.Number, resp.Number)

	_, err = f.svc.GetMyOrder(ctx, other.ID, o.ID)
	assert.ErrorIs(t, err, order.ErrOrderNotFound)

	adm := admin(t)
	f.users.On("FindByID", mock.Anything, adm.ID).Return(adm, nil)
	_, err = f.svc.GetMyOrder(ctx, adm.ID, o.ID)
	assert.NoError(t, err)
}

func TestService_GetReportLink(t *testing.T) {
	ctx := context.Background()
	owner := client(t, "jonas@example.lt")
	o := newOrder(t, "jonas@example.lt")

	f := newFixture()
	f.users.On("FindByID", mock.Anything, owner.ID).Return(owner, nil)
	f.orders.On("FindByID", mock.Anything, o.ID).Return(o, nil)

	_, err := f.svc.GetReportLink(ctx, owner.ID, o.ID)
	assert.ErrorIs(t, err, order.ErrReportNotReady)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	key := order.ReportObjectKey(o.ID, "ataskaita.pdf")
	f.storage.objects[key] = []byte("%PDF-1.7")
	o.AttachReport(key)

	link, err := f.svc.GetReportLink(ctx, owner.ID, o.ID)
	require.NoError(t, err)
	assert.Equal(t, "ataskaita.pdf", link.Filename)
	assert.Contains(t, link.URL, key)
	assert.False(t, link.ExpiresAt.IsZero())
}

func TestService_Update(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	o := newOrder(t, "jonas@example.lt")
	jj, err := valuator.NewValuator("JJ", "Jonas Jonaitis")
	require.NoError(t, err)

	f.orders.On("FindByID", mock.Anything, o.ID).Return(o, nil)
	f.orders.On("Update", mock.Anything, o).Return(nil)
	f.valuators.On("FindByCode", mock.Anything, "JJ").Return(jj, nil)
	f.geocoder.On("Geocode", mock.Anything, "Laisvės al. 10, Kaunas").Return(&geo.Location{Lat: 54.9, Lng: 23.9}, nil)

	resp, err := f.svc.Update(ctx, o.ID, UpdateOrderInput{
		Status:     strPtr("vykdoma"),
		Price:      strPtr("150,5"),
		AssignedTo: strPtr("jj"),
		Notes:      strPtr(" skubu "),
		Address:    strPtr("Laisvės al. 10"),
		City:       strPtr("Kaunas"),
	})
	require.NoError(t, err)

	assert.Equal(t, "vykdoma", resp.Status)
	assert.Equal(t, "JJ", resp.AssignedTo)
	assert.Equal(t, "skubu", resp.Notes)
	require.NotNil(t, resp.Price)
	assert.True(t, decimal.RequireFromString("150.50").Equal(*resp.Price))
	require.NotNil(t, resp.Latitude)
	assert.InDelta(t, 54.9, *resp.Latitude, 0.001)
}

func TestService_Update_CompletesAndClearsPrice(t *testing.T) {
	f := newFixture()
	o := newOrder(t, "jonas@example.lt")
	require.NoError(t, o.ChangeStatus(order.StatusInProgress, time.Now()))
	price := decimal.NewFromInt(100)
	require.NoError(t, o.SetPrice(&price))

	f.orders.On("FindByID", mock.Anything, o.ID).Return(o, nil)
	f.orders.On("Update", mock.Anything, o).Return(nil)

	resp, err := f.svc.Update(context.Background(), o.ID, UpdateOrderInput{Status: strPtr("atlikta"), Price: strPtr("")})
	require.NoError(t, err)
	assert.Nil(t, resp.Price)
	require.NotNil(t, resp.CompletedAt)
	assert.Equal(t, f.svc.now(), *resp.CompletedAt)
	f.geocoder.AssertNotCalled(t, "Geocode", mock.Anything, mock.Anything)
}

func TestService_Update_Rejections(t *testing.T) {
	ctx := context.Background()

	t.Run("invalid transition", func(t *testing.T) {
		f := newFixture()
		o := newOrder(t, "jonas@example.lt")
		f.orders.On("FindByID", mock.Anything, o.ID).Return(o, nil)

		_, err := f.svc.Update(ctx, o.ID, UpdateOrderInput{Status: strPtr("atlikta")})
		assert.ErrorIs(t, err, order.ErrInvalidTransition)
		f.orders.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("unknown valuator", func(t *testing.T) {
		f := newFixture()
		o := newOrder(t, "jonas@example.lt")
		f.orders.On("FindByID", mock.Anything, o.ID).Return(o, nil)
		f.valuators.On("FindByCode", mock.Anything, "XX").Return(nil, valuator.ErrValuatorNotFound)

		_, err := f.svc.Update(ctx, o.ID, UpdateOrderInput{AssignedTo: strPtr("XX")})
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("inactive valuator", func(t *testing.T) {
		f := newFixture()
		o := newOrder(t, "jonas@example.lt")
		v, err := valuator.NewValuator("AB", "Asta")
		require.NoError(t, err)
		v.Deactivate()
		f.orders.On("FindByID", mock.Anything, o.ID).Return(o, nil)
		f.valuators.On("FindByCode", mock.Anything, "AB").Return(v, nil)

		_, err = f.svc.Update(ctx, o.ID, UpdateOrderInput{AssignedTo: strPtr("AB")})
		assert.ErrorIs(t, err, valuator.ErrInactive)
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})

	t.Run("malformed price", func(t *testing.T) {
		f := newFixture()
		o := newOrder(t, "jonas@example.lt")
		f.orders.On("FindByID", mock.Anything, o.ID).Return(o, nil)

		_, err := f.svc.Update(ctx, o.ID, UpdateOrderInput{Price: strPtr("daug")})
		assert.ErrorIs(t, err, ErrInvalidPrice)

		_, err = f.svc.Update(ctx, o.ID, UpdateOrderInput{Price: strPtr("-5")})
		assert.ErrorIs(t, err, order.ErrNegativePrice)
	})
}

func TestService_Delete_RemovesReport(t *testing.T) {
	f := newFixture()
	o := newOrder(t, "jonas@example.lt")
	key := order.ReportObjectKey(o.ID, "ataskaita.pdf")
	o.AttachReport(key)
	f.storage.objects[key] = []byte("%PDF-")

	f.orders.On("FindByID", mock.Anything, o.ID).Return(o, nil)
	f.orders.On("Delete", mock.Anything, o.ID).Return(nil)

	require.NoError(t, f.svc.Delete(context.Background(), o.ID))
	assert.Equal(t, []string{key}, f.storage.deleted)
}

func TestService_UploadReport(t *testing.T) {
	ctx := context.Background()
	pdf := []byte("%PDF-1.7 test body")

	t.Run("stores pdf and replaces previous file", func(t *testing.T) {
		f := newFixture()
		o := newOrder(t, "jonas@example.lt")
		old := order.ReportObjectKey(o.ID, "senas.pdf")
		o.AttachReport(old)
		f.storage.objects[old] = pdf

		f.orders.On("FindByID", mock.Anything, o.ID).Return(o, nil)
		f.orders.On("Update", mock.Anything, o).Return(nil)

		resp, err := f.svc.UploadReport(ctx, o.ID, UploadReportInput{
			Filename:    `C:\dokumentai\Vertinimo ataskaita.PDF`,
			ContentType: "application/pdf",
			Size:        int64(len(pdf)),
		}, bytes.NewReader(pdf))
		require.NoError(t, err)
		assert.True(t, resp.HasReport)

		key := "orders/" + o.ID.String() + "/Vertinimo_ataskaita.pdf"
		assert.Equal(t, key, o.ReportKey)
		assert.Equal(t, pdf, f.storage.objects[key])
		assert.Equal(t, []string{old}, f.storage.deleted)
	})

	t.Run("rejects files that are not pdf", func(t *testing.T) {
		f := newFixture()
		id := uuid.New()

		_, err := f.svc.UploadReport(ctx, id, UploadReportInput{Filename: "report.docx", Size: 10}, bytes.NewReader(pdf))
		assert.ErrorIs(t, err, order.ErrInvalidReportFile)

		_, err = f.svc.UploadReport(ctx, id, UploadReportInput{Filename: "report.pdf", ContentType: "image/png", Size: 10}, bytes.NewReader(pdf))
		assert.ErrorIs(t, err, order.ErrInvalidReportFile)

		_, err = f.svc.UploadReport(ctx, id, UploadReportInput{Filename: "report.pdf", Size: 10}, strings.NewReader("<html></html>"))
		assert.ErrorIs(t, err, order.ErrInvalidReportFile)

		f.orders.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	})

	t.Run("rejects oversized files", func(t *testing.T) {
		f := newFixture()
		_, err := f.svc.UploadReport(ctx, uuid.New(), UploadReportInput{Filename: "a.pdf", Size: 4096}, bytes.NewReader(pdf))
		assert.ErrorIs(t, err, ErrReportTooLarge)
	})

	t.Run("storage disabled", func(t *testing.T) {
		f := newFixture()
		f.storage.uploadErr = ErrStorageDisabled
		o := newOrder(t, "jonas@example.lt")
		f.orders.On("FindByID", mock.Anything, o.ID).Return(o, nil)

		_, err := f.svc.UploadReport(ctx, o.ID, UploadReportInput{Filename: "a.pdf", Size: int64(len(pdf))}, bytes.NewReader(pdf))
		assert.ErrorIs(t, err, ErrStorageDisabled)
		f.orders.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})
}

func TestReportFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"ataskaita.pdf", "ataskaita.pdf", true},
		{"../../etc/passwd.pdf", "passwd.pdf", true},
		{"Vertinimas Nr 5.PDF", "Vertinimas_Nr_5.pdf", true},
		{"ąčę.pdf", "___.pdf", false},
		{"report.txt", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, err := reportFilename(tt.in)
		if !tt.ok {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}
