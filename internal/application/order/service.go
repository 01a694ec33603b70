// Package order implements order placement for clients and order
// management for administrators.
package order

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vertinimas/portal/internal/domain/geo"
	"github.com/vertinimas/portal/internal/domain/identity"
	"github.com/vertinimas/portal/internal/domain/order"
	"github.com/vertinimas/portal/internal/domain/report"
	"github.com/vertinimas/portal/internal/domain/shared"
	"github.com/vertinimas/portal/internal/domain/valuator"
	"github.com/vertinimas/portal/internal/infrastructure/telemetry"
)

const (
	// maxNumberAttempts bounds retries when a generated order number collides
	maxNumberAttempts = 5

	defaultMaxReportSize int64 = 50 << 20
)

var (
	ErrInvalidPrice   = shared.ErrInvalidInput.WithReason("order.price_invalid", "Invalid price")
	ErrReportTooLarge = shared.ErrInvalidInput.WithReason("order.report_too_large", "Report file is too large")
)

var pdfMagic = []byte("%PDF-")

// Config contains settings for the order service
type Config struct {
	Location      *time.Location
	MaxReportSize int64
}

// Service handles order operations
type Service struct {
	orders    order.OrderRepository
	users     identity.UserRepository
	valuators valuator.ValuatorRepository
	geocoder  geo.Geocoder
	storage   ObjectStorage
	loc       *time.Location
	maxReport int64
	now       func() time.Time
	logger    *zap.Logger

	businessMetrics *telemetry.BusinessMetrics
}

// NewService creates a new order service. geocoder may be nil to skip
// address lookups.
func NewService(
	orders order.OrderRepository,
	users identity.UserRepository,
	valuators valuator.ValuatorRepository,
	geocoder geo.Geocoder,
	storage ObjectStorage,
	cfg Config,
	logger *zap.Logger,
) *Service {
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	maxReport := cfg.MaxReportSize
	if maxReport <= 0 {
		maxReport = defaultMaxReportSize
	}
	return &Service{
		orders:    orders,
		users:     users,
		valuators: valuators,
		geocoder:  geocoder,
		storage:   storage,
		loc:       loc,
		maxReport: maxReport,
		now:       time.Now,
		logger:    logger,
	}
}

// SetBusinessMetrics sets the collector for order and geocoding counters
func (s *Service) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	s.businessMetrics = bm
}

// CreateOrder places an order on behalf of the signed-in client
func (s *Service) CreateOrder(ctx context.Context, userID uuid.UUID, input CreateOrderInput) (*OrderResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "order", "create", "service_type", input.ServiceType)
	defer span.End()

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	phone := input.Phone
	if strings.TrimSpace(phone) == "" {
		phone = user.Phone
	}
	o, err := order.NewOrder(order.NewOrderInput{
		ClientName:   user.Name,
		Email:        user.Email,
		Phone:        phone,
		Address:      input.Address,
		City:         input.City,
		PropertyType: order.PropertyType(input.PropertyType),
		ServiceType:  order.ServiceType(input.ServiceType),
		Purpose:      input.Purpose,
	})
	if err != nil {
		return nil, err
	}

	s.locate(ctx, o)

	for attempt := 1; ; attempt++ {
		err = s.orders.Create(ctx, o)
		if err == nil {
			break
		}
		if !errors.Is(err, order.ErrNumberTaken) || attempt >= maxNumberAttempts {
			telemetry.RecordError(span, err)
			return nil, err
		}
		o.Number = order.GenerateNumber(o.CreatedAt)
	}

	s.businessMetrics.RecordOrderCreated(ctx, string(o.ServiceType))
	s.logger.Info("Order created",
		zap.String("order_id", o.ID.String()),
		zap.String("number", o.Number),
		zap.String("user_id", userID.String()))

	resp := ToOrderResponse(o, false)
	return &resp, nil
}

// locate geocodes the order address. Failures only leave the coordinates empty.
func (s *Service) locate(ctx context.Context, o *order.Order) {
	if s.geocoder == nil {
		return
	}
	loc, err := s.geocoder.Geocode(ctx, o.FullAddress())
	s.businessMetrics.RecordGeocode(ctx, geo.Outcome(err))
	if err != nil {
		s.logger.Warn("Failed to geocode order address",
			zap.String("order_id", o.ID.String()),
			zap.Error(err))
		return
	}
	o.SetLocation(loc.Lat, loc.Lng)
}

// ListMyOrders lists orders placed with the client's email
func (s *Service) ListMyOrders(ctx context.Context, userID uuid.UUID, q ListOrdersQuery) (*shared.Paginated[OrderResponse], error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	q.AssignedTo = ""
	filter, err := s.toFilter(q)
	if err != nil {
		return nil, err
	}
	filter.Email = user.Email
	return s.list(ctx, filter, false)
}

// GetMyOrder returns an order of the client. Orders of other clients are
// reported as not found; administrators can read any order.
func (s *Service) GetMyOrder(ctx context.Context, userID, id uuid.UUID) (*OrderResponse, error) {
	user, o, err := s.ownedOrder(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	resp := ToOrderResponse(o, user.IsAdmin())
	return &resp, nil
}

// GetReportLink returns a presigned download link for the valuation report
func (s *Service) GetReportLink(ctx context.Context, userID, id uuid.UUID) (*ReportLink, error) {
	_, o, err := s.ownedOrder(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if !o.HasReport() {
		return nil, order.ErrReportNotReady
	}

	filename := path.Base(o.ReportKey)
	url, expiresAt, err := s.storage.DownloadURL(ctx, o.ReportKey, filename)
	if err != nil {
		if errors.Is(err, ErrStorageDisabled) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create report link: %w", err)
	}
	return &ReportLink{URL: url, Filename: filename, ExpiresAt: expiresAt}, nil
}

func (s *Service) ownedOrder(ctx context.Context, userID, id uuid.UUID) (*identity.User, *order.Order, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	o, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if !user.IsAdmin() && !o.IsOwnedBy(user.Email) {
		return nil, nil, order.ErrOrderNotFound
	}
	return user, o, nil
}

// List returns all orders matching the query
func (s *Service) List(ctx context.Context, q ListOrdersQuery) (*shared.Paginated[OrderResponse], error) {
	filter, err := s.toFilter(q)
	if err != nil {
		return nil, err
	}
	return s.list(ctx, filter, true)
}

func (s *Service) list(ctx context.Context, filter order.OrderFilter, withNotes bool) (*shared.Paginated[OrderResponse], error) {
	orders, total, err := s.orders.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	page := shared.NewPaginated(ToOrderResponses(orders, withNotes), total, filter.Page, filter.PageSize)
	return &page, nil
}

func (s *Service) toFilter(q ListOrdersQuery) (order.OrderFilter, error) {
	filter := order.NewOrderFilter()
	p := shared.NormalizePage(q.Page, q.PageSize)
	filter.Page, filter.PageSize = p.Page, p.PageSize
	filter.Search = strings.TrimSpace(q.Search)
	if q.SortBy != "" {
		filter.SortBy = q.SortBy
	}
	if q.SortOrder != "" {
		filter.SortOrder = q.SortOrder
	}

	if q.Status != "" {
		st := order.Status(q.Status)
		if !st.IsValid() {
			return filter, order.ErrInvalidStatus.WithArgs(q.Status)
		}
		filter.Status = &st
	}
	if q.ServiceType != "" {
		svc := order.ServiceType(q.ServiceType)
		if !svc.IsValid() {
			return filter, order.ErrInvalidServiceType.WithArgs(q.ServiceType)
		}
		filter.ServiceType = &svc
	}
	if q.AssignedTo != "" {
		code := valuator.NormalizeCode(q.AssignedTo)
		filter.AssignedTo = &code
	}
	if q.From != "" {
		from, err := time.ParseInLocation(report.DateLayout, q.From, s.loc)
		if err != nil {
			return filter, report.ErrInvalidDate.WithArgs("from")
		}
		filter.From = &from
	}
	if q.To != "" {
		to, err := time.ParseInLocation(report.DateLayout, q.To, s.loc)
		if err != nil {
			return filter, report.ErrInvalidDate.WithArgs("to")
		}
		end := report.EndOfDay(to)
		filter.To = &end
	}
	return filter, nil
}

// Get returns any order
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*OrderResponse, error) {
	o, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToOrderResponse(o, true)
	return &resp, nil
}

// Update applies a partial admin update. The status change is applied last
// so an assignment in the same request still sees the open order.
func (s *Service) Update(ctx context.Context, id uuid.UUID, input UpdateOrderInput) (*OrderResponse, error) {
	o, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	addressChanged := false
	if input.Address != nil || input.City != nil {
		address, city := o.Address, o.City
		if input.Address != nil {
			address = *input.Address
		}
		if input.City != nil {
			city = *input.City
		}
		if strings.TrimSpace(address) != o.Address || strings.TrimSpace(city) != o.City {
			if err := o.SetAddress(address, city); err != nil {
				return nil, err
			}
			addressChanged = true
		}
	}
	if input.ServiceType != nil {
		if err := o.SetServiceType(order.ServiceType(*input.ServiceType)); err != nil {
			return nil, err
		}
	}
	if input.PropertyType != nil {
		if err := o.SetPropertyType(order.PropertyType(*input.PropertyType)); err != nil {
			return nil, err
		}
	}
	if input.Price != nil {
		price, err := parsePrice(*input.Price)
		if err != nil {
			return nil, err
		}
		if err := o.SetPrice(price); err != nil {
			return nil, err
		}
	}
	if input.Notes != nil {
		o.SetNotes(*input.Notes)
	}
	if input.AssignedTo != nil {
		if err := s.assign(ctx, o, *input.AssignedTo); err != nil {
			return nil, err
		}
	}
	if input.Status != nil {
		if err := o.ChangeStatus(order.Status(*input.Status), s.now()); err != nil {
			return nil, err
		}
	}

	if addressChanged {
		s.locate(ctx, o)
	}

	if err := s.orders.Update(ctx, o); err != nil {
		return nil, err
	}

	s.logger.Info("Order updated",
		zap.String("order_id", o.ID.String()),
		zap.String("status", string(o.Status)))

	resp := ToOrderResponse(o, true)
	return &resp, nil
}

func (s *Service) assign(ctx context.Context, o *order.Order, code string) error {
	code = valuator.NormalizeCode(code)
	if code == "" {
		return o.Assign("")
	}
	if code == o.AssignedTo {
		return nil
	}
	v, err := s.valuators.FindByCode(ctx, code)
	if err != nil {
		return err
	}
	if err := v.CanAcceptOrders(); err != nil {
		return err
	}
	return o.Assign(v.Code)
}

func parsePrice(raw string) (*decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	// accept the Lithuanian decimal comma
	d, err := decimal.NewFromString(strings.Replace(raw, ",", ".", 1))
	if err != nil {
		return nil, ErrInvalidPrice
	}
	d = d.Round(2)
	return &d, nil
}

// Delete removes an order and its stored report file
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	o, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.orders.Delete(ctx, id); err != nil {
		return err
	}
	if o.HasReport() {
		if err := s.storage.Delete(ctx, o.ReportKey); err != nil {
			s.logger.Warn("Failed to delete report file of removed order",
				zap.String("order_id", id.String()),
				zap.String("key", o.ReportKey),
				zap.Error(err))
		}
	}
	s.logger.Info("Order deleted", zap.String("order_id", id.String()))
	return nil
}

// UploadReport stores a PDF valuation report and links it to the order.
// A previously uploaded file under another name is removed.
func (s *Service) UploadReport(ctx context.Context, id uuid.UUID, input UploadReportInput, body io.Reader) (*OrderResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "order", "upload_report", "size", input.Size)
	defer span.End()

	if input.Size <= 0 {
		return nil, order.ErrInvalidReportFile
	}
	if input.Size > s.maxReport {
		return nil, ErrReportTooLarge
	}
	filename, err := reportFilename(input.Filename)
	if err != nil {
		return nil, err
	}
	if ct := strings.ToLower(strings.TrimSpace(input.ContentType)); ct != "" &&
		!strings.HasPrefix(ct, "application/pdf") && ct != "application/octet-stream" {
		return nil, order.ErrInvalidReportFile
	}

	br := bufio.NewReader(body)
	head, err := br.Peek(len(pdfMagic))
	if err != nil || !bytes.Equal(head, pdfMagic) {
		return nil, order.ErrInvalidReportFile
	}

	o, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	key := order.ReportObjectKey(o.ID, filename)
	if err := s.storage.Upload(ctx, key, br, input.Size, "application/pdf"); err != nil {
		telemetry.RecordError(span, err)
		if errors.Is(err, ErrStorageDisabled) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to store report: %w", err)
	}

	previous := o.ReportKey
	o.AttachReport(key)
	if err := s.orders.Update(ctx, o); err != nil {
		return nil, err
	}
	if previous != "" && previous != key {
		if err := s.storage.Delete(ctx, previous); err != nil {
			s.logger.Warn("Failed to delete replaced report file",
				zap.String("key", previous),
				zap.Error(err))
		}
	}

	s.logger.Info("Valuation report uploaded",
		zap.String("order_id", o.ID.String()),
		zap.String("key", key),
		zap.Int64("size", input.Size))

	resp := ToOrderResponse(o, true)
	return &resp, nil
}

// reportFilename keeps the base name of an uploaded file and replaces
// characters that are unsafe in object keys
func reportFilename(name string) (string, error) {
	name = filepath.Base(strings.ReplaceAll(strings.TrimSpace(name), `\`, "/"))
	if !strings.EqualFold(filepath.Ext(name), ".pdf") {
		return "", order.ErrInvalidReportFile
	}
	var b strings.Builder
	for _, r := range name {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)), r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	out := b.String()
	base := strings.TrimSuffix(out, filepath.Ext(out))
	if strings.Trim(base, "._-") == "" {
		return "", order.ErrInvalidReportFile
	}
	return base + ".pdf", nil
}
