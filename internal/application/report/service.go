// Package report computes the admin reports from order rows and renders
// them for export.
package report

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/vertinimas/portal/internal/domain/identity"
	"github.com/vertinimas/portal/internal/domain/order"
	"github.com/vertinimas/portal/internal/domain/report"
	"github.com/vertinimas/portal/internal/domain/shared"
	"github.com/vertinimas/portal/internal/domain/valuator"
	"github.com/vertinimas/portal/internal/infrastructure/cache"
	"github.com/vertinimas/portal/internal/infrastructure/telemetry"
)

// ErrExportFailed is returned when a report cannot be rendered
var ErrExportFailed = shared.ErrInternal.WithReason("report.export_failed", "Report export failed")

// Config contains settings for the report service
type Config struct {
	Location *time.Location
	// CacheTTL of computed reports; zero disables caching
	CacheTTL time.Duration
	// Writers render exports per format; a format without a writer cannot be exported
	Writers map[Format]DocumentWriter
}

// Service computes reports. Rows are fetched once per report and
// aggregated in memory.
type Service struct {
	orders    order.OrderRepository
	users     identity.UserRepository
	valuators valuator.ValuatorRepository
	loc       *time.Location
	writers   map[Format]DocumentWriter
	now       func() time.Time
	logger    *zap.Logger

	overviewCache  *cache.Loader[*Overview]
	revenueCache   *cache.Loader[*Revenue]
	valuatorsCache *cache.Loader[*Valuators]
	servicesCache  *cache.Loader[*Services]

	businessMetrics *telemetry.BusinessMetrics
}

// NewService creates a report service. store may be nil to disable caching.
func NewService(
	orders order.OrderRepository,
	users identity.UserRepository,
	valuators valuator.ValuatorRepository,
	store cache.Store,
	cfg Config,
	logger *zap.Logger,
) *Service {
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		orders:         orders,
		users:          users,
		valuators:      valuators,
		loc:            loc,
		writers:        cfg.Writers,
		now:            time.Now,
		logger:         logger,
		overviewCache:  cache.NewLoader[*Overview](store, "report:overview:", cfg.CacheTTL, logger),
		revenueCache:   cache.NewLoader[*Revenue](store, "report:revenue:", cfg.CacheTTL, logger),
		valuatorsCache: cache.NewLoader[*Valuators](store, "report:valuators:", cfg.CacheTTL, logger),
		servicesCache:  cache.NewLoader[*Services](store, "report:services:", cfg.CacheTTL, logger),
	}
}

// SetBusinessMetrics sets the collector for export counters
func (s *Service) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	s.businessMetrics = bm
}

// resolve turns a query into a period with its granularity
func (s *Service) resolve(q Query) (Period, error) {
	preset, err := report.ParsePreset(q.Preset)
	if err != nil {
		return Period{}, err
	}
	// from/to without a preset means a custom range
	if q.Preset == "" && (q.From != "" || q.To != "") {
		preset = report.PresetCustom
	}
	r, err := report.ResolveRange(preset, s.now(), q.From, q.To, s.loc)
	if err != nil {
		return Period{}, err
	}
	g, err := report.ParseGranularity(q.Granularity)
	if err != nil {
		return Period{}, err
	}
	if g == "" {
		g = report.ChooseGranularity(r.Start, r.End)
	}
	return Period{Preset: preset, Range: r, Granularity: g}, nil
}

func cacheKey(p Period) string {
	return p.Range.Start.UTC().Format(time.RFC3339) + "|" + p.Range.End.UTC().Format(time.RFC3339Nano) + "|" + string(p.Granularity)
}

func (s *Service) rows(ctx context.Context, r report.DateRange) ([]order.ReportRow, error) {
	rows, err := s.orders.ListForReport(ctx, r.Start, r.End)
	if err != nil {
		return nil, fmt.Errorf("failed to load report rows: %w", err)
	}
	return rows, nil
}

func createdIn(rows []order.ReportRow, r report.DateRange) []order.ReportRow {
	out := make([]order.ReportRow, 0, len(rows))
	for _, row := range rows {
		if r.Contains(row.CreatedAt) {
			out = append(out, row)
		}
	}
	return out
}

func revenueIn(rows []order.ReportRow, r report.DateRange) []order.ReportRow {
	out := make([]order.ReportRow, 0, len(rows))
	for _, row := range rows {
		if row.IsRevenue() && r.Contains(row.RevenueAt()) {
			out = append(out, row)
		}
	}
	return out
}

func statusKeys() []string {
	keys := make([]string, len(order.AllStatuses))
	for i, st := range order.AllStatuses {
		keys[i] = string(st)
	}
	return keys
}

// Overview counts orders created in the period
func (s *Service) Overview(ctx context.Context, q Query) (*Overview, error) {
	p, err := s.resolve(q)
	if err != nil {
		return nil, err
	}
	return s.overviewCache.Get(ctx, cacheKey(p), func(ctx context.Context) (*Overview, error) {
		return s.computeOverview(ctx, p)
	})
}

func (s *Service) computeOverview(ctx context.Context, p Period) (*Overview, error) {
	var (
		rows       []order.ReportRow
		newClients int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		rows, err = s.rows(gctx, p.Range)
		return err
	})
	g.Go(func() error {
		var err error
		newClients, err = s.users.CountCreatedBetween(gctx, identity.RoleClient, p.Range.Start, p.Range.End)
		if err != nil {
			return fmt.Errorf("failed to count new clients: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	created := createdIn(rows, p.Range)
	byStatus := report.CountsByKeys(
		report.GroupCount(created, func(r order.ReportRow) string { return string(r.Status) }),
		statusKeys(),
	)

	out := &Overview{
		Period:      p,
		TotalOrders: len(created),
		ByStatus:    byStatus,
		NewClients:  newClients,
	}
	for _, c := range byStatus {
		switch order.Status(c.Key) {
		case order.StatusCompleted:
			out.Completed = c.Count
		case order.StatusCancelled:
			out.Cancelled = c.Count
		}
	}
	if out.TotalOrders > 0 {
		rate := float64(out.Completed) * 100 / float64(out.TotalOrders)
		out.CompletionRate = float64(int(rate*10+0.5)) / 10
	}

	points := make([]report.Point, len(created))
	for i, r := range created {
		points[i] = report.Point{At: r.CreatedAt, Count: 1}
	}
	out.Series = report.FillGaps(points, p.Range.Start, p.Range.End, p.Granularity)
	return out, nil
}

// Revenue sums completed, priced orders by the time revenue was recognized
func (s *Service) Revenue(ctx context.Context, q Query) (*Revenue, error) {
	p, err := s.resolve(q)
	if err != nil {
		return nil, err
	}
	return s.revenueCache.Get(ctx, cacheKey(p), func(ctx context.Context) (*Revenue, error) {
		rows, err := s.rows(ctx, p.Range)
		if err != nil {
			return nil, err
		}
		return computeRevenue(rows, p), nil
	})
}

func computeRevenue(rows []order.ReportRow, p Period) *Revenue {
	paid := revenueIn(rows, p.Range)

	out := &Revenue{
		Period:     p,
		Total:      decimal.Zero,
		Average:    decimal.Zero,
		OrderCount: len(paid),
	}
	points := make([]report.Point, len(paid))
	for i, r := range paid {
		out.Total = out.Total.Add(r.Price)
		points[i] = report.Point{At: r.RevenueAt(), Count: 1, Total: r.Price}
	}
	if len(paid) > 0 {
		out.Average = out.Total.Div(decimal.NewFromInt(int64(len(paid)))).Round(2)
	}
	out.Series = report.FillGaps(points, p.Range.Start, p.Range.End, p.Granularity)
	out.ByService = report.GroupSum(paid,
		func(r order.ReportRow) string { return string(r.ServiceType) },
		func(r order.ReportRow) decimal.Decimal { return r.Price },
	)
	return out
}

// Valuators reports, per valuator code, orders created in the period and
// orders completed and revenue recognized in it
func (s *Service) Valuators(ctx context.Context, q Query) (*Valuators, error) {
	p, err := s.resolve(q)
	if err != nil {
		return nil, err
	}
	return s.valuatorsCache.Get(ctx, cacheKey(p), func(ctx context.Context) (*Valuators, error) {
		return s.computeValuators(ctx, p)
	})
}

func (s *Service) computeValuators(ctx context.Context, p Period) (*Valuators, error) {
	rows, err := s.rows(ctx, p.Range)
	if err != nil {
		return nil, err
	}

	stats := map[string]*ValuatorStat{}
	stat := func(code string) *ValuatorStat {
		st, ok := stats[code]
		if !ok {
			st = &ValuatorStat{Code: code, Revenue: decimal.Zero}
			stats[code] = st
		}
		return st
	}
	for _, g := range report.GroupCount(createdIn(rows, p.Range), assignee) {
		stat(g.Key).Orders = g.Count
	}
	for _, row := range rows {
		if row.Status == order.StatusCompleted && row.CompletedAt != nil && p.Range.Contains(*row.CompletedAt) {
			stat(row.AssignedTo).Completed++
		}
	}
	for _, g := range report.GroupSum(revenueIn(rows, p.Range), assignee, price) {
		stat(g.Key).Revenue = g.Total
	}

	codes := make([]string, 0, len(stats))
	for code := range stats {
		if code != "" {
			codes = append(codes, code)
		}
	}
	if len(codes) > 0 {
		found, err := s.valuators.FindByCodes(ctx, codes)
		if err != nil {
			return nil, fmt.Errorf("failed to load valuators: %w", err)
		}
		for code, v := range found {
			if st, ok := stats[code]; ok {
				st.Name = v.Name
			}
		}
	}

	out := &Valuators{Period: p, Valuators: make([]ValuatorStat, 0, len(stats))}
	for _, st := range stats {
		out.Valuators = append(out.Valuators, *st)
	}
	sort.Slice(out.Valuators, func(i, j int) bool {
		a, b := out.Valuators[i], out.Valuators[j]
		if a.Orders != b.Orders {
			return a.Orders > b.Orders
		}
		return a.Code < b.Code
	})
	return out, nil
}

func assignee(r order.ReportRow) string { return r.AssignedTo }

func price(r order.ReportRow) decimal.Decimal { return r.Price }

// Services counts orders created in the period per service and property type
func (s *Service) Services(ctx context.Context, q Query) (*Services, error) {
	p, err := s.resolve(q)
	if err != nil {
		return nil, err
	}
	return s.servicesCache.Get(ctx, cacheKey(p), func(ctx context.Context) (*Services, error) {
		rows, err := s.rows(ctx, p.Range)
		if err != nil {
			return nil, err
		}
		created := createdIn(rows, p.Range)
		return &Services{
			Period:      p,
			TotalOrders: len(created),
			ByService:   report.GroupCount(created, func(r order.ReportRow) string { return string(r.ServiceType) }),
			ByProperty:  report.GroupCount(created, func(r order.ReportRow) string { return string(r.PropertyType) }),
		}, nil
	})
}

// Export renders a report in the requested format
func (s *Service) Export(ctx context.Context, kindName, formatName string, q Query) (*ExportResult, error) {
	kind, err := ParseKind(kindName)
	if err != nil {
		return nil, err
	}
	format, err := ParseFormat(formatName)
	if err != nil {
		return nil, err
	}
	writer, ok := s.writers[format]
	if !ok {
		return nil, ErrExportFailed
	}

	start := time.Now()
	now := s.now().In(s.loc)

	var (
		doc    *Document
		period Period
	)
	switch kind {
	case KindOverview:
		o, err := s.Overview(ctx, q)
		if err != nil {
			return nil, err
		}
		doc, period = overviewDocument(o, now), o.Period
	case KindRevenue:
		r, err := s.Revenue(ctx, q)
		if err != nil {
			return nil, err
		}
		doc, period = revenueDocument(r, now), r.Period
	case KindValuators:
		v, err := s.Valuators(ctx, q)
		if err != nil {
			return nil, err
		}
		doc, period = valuatorsDocument(v, now), v.Period
	case KindServices:
		sv, err := s.Services(ctx, q)
		if err != nil {
			return nil, err
		}
		doc, period = servicesDocument(sv, now), sv.Period
	}

	data, err := writer.Write(ctx, doc)
	if err != nil {
		s.logger.Error("Failed to render report export",
			zap.String("report", string(kind)),
			zap.String("format", string(format)),
			zap.Error(err),
		)
		return nil, ErrExportFailed
	}

	s.businessMetrics.RecordReportExported(ctx, string(kind), string(format), time.Since(start))

	return &ExportResult{
		Data:        data,
		ContentType: writer.ContentType(),
		Filename:    reportFilename(kind, period.Range, writer.Extension()),
	}, nil
}
