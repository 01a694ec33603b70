package telemetry

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// ErrMeterNil is returned when no meter is supplied
var ErrMeterNil = errors.New("telemetry: meter cannot be nil")

// BusinessMetrics counts portal activity. A nil *BusinessMetrics is valid
// and records nothing.
type BusinessMetrics struct {
	ordersCreated   *Counter
	reportsExported *Counter
	exportDuration  *Histogram
	geocodeRequests *Counter
}

// NewBusinessMetrics registers the business instruments on meter
func NewBusinessMetrics(meter metric.Meter) (*BusinessMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}

	bm := &BusinessMetrics{}
	var err error

	bm.ordersCreated, err = NewCounter(meter, "portal_orders_created_total", "Total number of valuation orders placed", "{orders}")
	if err != nil {
		return nil, err
	}
	bm.reportsExported, err = NewCounter(meter, "portal_reports_exported_total", "Total number of report exports", "{exports}")
	if err != nil {
		return nil, err
	}
	bm.exportDuration, err = NewHistogram(meter, "portal_report_export_duration_seconds", "Time spent rendering report exports", "s", ExportDurationBuckets...)
	if err != nil {
		return nil, err
	}
	bm.geocodeRequests, err = NewCounter(meter, "portal_geocode_requests_total", "Address lookups by outcome", "{requests}")
	if err != nil {
		return nil, err
	}
	return bm, nil
}

// RecordOrderCreated counts a newly placed order
func (bm *BusinessMetrics) RecordOrderCreated(ctx context.Context, serviceType string) {
	if bm == nil {
		return
	}
	bm.ordersCreated.Inc(ctx, AttrServiceType.String(serviceType))
}

// RecordReportExported counts an export and its render time
func (bm *BusinessMetrics) RecordReportExported(ctx context.Context, kind, format string, took time.Duration) {
	if bm == nil {
		return
	}
	bm.reportsExported.Inc(ctx, AttrReportKind.String(kind), AttrFormat.String(format))
	bm.exportDuration.RecordDuration(ctx, took, AttrFormat.String(format))
}

// RecordGeocode counts an address lookup; outcome is ok, not_found or error
func (bm *BusinessMetrics) RecordGeocode(ctx context.Context, outcome string) {
	if bm == nil {
		return
	}
	bm.geocodeRequests.Inc(ctx, AttrOutcome.String(outcome))
}
