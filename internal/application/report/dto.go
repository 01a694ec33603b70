package report

import (
	"github.com/shopspring/decimal"

	"github.com/vertinimas/portal/internal/domain/report"
)

// Query selects the date range of a report
type Query struct {
	Preset string `form:"preset" json:"preset" binding:"omitempty,oneof=today week month year custom"`
	From   string `form:"from" json:"from" binding:"omitempty,datetime=2006-01-02"`
	To     string `form:"to" json:"to" binding:"omitempty,datetime=2006-01-02"`
	// Granularity overrides the bucket width chosen from the span
	Granularity string `form:"granularity" json:"granularity" binding:"omitempty,oneof=day week month"`
}

// Period describes the resolved range of a report
type Period struct {
	Preset      report.Preset      `json:"preset"`
	Range       report.DateRange   `json:"range"`
	Granularity report.Granularity `json:"granularity"`
}

// Overview summarizes order activity in a period
type Overview struct {
	Period
	TotalOrders int               `json:"total_orders"`
	ByStatus    []report.KeyCount `json:"by_status"`
	Completed   int               `json:"completed"`
	Cancelled   int               `json:"cancelled"`
	// CompletionRate is the completed share of orders created in the period, in percent
	CompletionRate float64              `json:"completion_rate"`
	NewClients     int64                `json:"new_clients"`
	Series         []report.SeriesPoint `json:"series"`
}

// Revenue summarizes income from completed, priced orders
type Revenue struct {
	Period
	Total      decimal.Decimal      `json:"total"`
	OrderCount int                  `json:"order_count"`
	Average    decimal.Decimal      `json:"average"`
	Series     []report.SeriesPoint `json:"series"`
	ByService  []report.KeyTotal    `json:"by_service"`
}

// ValuatorStat is the workload and income of one valuator code
type ValuatorStat struct {
	Code      string          `json:"code"`
	Name      string          `json:"name"`
	Orders    int             `json:"orders"`
	Completed int             `json:"completed"`
	Revenue   decimal.Decimal `json:"revenue"`
}

// Valuators reports workload per assigned valuator
type Valuators struct {
	Period
	Valuators []ValuatorStat `json:"valuators"`
}

// Services reports demand per service and property type
type Services struct {
	Period
	TotalOrders int               `json:"total_orders"`
	ByService   []report.KeyCount `json:"by_service"`
	ByProperty  []report.KeyCount `json:"by_property"`
}

// Kind names one of the reports
type Kind string

const (
	KindOverview  Kind = "overview"
	KindRevenue   Kind = "revenue"
	KindValuators Kind = "valuators"
	KindServices  Kind = "services"
)

// ParseKind validates a report name
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindOverview, KindRevenue, KindValuators, KindServices:
		return k, nil
	}
	return "", report.ErrUnknownReport.WithArgs(s)
}

// Format is an export file format
type Format string

const (
	FormatCSV Format = "csv"
	FormatPDF Format = "pdf"
)

// ParseFormat validates an export format. An empty value means csv.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case "":
		return FormatCSV, nil
	case FormatCSV, FormatPDF:
		return f, nil
	}
	return "", report.ErrUnknownFormat.WithArgs(s)
}

// ExportQuery selects a report and format to export
type ExportQuery struct {
	Query
	Report string `form:"report" binding:"required,oneof=overview revenue valuators services"`
	Format string `form:"format" binding:"omitempty,oneof=csv pdf"`
}

// ExportResult is a rendered report file
type ExportResult struct {
	Data        []byte
	ContentType string
	Filename    string
}
