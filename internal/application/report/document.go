package report

import (
	"context"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vertinimas/portal/internal/domain/order"
	"github.com/vertinimas/portal/internal/domain/report"
)

// Document is a report flattened into a titled table for export
type Document struct {
	Title       string
	PeriodLabel string
	GeneratedAt time.Time
	Summary     []SummaryLine
	Columns     []string
	Rows        [][]string
}

// SummaryLine is one labelled figure shown above the table
type SummaryLine struct {
	Label string
	Value string
}

// DocumentWriter serializes a Document into a file format
type DocumentWriter interface {
	ContentType() string
	Extension() string
	Write(ctx context.Context, doc *Document) ([]byte, error)
}

// Unassigned is shown for orders without a valuator
const Unassigned = "nepriskirta"

var statusLabels = map[string]string{
	string(order.StatusNew):        "Nauja",
	string(order.StatusInProgress): "Vykdoma",
	string(order.StatusCompleted):  "Atlikta",
	string(order.StatusCancelled):  "Atšaukta",
}

var serviceLabels = map[string]string{
	string(order.ServiceMarketValue): "Rinkos vertė",
	string(order.ServiceBank):        "Bankui",
	string(order.ServiceInheritance): "Paveldėjimui",
	string(order.ServiceCourt):       "Teismui",
	string(order.ServiceOther):       "Kita",
}

var propertyLabels = map[string]string{
	string(order.PropertyApartment):  "Butas",
	string(order.PropertyHouse):      "Namas",
	string(order.PropertyLand):       "Sklypas",
	string(order.PropertyCommercial): "Komercinis",
	string(order.PropertyOther):      "Kita",
}

func label(labels map[string]string, key string) string {
	if key == "" {
		return Unassigned
	}
	if l, ok := labels[key]; ok {
		return l
	}
	return key
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func itoa(n int) string {
	return strconv.Itoa(n)
}

func newDocument(title string, p Period, now time.Time) *Document {
	return &Document{
		Title:       title,
		PeriodLabel: p.Range.FromLabel() + " - " + p.Range.ToLabel(),
		GeneratedAt: now,
	}
}

func overviewDocument(o *Overview, now time.Time) *Document {
	doc := newDocument("Užsakymų apžvalga", o.Period, now)
	doc.Summary = []SummaryLine{
		{"Iš viso užsakymų", itoa(o.TotalOrders)},
		{"Atlikta", itoa(o.Completed)},
		{"Atšaukta", itoa(o.Cancelled)},
		{"Atlikimo dalis, %", strconv.FormatFloat(o.CompletionRate, 'f', 1, 64)},
		{"Nauji klientai", strconv.FormatInt(o.NewClients, 10)},
	}
	for _, s := range o.ByStatus {
		doc.Summary = append(doc.Summary, SummaryLine{"Būsena: " + label(statusLabels, s.Key), itoa(s.Count)})
	}
	doc.Columns = []string{"Laikotarpis", "Užsakymai"}
	for _, p := range o.Series {
		doc.Rows = append(doc.Rows, []string{p.Label, itoa(p.Count)})
	}
	return doc
}

func revenueDocument(r *Revenue, now time.Time) *Document {
	doc := newDocument("Pajamų ataskaita", r.Period, now)
	doc.Summary = []SummaryLine{
		{"Pajamos, EUR", money(r.Total)},
		{"Apmokėti užsakymai", itoa(r.OrderCount)},
		{"Vidutinė vertė, EUR", money(r.Average)},
	}
	for _, s := range r.ByService {
		doc.Summary = append(doc.Summary, SummaryLine{"Paslauga: " + label(serviceLabels, s.Key), money(s.Total)})
	}
	doc.Columns = []string{"Laikotarpis", "Užsakymai", "Pajamos, EUR"}
	for _, p := range r.Series {
		doc.Rows = append(doc.Rows, []string{p.Label, itoa(p.Count), money(p.Total)})
	}
	return doc
}

func valuatorsDocument(v *Valuators, now time.Time) *Document {
	doc := newDocument("Vertintojų ataskaita", v.Period, now)
	doc.Columns = []string{"Kodas", "Vardas", "Užsakymai", "Atlikta", "Pajamos, EUR"}
	for _, s := range v.Valuators {
		code := s.Code
		if code == "" {
			code = Unassigned
		}
		doc.Rows = append(doc.Rows, []string{code, s.Name, itoa(s.Orders), itoa(s.Completed), money(s.Revenue)})
	}
	return doc
}

func servicesDocument(s *Services, now time.Time) *Document {
	doc := newDocument("Paslaugų ataskaita", s.Period, now)
	doc.Summary = []SummaryLine{{"Iš viso užsakymų", itoa(s.TotalOrders)}}
	doc.Columns = []string{"Grupė", "Reikšmė", "Užsakymai"}
	for _, g := range s.ByService {
		doc.Rows = append(doc.Rows, []string{"Paslauga", label(serviceLabels, g.Key), itoa(g.Count)})
	}
	for _, g := range s.ByProperty {
		doc.Rows = append(doc.Rows, []string{"Turto tipas", label(propertyLabels, g.Key), itoa(g.Count)})
	}
	return doc
}

// reportFilename builds ataskaita-<kind>-<from>-<to>.<ext>
func reportFilename(kind Kind, r report.DateRange, ext string) string {
	return "ataskaita-" + string(kind) + "-" + r.FromLabel() + "-" + r.ToLabel() + "." + ext
}
