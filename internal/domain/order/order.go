package order

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vertinimas/portal/internal/domain/shared"
)

// Status of a valuation order
type Status string

const (
	StatusNew        Status = "nauja"
	StatusInProgress Status = "vykdoma"
	StatusCompleted  Status = "atlikta"
	StatusCancelled  Status = "atsaukta"
)

// AllStatuses lists statuses in workflow order
var AllStatuses = []Status{StatusNew, StatusInProgress, StatusCompleted, StatusCancelled}

// IsValid reports whether the status is known
func (s Status) IsValid() bool {
	for _, st := range AllStatuses {
		if s == st {
			return true
		}
	}
	return false
}

// IsFinal reports whether no further transitions are allowed
func (s Status) IsFinal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

var transitions = map[Status][]Status{
	StatusNew:        {StatusInProgress, StatusCancelled},
	StatusInProgress: {StatusCompleted, StatusCancelled, StatusNew},
}

// CanTransitionTo reports whether the workflow allows moving to next
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// ServiceType is the kind of valuation requested
type ServiceType string

const (
	ServiceMarketValue ServiceType = "rinkos_verte"
	ServiceBank        ServiceType = "bankui"
	ServiceInheritance ServiceType = "paveldejimui"
	ServiceCourt       ServiceType = "teismui"
	ServiceOther       ServiceType = "kita"
)

// AllServiceTypes lists the supported service types
var AllServiceTypes = []ServiceType{ServiceMarketValue, ServiceBank, ServiceInheritance, ServiceCourt, ServiceOther}

// IsValid reports whether the service type is known
func (t ServiceType) IsValid() bool {
	for _, st := range AllServiceTypes {
		if t == st {
			return true
		}
	}
	return false
}

// PropertyType is the kind of real estate being valued
type PropertyType string

const (
	PropertyApartment  PropertyType = "butas"
	PropertyHouse      PropertyType = "namas"
	PropertyLand       PropertyType = "sklypas"
	PropertyCommercial PropertyType = "komercinis"
	PropertyOther      PropertyType = "kita"
)

// AllPropertyTypes lists the supported property types
var AllPropertyTypes = []PropertyType{PropertyApartment, PropertyHouse, PropertyLand, PropertyCommercial, PropertyOther}

// IsValid reports whether the property type is known
func (t PropertyType) IsValid() bool {
	for _, pt := range AllPropertyTypes {
		if t == pt {
			return true
		}
	}
	return false
}

var (
	ErrOrderNotFound        = shared.ErrNotFound.WithReason("order.not_found", "Order not found")
	ErrReportNotReady       = shared.ErrNotFound.WithReason("order.report_missing", "Valuation report is not available yet")
	ErrInvalidStatus        = shared.ErrInvalidInput.WithReason("order.status_invalid", "Unknown order status %q")
	ErrInvalidTransition    = shared.ErrInvalidInput.WithReason("order.transition_invalid", "Cannot change status from %s to %s")
	ErrInvalidServiceType   = shared.ErrInvalidInput.WithReason("order.service_invalid", "Unknown service type %q")
	ErrInvalidPropertyType  = shared.ErrInvalidInput.WithReason("order.property_invalid", "Unknown property type %q")
	ErrAddressRequired      = shared.ErrInvalidInput.WithReason("order.address_required", "Property address is required")
	ErrNegativePrice        = shared.ErrInvalidInput.WithReason("order.price_negative", "Price cannot be negative")
	ErrOrderClosed          = shared.ErrInvalidInput.WithReason("order.closed", "Order is %s and can no longer be changed")
	ErrInvalidReportFile    = shared.ErrInvalidInput.WithReason("order.report_file_invalid", "Valuation report must be a PDF file")
	ErrContactEmailRequired = shared.ErrInvalidInput.WithReason("order.email_required", "Contact email is required")
	ErrNumberTaken          = shared.ErrAlreadyExists.WithReason("order.number_taken", "Order number is already in use")
)

// Order is a valuation request placed by a client. AssignedTo holds the code
// of the responsible valuator; the link is not enforced by the database.
type Order struct {
	shared.BaseEntity
	Number       string
	ClientName   string
	Email        string
	Phone        string
	Address      string
	City         string
	PropertyType PropertyType
	ServiceType  ServiceType
	Purpose      string
	Status       Status
	Price        *decimal.Decimal
	AssignedTo   string
	Notes        string
	Latitude     *float64
	Longitude    *float64
	ReportKey    string
	CompletedAt  *time.Time
}

// NewOrderInput holds the client-supplied fields of a new order
type NewOrderInput struct {
	ClientName   string
	Email        string
	Phone        string
	Address      string
	City         string
	PropertyType PropertyType
	ServiceType  ServiceType
	Purpose      string
}

// NewOrder validates input and creates an order in the nauja status
func NewOrder(in NewOrderInput) (*Order, error) {
	o := &Order{
		BaseEntity: shared.NewBaseEntity(),
		Status:     StatusNew,
		ClientName: strings.TrimSpace(in.ClientName),
		Email:      strings.ToLower(strings.TrimSpace(in.Email)),
		Phone:      strings.TrimSpace(in.Phone),
		Purpose:    strings.TrimSpace(in.Purpose),
	}
	if o.Email == "" {
		return nil, ErrContactEmailRequired
	}
	if err := o.SetAddress(in.Address, in.City); err != nil {
		return nil, err
	}
	if err := o.SetPropertyType(in.PropertyType); err != nil {
		return nil, err
	}
	if err := o.SetServiceType(in.ServiceType); err != nil {
		return nil, err
	}
	o.Number = GenerateNumber(o.CreatedAt)
	return o, nil
}

// GenerateNumber builds a human-readable order number such as VRT-20240501-4821
func GenerateNumber(at time.Time) string {
	return fmt.Sprintf("VRT-%s-%04d", at.Format("20060102"), rand.IntN(10000))
}

// SetAddress sets the property address; callers re-geocode after a change
func (o *Order) SetAddress(address, city string) error {
	address = strings.TrimSpace(address)
	if address == "" {
		return ErrAddressRequired
	}
	o.Address = address
	o.City = strings.TrimSpace(city)
	o.Latitude = nil
	o.Longitude = nil
	o.Touch()
	return nil
}

// FullAddress returns the address with the city appended when known
func (o *Order) FullAddress() string {
	if o.City == "" || strings.Contains(strings.ToLower(o.Address), strings.ToLower(o.City)) {
		return o.Address
	}
	return o.Address + ", " + o.City
}

// SetLocation stores geocoded coordinates
func (o *Order) SetLocation(lat, lng float64) {
	o.Latitude = &lat
	o.Longitude = &lng
}

// SetPropertyType validates and sets the property type
func (o *Order) SetPropertyType(t PropertyType) error {
	if !t.IsValid() {
		return ErrInvalidPropertyType.WithArgs(string(t))
	}
	o.PropertyType = t
	o.Touch()
	return nil
}

// SetServiceType validates and sets the service type
func (o *Order) SetServiceType(t ServiceType) error {
	if !t.IsValid() {
		return ErrInvalidServiceType.WithArgs(string(t))
	}
	o.ServiceType = t
	o.Touch()
	return nil
}

// SetPrice sets the quoted price. A nil price clears it.
func (o *Order) SetPrice(price *decimal.Decimal) error {
	if price != nil && price.IsNegative() {
		return ErrNegativePrice
	}
	o.Price = price
	o.Touch()
	return nil
}

// SetNotes replaces the admin notes
func (o *Order) SetNotes(notes string) {
	o.Notes = strings.TrimSpace(notes)
	o.Touch()
}

// Assign sets the responsible valuator code. An empty code unassigns.
func (o *Order) Assign(code string) error {
	if o.Status.IsFinal() {
		return ErrOrderClosed.WithArgs(string(o.Status))
	}
	o.AssignedTo = code
	o.Touch()
	return nil
}

// ChangeStatus moves the order through the workflow
func (o *Order) ChangeStatus(next Status, now time.Time) error {
	if !next.IsValid() {
		return ErrInvalidStatus.WithArgs(string(next))
	}
	if next == o.Status {
		return nil
	}
	if !o.Status.CanTransitionTo(next) {
		return ErrInvalidTransition.WithArgs(string(o.Status), string(next))
	}
	o.Status = next
	if next == StatusCompleted {
		o.CompletedAt = &now
	}
	o.Touch()
	return nil
}

// AttachReport records the storage key of the valuation report
func (o *Order) AttachReport(key string) {
	o.ReportKey = key
	o.Touch()
}

// HasReport reports whether a valuation report was uploaded
func (o *Order) HasReport() bool {
	return o.ReportKey != ""
}

// IsOwnedBy reports whether the order belongs to the client email
func (o *Order) IsOwnedBy(email string) bool {
	return strings.EqualFold(o.Email, strings.TrimSpace(email))
}

// ReportObjectKey returns the storage key for a report file of this order
func ReportObjectKey(orderID fmt.Stringer, filename string) string {
	return "orders/" + orderID.String() + "/" + filename
}
