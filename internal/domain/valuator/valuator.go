package valuator

import (
	"regexp"
	"strings"

	"github.com/vertinimas/portal/internal/domain/shared"
)

var codeRegex = regexp.MustCompile(`^[A-Z0-9_\-]{2,16}$`)

var (
	ErrValuatorNotFound = shared.ErrNotFound.WithReason("valuator.not_found", "Valuator not found")
	ErrCodeTaken        = shared.ErrAlreadyExists.WithReason("valuator.code_taken", "Valuator code is already in use")
	ErrInvalidCode      = shared.ErrInvalidInput.WithReason("valuator.code_invalid", "Valuator code must be 2-16 characters of A-Z, 0-9, _ or -")
	ErrNameRequired     = shared.ErrInvalidInput.WithReason("valuator.name_required", "Valuator name is required")
	ErrInactive         = shared.ErrInvalidInput.WithReason("valuator.inactive", "Valuator %s is not active")
	ErrHasOrders        = shared.ErrConflict.WithReason("valuator.has_orders", "Valuator still has %d assigned orders")
)

// Valuator is a staff member who processes valuation orders. Orders refer to
// a valuator by Code.
type Valuator struct {
	shared.BaseEntity
	Code   string
	Name   string
	Email  string
	Phone  string
	Active bool
}

// NormalizeCode uppercases and trims a valuator code
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// NewValuator creates an active valuator
func NewValuator(code, name string) (*Valuator, error) {
	code = NormalizeCode(code)
	if !codeRegex.MatchString(code) {
		return nil, ErrInvalidCode
	}
	v := &Valuator{
		BaseEntity: shared.NewBaseEntity(),
		Code:       code,
		Active:     true,
	}
	if err := v.Update(name, "", ""); err != nil {
		return nil, err
	}
	return v, nil
}

// Update replaces the valuator's contact details
func (v *Valuator) Update(name, email, phone string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrNameRequired
	}
	v.Name = name
	v.Email = strings.ToLower(strings.TrimSpace(email))
	v.Phone = strings.TrimSpace(phone)
	v.Touch()
	return nil
}

// Activate allows new orders to be assigned
func (v *Valuator) Activate() {
	v.Active = true
	v.Touch()
}

// Deactivate stops new assignments; existing orders keep their assignment
func (v *Valuator) Deactivate() {
	v.Active = false
	v.Touch()
}

// CanAcceptOrders reports whether orders may be assigned to the valuator
func (v *Valuator) CanAcceptOrders() error {
	if !v.Active {
		return ErrInactive.WithArgs(v.Code)
	}
	return nil
}
