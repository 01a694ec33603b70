// Package geo defines address geocoding used to place orders on a map.
package geo

import (
	"context"
	"errors"
	"strings"

	"github.com/vertinimas/portal/internal/domain/shared"
)

var (
	ErrAddressRequired = shared.ErrInvalidInput.WithReason("geocode.address_required", "Address is required")
	ErrNoMatch         = shared.ErrNotFound.WithReason("geocode.not_found", "Address not found")
	ErrUnavailable     = shared.ErrInternal.WithReason("geocode.unavailable", "Address lookup is temporarily unavailable")
	ErrDisabled        = shared.ErrInternal.WithReason("geocode.disabled", "Address lookup is disabled")
)

// Location is a resolved coordinate pair
type Location struct {
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
	DisplayName string  `json:"display_name"`
}

// Geocoder resolves a free-text address to a location. Implementations
// return ErrNoMatch when nothing matches and ErrUnavailable on upstream failure.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (*Location, error)
}

// NormalizeAddress trims and collapses whitespace
func NormalizeAddress(address string) string {
	return strings.Join(strings.Fields(address), " ")
}

// Outcome classifies a geocoding result for metrics: ok, not_found,
// disabled or error
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNoMatch):
		return "not_found"
	case errors.Is(err, ErrDisabled):
		return "disabled"
	default:
		return "error"
	}
}
