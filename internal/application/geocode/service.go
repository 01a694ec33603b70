// Package geocode resolves free-text addresses for the order form map.
package geocode

import (
	"context"

	"go.uber.org/zap"

	"github.com/vertinimas/portal/internal/domain/geo"
	"github.com/vertinimas/portal/internal/infrastructure/telemetry"
)

// maxAddressLength bounds lookups sent upstream, in characters
const maxAddressLength = 300

// Service looks up addresses through a Geocoder
type Service struct {
	geocoder geo.Geocoder
	logger   *zap.Logger

	businessMetrics *telemetry.BusinessMetrics
}

// NewService creates a geocoding service
func NewService(geocoder geo.Geocoder, logger *zap.Logger) *Service {
	return &Service{geocoder: geocoder, logger: logger}
}

// SetBusinessMetrics sets the collector for lookup outcomes
func (s *Service) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	s.businessMetrics = bm
}

// Geocode resolves address. A blank address is rejected before any lookup.
func (s *Service) Geocode(ctx context.Context, address string) (*geo.Location, error) {
	address = geo.NormalizeAddress(address)
	if address == "" {
		return nil, geo.ErrAddressRequired
	}
	if r := []rune(address); len(r) > maxAddressLength {
		address = string(r[:maxAddressLength])
	}

	loc, err := s.geocoder.Geocode(ctx, address)
	s.businessMetrics.RecordGeocode(ctx, geo.Outcome(err))
	if err != nil {
		s.logger.Debug("Geocoding failed", zap.String("address", address), zap.Error(err))
		return nil, err
	}
	return loc, nil
}
