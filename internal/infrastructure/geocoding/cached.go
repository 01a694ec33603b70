package geocoding

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/vertinimas/portal/internal/domain/geo"
	"github.com/vertinimas/portal/internal/infrastructure/cache"
	"go.uber.org/zap"
)

// CachedGeocoder caches successful lookups by normalized address and
// coalesces concurrent lookups of the same address
type CachedGeocoder struct {
	next   geo.Geocoder
	loader *cache.Loader[geo.Location]
}

// NewCachedGeocoder wraps next with a cache keeping results for ttl
func NewCachedGeocoder(next geo.Geocoder, store cache.Store, ttl time.Duration, logger *zap.Logger) *CachedGeocoder {
	return &CachedGeocoder{
		next:   next,
		loader: cache.NewLoader[geo.Location](store, "geocode:", ttl, logger),
	}
}

// Geocode returns the cached location or asks the wrapped geocoder
func (g *CachedGeocoder) Geocode(ctx context.Context, address string) (*geo.Location, error) {
	address = geo.NormalizeAddress(address)
	if address == "" {
		return nil, geo.ErrAddressRequired
	}

	loc, err := g.loader.Get(ctx, strings.ToLower(address), func(ctx context.Context) (geo.Location, error) {
		l, err := g.next.Geocode(ctx, address)
		if err != nil {
			return geo.Location{}, err
		}
		if l == nil {
			return geo.Location{}, errors.New("geocoder returned no location")
		}
		return *l, nil
	})
	if err != nil {
		return nil, err
	}
	return &loc, nil
}

// Disabled is the geocoder used when lookups are switched off
type Disabled struct{}

// Geocode always fails with geo.ErrDisabled
func (Disabled) Geocode(context.Context, string) (*geo.Location, error) {
	return nil, geo.ErrDisabled
}

var (
	_ geo.Geocoder = (*CachedGeocoder)(nil)
	_ geo.Geocoder = Disabled{}
)
