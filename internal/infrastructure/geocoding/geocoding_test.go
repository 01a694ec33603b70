package geocoding

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vertinimas/portal/internal/domain/geo"
	"github.com/vertinimas/portal/internal/infrastructure/cache"
	"github.com/vertinimas/portal/internal/infrastructure/config"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *NominatimClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewNominatimClient(config.GeocodingConfig{
		Enabled:      true,
		BaseURL:      srv.URL + "/",
		APIKey:       "secret",
		UserAgent:    "portal-test/1.0",
		CountryCodes: "lt",
		Timeout:      2 * time.Second,
	}, "lt", zap.NewNop())
}

func TestNominatimClient_Geocode(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "jsonv2", q.Get("format"))
		assert.Equal(t, "1", q.Get("limit"))
		assert.Equal(t, "lt", q.Get("countrycodes"))
		assert.Equal(t, "secret", q.Get("key"))
		assert.Equal(t, "Gedimino pr. 1, Vilnius", q.Get("q"))
		assert.Equal(t, "portal-test/1.0", r.Header.Get("User-Agent"))
		assert.Equal(t, "lt", r.Header.Get("Accept-Language"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"lat":"54.6872","lon":"25.2797","display_name":"Gedimino pr. 1, Vilnius"}]`))
	})

	loc, err := client.Geocode(context.Background(), "  Gedimino pr. 1,   Vilnius ")
	require.NoError(t, err)
	assert.InDelta(t, 54.6872, loc.Lat, 1e-9)
	assert.InDelta(t, 25.2797, loc.Lng, 1e-9)
	assert.Equal(t, "Gedimino pr. 1, Vilnius", loc.DisplayName)
}

func TestNominatimClient_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{"empty result", http.StatusOK, `[]`, geo.ErrNoMatch},
		{"server error", http.StatusBadGateway, `oops`, geo.ErrUnavailable},
		{"rate limited", http.StatusTooManyRequests, ``, geo.ErrUnavailable},
		{"invalid json", http.StatusOK, `{not json`, geo.ErrUnavailable},
		{"bad coordinates", http.StatusOK, `[{"lat":"north","lon":"25.1"}]`, geo.ErrUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})
			_, err := client.Geocode(context.Background(), "Vilnius")
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestNominatimClient_BlankAddress(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})
	_, err := client.Geocode(context.Background(), "   ")
	assert.ErrorIs(t, err, geo.ErrAddressRequired)
}

func TestNominatimClient_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client := NewNominatimClient(config.GeocodingConfig{BaseURL: url, Timeout: time.Second}, "", zap.NewNop())
	_, err := client.Geocode(context.Background(), "Vilnius")
	assert.ErrorIs(t, err, geo.ErrUnavailable)
}

func TestNominatimClient_ResponseSizeLimit(t *testing.T) {
	body := `[{"lat":"54.6872","lon":"25.2797","display_name":"Gedimino pr. 1, Vilnius"}]`
	handler := func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(body))
	}
	srv := httptest.NewServer(http.HandlerFunc(handler))
	defer srv.Close()

	small := NewNominatimClient(config.GeocodingConfig{
		BaseURL:          srv.URL,
		Timeout:          time.Second,
		MaxResponseBytes: 32,
	}, "", zap.NewNop())
	_, err := small.Geocode(context.Background(), "Vilnius")
	assert.ErrorIs(t, err, geo.ErrUnavailable)

	exact := NewNominatimClient(config.GeocodingConfig{
		BaseURL:          srv.URL,
		Timeout:          time.Second,
		MaxResponseBytes: int64(len(body)),
	}, "", zap.NewNop())
	loc, err := exact.Geocode(context.Background(), "Vilnius")
	require.NoError(t, err)
	assert.Equal(t, "Gedimino pr. 1, Vilnius", loc.DisplayName)
}

type countingGeocoder struct {
	calls atomic.Int32
	err   error
}

func (c *countingGeocoder) Geocode(_ context.Context, address string) (*geo.Location, error) {
	c.calls.Add(1)
	if c.err != nil {
		return nil, c.err
	}
	return &geo.Location{Lat: 1, Lng: 2, DisplayName: address}, nil
}

func TestCachedGeocoder(t *testing.T) {
	store := cache.NewMemoryStore(time.Hour)
	defer store.Close()

	inner := &countingGeocoder{}
	g := NewCachedGeocoder(inner, store, time.Hour, zap.NewNop())
	ctx := context.Background()

	first, err := g.Geocode(ctx, "Vilnius,  Gedimino pr. 1")
	require.NoError(t, err)
	second, err := g.Geocode(ctx, "vilnius, gedimino PR. 1")
	require.NoError(t, err)

	assert.Equal(t, int32(1), inner.calls.Load())
	assert.Equal(t, first.Lat, second.Lat)

	_, err = g.Geocode(ctx, " ")
	assert.ErrorIs(t, err, geo.ErrAddressRequired)
}

func TestCachedGeocoder_DoesNotCacheMisses(t *testing.T) {
	store := cache.NewMemoryStore(time.Hour)
	defer store.Close()

	inner := &countingGeocoder{err: geo.ErrNoMatch}
	g := NewCachedGeocoder(inner, store, time.Hour, zap.NewNop())

	for i := 0; i < 2; i++ {
		_, err := g.Geocode(context.Background(), "Niekur")
		assert.ErrorIs(t, err, geo.ErrNoMatch)
	}
	assert.Equal(t, int32(2), inner.calls.Load())
}

func TestDisabled(t *testing.T) {
	_, err := Disabled{}.Geocode(context.Background(), "Vilnius")
	assert.ErrorIs(t, err, geo.ErrDisabled)
}
