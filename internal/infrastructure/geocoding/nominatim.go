// Package geocoding implements geo.Geocoder on a Nominatim-compatible
// search API.
package geocoding

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/vertinimas/portal/internal/domain/geo"
	"github.com/vertinimas/portal/internal/infrastructure/config"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

// defaultMaxResponseSize bounds the body read when config leaves it unset
const defaultMaxResponseSize = 1 << 20

// NominatimClient queries GET {base}/search?format=jsonv2
type NominatimClient struct {
	baseURL      string
	apiKey       string
	userAgent    string
	countryCodes string
	language     string
	maxBody      int64
	httpClient   *http.Client
	logger       *zap.Logger
}

// NewNominatimClient creates a client from configuration
func NewNominatimClient(cfg config.GeocodingConfig, language string, logger *zap.Logger) *NominatimClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	maxBody := cfg.MaxResponseBytes
	if maxBody <= 0 {
		maxBody = defaultMaxResponseSize
	}
	return &NominatimClient{
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:       cfg.APIKey,
		userAgent:    cfg.UserAgent,
		countryCodes: cfg.CountryCodes,
		language:     language,
		maxBody:      maxBody,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		logger: logger,
	}
}

type searchResult struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// Geocode returns the best match for address
func (c *NominatimClient) Geocode(ctx context.Context, address string) (*geo.Location, error) {
	address = geo.NormalizeAddress(address)
	if address == "" {
		return nil, geo.ErrAddressRequired
	}

	q := url.Values{}
	q.Set("format", "jsonv2")
	q.Set("limit", "1")
	q.Set("q", address)
	if c.countryCodes != "" {
		q.Set("countrycodes", c.countryCodes)
	}
	if c.apiKey != "" {
		q.Set("key", c.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build geocoding request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if c.language != "" {
		req.Header.Set("Accept-Language", c.language)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("Geocoding request failed", zap.Error(err))
		return nil, geo.ErrUnavailable
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		c.logger.Warn("Geocoding response read failed", zap.Error(err))
		return nil, geo.ErrUnavailable
	}
	if int64(len(body)) > c.maxBody {
		c.logger.Warn("Geocoding response too large", zap.Int64("limit", c.maxBody))
		return nil, geo.ErrUnavailable
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn("Geocoding API returned an error",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", truncate(body, 256)),
		)
		return nil, geo.ErrUnavailable
	}

	var results []searchResult
	if err := json.Unmarshal(body, &results); err != nil {
		c.logger.Warn("Geocoding response is not valid JSON", zap.Error(err))
		return nil, geo.ErrUnavailable
	}
	if len(results) == 0 {
		return nil, geo.ErrNoMatch
	}

	lat, errLat := strconv.ParseFloat(results[0].Lat, 64)
	lng, errLng := strconv.ParseFloat(results[0].Lon, 64)
	if errLat != nil || errLng != nil {
		c.logger.Warn("Geocoding result has malformed coordinates",
			zap.String("lat", results[0].Lat),
			zap.String("lon", results[0].Lon),
		)
		return nil, geo.ErrUnavailable
	}

	return &geo.Location{Lat: lat, Lng: lng, DisplayName: results[0].DisplayName}, nil
}

func truncate(b []byte, n int) []byte {
	if len(b) <= n {
		return b
	}
	return b[:n]
}

var _ geo.Geocoder = (*NominatimClient)(nil)
