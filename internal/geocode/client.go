// Package geocode resolves free-text addresses, device positions and map
// points into normalized location records via the Google Maps Geocoding
// API. Failure kinds are distinct types (configuration, no-match,
// provider) so callers never conflate "the API key is broken" with
// "nobody lives there". Reverse geocoding degrades instead of failing:
// it always returns a record carrying the coordinates.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"straycare/internal/types"
)

const defaultBaseURL = "https://maps.googleapis.com/maps/api/geocode/json"

// ConfigError means the provider rejected the request for configuration
// reasons (missing or unauthorized API key).
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return "geocoding is not configured: " + e.Reason
}

// NoMatchError means the provider found nothing for the query.
type NoMatchError struct {
	Query string
}

func (e *NoMatchError) Error() string {
	return fmt.Sprintf("no results found for %q", e.Query)
}

// ProviderError is any other non-OK provider status.
type ProviderError struct {
	Status string
}

func (e *ProviderError) Error() string {
	return "geocoding failed with status " + e.Status
}

// Client calls the geocoding provider.
type Client struct {
	apiKey string
	base   string
	http   *http.Client
	log    *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at a different endpoint, for tests.
func WithBaseURL(base string) Option { return func(c *Client) { c.base = base } }

// WithHTTPClient replaces the transport.
func WithHTTPClient(h *http.Client) Option { return func(c *Client) { c.http = h } }

// WithLogger sets the logger.
func WithLogger(log *zap.Logger) Option { return func(c *Client) { c.log = log } }

// New builds a geocoding client. An empty API key is allowed: forward
// geocoding then fails with a ConfigError and reverse geocoding falls back
// to coordinate-only records.
func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey: apiKey,
		base:   defaultBaseURL,
		http:   &http.Client{Timeout: 10 * time.Second},
		log:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type providerResponse struct {
	Status  string `json:"status"`
	Results []struct {
		FormattedAddress string `json:"formatted_address"`
		Geometry         struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
		AddressComponents []struct {
			LongName string   `json:"long_name"`
			Types    []string `json:"types"`
		} `json:"address_components"`
	} `json:"results"`
}

func (c *Client) query(ctx context.Context, params url.Values) (*providerResponse, error) {
	params.Set("key", c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build geocode request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocode request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocode request: unexpected status %d", resp.StatusCode)
	}
	var pr providerResponse
	if err := json.NewDecoder(resp.Body).Decode(&pr); err != nil {
		return nil, fmt.Errorf("decode geocode response: %w", err)
	}
	return &pr, nil
}

func (pr *providerResponse) record() types.LocationRecord {
	result := pr.Results[0]
	rec := types.LocationRecord{
		Address:   result.FormattedAddress,
		Latitude:  result.Geometry.Location.Lat,
		Longitude: result.Geometry.Location.Lng,
	}
	for _, comp := range result.AddressComponents {
		for _, t := range comp.Types {
			switch t {
			case "locality":
				rec.City = comp.LongName
			case "administrative_area_level_1":
				rec.State = comp.LongName
			}
		}
	}
	return rec
}

// Forward resolves a typed address to a location record.
func (c *Client) Forward(ctx context.Context, address string) (types.LocationRecord, error) {
	if c.apiKey == "" {
		return types.LocationRecord{}, &ConfigError{Reason: "maps API key is not set"}
	}
	params := url.Values{}
	params.Set("address", address)
	pr, err := c.query(ctx, params)
	if err != nil {
		return types.LocationRecord{}, err
	}
	switch pr.Status {
	case "OK":
	case "REQUEST_DENIED":
		return types.LocationRecord{}, &ConfigError{Reason: "the maps API key was rejected"}
	case "ZERO_RESULTS":
		return types.LocationRecord{}, &NoMatchError{Query: address}
	default:
		return types.LocationRecord{}, &ProviderError{Status: pr.Status}
	}
	if len(pr.Results) == 0 {
		return types.LocationRecord{}, &NoMatchError{Query: address}
	}
	rec := pr.record()
	// Forward results use the geocoded coordinate, not the query.
	return rec, nil
}

// Fallback returns the record a failed reverse geocode degrades to: the
// coordinates survive, the textual fields stay empty strings.
func Fallback(lat, lng float64) types.LocationRecord {
	return types.LocationRecord{Latitude: lat, Longitude: lng}
}

// Reverse resolves a coordinate to an address. On any failure it returns
// Fallback(lat, lng) together with the error, so the caller always has a
// usable record and may log or surface the cause separately.
func (c *Client) Reverse(ctx context.Context, lat, lng float64) (types.LocationRecord, error) {
	if c.apiKey == "" {
		return Fallback(lat, lng), &ConfigError{Reason: "maps API key is not set"}
	}
	params := url.Values{}
	params.Set("latlng", fmt.Sprintf("%f,%f", lat, lng))
	pr, err := c.query(ctx, params)
	if err != nil {
		c.log.Warn("reverse geocode failed, using coordinate-only record", zap.Error(err))
		return Fallback(lat, lng), err
	}
	switch pr.Status {
	case "OK":
	case "REQUEST_DENIED":
		return Fallback(lat, lng), &ConfigError{Reason: "the maps API key was rejected"}
	case "ZERO_RESULTS":
		return Fallback(lat, lng), &NoMatchError{Query: fmt.Sprintf("%f,%f", lat, lng)}
	default:
		return Fallback(lat, lng), &ProviderError{Status: pr.Status}
	}
	if len(pr.Results) == 0 {
		return Fallback(lat, lng), &NoMatchError{Query: fmt.Sprintf("%f,%f", lat, lng)}
	}
	rec := pr.record()
	// The caller's coordinate is authoritative for reverse lookups.
	rec.Latitude = lat
	rec.Longitude = lng
	return rec, nil
}
