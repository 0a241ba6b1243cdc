package googleplaces

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultBaseURL = "https://maps.googleapis.com"

	geocodePath      = "/maps/api/geocode/json"
	nearbySearchPath = "/maps/api/place/nearbysearch/json"
	placeDetailsPath = "/maps/api/place/details/json"
)

// ErrMissingAPIKey is returned before any request is made without a key
var ErrMissingAPIKey = errors.New("googleplaces: API key not set")

// APIError reports a non-200 response or a provider status other than
// OK / ZERO_RESULTS
type APIError struct {
	Endpoint   string
	StatusCode int
	Status     string
	Message    string
}

func (e *APIError) Error() string {
	if e.Status != "" {
		if e.Message != "" {
			return fmt.Sprintf("googleplaces: %s returned %s: %s", e.Endpoint, e.Status, e.Message)
		}
		return fmt.Sprintf("googleplaces: %s returned %s", e.Endpoint, e.Status)
	}
	return fmt.Sprintf("googleplaces: %s returned HTTP %d: %s", e.Endpoint, e.StatusCode, e.Message)
}

// Client talks to the Geocoding and Places web services
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

type Option func(*Client)

func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if strings.TrimSpace(baseURL) != "" {
			c.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout bounds every request made by the client
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient = &http.Client{Timeout: timeout}
		}
	}
}

func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:     apiKey,
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Geocode resolves a free-text address. An empty slice means the provider
// found nothing.
func (c *Client) Geocode(ctx context.Context, address string) ([]GeocodeResult, error) {
	params := url.Values{}
	params.Set("address", address)

	var resp GeocodeResponse
	if err := c.get(ctx, "geocode", geocodePath, params, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}

// NearbySearch fetches one page of places around a coordinate
func (c *Client) NearbySearch(ctx context.Context, req NearbySearchRequest) (*NearbySearchResponse, error) {
	params := url.Values{}
	params.Set("location", fmt.Sprintf("%.6f,%.6f", req.Location.Lat, req.Location.Lng))
	params.Set("radius", strconv.Itoa(req.RadiusMeters))
	if req.Keyword != "" {
		params.Set("keyword", req.Keyword)
	}
	if req.PageToken != "" {
		params.Set("pagetoken", req.PageToken)
	}

	var resp NearbySearchResponse
	if err := c.get(ctx, "nearbysearch", nearbySearchPath, params, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// PlaceDetails fetches the given fields of a single place
func (c *Client) PlaceDetails(ctx context.Context, placeID string, fields []string) (*PlaceDetails, error) {
	if len(fields) == 0 {
		fields = DefaultDetailFields
	}
	params := url.Values{}
	params.Set("place_id", placeID)
	params.Set("fields", strings.Join(fields, ","))

	var resp PlaceDetailsResponse
	if err := c.get(ctx, "details", placeDetailsPath, params, &resp); err != nil {
		return nil, err
	}
	return &resp.Result, nil
}

func (c *Client) get(ctx context.Context, endpoint, path string, params url.Values, out statusCarrier) error {
	if c.apiKey == "" {
		return ErrMissingAPIKey
	}
	params.Set("key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("googleplaces: failed to create %s request: %w", endpoint, err)
	}
	req.URL.RawQuery = params.Encode()
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("googleplaces: %s request failed: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return &APIError{Endpoint: endpoint, StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body))}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("googleplaces: failed to parse %s response: %w", endpoint, err)
	}

	status, message := out.providerStatus()
	switch status {
	case StatusOK, StatusZeroResults:
		return nil
	default:
		return &APIError{Endpoint: endpoint, StatusCode: resp.StatusCode, Status: status, Message: message}
	}
}
