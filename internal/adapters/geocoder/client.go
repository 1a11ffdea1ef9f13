package geocoder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"wg-parser-service/internal/contextkeys"
	"wg-parser-service/internal/core/domain"
	"wg-parser-service/internal/core/port"
)

const (
	DefaultBaseURL = "https://maps.googleapis.com/maps/api/geocode/json"
	defaultTimeout = 10 * time.Second
)

// Client - клиент Google Geocoding API
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey string) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("geocoder: api key is required")
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}, nil
}

// Geocode возвращает первый результат. ZERO_RESULTS - ErrAddressNotFound.
func (c *Client) Geocode(ctx context.Context, address string) (*domain.GeoLocation, error) {
	clientLogger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component": "GeocoderClient",
		"method":    "Geocode",
	})

	params := url.Values{}
	params.Set("address", address)
	params.Set("key", c.apiKey)
	reqURL := c.baseURL + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", withoutURL(err))
	}
	req.Header.Set("Accept", "application/json")
	if traceID := contextkeys.TraceIDFromContext(ctx); traceID != "" {
		req.Header.Set("X-Trace-ID", traceID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		err = withoutURL(err)
		clientLogger.Error("Failed to perform geocoding request", err, nil)
		return nil, fmt.Errorf("geocoding request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		err := fmt.Errorf("geocoder returned status %d: %s", resp.StatusCode, string(body))
		clientLogger.Error("Received error response from geocoder", err, port.Fields{"status_code": resp.StatusCode})
		return nil, err
	}

	var parsed geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		clientLogger.Error("Failed to decode geocoder response", err, nil)
		return nil, fmt.Errorf("failed to decode geocoder response: %w", err)
	}

	switch parsed.Status {
	case "OK":
	case "ZERO_RESULTS":
		return nil, fmt.Errorf("%w: %s", domain.ErrAddressNotFound, address)
	default:
		return nil, fmt.Errorf("geocoder status %s: %s", parsed.Status, parsed.ErrorMessage)
	}
	if len(parsed.Results) == 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrAddressNotFound, address)
	}

	first := parsed.Results[0]
	return &domain.GeoLocation{
		FormattedAddress: first.FormattedAddress,
		Latitude:         first.Geometry.Location.Lat,
		Longitude:        first.Geometry.Location.Lng,
	}, nil
}

// withoutURL убирает из ошибки URL запроса: в query лежит ключ API
func withoutURL(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return fmt.Errorf("%s request: %w", urlErr.Op, urlErr.Err)
	}
	return err
}
