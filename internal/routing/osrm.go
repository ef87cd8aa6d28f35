package routing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/UnknownOlympus/wayfarer/internal/geo"
	"github.com/UnknownOlympus/wayfarer/internal/models"
)

// OSRMBaseURL is the public OSRM demo server.
const OSRMBaseURL = "https://router.project-osrm.org"

const osrmUserAgent = "Wayfarer-Places/1.0 (https://github.com/UnknownOlympus/wayfarer)"

// OSRMProvider implements the Provider interface using the OSRM route service.
// The public demo server is best-effort and expects at most one request per second.
type OSRMProvider struct {
	client    HTTPClient   // HTTP client for making requests
	baseURL   string       // Base URL of the OSRM server
	log       *slog.Logger // Logger for logging operations
	userAgent string
}

// osrmResponse represents the subset of the OSRM route response we need.
type osrmResponse struct {
	Code   string `json:"code"`
	Routes []struct {
		Distance float64 `json:"distance"` // metres
	} `json:"routes"`
}

// NewOSRMProvider creates a new OSRM routing provider. An empty baseURL selects the public server.
func NewOSRMProvider(baseURL string, timeout time.Duration, log *slog.Logger) *OSRMProvider {
	const defaultTimeout = 10 * time.Second
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return NewOSRMProviderWithClient(&http.Client{Timeout: timeout}, baseURL, log)
}

// NewOSRMProviderWithClient creates an OSRM provider with a custom HTTP client.
// Useful for testing with mocked HTTP clients.
func NewOSRMProviderWithClient(client HTTPClient, baseURL string, log *slog.Logger) *OSRMProvider {
	if baseURL == "" {
		baseURL = OSRMBaseURL
	}

	return &OSRMProvider{
		client:    client,
		baseURL:   baseURL,
		log:       log,
		userAgent: osrmUserAgent,
	}
}

// RoadDistance asks OSRM for a driving route from origin to dest and returns its length in kilometres.
func (op *OSRMProvider) RoadDistance(ctx context.Context, origin, dest models.Coordinates) (float64, error) {
	reqURL, err := url.Parse(op.baseURL)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to parse base URL: %w", ErrRouteUnavailable, err)
	}

	// OSRM expects lon,lat pairs.
	reqURL = reqURL.JoinPath("route", "v1", "driving", lonLat(origin)+";"+lonLat(dest))
	query := reqURL.Query()
	query.Set("overview", "false")
	reqURL.RawQuery = query.Encode()

	op.log.DebugContext(ctx, "OSRM request URL", "url", reqURL.String())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to create request: %w", ErrRouteUnavailable, err)
	}
	req.Header.Set("User-Agent", op.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := op.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to execute routing request: %w", ErrRouteUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to read response body: %w", ErrRouteUnavailable, err)
	}

	if resp.StatusCode != http.StatusOK {
		op.log.ErrorContext(ctx, "OSRM API error", "status", resp.StatusCode, "body", string(body))
		return 0, fmt.Errorf("%w: osrm API returned status %d", ErrRouteUnavailable, resp.StatusCode)
	}

	var result osrmResponse
	if err = json.Unmarshal(body, &result); err != nil {
		op.log.ErrorContext(ctx, "Failed to parse OSRM response", "error", err, "body", string(body))
		return 0, fmt.Errorf("%w: failed to decode osrm response: %w", ErrRouteUnavailable, err)
	}

	if result.Code != "Ok" || len(result.Routes) == 0 {
		return 0, fmt.Errorf("%w: osrm returned code %q with %d routes", ErrRouteUnavailable, result.Code, len(result.Routes))
	}

	km := geo.Round2(result.Routes[0].Distance / 1000)
	op.log.DebugContext(ctx, "OSRM found route", "km", km)

	return km, nil
}

func lonLat(c models.Coordinates) string {
	return strconv.FormatFloat(c.Longitude, 'f', 6, 64) + "," + strconv.FormatFloat(c.Latitude, 'f', 6, 64)
}
