package routing

import (
	"context"
	"errors"
	"net/http"

	"github.com/UnknownOlympus/wayfarer/internal/models"
)

// Provider is an interface that defines a method for obtaining the road distance between two points.
// RoadDistance returns the driving distance in kilometres, rounded to two decimals.
// Every failure (transport, status, malformed payload, no route) wraps ErrRouteUnavailable.
type Provider interface {
	RoadDistance(ctx context.Context, origin, dest models.Coordinates) (float64, error)
}

// HTTPClient defines the interface for making HTTP requests.
// This allows for easy mocking in tests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// ErrRouteUnavailable is returned when no road distance could be obtained for a pair of points.
var ErrRouteUnavailable = errors.New("route unavailable")
