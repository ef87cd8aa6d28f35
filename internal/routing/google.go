package routing

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/UnknownOlympus/wayfarer/internal/geo"
	"github.com/UnknownOlympus/wayfarer/internal/models"
	"googlemaps.github.io/maps"
)

// GoogleProvider holds the client for the Google Maps Distance Matrix API
// and a logger for logging purposes.
type GoogleProvider struct {
	client GoogleAPIClient // client is the Google Maps API client
	log    *slog.Logger    // log is the logger for logging operations
}

type GoogleAPIClient interface {
	DistanceMatrix(ctx context.Context, r *maps.DistanceMatrixRequest) (*maps.DistanceMatrixResponse, error)
}

// NewGoogleProvider initializes a new GoogleProvider with the given API client and logger.
func NewGoogleProvider(client GoogleAPIClient, log *slog.Logger) *GoogleProvider {
	return &GoogleProvider{client: client, log: log}
}

// RoadDistance requests a single driving origin/destination element from the Distance Matrix API.
// Any element status other than OK is treated as a missing route.
func (gp *GoogleProvider) RoadDistance(ctx context.Context, origin, dest models.Coordinates) (float64, error) {
	req := &maps.DistanceMatrixRequest{
		Origins:      []string{latLng(origin)},
		Destinations: []string{latLng(dest)},
		Mode:         maps.TravelModeDriving,
	}

	gp.log.DebugContext(ctx, "Routing using Google Distance Matrix",
		"origin", req.Origins[0], "destination", req.Destinations[0])

	resp, err := gp.client.DistanceMatrix(ctx, req)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to query distance matrix: %w", ErrRouteUnavailable, err)
	}

	if resp == nil || len(resp.Rows) == 0 || len(resp.Rows[0].Elements) == 0 {
		return 0, fmt.Errorf("%w: empty distance matrix response", ErrRouteUnavailable)
	}

	element := resp.Rows[0].Elements[0]
	if element == nil {
		return 0, fmt.Errorf("%w: empty distance matrix element", ErrRouteUnavailable)
	}
	if element.Status != "OK" {
		return 0, fmt.Errorf("%w: distance matrix element status %s", ErrRouteUnavailable, element.Status)
	}

	return geo.Round2(float64(element.Distance.Meters) / 1000), nil
}

func latLng(c models.Coordinates) string {
	return strconv.FormatFloat(c.Latitude, 'f', 6, 64) + "," + strconv.FormatFloat(c.Longitude, 'f', 6, 64)
}
