// Package ranking orders catalog places by their distance to the user.
//
// Places are first ranked by Haversine distance; only the closest few are then
// refined with road distances, one request at a time through a paced Queue.
package ranking

import (
	"cmp"
	"context"
	"errors"
	"log/slog"
	"slices"
	"time"

	"github.com/UnknownOlympus/wayfarer/internal/geo"
	"github.com/UnknownOlympus/wayfarer/internal/metrics"
	"github.com/UnknownOlympus/wayfarer/internal/models"
	"github.com/UnknownOlympus/wayfarer/internal/routing"
)

// DefaultTopN is the number of places kept and refined when the caller does not choose.
const DefaultTopN = 5

var (
	// ErrLocationUnavailable is returned when ranking is requested without a user location.
	ErrLocationUnavailable = errors.New("user location unavailable")
	// ErrNoCoordinates is returned when a single place without coordinates is refined.
	ErrNoCoordinates = errors.New("place has no coordinates")
)

// Guard marks places as being refined so that no place has two refinements in flight.
type Guard interface {
	BeginRefine(name string) error
	EndRefine(name string)
}

// Options tune the pipeline.
type Options struct {
	TopN         int    // Places kept after the approximate sort, DefaultTopN when <= 0.
	ProviderName string // Routing provider name for metrics labeling.
	// PreserveApproximateOrder keeps the Haversine order after refinement instead of
	// re-sorting by final distance.
	PreserveApproximateOrder bool
}

// Pipeline ranks places by distance to an origin.
type Pipeline struct {
	log           *slog.Logger
	provider      routing.Provider
	providerName  string
	queue         *Queue
	metrics       *metrics.Metrics
	topN          int
	preserveOrder bool
}

// ranked keeps the catalog position of a place for tie-breaking.
type ranked struct {
	place models.Place
	index int
}

// NewPipeline creates a ranking pipeline backed by the given routing provider and queue.
func NewPipeline(
	log *slog.Logger,
	provider routing.Provider,
	queue *Queue,
	metrics *metrics.Metrics,
	opts Options,
) *Pipeline {
	topN := opts.TopN
	if topN <= 0 {
		topN = DefaultTopN
	}

	return &Pipeline{
		log:           log,
		provider:      provider,
		providerName:  opts.ProviderName,
		queue:         queue,
		metrics:       metrics,
		topN:          topN,
		preserveOrder: opts.PreserveApproximateOrder,
	}
}

// TopN returns the default number of places returned by RankNearest.
func (p *Pipeline) TopN() int {
	return p.topN
}

// RankNearest returns the topN places closest to origin, nearest first.
//
// Places without coordinates are skipped. The kept places are refined with road
// distances in ascending approximate order; a place whose refinement fails keeps
// its approximate distance. A nil origin yields ErrLocationUnavailable.
func (p *Pipeline) RankNearest(
	ctx context.Context,
	candidates []models.Place,
	origin *models.Coordinates,
	topN int,
) ([]models.Place, error) {
	return p.RankNearestGuarded(ctx, candidates, origin, topN, nil)
}

// RankNearestGuarded is RankNearest holding guard for every kept place while it is
// refined. When any kept place is already held, no routing request is made and the
// guard error is returned. A nil guard disables the check.
func (p *Pipeline) RankNearestGuarded(
	ctx context.Context,
	candidates []models.Place,
	origin *models.Coordinates,
	topN int,
	guard Guard,
) ([]models.Place, error) {
	if origin == nil {
		p.metrics.RankingRuns.WithLabelValues("location_unavailable").Inc()
		return nil, ErrLocationUnavailable
	}
	if topN <= 0 {
		topN = p.topN
	}

	list := make([]ranked, 0, len(candidates))
	for idx, place := range candidates {
		if !place.HasCoordinates() {
			continue
		}
		list = append(list, ranked{place: approximate(place, *origin), index: idx})
	}

	sortByDistance(list)
	if len(list) > topN {
		list = list[:topN]
	}

	release, err := hold(guard, list)
	if err != nil {
		p.metrics.RankingRuns.WithLabelValues("in_flight").Inc()
		p.log.InfoContext(ctx, "Ranking rejected, refinement already in flight", "error", err)
		return nil, err
	}
	defer release()

	p.log.DebugContext(ctx, "Refining nearest places", "count", len(list), "candidates", len(candidates))

	refined := p.refineAll(ctx, *origin, list)
	if !p.preserveOrder {
		sortByDistance(list)
	}

	result := make([]models.Place, 0, len(list))
	for _, item := range list {
		p.metrics.Annotations.WithLabelValues(string(item.place.Distance.Precision)).Inc()
		result = append(result, item.place)
	}

	outcome := "complete"
	if refined < len(list) {
		outcome = "partial"
	}
	p.metrics.RankingRuns.WithLabelValues(outcome).Inc()
	p.log.InfoContext(ctx, "Ranking finished", "returned", len(result), "refined", refined)

	return result, nil
}

// Refine annotates a single place with its road distance from origin, falling back
// to the approximate distance when the route is unavailable.
func (p *Pipeline) Refine(ctx context.Context, place models.Place, origin *models.Coordinates) (models.Place, error) {
	if origin == nil {
		return place, ErrLocationUnavailable
	}
	if !place.HasCoordinates() {
		return place, ErrNoCoordinates
	}

	item := []ranked{{place: approximate(place, *origin)}}
	p.refineAll(ctx, *origin, item)
	p.metrics.Annotations.WithLabelValues(string(item[0].place.Distance.Precision)).Inc()

	return item[0].place, nil
}

// refineAll refines list in order and returns the number of places that got a road distance.
func (p *Pipeline) refineAll(ctx context.Context, origin models.Coordinates, list []ranked) int {
	refined := 0
	for i := range list {
		err := p.queue.Do(ctx, func(ctx context.Context) {
			km, err := p.roadDistance(ctx, origin, *list[i].place.Coordinates)
			if err != nil {
				p.log.WarnContext(ctx, "Keeping approximate distance", "place", list[i].place.Name, "error", err)
				return
			}
			list[i].place = list[i].place.WithDistance(models.DistanceAnnotation{
				Kilometers: km,
				Precision:  models.PrecisionRefined,
			})
			refined++
		})
		if err != nil {
			p.log.WarnContext(ctx, "Refinement stopped, remaining places stay approximate",
				"remaining", len(list)-i, "error", err)
			break
		}
	}

	return refined
}

func (p *Pipeline) roadDistance(ctx context.Context, origin, dest models.Coordinates) (float64, error) {
	p.metrics.RefinesInFlight.Inc()
	defer p.metrics.RefinesInFlight.Dec()

	startTime := time.Now()
	km, err := p.provider.RoadDistance(ctx, origin, dest)
	p.metrics.RequestSeconds.WithLabelValues(p.providerName).Observe(time.Since(startTime).Seconds())

	if err != nil {
		p.metrics.RoutingRequests.WithLabelValues(p.providerName, "failure").Inc()
		return 0, err
	}
	p.metrics.RoutingRequests.WithLabelValues(p.providerName, "success").Inc()

	return km, nil
}

// hold begins a refinement on guard for each distinct place name in list. On failure
// the names already taken are released.
func hold(guard Guard, list []ranked) (func(), error) {
	if guard == nil {
		return func() {}, nil
	}

	held := make([]string, 0, len(list))
	release := func() {
		for _, name := range held {
			guard.EndRefine(name)
		}
	}

	for _, item := range list {
		if slices.Contains(held, item.place.Name) {
			continue
		}
		if err := guard.BeginRefine(item.place.Name); err != nil {
			release()
			return nil, err
		}
		held = append(held, item.place.Name)
	}

	return release, nil
}

func approximate(place models.Place, origin models.Coordinates) models.Place {
	return place.WithDistance(models.DistanceAnnotation{
		Kilometers: geo.HaversineKm(origin, *place.Coordinates),
		Precision:  models.PrecisionApproximate,
	})
}

// sortByDistance orders by distance, ties by catalog position.
func sortByDistance(list []ranked) {
	slices.SortStableFunc(list, func(a, b ranked) int {
		if c := cmp.Compare(a.place.Distance.Kilometers, b.place.Distance.Kilometers); c != 0 {
			return c
		}
		return cmp.Compare(a.index, b.index)
	})
}
