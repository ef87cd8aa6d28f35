package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/UnknownOlympus/wayfarer/internal/catalog"
	"github.com/UnknownOlympus/wayfarer/internal/metrics"
	"github.com/UnknownOlympus/wayfarer/internal/models"
	"github.com/UnknownOlympus/wayfarer/internal/ranking"
	"github.com/UnknownOlympus/wayfarer/internal/session"
)

// ErrPlaceNotFound is returned when a place name is not in the catalog.
var ErrPlaceNotFound = errors.New("place not found")

// Ranker orders places by distance from an origin and refines single places.
type Ranker interface {
	RankNearestGuarded(
		ctx context.Context,
		candidates []models.Place,
		origin *models.Coordinates,
		topN int,
		guard ranking.Guard,
	) ([]models.Place, error)
	Refine(ctx context.Context, place models.Place, origin *models.Coordinates) (models.Place, error)
}

// FilterResult is a filtered view of the catalog.
type FilterResult struct {
	Places []models.Place `json:"places"`
	Shown  int            `json:"shown"`
	Total  int            `json:"total"`
}

// PlacesService ties the catalog, the filter, the ranking pipeline and the user
// sessions together.
type PlacesService struct {
	log      *slog.Logger
	catalog  *catalog.Catalog
	facets   *catalog.Facets
	options  catalog.Options
	ranker   Ranker
	sessions *session.Store
	metrics  *metrics.Metrics
}

// NewPlacesService creates a new instance of PlacesService. Filter options are
// computed once from the catalog.
func NewPlacesService(
	log *slog.Logger,
	cat *catalog.Catalog,
	facets *catalog.Facets,
	ranker Ranker,
	sessions *session.Store,
	metrics *metrics.Metrics,
) *PlacesService {
	metrics.CatalogPlaces.Set(float64(cat.Len()))

	return &PlacesService{
		log:      log,
		catalog:  cat,
		facets:   facets,
		options:  catalog.BuildOptions(cat.Places(), facets),
		ranker:   ranker,
		sessions: sessions,
		metrics:  metrics,
	}
}

// Catalog returns every place in catalog order.
func (ps *PlacesService) Catalog() []models.Place {
	return ps.catalog.Places()
}

// Options returns the filter choices for the catalog.
func (ps *PlacesService) Options() catalog.Options {
	return ps.options
}

// Filter evaluates predicate over the catalog. With a non-empty sessionID the
// session's distance annotations are attached first, so distance ranges apply.
func (ps *PlacesService) Filter(sessionID string, predicate models.FilterPredicate) (FilterResult, error) {
	places := ps.catalog.Places()

	if sessionID != "" {
		sess, err := ps.sessions.Get(sessionID)
		if err != nil {
			return FilterResult{}, err
		}
		places = sess.Apply(places)
	}

	filtered := catalog.FilterByPredicate(places, predicate, ps.facets)
	ps.metrics.FilterEvaluations.Inc()

	return FilterResult{Places: filtered, Shown: len(filtered), Total: len(places)}, nil
}

// NewSession starts a session and returns its id.
func (ps *PlacesService) NewSession() string {
	return ps.sessions.New().ID()
}

// SetLocation records the user location for the session.
func (ps *PlacesService) SetLocation(sessionID string, coords models.Coordinates) error {
	sess, err := ps.sessions.Get(sessionID)
	if err != nil {
		return err
	}

	if err = sess.SetLocation(coords); err != nil {
		return fmt.Errorf("failed to set location: %w", err)
	}
	ps.log.Debug("Session location set", "session", sessionID)

	return nil
}

// RankNearest ranks the whole catalog by distance from the session location and
// remembers the resulting annotations in the session. It fails with
// session.ErrRefineInFlight when a kept place is already being refined in the session.
func (ps *PlacesService) RankNearest(ctx context.Context, sessionID string, topN int) ([]models.Place, error) {
	sess, err := ps.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}

	places, err := ps.ranker.RankNearestGuarded(ctx, ps.catalog.Places(), sess.Location(), topN, sess)
	if err != nil {
		return nil, err
	}
	sess.Annotate(places...)

	return places, nil
}

// RefinePlace fetches the road distance of a single place for the session. Only one
// refinement per place and session runs at a time.
func (ps *PlacesService) RefinePlace(ctx context.Context, sessionID, name string) (models.Place, error) {
	sess, err := ps.sessions.Get(sessionID)
	if err != nil {
		return models.Place{}, err
	}

	place, ok := ps.catalog.Find(name)
	if !ok {
		return models.Place{}, fmt.Errorf("%w: %s", ErrPlaceNotFound, name)
	}

	if err = sess.BeginRefine(name); err != nil {
		return models.Place{}, err
	}
	defer sess.EndRefine(name)

	refined, err := ps.ranker.Refine(ctx, place, sess.Location())
	if err != nil {
		return models.Place{}, err
	}
	sess.Annotate(refined)

	ctxLog := ps.log.With("session", sessionID, "place", name)
	ctxLog.DebugContext(ctx, "Place refined", "km", refined.Distance.Kilometers, "precision", refined.Distance.Precision)

	return refined, nil
}
