// Package catalog loads the places catalog and filters it by category, budget and distance.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/UnknownOlympus/wayfarer/internal/geo"
	"github.com/UnknownOlympus/wayfarer/internal/models"
)

var (
	// ErrDataLoadFailure wraps every error that prevents the catalog from loading.
	ErrDataLoadFailure = errors.New("catalog data load failure")
	// ErrDuplicatePlace is returned when two records share a name.
	ErrDuplicatePlace = errors.New("duplicate place name")
	// ErrEmptyName is returned for records without a name.
	ErrEmptyName = errors.New("place without a name")
)

// Source provides the ordered list of places.
type Source interface {
	Places(ctx context.Context) ([]models.Place, error)
}

// Catalog is the immutable, ordered list of places loaded at startup.
type Catalog struct {
	places []models.Place
	index  map[string]int
}

// Load reads all places from src and validates them. Any failure is wrapped in
// ErrDataLoadFailure and no partial catalog is returned.
func Load(ctx context.Context, log *slog.Logger, src Source) (*Catalog, error) {
	places, err := src.Places(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDataLoadFailure, err)
	}

	cat, err := New(log, places)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDataLoadFailure, err)
	}

	log.InfoContext(ctx, "Catalog loaded", "places", cat.Len())

	return cat, nil
}

// New builds a catalog from places. Names must be unique and non-empty; coordinates
// out of range are dropped with a warning so the place stays listed but unranked.
func New(log *slog.Logger, places []models.Place) (*Catalog, error) {
	cat := &Catalog{
		places: make([]models.Place, 0, len(places)),
		index:  make(map[string]int, len(places)),
	}

	for _, place := range places {
		if place.Name == "" {
			return nil, ErrEmptyName
		}
		if _, exists := cat.index[place.Name]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicatePlace, place.Name)
		}

		if place.Coordinates != nil {
			if err := geo.Validate(*place.Coordinates); err != nil {
				log.Warn("Dropping invalid coordinates", "place", place.Name, "error", err)
				place.Coordinates = nil
			}
		}
		place.Distance = nil

		cat.index[place.Name] = len(cat.places)
		cat.places = append(cat.places, place)
	}

	return cat, nil
}

// Places returns the places in catalog order. The slice is a copy.
func (c *Catalog) Places() []models.Place {
	return slices.Clone(c.places)
}

// Len returns the number of places.
func (c *Catalog) Len() int {
	return len(c.places)
}

// Find looks a place up by name.
func (c *Catalog) Find(name string) (models.Place, bool) {
	idx, ok := c.index[name]
	if !ok {
		return models.Place{}, false
	}

	return c.places[idx], true
}
