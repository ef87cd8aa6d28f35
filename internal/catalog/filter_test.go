package catalog_test

import (
	"testing"

	"github.com/UnknownOlympus/wayfarer/internal/catalog"
	"github.com/UnknownOlympus/wayfarer/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(lat, lon float64) *models.Coordinates {
	return &models.Coordinates{Latitude: lat, Longitude: lon}
}

func names(places []models.Place) []string {
	out := make([]string, 0, len(places))
	for _, p := range places {
		out = append(out, p.Name)
	}
	return out
}

func scenarioCatalog() []models.Place {
	return []models.Place{
		{Name: "A", Kind: models.KindDestination, Categories: []string{"Heritage"}, Coordinates: at(17.0, 78.0), Fee: ptr(0)},
		{Name: "B", Kind: models.KindDestination, Categories: []string{"Park", "Lake"}, Coordinates: at(17.1, 78.1), Fee: ptr(300)},
		{Name: "C", Kind: models.KindDestination, Categories: []string{"Museum"}, Fee: ptr(50)},
	}
}

func TestFilterByPredicate_EmptyPredicate(t *testing.T) {
	candidates := scenarioCatalog()

	filtered := catalog.FilterByPredicate(candidates, models.FilterPredicate{}, builtinFacets(t))

	assert.Equal(t, candidates, filtered)
}

func TestFilterByPredicate_Price(t *testing.T) {
	facets := builtinFacets(t)

	t.Run("free only", func(t *testing.T) {
		predicate := models.FilterPredicate{Prices: []models.Range{{Min: 0, Max: 0}}}

		filtered := catalog.FilterByPredicate(scenarioCatalog(), predicate, facets)

		assert.Equal(t, []string{"A"}, names(filtered))
	})

	t.Run("inclusive bounds", func(t *testing.T) {
		predicate := models.FilterPredicate{Prices: []models.Range{{Min: 50, Max: 300}}}

		filtered := catalog.FilterByPredicate(scenarioCatalog(), predicate, facets)

		assert.Equal(t, []string{"B", "C"}, names(filtered))
	})

	t.Run("any selected range", func(t *testing.T) {
		predicate := models.FilterPredicate{Prices: []models.Range{{Min: 0, Max: 0}, {Min: 201, Max: 999999}}}

		filtered := catalog.FilterByPredicate(scenarioCatalog(), predicate, facets)

		assert.Equal(t, []string{"A", "B"}, names(filtered))
	})

	t.Run("unknown fee fails", func(t *testing.T) {
		candidates := []models.Place{{Name: "Unknown"}}
		predicate := models.FilterPredicate{Prices: []models.Range{{Min: 0, Max: 999999}}}

		assert.Empty(t, catalog.FilterByPredicate(candidates, predicate, facets))
	})
}

func TestFilterByPredicate_Category(t *testing.T) {
	facets := builtinFacets(t)
	food := []models.Place{
		{Name: "Paradise", Kind: models.KindFood, Categories: []string{"Restaurant - Hyderabadi Biryani"}},
		{Name: "Nimrah", Kind: models.KindFood, Categories: []string{"Irani Cafe / Street Food"}},
		{Name: "Gokul Chat", Kind: models.KindFood, Categories: []string{"Street Food / Chaat"}},
		{Name: "Chutneys", Kind: models.KindFood, Categories: []string{"South Indian / Vegetarian"}},
	}

	t.Run("case insensitive", func(t *testing.T) {
		filtered := catalog.FilterByPredicate(scenarioCatalog(), models.FilterPredicate{Categories: []string{"lake"}}, facets)

		assert.Equal(t, []string{"B"}, names(filtered))
	})

	t.Run("group expands to members", func(t *testing.T) {
		predicate := models.FilterPredicate{Categories: []string{"Chai & Snacks"}}

		filtered := catalog.FilterByPredicate(food, predicate, facets)

		assert.Equal(t, []string{"Nimrah"}, names(filtered))
	})

	t.Run("prefix stripped before matching", func(t *testing.T) {
		predicate := models.FilterPredicate{Categories: []string{"Hyderabadi Biryani"}}

		filtered := catalog.FilterByPredicate(food, predicate, facets)

		assert.Equal(t, []string{"Paradise"}, names(filtered))
	})

	t.Run("fuzzy substring", func(t *testing.T) {
		predicate := models.FilterPredicate{Categories: []string{"Street Food"}}

		filtered := catalog.FilterByPredicate(food, predicate, facets)

		assert.Equal(t, []string{"Nimrah", "Gokul Chat"}, names(filtered))
	})

	t.Run("member of several groups", func(t *testing.T) {
		for _, group := range []string{"South Indian", "Vegetarian"} {
			filtered := catalog.FilterByPredicate(food, models.FilterPredicate{Categories: []string{group}}, facets)
			assert.Contains(t, names(filtered), "Chutneys", group)
		}
	})

	t.Run("no facets", func(t *testing.T) {
		predicate := models.FilterPredicate{Categories: []string{"museum"}}

		filtered := catalog.FilterByPredicate(scenarioCatalog(), predicate, nil)

		assert.Equal(t, []string{"C"}, names(filtered))
	})
}

func TestFilterByPredicate_Distance(t *testing.T) {
	candidates := []models.Place{
		{Name: "Near", Coordinates: at(17, 78), Distance: &models.DistanceAnnotation{Kilometers: 5, Precision: models.PrecisionRefined}},
		{Name: "Far", Coordinates: at(18, 79), Distance: &models.DistanceAnnotation{Kilometers: 25.3, Precision: models.PrecisionApproximate}},
		{Name: "Unranked"},
	}
	predicate := models.FilterPredicate{Distances: []models.Range{{Min: 0, Max: 5}}}

	filtered := catalog.FilterByPredicate(candidates, predicate, nil)

	assert.Equal(t, []string{"Near"}, names(filtered))
}

func TestFilterByPredicate_Conjunction(t *testing.T) {
	predicate := models.FilterPredicate{
		Categories: []string{"Heritage", "Museum"},
		Prices:     []models.Range{{Min: 1, Max: 100}},
	}

	filtered := catalog.FilterByPredicate(scenarioCatalog(), predicate, builtinFacets(t))

	assert.Equal(t, []string{"C"}, names(filtered))
}

func TestFilterByPredicate_Idempotent(t *testing.T) {
	facets := builtinFacets(t)
	predicates := []models.FilterPredicate{
		{},
		{Prices: []models.Range{{Min: 0, Max: 0}}},
		{Categories: []string{"park"}, Prices: []models.Range{{Min: 0, Max: 500}}},
		{Categories: []string{"nothing matches"}},
	}

	for _, predicate := range predicates {
		once := catalog.FilterByPredicate(scenarioCatalog(), predicate, facets)
		twice := catalog.FilterByPredicate(once, predicate, facets)
		require.Equal(t, names(once), names(twice))
	}
}
