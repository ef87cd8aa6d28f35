package catalog

import (
	"slices"

	"github.com/UnknownOlympus/wayfarer/internal/models"
)

// FilterByPredicate returns the candidates matching every selected dimension of
// predicate, in catalog order. Unselected dimensions always pass and an
// empty predicate returns candidates unchanged. facets may be nil, in which case
// no grouping or label cleanup is applied.
func FilterByPredicate(candidates []models.Place, predicate models.FilterPredicate, facets *Facets) []models.Place {
	if predicate.IsEmpty() {
		return candidates
	}

	labels := facets.Expand(predicate.Categories)
	filtered := make([]models.Place, 0, len(candidates))
	for _, place := range candidates {
		if len(predicate.Categories) > 0 && !matchCategory(place, labels, facets) {
			continue
		}
		if len(predicate.Prices) > 0 && !matchPrice(place, predicate.Prices) {
			continue
		}
		if len(predicate.Distances) > 0 && !matchDistance(place, predicate.Distances) {
			continue
		}
		filtered = append(filtered, place)
	}

	return filtered
}

func matchCategory(place models.Place, selected []string, facets *Facets) bool {
	for _, category := range place.Categories {
		label := normalize(facets.Clean(category))
		if slices.ContainsFunc(selected, func(s string) bool { return fuzzyMatch(label, s) }) {
			return true
		}
	}

	return false
}

// matchPrice fails places without a known fee.
func matchPrice(place models.Place, ranges []models.Range) bool {
	if place.Fee == nil {
		return false
	}

	return slices.ContainsFunc(ranges, func(r models.Range) bool { return r.Contains(*place.Fee) })
}

// matchDistance fails places that have no distance annotation yet.
func matchDistance(place models.Place, ranges []models.Range) bool {
	if place.Distance == nil {
		return false
	}

	return slices.ContainsFunc(ranges, func(r models.Range) bool { return r.Contains(place.Distance.Kilometers) })
}
