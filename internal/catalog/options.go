package catalog

import (
	"slices"

	"github.com/UnknownOlympus/wayfarer/internal/models"
)

// Options lists the filter choices to present for a catalog.
type Options struct {
	Types          []string                      `json:"types"`
	BudgetRanges   map[models.Kind][]models.Range `json:"budget_ranges"`
	DistanceRanges []models.Range                `json:"distance_ranges"`
}

// BuildOptions collects the unique type options of places, sorted. Labels that
// belong to a facets group are replaced by the group name. Budget ranges are
// included for the kinds present in places.
func BuildOptions(places []models.Place, facets *Facets) Options {
	seen := make(map[string]struct{})
	opts := Options{
		Types:        []string{},
		BudgetRanges: make(map[models.Kind][]models.Range),
	}
	if facets != nil {
		opts.DistanceRanges = facets.DistanceRanges
	}

	for _, place := range places {
		if _, ok := opts.BudgetRanges[place.Kind]; !ok {
			if budgets := facets.Budgets(place.Kind); len(budgets) > 0 {
				opts.BudgetRanges[place.Kind] = budgets
			}
		}

		for _, category := range place.Categories {
			option := facets.Clean(category)
			if group, ok := facets.GroupOf(option); ok {
				option = group
			}
			if option == "" {
				continue
			}
			if _, dup := seen[option]; dup {
				continue
			}
			seen[option] = struct{}{}
			opts.Types = append(opts.Types, option)
		}
	}

	slices.Sort(opts.Types)

	return opts
}
