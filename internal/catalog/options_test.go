package catalog_test

import (
	"testing"

	"github.com/UnknownOlympus/wayfarer/internal/catalog"
	"github.com/UnknownOlympus/wayfarer/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestBuildOptions(t *testing.T) {
	facets := builtinFacets(t)
	places := []models.Place{
		{Name: "Charminar", Kind: models.KindDestination, Categories: []string{"Monument", "Heritage"}},
		{Name: "Golconda", Kind: models.KindDestination, Categories: []string{"Heritage"}},
		{Name: "Paradise", Kind: models.KindFood, Categories: []string{"Restaurant - Hyderabadi Biryani"}},
		{Name: "Bawarchi", Kind: models.KindFood, Categories: []string{"Biryani / North Indian"}},
	}

	opts := catalog.BuildOptions(places, facets)

	assert.Equal(t, []string{"Biryani & Hyderabadi", "Heritage", "Monument"}, opts.Types)
	assert.Equal(t, facets.Budgets(models.KindDestination), opts.BudgetRanges[models.KindDestination])
	assert.Equal(t, facets.Budgets(models.KindFood), opts.BudgetRanges[models.KindFood])
	assert.Equal(t, facets.DistanceRanges, opts.DistanceRanges)
}

func TestBuildOptions_OnlyPresentKinds(t *testing.T) {
	opts := catalog.BuildOptions([]models.Place{{Name: "Lake", Kind: models.KindDestination, Categories: []string{"Lake"}}}, builtinFacets(t))

	assert.Contains(t, opts.BudgetRanges, models.KindDestination)
	assert.NotContains(t, opts.BudgetRanges, models.KindFood)
}

func TestBuildOptions_NoFacets(t *testing.T) {
	opts := catalog.BuildOptions([]models.Place{{Name: "X", Categories: []string{"Restaurant - Cafe"}}}, nil)

	assert.Equal(t, []string{"Restaurant - Cafe"}, opts.Types)
	assert.Empty(t, opts.BudgetRanges)
	assert.Nil(t, opts.DistanceRanges)
}
