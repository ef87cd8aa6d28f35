package catalog_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/UnknownOlympus/wayfarer/internal/catalog"
	"github.com/UnknownOlympus/wayfarer/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sourceFunc func(ctx context.Context) ([]models.Place, error)

func (f sourceFunc) Places(ctx context.Context) ([]models.Place, error) { return f(ctx) }

func staticSource(places ...models.Place) catalog.Source {
	return sourceFunc(func(context.Context) ([]models.Place, error) { return places, nil })
}

func TestLoad(t *testing.T) {
	logger := slog.Default()

	t.Run("success", func(t *testing.T) {
		cat, err := catalog.Load(t.Context(), logger, staticSource(
			models.Place{Name: "A", Coordinates: at(17, 78)},
			models.Place{Name: "B"},
		))

		require.NoError(t, err)
		assert.Equal(t, 2, cat.Len())
		assert.Equal(t, []string{"A", "B"}, names(cat.Places()))
	})

	t.Run("source error", func(t *testing.T) {
		cat, err := catalog.Load(t.Context(), logger, sourceFunc(func(context.Context) ([]models.Place, error) {
			return nil, assert.AnError
		}))

		require.Nil(t, cat)
		require.ErrorIs(t, err, catalog.ErrDataLoadFailure)
		require.ErrorIs(t, err, assert.AnError)
	})

	t.Run("duplicate name", func(t *testing.T) {
		_, err := catalog.Load(t.Context(), logger, staticSource(models.Place{Name: "A"}, models.Place{Name: "A"}))

		require.ErrorIs(t, err, catalog.ErrDataLoadFailure)
		require.ErrorIs(t, err, catalog.ErrDuplicatePlace)
	})

	t.Run("empty name", func(t *testing.T) {
		_, err := catalog.Load(t.Context(), logger, staticSource(models.Place{}))

		require.ErrorIs(t, err, catalog.ErrDataLoadFailure)
		require.ErrorIs(t, err, catalog.ErrEmptyName)
	})
}

func TestNew(t *testing.T) {
	cat, err := catalog.New(slog.Default(), []models.Place{
		{Name: "North Pole+", Coordinates: at(91, 0)},
		{Name: "Annotated", Coordinates: at(17, 78), Distance: &models.DistanceAnnotation{Kilometers: 3}},
	})
	require.NoError(t, err)

	invalid, ok := cat.Find("North Pole+")
	require.True(t, ok)
	assert.Nil(t, invalid.Coordinates)

	annotated, ok := cat.Find("Annotated")
	require.True(t, ok)
	assert.Nil(t, annotated.Distance)

	_, ok = cat.Find("missing")
	assert.False(t, ok)
}

func TestCatalog_PlacesIsACopy(t *testing.T) {
	cat, err := catalog.New(slog.Default(), []models.Place{{Name: "A"}})
	require.NoError(t, err)

	places := cat.Places()
	places[0].Name = "changed"

	assert.Equal(t, "A", cat.Places()[0].Name)
}
