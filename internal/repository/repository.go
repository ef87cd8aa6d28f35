// Package repository reads the places catalog from PostgreSQL.
package repository

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"

	"github.com/UnknownOlympus/wayfarer/internal/catalog"
	"github.com/UnknownOlympus/wayfarer/internal/models"
	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // registers the postgres dialect
)

// Schema creates the places table read by Repository.
//
//go:embed schema.sql
var Schema string

var dialect = goqu.Dialect("postgres")

// placesQuery selects every place in catalog order. Nullable text columns come back empty.
func placesQuery() (string, error) {
	blank := func(column string) any { return goqu.COALESCE(goqu.I(column), "") }

	query, _, err := dialect.
		Select(
			goqu.I("name"), goqu.I("kind"), goqu.I("place_type"), goqu.I("fee"), blank("fee_text"),
			goqu.I("latitude"), goqu.I("longitude"), blank("description"),
			goqu.COALESCE(goqu.I("related"), goqu.L("'{}'")),
			blank("area"), blank("branch"), blank("timings"), blank("ideal_for"), blank("distance_from_city"),
		).
		From(goqu.S("public").Table("places")).
		Order(goqu.I("position").Asc()).
		ToSQL()
	if err != nil {
		return "", fmt.Errorf("failed to build places query: %w", err)
	}

	return query, nil
}

type Repository struct {
	db  Database
	log *slog.Logger
}

// NewRepository creates a new instance of Repository with the provided Database.
func NewRepository(db Database, log *slog.Logger) *Repository {
	return &Repository{db: db, log: log}
}

// Places loads every row of public.places in catalog order. A place has
// coordinates only when both latitude and longitude are set.
func (r *Repository) Places(ctx context.Context) ([]models.Place, error) {
	query, err := placesQuery()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query places: %w", err)
	}
	defer rows.Close()

	var places []models.Place
	for rows.Next() {
		var (
			place     models.Place
			kind      string
			placeType string
			lat, lon  *float64
		)
		if errScan := rows.Scan(
			&place.Name, &kind, &placeType, &place.Fee, &place.FeeText,
			&lat, &lon, &place.Description, &place.Related,
			&place.Area, &place.Branch, &place.Timings,
			&place.IdealFor, &place.DistanceFromCity,
		); errScan != nil {
			return nil, fmt.Errorf("failed to scan place: %w", errScan)
		}

		place.Kind = models.Kind(kind)
		place.Categories = catalog.SplitCategories(placeType)
		if lat != nil && lon != nil {
			place.Coordinates = &models.Coordinates{Latitude: *lat, Longitude: *lon}
		}
		if place.Fee == nil && place.FeeText != "" {
			place.Fee = catalog.ParseFee(place.FeeText)
		}

		r.log.DebugContext(ctx, "Place row received", "name", place.Name, "kind", place.Kind)
		places = append(places, place)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read row: %w", err)
	}

	return places, nil
}

// Ping checks the database connection.
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}
