package catalog

import (
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/UnknownOlympus/wayfarer/internal/models"
)

// record is the on-disk shape shared by the destinations and food places documents.
type record struct {
	Name             string          `json:"name"`
	PlaceType        string          `json:"place_type"`
	EntryFee         json.RawMessage `json:"entry_fee"`
	MaxBudgetForOne  *float64        `json:"max_budget_for_one"`
	Latitude         *float64        `json:"latitude"`
	Longitude        *float64        `json:"longitude"`
	Description      string          `json:"description"`
	FoodPlacesNear   []string        `json:"food_places_near"`
	SpecialDishes    []string        `json:"special_dishes"`
	Area             string          `json:"area"`
	SpecificBranch   string          `json:"specific_branch"`
	Timings          string          `json:"timings"`
	IdealFor         string          `json:"ideal_for"`
	DistanceFromCity string          `json:"distance_from_city"`
}

var feeNumber = regexp.MustCompile(`\d[\d,]*(?:\.\d+)?`)

// Decode reads a JSON array of place records.
func Decode(r io.Reader) ([]models.Place, error) {
	var records []record
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("failed to decode catalog document: %w", err)
	}

	places := make([]models.Place, 0, len(records))
	for idx, rec := range records {
		place, err := rec.toPlace()
		if err != nil {
			return nil, fmt.Errorf("record %d (%q): %w", idx, rec.Name, err)
		}
		places = append(places, place)
	}

	return places, nil
}

func (rec record) toPlace() (models.Place, error) {
	place := models.Place{
		Name:             strings.TrimSpace(rec.Name),
		Kind:             models.KindDestination,
		Categories:       SplitCategories(rec.PlaceType),
		Description:      rec.Description,
		Related:          rec.FoodPlacesNear,
		Area:             rec.Area,
		Branch:           rec.SpecificBranch,
		Timings:          rec.Timings,
		IdealFor:         rec.IdealFor,
		DistanceFromCity: rec.DistanceFromCity,
	}

	if rec.MaxBudgetForOne != nil || len(rec.SpecialDishes) > 0 {
		place.Kind = models.KindFood
		place.Related = rec.SpecialDishes
	}

	switch {
	case rec.MaxBudgetForOne != nil:
		place.Fee = rec.MaxBudgetForOne
	case len(rec.EntryFee) > 0 && string(rec.EntryFee) != "null":
		fee, text, err := decodeFee(rec.EntryFee)
		if err != nil {
			return models.Place{}, err
		}
		place.Fee, place.FeeText = fee, text
	}

	if rec.Latitude != nil && rec.Longitude != nil {
		place.Coordinates = &models.Coordinates{Latitude: *rec.Latitude, Longitude: *rec.Longitude}
	}

	return place, nil
}

func decodeFee(raw json.RawMessage) (*float64, string, error) {
	var amount float64
	if err := json.Unmarshal(raw, &amount); err == nil {
		return &amount, "", nil
	}

	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		return nil, "", fmt.Errorf("entry_fee must be a number or a string: %w", err)
	}

	return ParseFee(text), text, nil
}

// ParseFee extracts the amount from a textual fee such as "₹25 per person" or "Free".
// Text starting with "free" is zero whatever follows; otherwise the first number wins,
// and text mentioning "free" without any number is zero. Nil means the fee is unknown.
func ParseFee(text string) *float64 {
	lower := strings.ToLower(strings.TrimSpace(text))
	if strings.HasPrefix(lower, "free") {
		zero := 0.0
		return &zero
	}

	if match := feeNumber.FindString(text); match != "" {
		value, err := strconv.ParseFloat(strings.ReplaceAll(match, ",", ""), 64)
		if err == nil {
			return &value
		}
	}

	if strings.Contains(lower, "free") {
		zero := 0.0
		return &zero
	}

	return nil
}

// SplitCategories splits a comma separated place_type into trimmed, non-empty labels.
func SplitCategories(placeType string) []string {
	parts := strings.Split(placeType, ",")
	labels := make([]string, 0, len(parts))
	for _, part := range parts {
		if label := strings.TrimSpace(part); label != "" {
			labels = append(labels, label)
		}
	}

	return labels
}
