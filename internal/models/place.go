package models

// Kind tells destinations and food venues apart.
type Kind string

const (
	// KindDestination is a tourist destination (heritage site, park, museum...).
	KindDestination Kind = "destination"
	// KindFood is a restaurant, cafe or street food stall.
	KindFood Kind = "food"
)

// Precision describes how a distance annotation was obtained.
type Precision string

const (
	// PrecisionApproximate marks a great-circle (Haversine) estimate.
	PrecisionApproximate Precision = "approximate"
	// PrecisionRefined marks a road distance returned by the routing provider.
	PrecisionRefined Precision = "refined"
)

// DistanceAnnotation is the distance from the user to a place, attached at ranking time.
type DistanceAnnotation struct {
	Kilometers float64   `json:"km"`
	Precision  Precision `json:"precision"`
}

// Place is a single catalog entry.
//
// Coordinates, Fee and Distance are optional. A place without coordinates never
// carries a distance annotation.
type Place struct {
	Name             string              `json:"name"`
	Kind             Kind                `json:"kind"`
	Categories       []string            `json:"categories"`
	Coordinates      *Coordinates        `json:"coordinates,omitempty"`
	Fee              *float64            `json:"fee,omitempty"`
	FeeText          string              `json:"fee_text,omitempty"`
	Description      string              `json:"description"`
	Related          []string            `json:"related,omitempty"`
	Area             string              `json:"area,omitempty"`
	Branch           string              `json:"branch,omitempty"`
	Timings          string              `json:"timings,omitempty"`
	IdealFor         string              `json:"ideal_for,omitempty"`
	DistanceFromCity string              `json:"distance_from_city,omitempty"`
	Distance         *DistanceAnnotation `json:"distance,omitempty"`
}

// HasCoordinates reports whether the place can be ranked by distance.
func (p Place) HasCoordinates() bool {
	return p.Coordinates != nil
}

// WithDistance returns a copy of the place annotated with the given distance.
// Places without coordinates are returned unchanged.
func (p Place) WithDistance(ann DistanceAnnotation) Place {
	if !p.HasCoordinates() {
		return p
	}
	p.Distance = &ann

	return p
}
