package models

// Range is an inclusive numeric interval used for budget and distance filters.
type Range struct {
	Label string  `json:"label,omitempty" mapstructure:"label"`
	Min   float64 `json:"min"             mapstructure:"min"`
	Max   float64 `json:"max"             mapstructure:"max"`
}

// Contains reports whether value lies within [Min, Max].
func (r Range) Contains(value float64) bool {
	return value >= r.Min && value <= r.Max
}

// FilterPredicate holds the filter selections made by the user. An empty dimension
// always passes.
type FilterPredicate struct {
	Categories []string `json:"categories,omitempty"`
	Prices     []Range  `json:"prices,omitempty"`
	Distances  []Range  `json:"distances,omitempty"`
}

// IsEmpty reports whether no dimension is selected.
func (fp FilterPredicate) IsEmpty() bool {
	return len(fp.Categories) == 0 && len(fp.Prices) == 0 && len(fp.Distances) == 0
}
