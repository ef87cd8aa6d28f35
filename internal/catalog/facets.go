package catalog

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/UnknownOlympus/wayfarer/internal/models"
	"github.com/spf13/viper"
)

//go:embed facets.yaml
var defaultFacets []byte

// ErrInvalidFacets is returned when the facets table is inconsistent.
var ErrInvalidFacets = errors.New("invalid facets table")

// Group collapses several free-text category labels under one filter option.
type Group struct {
	Name    string   `mapstructure:"name"`
	Members []string `mapstructure:"members"`
}

// Facets is the data-driven filter table: label cleanup, category groups and
// the budget and distance ranges offered to users. It is read-only once loaded.
type Facets struct {
	StripPrefixes  []string                      `mapstructure:"strip_prefixes"`
	Groups         []Group                       `mapstructure:"groups"`
	BudgetRanges   map[models.Kind][]models.Range `mapstructure:"budget_ranges"`
	DistanceRanges []models.Range                `mapstructure:"distance_ranges"`

	byName map[string]int
}

// LoadFacets reads the facets table from path (YAML, JSON or TOML, by extension).
// An empty path loads the built-in table.
func LoadFacets(path string) (*Facets, error) {
	cfg := viper.New()

	if path == "" {
		cfg.SetConfigType("yaml")
		if err := cfg.ReadConfig(bytes.NewReader(defaultFacets)); err != nil {
			return nil, fmt.Errorf("failed to read built-in facets: %w", err)
		}
	} else {
		cfg.SetConfigFile(path)
		if err := cfg.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read facets file: %w", err)
		}
	}

	var facets Facets
	if err := cfg.Unmarshal(&facets); err != nil {
		return nil, fmt.Errorf("failed to decode facets: %w", err)
	}

	if err := facets.init(); err != nil {
		return nil, err
	}

	return &facets, nil
}

func (f *Facets) init() error {
	f.byName = make(map[string]int, len(f.Groups))
	for idx, group := range f.Groups {
		key := normalize(group.Name)
		if key == "" {
			return fmt.Errorf("%w: group %d has no name", ErrInvalidFacets, idx)
		}
		if _, exists := f.byName[key]; exists {
			return fmt.Errorf("%w: duplicate group %q", ErrInvalidFacets, group.Name)
		}
		f.byName[key] = idx
	}

	ranges := append([]models.Range{}, f.DistanceRanges...)
	for _, budget := range f.BudgetRanges {
		ranges = append(ranges, budget...)
	}
	for _, r := range ranges {
		if r.Min > r.Max {
			return fmt.Errorf("%w: range %q has min %v above max %v", ErrInvalidFacets, r.Label, r.Min, r.Max)
		}
	}

	return nil
}

// Clean removes configured prefixes such as "Restaurant - " and surrounding spaces.
func (f *Facets) Clean(label string) string {
	label = strings.TrimSpace(label)
	if f == nil {
		return label
	}
	for _, prefix := range f.StripPrefixes {
		if len(label) >= len(prefix) && strings.EqualFold(label[:len(prefix)], prefix) {
			label = strings.TrimSpace(label[len(prefix):])
		}
	}

	return label
}

// Expand turns selected filter labels into the normalized labels to match against.
// A selected group name expands to its members; any other label stands for itself.
func (f *Facets) Expand(selected []string) []string {
	expanded := make([]string, 0, len(selected))
	for _, label := range selected {
		if group, ok := f.group(label); ok {
			for _, member := range group.Members {
				if m := normalize(f.Clean(member)); m != "" {
					expanded = append(expanded, m)
				}
			}
			continue
		}
		if l := normalize(f.Clean(label)); l != "" {
			expanded = append(expanded, l)
		}
	}

	return expanded
}

// GroupOf returns the name of the group label belongs to. An exact member match
// wins over a fuzzy one; among fuzzy matches the first group in table order wins.
func (f *Facets) GroupOf(label string) (string, bool) {
	if f == nil {
		return "", false
	}
	needle := normalize(f.Clean(label))
	if needle == "" {
		return "", false
	}

	for _, match := range []func(a, b string) bool{equal, fuzzyMatch} {
		for _, group := range f.Groups {
			for _, member := range group.Members {
				if match(needle, normalize(f.Clean(member))) {
					return group.Name, true
				}
			}
		}
	}

	return "", false
}

func equal(a, b string) bool { return a == b }

// Budgets returns the budget ranges configured for kind.
func (f *Facets) Budgets(kind models.Kind) []models.Range {
	if f == nil {
		return nil
	}

	return f.BudgetRanges[kind]
}

func (f *Facets) group(name string) (Group, bool) {
	if f == nil {
		return Group{}, false
	}
	idx, ok := f.byName[normalize(name)]
	if !ok {
		return Group{}, false
	}

	return f.Groups[idx], true
}

func normalize(label string) string {
	return strings.ToLower(strings.TrimSpace(label))
}

// fuzzyMatch is true when a equals, contains or is contained in b. Both must be normalized.
func fuzzyMatch(a, b string) bool {
	if a == "" || b == "" {
		return false
	}

	return a == b || strings.Contains(a, b) || strings.Contains(b, a)
}
