// models/filters.go
package models

import (
	"fmt"
	"sort"
	"strings"
)

// MaxRating is the highest star rating a product (or a rating floor) can have.
const MaxRating = 5

// PriceRange is the [Min, Max] price window picked in the sidebar.
// A zero bound means "unconstrained" on that side.
type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// FilterOptions represents the sidebar facets chosen by the shopper.
type FilterOptions struct {
	PriceRange   PriceRange `json:"priceRange"`
	Categories   []string   `json:"categories"`
	Brands       []string   `json:"brands"`
	Rating       int        `json:"rating"`
	InStock      bool       `json:"inStock"`
	FreeShipping bool       `json:"freeShipping"`
}

// FilterState is the single source of truth for every discovery input
// except sort and the URL: header search box, country picker and sidebar.
type FilterState struct {
	Query   string        `json:"query"`
	Country string        `json:"country"`
	Options FilterOptions `json:"filters"`
}

// ValidationError describes a filter input that cannot be used as given.
type ValidationError struct {
	Field string
	Msg   string
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return e.Msg
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Msg)
}

// Validate reports every invariant violation in o. The composer recovers
// from these by dropping the offending field.
func (o FilterOptions) Validate() []ValidationError {
	var errs []ValidationError
	if o.PriceRange.Min < 0 {
		errs = append(errs, ValidationError{Field: "priceRange.min", Msg: "must not be negative"})
	}
	if o.PriceRange.Max < 0 {
		errs = append(errs, ValidationError{Field: "priceRange.max", Msg: "must not be negative"})
	}
	if o.PriceRange.Max > 0 && o.PriceRange.Min > o.PriceRange.Max {
		errs = append(errs, ValidationError{Field: "priceRange", Msg: "min must not exceed max"})
	}
	if o.Rating < 0 || o.Rating > MaxRating {
		errs = append(errs, ValidationError{Field: "rating", Msg: fmt.Sprintf("must be between 0 and %d", MaxRating)})
	}
	return errs
}

// NormalizeSet trims, lowercases, de-duplicates and sorts a facet selection
// so that equal selections always encode the same way. The catalog matches
// facets case-insensitively.
func NormalizeSet(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// FilterMetadata represents all filter data for the storefront sidebar
type FilterMetadata struct {
	Availability *AvailabilityData `json:"availability"`
	Categories   []string          `json:"categories"`
	Brands       []string          `json:"brands"`
	PriceRange   *PriceRange       `json:"priceRange"`
}

// AvailabilityData represents product availability counts
type AvailabilityData struct {
	InStock    int `json:"inStock"`
	OutOfStock int `json:"outOfStock"`
}
