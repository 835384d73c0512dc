// ════════════════════════════════════════════════════════════
// DISCOVERY MODELS
// File: models/discovery.go
// ════════════════════════════════════════════════════════════

package models

import (
	"net/url"
	"strconv"
	"strings"
)

// SortOrder is the listing order requested from the catalog.
type SortOrder string

const (
	SortTrending  SortOrder = "trending"
	SortNewest    SortOrder = "newest"
	SortPriceAsc  SortOrder = "price_asc"
	SortPriceDesc SortOrder = "price_desc"
	SortRating    SortOrder = "rating"
	SortPopular   SortOrder = "popular"
)

// DefaultSort is used whenever no valid sort has been chosen.
const DefaultSort = SortTrending

// ParseSortOrder returns the sort named by s and whether it is known.
func ParseSortOrder(s string) (SortOrder, bool) {
	switch o := SortOrder(strings.ToLower(strings.TrimSpace(s))); o {
	case SortTrending, SortNewest, SortPriceAsc, SortPriceDesc, SortRating, SortPopular:
		return o, true
	}
	return DefaultSort, false
}

// SearchRequest is the canonical description of one discovery query.
// Nil pointers and empty strings mean "unconstrained".
type SearchRequest struct {
	Q            string    `json:"q,omitempty"`
	Category     string    `json:"category,omitempty"`
	Brand        string    `json:"brand,omitempty"`
	MinPrice     *float64  `json:"minPrice,omitempty"`
	MaxPrice     *float64  `json:"maxPrice,omitempty"`
	Rating       *int      `json:"rating,omitempty"`
	InStock      *bool     `json:"inStock,omitempty"`
	FreeShipping *bool     `json:"freeShipping,omitempty"`
	Country      string    `json:"country,omitempty"`
	Sort         SortOrder `json:"sort"`
	Page         int       `json:"page"`
	Limit        int       `json:"limit"`
}

// Values encodes r as catalog query parameters, one per field.
func (r SearchRequest) Values() url.Values {
	v := r.baseValues()
	v.Set("page", strconv.Itoa(r.Page))
	return v
}

func (r SearchRequest) baseValues() url.Values {
	v := url.Values{}
	if r.Q != "" {
		v.Set("q", r.Q)
	}
	if r.Category != "" {
		v.Set("category", r.Category)
	}
	if r.Brand != "" {
		v.Set("brand", r.Brand)
	}
	if r.MinPrice != nil {
		v.Set("minPrice", strconv.FormatFloat(*r.MinPrice, 'f', -1, 64))
	}
	if r.MaxPrice != nil {
		v.Set("maxPrice", strconv.FormatFloat(*r.MaxPrice, 'f', -1, 64))
	}
	if r.Rating != nil {
		v.Set("rating", strconv.Itoa(*r.Rating))
	}
	if r.InStock != nil {
		v.Set("inStock", strconv.FormatBool(*r.InStock))
	}
	if r.FreeShipping != nil {
		v.Set("freeShipping", strconv.FormatBool(*r.FreeShipping))
	}
	if r.Country != "" {
		v.Set("country", r.Country)
	}
	sort := r.Sort
	if sort == "" {
		sort = DefaultSort
	}
	v.Set("sort", string(sort))
	v.Set("limit", strconv.Itoa(r.Limit))
	return v
}

// Key identifies the result set r belongs to. Requests differing only in
// page share a key.
func (r SearchRequest) Key() string {
	return r.baseValues().Encode()
}

// PageKey identifies r including its page.
func (r SearchRequest) PageKey() string {
	return r.Values().Encode()
}

// SameResultSet reports whether r and other differ at most in Page.
func (r SearchRequest) SameResultSet(other SearchRequest) bool {
	return r.Key() == other.Key()
}

// WithPage returns a copy of r pinned to page.
func (r SearchRequest) WithPage(page int) SearchRequest {
	r.Page = page
	return r
}

// ResultPage is one batch returned by the catalog search.
type ResultPage struct {
	Items      []StorefrontProduct `json:"items"`
	Page       int                 `json:"page"`
	TotalCount int                 `json:"totalCount"`
	TotalPages int                 `json:"totalPages"`
}

// HasMore reports whether pages remain after this one, going by the
// server's pagination metadata only.
func (p ResultPage) HasMore() bool {
	return p.Page < p.TotalPages
}
