package discovery

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/Modeva-Ecommerce/modeva-discovery/models"
)

// DefaultPageLimit is the number of cards fetched per page.
const DefaultPageLimit = 18

// Composer merges URL parameters, filter state and sort into a SearchRequest.
// Fields present in the URL win over filter state. Page is always 1; the
// controller owns paging.
type Composer struct {
	Limit int
}

// Compose uses a Composer with the default page limit.
func Compose(params url.Values, state models.FilterState, sort string) models.SearchRequest {
	return Composer{}.Compose(params, state, sort)
}

func (c Composer) Compose(params url.Values, state models.FilterState, sort string) models.SearchRequest {
	req, _ := c.ComposeReport(params, state, sort)
	return req
}

// ComposeReport is Compose that also returns every input it had to drop.
func (c Composer) ComposeReport(params url.Values, state models.FilterState, sort string) (models.SearchRequest, []models.ValidationError) {
	limit := c.Limit
	if limit <= 0 {
		limit = DefaultPageLimit
	}
	var issues []models.ValidationError
	reject := func(field, msg string) {
		issues = append(issues, models.ValidationError{Field: field, Msg: msg})
	}
	opts := state.Options

	req := models.SearchRequest{Page: 1, Limit: limit}

	req.Q = pickString(params, "q", state.Query)
	req.Country = strings.ToUpper(pickString(params, "country", state.Country))
	req.Category = pickSet(params, "category", opts.Categories)
	req.Brand = pickSet(params, "brand", opts.Brands)

	// Price bounds. Filter-derived bounds of zero are unconstrained.
	var minFromURL, maxFromURL bool
	if v, ok, err := urlPrice(params, "minPrice"); ok {
		req.MinPrice, minFromURL = &v, true
	} else {
		if err != nil {
			reject("minPrice", err.Error())
		}
		if opts.PriceRange.Min > 0 {
			req.MinPrice = floatPtr(opts.PriceRange.Min)
		} else if opts.PriceRange.Min < 0 {
			reject("priceRange.min", "must not be negative")
		}
	}
	if v, ok, err := urlPrice(params, "maxPrice"); ok {
		req.MaxPrice, maxFromURL = &v, true
	} else {
		if err != nil {
			reject("maxPrice", err.Error())
		}
		if opts.PriceRange.Max > 0 {
			req.MaxPrice = floatPtr(opts.PriceRange.Max)
		} else if opts.PriceRange.Max < 0 {
			reject("priceRange.max", "must not be negative")
		}
	}
	if req.MinPrice != nil && req.MaxPrice != nil && *req.MinPrice > *req.MaxPrice {
		// Keep the bound that came from the URL; otherwise drop the ceiling.
		if maxFromURL && !minFromURL {
			req.MinPrice = nil
			reject("minPrice", "above maxPrice")
		} else {
			req.MaxPrice = nil
			reject("maxPrice", "below minPrice")
		}
	}

	// Rating floor. Zero means no floor.
	rating := 0
	if v, ok, err := urlRating(params); ok {
		rating = v
	} else {
		if err != nil {
			reject("rating", err.Error())
		}
		if opts.Rating >= 0 && opts.Rating <= models.MaxRating {
			rating = opts.Rating
		} else {
			reject("rating", fmt.Sprintf("must be between 0 and %d", models.MaxRating))
		}
	}
	if rating > 0 {
		req.Rating = &rating
	}

	// Toggles. Only "on" constrains the result set.
	inStock := pickBool(params, "inStock", opts.InStock, reject)
	if inStock {
		req.InStock = boolPtr(true)
	}
	freeShipping := pickBool(params, "freeShipping", opts.FreeShipping, reject)
	if freeShipping {
		req.FreeShipping = boolPtr(true)
	}

	order, ok := models.ParseSortOrder(sort)
	if !ok && strings.TrimSpace(sort) != "" {
		reject("sort", fmt.Sprintf("unknown sort %q", sort))
	}
	if raw := strings.TrimSpace(params.Get("sort")); raw != "" {
		if o, ok := models.ParseSortOrder(raw); ok {
			order = o
		} else {
			reject("sort", fmt.Sprintf("unknown sort %q", raw))
		}
	}
	req.Sort = order

	return req, issues
}

func pickString(params url.Values, key, fallback string) string {
	if v := strings.TrimSpace(params.Get(key)); v != "" {
		return v
	}
	return strings.TrimSpace(fallback)
}

// pickSet reads a repeatable and/or comma separated URL field, falling back
// to the filter selection, and encodes it canonically.
func pickSet(params url.Values, key string, fallback []string) string {
	var raw []string
	for _, v := range params[key] {
		raw = append(raw, strings.Split(v, ",")...)
	}
	set := models.NormalizeSet(raw)
	if len(set) == 0 {
		set = models.NormalizeSet(fallback)
	}
	return strings.Join(set, ",")
}

// urlPrice parses a price from the URL. ok is false when the field is
// missing or unusable; err explains the latter.
func urlPrice(params url.Values, key string) (v float64, ok bool, err error) {
	raw := strings.TrimSpace(params.Get(key))
	if raw == "" {
		return 0, false, nil
	}
	v, err = strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false, fmt.Errorf("not a number: %q", raw)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false, fmt.Errorf("not finite: %q", raw)
	}
	if v < 0 {
		return 0, false, fmt.Errorf("negative: %q", raw)
	}
	return v, true, nil
}

func urlRating(params url.Values) (int, bool, error) {
	raw := strings.TrimSpace(params.Get("rating"))
	if raw == "" {
		return 0, false, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false, fmt.Errorf("not a number: %q", raw)
	}
	if f != math.Trunc(f) || f < 0 || f > models.MaxRating {
		return 0, false, fmt.Errorf("must be a whole number between 0 and %d: %q", models.MaxRating, raw)
	}
	return int(f), true, nil
}

func pickBool(params url.Values, key string, fallback bool, reject func(field, msg string)) bool {
	raw := strings.TrimSpace(params.Get(key))
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		reject(key, fmt.Sprintf("not a boolean: %q", raw))
		return fallback
	}
	return v
}

func floatPtr(v float64) *float64 { return &v }
func boolPtr(v bool) *bool { return &v }
