// Package catalog filters and sorts read-only catalog data and resolves cart
// keys back to catalog entries.
//
// Every function here is pure: it takes the catalog and the current
// predicate values, returns a fresh slice, and never modifies its input.
package catalog

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mesh-intelligence/basket/pkg/types"
)

// Price buckets. Selecting several ORs them together.
const (
	PriceUnder1000  = "under-1000"
	Price1000To2500 = "1000-2500"
	PriceAbove2500  = "above-2500"
)

// Rating tiers. When both are selected the higher threshold applies.
const (
	Rating3Plus = "3plus"
	Rating4Plus = "4plus"
)

// Sort keys.
const (
	SortNone     = ""
	SortRating   = "rating"   // rating descending
	SortDelivery = "delivery" // delivery estimate ascending
	SortPrice    = "price"    // price level ascending
)

// PredicateSet holds the filter conditions derived from the current control
// values. The zero value matches everything and leaves order unchanged.
type PredicateSet struct {
	Search       string   // case-insensitive substring of name or menu item name
	PriceBuckets []string // OR-combined
	RatingTiers  []string // highest tier wins
	Cuisine      string   // exact match against cuisine tags
	SortKey      string
	Where        string // optional expression, see compileWhere
}

// Query applies Filter and then Sort.
func Query(items []types.CatalogItem, p PredicateSet) ([]types.CatalogItem, error) {
	filtered, err := Filter(items, p)
	if err != nil {
		return nil, err
	}
	return Sort(filtered, p.SortKey)
}

// Filter returns the items matching every non-empty predicate category, in
// their original order.
func Filter(items []types.CatalogItem, p PredicateSet) ([]types.CatalogItem, error) {
	where, err := compileWhere(p.Where)
	if err != nil {
		return nil, err
	}

	term := strings.ToLower(strings.TrimSpace(p.Search))
	minRating := MinRating(p.RatingTiers)

	out := make([]types.CatalogItem, 0, len(items))
	for _, it := range items {
		if term != "" && !matchesSearch(it, term) {
			continue
		}
		if len(p.PriceBuckets) > 0 && !matchesAnyBucket(it.Price, p.PriceBuckets) {
			continue
		}
		if minRating > 0 && it.Rating < minRating {
			continue
		}
		if p.Cuisine != "" && !it.HasCuisine(p.Cuisine) {
			continue
		}
		if where != nil {
			ok, err := where.match(it)
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}
		}
		out = append(out, it)
	}
	return out, nil
}

func matchesSearch(it types.CatalogItem, term string) bool {
	if strings.Contains(strings.ToLower(it.Name), term) {
		return true
	}
	for _, m := range it.Menu {
		if strings.Contains(strings.ToLower(m.Name), term) {
			return true
		}
	}
	return false
}

func matchesAnyBucket(price float64, buckets []string) bool {
	for _, b := range buckets {
		if InBucket(price, b) {
			return true
		}
	}
	return false
}

// InBucket reports whether price falls in the named bucket. Unknown bucket
// names match every price.
func InBucket(price float64, bucket string) bool {
	switch bucket {
	case PriceUnder1000:
		return price < 1000
	case Price1000To2500:
		return price >= 1000 && price <= 2500
	case PriceAbove2500:
		return price > 2500
	default:
		return true
	}
}

// MinRating returns the rating threshold for the selected tiers: 4 if 4plus
// is selected, otherwise 3 if 3plus is, otherwise 0. Unknown tiers are
// ignored.
func MinRating(tiers []string) float64 {
	threshold := 0.0
	for _, t := range tiers {
		switch t {
		case Rating4Plus:
			return 4
		case Rating3Plus:
			threshold = 3
		}
	}
	return threshold
}

// Sort returns a stably sorted copy of items. Ties keep their relative
// order. An empty key returns the items in their existing order.
func Sort(items []types.CatalogItem, key string) ([]types.CatalogItem, error) {
	var less func(a, b types.CatalogItem) bool
	switch key {
	case SortNone:
	case SortRating:
		less = func(a, b types.CatalogItem) bool { return a.Rating > b.Rating }
	case SortDelivery:
		less = func(a, b types.CatalogItem) bool { return a.DeliveryEstimate < b.DeliveryEstimate }
	case SortPrice:
		less = func(a, b types.CatalogItem) bool { return a.PriceLevel < b.PriceLevel }
	default:
		return nil, fmt.Errorf("%w: %q", types.ErrUnknownSortKey, key)
	}

	out := make([]types.CatalogItem, len(items))
	copy(out, items)
	if less != nil {
		sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	}
	return out, nil
}

// Cuisines returns the sorted set of cuisine tags across items.
func Cuisines(items []types.CatalogItem) []string {
	seen := make(map[string]bool)
	var out []string
	for _, it := range items {
		for _, c := range it.Cuisine {
			if !seen[c] {
				seen[c] = true
				out = append(out, c)
			}
		}
	}
	sort.Strings(out)
	return out
}
