package catalog

import (
	"fmt"

	"github.com/mesh-intelligence/basket/pkg/types"
)

// ProductIndex resolves product IDs for the cart store.
type ProductIndex struct {
	byID map[types.ItemID]types.CatalogItem
}

// NewProductIndex indexes items by ID. Later duplicates are ignored.
func NewProductIndex(items []types.CatalogItem) *ProductIndex {
	idx := &ProductIndex{byID: make(map[types.ItemID]types.CatalogItem, len(items))}
	for _, it := range items {
		if _, dup := idx.byID[it.ID]; !dup {
			idx.byID[it.ID] = it
		}
	}
	return idx
}

// Get returns the product with the given ID.
func (p *ProductIndex) Get(id types.ItemID) (types.CatalogItem, bool) {
	it, ok := p.byID[id]
	return it, ok
}

// LookupItem returns a snapshot line for the product whose ID is key.
func (p *ProductIndex) LookupItem(key string) (types.CartLine, error) {
	it, ok := p.byID[types.ItemID(key)]
	if !ok {
		return types.CartLine{}, fmt.Errorf("product %q: %w", key, types.ErrItemNotFound)
	}
	return it.Snapshot(), nil
}

// RestaurantIndex resolves menu items for the cart store.
type RestaurantIndex struct {
	restaurants []types.CatalogItem
}

// NewRestaurantIndex keeps restaurants in catalog order, which decides the
// winner when a bare menu item ID appears on several menus.
func NewRestaurantIndex(restaurants []types.CatalogItem) *RestaurantIndex {
	return &RestaurantIndex{restaurants: restaurants}
}

// Restaurant returns the restaurant with the given ID.
func (r *RestaurantIndex) Restaurant(id string) (types.CatalogItem, bool) {
	for _, rest := range r.restaurants {
		if string(rest.ID) == id {
			return rest, true
		}
	}
	return types.CatalogItem{}, false
}

// LookupItem accepts restaurantID|itemID, or a bare item ID that resolves to
// the first restaurant serving it. The snapshot carries the restaurant name.
func (r *RestaurantIndex) LookupItem(key string) (types.CartLine, error) {
	restaurantID, itemID := types.SplitKey(key)

	for _, rest := range r.restaurants {
		if restaurantID != "" && string(rest.ID) != restaurantID {
			continue
		}
		for _, m := range rest.Menu {
			if m.ID == itemID {
				return rest.MenuSnapshot(m), nil
			}
		}
	}
	return types.CartLine{}, fmt.Errorf("menu item %q: %w", key, types.ErrItemNotFound)
}
