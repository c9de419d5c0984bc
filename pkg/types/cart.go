package types

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
)

// KeySeparator joins a restaurant ID and a menu item ID into a composite
// cart key.
const KeySeparator = "|"

// ItemID identifies a catalog entry. It decodes from either a JSON string or
// a JSON number so product catalogs with numeric ids round-trip unchanged.
type ItemID string

// UnmarshalJSON accepts "12" and 12 alike.
func (id *ItemID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ItemID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return ErrInvalidID
	}
	*id = ItemID(n.String())
	return nil
}

// CartLine is one item and its quantity in a cart. Display fields are a
// snapshot of the catalog entry taken when the line was first added.
type CartLine struct {
	ID             ItemID  `json:"id"`
	RestaurantID   string  `json:"restaurant_id,omitempty"`
	RestaurantName string  `json:"restaurant_name,omitempty"`
	Name           string  `json:"name"`
	Price          float64 `json:"price"`
	OriginalPrice  float64 `json:"original_price,omitempty"`
	Rating         float64 `json:"rating,omitempty"`
	Image          string  `json:"image,omitempty"`
	Quantity       int     `json:"qty"`
}

// Key returns the identity of the line: the item ID, or
// restaurantID|itemID for menu items.
func (l CartLine) Key() string {
	return LineKey(l.RestaurantID, l.ID)
}

// Subtotal returns Price * Quantity.
func (l CartLine) Subtotal() float64 {
	return l.Price * float64(l.Quantity)
}

// LineKey builds a cart key from an optional restaurant ID and an item ID.
func LineKey(restaurantID string, id ItemID) string {
	if restaurantID == "" {
		return string(id)
	}
	return restaurantID + KeySeparator + string(id)
}

// SplitKey is the inverse of LineKey. A key without a separator yields an
// empty restaurant ID.
func SplitKey(key string) (restaurantID string, id ItemID) {
	r, item, ok := strings.Cut(key, KeySeparator)
	if !ok {
		return "", ItemID(key)
	}
	return r, ItemID(item)
}

// Cart and catalog errors.
var (
	ErrInvalidID          = errors.New("invalid item ID")
	ErrItemNotFound       = errors.New("item not found in catalog")
	ErrLineNotFound       = errors.New("line not in cart")
	ErrEmptyCart          = errors.New("cart is empty")
	ErrUnknownSortKey     = errors.New("unknown sort key")
	ErrInvalidPredicate   = errors.New("invalid filter expression")
	ErrCatalogUnavailable = errors.New("catalog unavailable")
)
