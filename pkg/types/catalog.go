package types

// CatalogItem is read-only reference data owned by the catalog. Products use
// Price and OriginalPrice; restaurants use Cuisine, DeliveryEstimate,
// PriceLevel and Menu.
type CatalogItem struct {
	ID               ItemID     `json:"id"`
	Name             string     `json:"name"`
	Description      string     `json:"description,omitempty"`
	Image            string     `json:"image,omitempty"`
	Price            float64    `json:"price,omitempty"`
	OriginalPrice    float64    `json:"original_price,omitempty"`
	Rating           float64    `json:"rating"`
	Cuisine          []string   `json:"cuisine,omitempty"`
	DeliveryEstimate int        `json:"delivery_estimate,omitempty"` // minutes
	PriceLevel       int        `json:"price_level,omitempty"`
	Menu             []MenuItem `json:"menu,omitempty"`
}

// MenuItem is a dish on a restaurant menu.
type MenuItem struct {
	ID          ItemID  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price"`
	Veg         bool    `json:"veg,omitempty"`
}

// HasCuisine reports whether c is one of the item's cuisine tags.
func (c CatalogItem) HasCuisine(cuisine string) bool {
	for _, tag := range c.Cuisine {
		if tag == cuisine {
			return true
		}
	}
	return false
}

// Snapshot returns a quantity-zero cart line copying the product's display
// fields.
func (c CatalogItem) Snapshot() CartLine {
	return CartLine{
		ID:            c.ID,
		Name:          c.Name,
		Price:         c.Price,
		OriginalPrice: c.OriginalPrice,
		Rating:        c.Rating,
		Image:         c.Image,
	}
}

// MenuSnapshot returns a quantity-zero cart line for a dish served by this
// restaurant.
func (c CatalogItem) MenuSnapshot(m MenuItem) CartLine {
	return CartLine{
		ID:             m.ID,
		RestaurantID:   string(c.ID),
		RestaurantName: c.Name,
		Name:           m.Name,
		Price:          m.Price,
	}
}
