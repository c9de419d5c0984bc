package catalog

import (
	"math"

	"github.com/mesh-intelligence/basket/pkg/types"
)

// builtinProducts is the static electronics catalog used when no catalog
// source is configured.
var builtinProducts = []types.CatalogItem{
	{ID: "1", Name: "Wireless Bluetooth Headphones", Price: 1999, OriginalPrice: 2999, Rating: 4.3, Image: "/images/product1.jpg"},
	{ID: "2", Name: "Smart Fitness Watch with Heart Rate Monitor", Price: 2499, OriginalPrice: 3999, Rating: 4.1, Image: "/images/product2.jpg"},
	{ID: "3", Name: "Portable Bluetooth Speaker (10W, Deep Bass)", Price: 1499, OriginalPrice: 2499, Rating: 4.5, Image: "/images/product3.jpg"},
	{ID: "4", Name: "Ergonomic Gaming Mouse (RGB, 6 Buttons)", Price: 899, OriginalPrice: 1599, Rating: 4.0, Image: "/images/product4.jpg"},
	{ID: "5", Name: "Noise Cancelling Wired Earphones", Price: 549, OriginalPrice: 999, Rating: 3.9, Image: "/images/product5.jpeg"},
	{ID: "6", Name: "Dual-Port Fast Wall Charger 18W", Price: 699, OriginalPrice: 1299, Rating: 4.2, Image: "/images/product6.jpeg"},
	{ID: "7", Name: "Wireless Keyboard and Mouse Combo", Price: 1899, OriginalPrice: 2699, Rating: 4.1, Image: "/images/product7.jpeg"},
	{ID: "8", Name: "27W Type-C Power Bank 10000mAh", Price: 1299, OriginalPrice: 1999, Rating: 4.4, Image: "/images/product8.jpeg"},
	{ID: "9", Name: "Full HD Web Camera with Microphone", Price: 2799, OriginalPrice: 3499, Rating: 4.0, Image: "/images/product9.jpeg"},
	{ID: "10", Name: "RGB Gaming Headset with Mic", Price: 1599, OriginalPrice: 2499, Rating: 4.2, Image: "/images/product10.jpeg"},
	{ID: "11", Name: "Laptop Cooling Pad with Dual Fans", Price: 999, OriginalPrice: 1599, Rating: 3.8, Image: "/images/product11.jpeg"},
	{ID: "12", Name: "Mechanical Gaming Keyboard (Blue Switch)", Price: 3499, OriginalPrice: 4999, Rating: 4.6, Image: "/images/product12.jpeg"},
}

// Products returns a copy of the built-in product catalog.
func Products() []types.CatalogItem {
	out := make([]types.CatalogItem, len(builtinProducts))
	copy(out, builtinProducts)
	return out
}

// DiscountPercent returns the rounded percentage saved against the original
// price, or 0 when there is no original price or it is not higher.
func DiscountPercent(it types.CatalogItem) int {
	if it.OriginalPrice <= 0 || it.OriginalPrice <= it.Price {
		return 0
	}
	return int(math.Round((it.OriginalPrice - it.Price) / it.OriginalPrice * 100))
}
