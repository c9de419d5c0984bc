package cart

import (
	"math"
	"sort"

	"github.com/mesh-intelligence/basket/pkg/types"
)

// Cart is an immutable snapshot of the store's lines, sorted by key.
type Cart struct {
	Lines []types.CartLine `json:"lines"`
}

// newCart copies lines out of the store's map in key order.
func newCart(lines map[string]types.CartLine) Cart {
	out := make([]types.CartLine, 0, len(lines))
	for _, l := range lines {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key() < out[j].Key() })
	return Cart{Lines: out}
}

// Len returns the number of distinct lines.
func (c Cart) Len() int { return len(c.Lines) }

// Empty reports whether the cart has no lines.
func (c Cart) Empty() bool { return len(c.Lines) == 0 }

// Count returns the sum of quantities, for badge display.
func (c Cart) Count() int {
	n := 0
	for _, l := range c.Lines {
		n += l.Quantity
	}
	return n
}

// Subtotal returns the sum of price * quantity over all lines.
func (c Cart) Subtotal() float64 {
	sum := 0.0
	for _, l := range c.Lines {
		sum += l.Subtotal()
	}
	return roundCents(sum)
}

// Total returns Subtotal plus deliveryFee. An empty cart totals exactly
// deliveryFee.
func (c Cart) Total(deliveryFee float64) float64 {
	if c.Empty() {
		return deliveryFee
	}
	return roundCents(c.Subtotal() + deliveryFee)
}

// Line returns the line stored under key.
func (c Cart) Line(key string) (types.CartLine, bool) {
	for _, l := range c.Lines {
		if l.Key() == key {
			return l, true
		}
	}
	return types.CartLine{}, false
}

// Quantity returns the quantity under key, or 0 when absent.
func (c Cart) Quantity(key string) int {
	l, _ := c.Line(key)
	return l.Quantity
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
