package types

import "time"

// Order is a completed mock checkout. Orders are append-only.
type Order struct {
	OrderID     string     `json:"order_id"`
	Lines       []CartLine `json:"lines"`
	Subtotal    float64    `json:"subtotal"`
	DeliveryFee float64    `json:"delivery_fee"`
	Total       float64    `json:"total"`
	Timestamp   time.Time  `json:"timestamp"`
}

// ItemCount returns the sum of line quantities.
func (o Order) ItemCount() int {
	n := 0
	for _, l := range o.Lines {
		n += l.Quantity
	}
	return n
}
