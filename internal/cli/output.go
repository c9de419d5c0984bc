package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/mesh-intelligence/basket/internal/catalog"
	"github.com/mesh-intelligence/basket/pkg/types"
)

// printJSON writes v as indented JSON.
func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return sysError("marshal JSON: %w", err)
	}
	fmt.Fprintln(w, string(data))
	return nil
}

// table writes tab-separated rows as aligned columns.
type table struct {
	tw *tabwriter.Writer
}

func newTable(w io.Writer, header ...string) *table {
	t := &table{tw: tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)}
	t.row(header...)
	return t
}

func (t *table) row(cols ...string) {
	fmt.Fprintln(t.tw, strings.Join(cols, "\t"))
}

func (t *table) flush() { _ = t.tw.Flush() }

func money(v float64) string { return fmt.Sprintf("%.2f", v) }

func printProducts(w io.Writer, items []types.CatalogItem) {
	if len(items) == 0 {
		fmt.Fprintln(w, "No products found.")
		return
	}
	t := newTable(w, "ID", "NAME", "PRICE", "WAS", "OFF", "RATING")
	for _, it := range items {
		off := ""
		if d := catalog.DiscountPercent(it); d > 0 {
			off = fmt.Sprintf("%d%%", d)
		}
		t.row(string(it.ID), it.Name, money(it.Price), money(it.OriginalPrice), off, fmt.Sprintf("%.1f", it.Rating))
	}
	t.flush()
}

func printRestaurants(w io.Writer, items []types.CatalogItem) {
	if len(items) == 0 {
		fmt.Fprintln(w, "No restaurants found.")
		return
	}
	t := newTable(w, "ID", "NAME", "CUISINE", "RATING", "DELIVERY", "PRICE")
	for _, it := range items {
		t.row(string(it.ID), it.Name, strings.Join(it.Cuisine, ", "),
			fmt.Sprintf("%.1f", it.Rating),
			fmt.Sprintf("%d mins", it.DeliveryEstimate),
			strings.Repeat("$", it.PriceLevel))
	}
	t.flush()
}

func printMenu(w io.Writer, r types.CatalogItem) {
	fmt.Fprintf(w, "%s (%s)\n", r.Name, strings.Join(r.Cuisine, ", "))
	if r.Description != "" {
		fmt.Fprintln(w, r.Description)
	}
	t := newTable(w, "KEY", "ITEM", "PRICE", "")
	for _, m := range r.Menu {
		veg := ""
		if m.Veg {
			veg = "veg"
		}
		t.row(types.LineKey(string(r.ID), m.ID), m.Name, money(m.Price), veg)
	}
	t.flush()
}

func printLines(w io.Writer, lines []types.CartLine) {
	t := newTable(w, "KEY", "NAME", "QTY", "PRICE", "SUBTOTAL")
	for _, l := range lines {
		name := l.Name
		if l.RestaurantName != "" {
			name = l.Name + " (" + l.RestaurantName + ")"
		}
		t.row(l.Key(), name, fmt.Sprint(l.Quantity), money(l.Price), money(l.Subtotal()))
	}
	t.flush()
}
