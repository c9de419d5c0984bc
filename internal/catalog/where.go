package catalog

import (
	"fmt"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/mesh-intelligence/basket/pkg/types"
)

// whereEnv is the variable set visible to a Where expression, for example
// `price < 2000 && rating >= 4.2` or `"Thai" in cuisine`.
type whereEnv struct {
	Name       string   `expr:"name"`
	Price      float64  `expr:"price"`
	Original   float64  `expr:"original_price"`
	Discount   int      `expr:"discount"`
	Rating     float64  `expr:"rating"`
	Cuisine    []string `expr:"cuisine"`
	Delivery   int      `expr:"delivery"`
	PriceLevel int      `expr:"price_level"`
	MenuSize   int      `expr:"menu_size"`
}

func newWhereEnv(it types.CatalogItem) whereEnv {
	return whereEnv{
		Name:       it.Name,
		Price:      it.Price,
		Original:   it.OriginalPrice,
		Discount:   DiscountPercent(it),
		Rating:     it.Rating,
		Cuisine:    it.Cuisine,
		Delivery:   it.DeliveryEstimate,
		PriceLevel: it.PriceLevel,
		MenuSize:   len(it.Menu),
	}
}

type wherePredicate struct {
	program *vm.Program
}

// compileWhere compiles src as a boolean expression over whereEnv. An empty
// src yields a nil predicate.
func compileWhere(src string) (*wherePredicate, error) {
	if strings.TrimSpace(src) == "" {
		return nil, nil
	}
	program, err := expr.Compile(src, expr.Env(whereEnv{}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrInvalidPredicate, err)
	}
	return &wherePredicate{program: program}, nil
}

func (w *wherePredicate) match(it types.CatalogItem) (bool, error) {
	out, err := expr.Run(w.program, newWhereEnv(it))
	if err != nil {
		return false, fmt.Errorf("%w: %v", types.ErrInvalidPredicate, err)
	}
	ok, _ := out.(bool)
	return ok, nil
}
