package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/basket/internal/cart"
	"github.com/mesh-intelligence/basket/internal/catalog"
	"github.com/mesh-intelligence/basket/pkg/types"
)

// Storefront variants. Each keeps its own cart under its own key.
const (
	variantProducts = "products"
	variantFood     = "food"
)

// cartFlags are shared by every cart subcommand and by checkout.
type cartFlags struct {
	variant string
	source  string
}

func (f *cartFlags) bind(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&f.variant, "variant", variantProducts, "storefront: products or food")
	cmd.PersistentFlags().StringVar(&f.source, "source", "", "restaurants JSON file or URL for the food variant (default: catalog.source)")
}

// openCart builds the cart store for variant over storage.
// cart.<variant>.key and cart.<variant>.layout in config.yaml override the
// variant defaults.
func (a *app) openCart(storage types.Storage, variant string) (*cart.Store, error) {
	var key string
	var layout cart.Layout
	switch variant {
	case variantProducts:
		key, layout = cart.DefaultProductKey, cart.LayoutArray
	case variantFood:
		key, layout = cart.DefaultFoodKey, cart.LayoutMap
	default:
		return nil, userError("unknown variant %q (valid: %s, %s)", variant, variantProducts, variantFood)
	}

	if k := a.cfg.GetString(cartConfigKey(variant, cartFieldKey)); k != "" {
		key = k
	}
	layoutKey := cartConfigKey(variant, cartFieldLayout)
	if l := a.cfg.GetString(layoutKey); l != "" {
		parsed, err := cart.ParseLayout(l)
		if err != nil {
			return nil, userError("%s: %w", layoutKey, err)
		}
		layout = parsed
	}

	return cart.New(storage,
		cart.WithKey(key),
		cart.WithLayout(layout),
		cart.WithLogger(a.logger.Named("cart"))), nil
}

// lookup returns the catalog index that resolves keys for variant.
func (a *app) lookup(cmd *cobra.Command, f *cartFlags) (cart.Lookup, error) {
	if f.variant != variantFood {
		return catalog.NewProductIndex(catalog.Products()), nil
	}
	items, err := a.loadRestaurants(cmd.Context(), a.catalogSource(f.source))
	if err != nil {
		return nil, err
	}
	return catalog.NewRestaurantIndex(items), nil
}

// cartView is the JSON shape of a cart with its totals.
type cartView struct {
	Lines       []types.CartLine `json:"lines"`
	Count       int              `json:"count"`
	Subtotal    float64          `json:"subtotal"`
	DeliveryFee float64          `json:"delivery_fee"`
	Total       float64          `json:"total"`
}

// deliveryFee is the flat fee added at checkout for variant. Only the food
// storefront charges one by default.
func (a *app) deliveryFee(variant string) float64 {
	return a.cfg.GetFloat64(cartConfigKey(variant, cartFieldDeliveryFee))
}

// printCart renders c with fee in the selected output mode.
func (a *app) printCart(cmd *cobra.Command, c cart.Cart, fee float64) error {
	if a.jsonMode {
		return printJSON(out(cmd), cartView{
			Lines:       c.Lines,
			Count:       c.Count(),
			Subtotal:    c.Subtotal(),
			DeliveryFee: fee,
			Total:       c.Total(fee),
		})
	}
	w := out(cmd)
	if c.Empty() {
		fmt.Fprintln(w, "Your cart is empty.")
		return nil
	}
	printLines(w, c.Lines)
	fmt.Fprintf(w, "\nSubtotal: %s\nDelivery: %s\nTotal:    %s\n", money(c.Subtotal()), money(fee), money(c.Total(fee)))
	return nil
}

// warnUnsaved tells the user when the last change only lives in memory.
func warnUnsaved(cmd *cobra.Command, store *cart.Store) {
	if err := store.SaveErr(); err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), "warning: cart changes were not saved:", err)
	}
}

// parseQuantity rejects non-numeric input before it reaches the store.
func parseQuantity(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, userError("quantity %q is not a whole number", s)
	}
	return n, nil
}

func newCartCmd(a *app) *cobra.Command {
	var f cartFlags
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Show and change the shopping cart",
	}
	f.bind(cmd)

	// withCart opens storage and the cart for f.variant and runs fn.
	withCart := func(fn func(*cart.Store) error) error {
		return a.withStorage(func(storage types.Storage) error {
			store, err := a.openCart(storage, f.variant)
			if err != nil {
				return err
			}
			return fn(store)
		})
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Show the cart with totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCart(func(s *cart.Store) error {
				return a.printCart(cmd, s.Snapshot(), a.deliveryFee(f.variant))
			})
		},
	}

	add := &cobra.Command{
		Use:   "add <key>",
		Short: "Add one of an item to the cart",
		Long: `Add increments the item's quantity, or adds it with quantity 1.

For products the key is the product ID. For food it is restaurantID|itemID,
or a bare item ID, which resolves to the first restaurant serving it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lookup, err := a.lookup(cmd, &f)
			if err != nil {
				return err
			}
			return withCart(func(s *cart.Store) error {
				c, err := s.Add(args[0], lookup)
				if errors.Is(err, types.ErrItemNotFound) {
					return userError("unknown item %q", args[0])
				}
				if err != nil {
					return sysError("%w", err)
				}
				warnUnsaved(cmd, s)
				return a.printCart(cmd, c, a.deliveryFee(f.variant))
			})
		},
	}

	set := &cobra.Command{
		Use:   "set <key> <qty>",
		Short: "Set the quantity of a line (minimum 1)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			qty, err := parseQuantity(args[1])
			if err != nil {
				return err
			}
			return withCart(func(s *cart.Store) error {
				c, err := s.SetQuantity(args[0], qty)
				if errors.Is(err, types.ErrLineNotFound) {
					return userError("%q is not in the cart", args[0])
				}
				if err != nil {
					return sysError("%w", err)
				}
				warnUnsaved(cmd, s)
				return a.printCart(cmd, c, a.deliveryFee(f.variant))
			})
		},
	}

	dec := &cobra.Command{
		Use:   "dec <key>",
		Short: "Remove one of an item; the line goes away at zero",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCart(func(s *cart.Store) error {
				c := s.Decrement(args[0])
				warnUnsaved(cmd, s)
				return a.printCart(cmd, c, a.deliveryFee(f.variant))
			})
		},
	}

	remove := &cobra.Command{
		Use:     "remove <key>",
		Aliases: []string{"rm"},
		Short:   "Remove a line from the cart",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCart(func(s *cart.Store) error {
				c := s.Remove(args[0])
				warnUnsaved(cmd, s)
				return a.printCart(cmd, c, a.deliveryFee(f.variant))
			})
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Empty the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCart(func(s *cart.Store) error {
				c := s.Clear()
				warnUnsaved(cmd, s)
				return a.printCart(cmd, c, a.deliveryFee(f.variant))
			})
		},
	}

	count := &cobra.Command{
		Use:   "count",
		Short: "Print the number of items in the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCart(func(s *cart.Store) error {
				n := s.Count()
				if a.jsonMode {
					return printJSON(out(cmd), map[string]int{"count": n})
				}
				fmt.Fprintln(out(cmd), n)
				return nil
			})
		},
	}

	total := &cobra.Command{
		Use:   "total",
		Short: "Print subtotal, delivery fee and total",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCart(func(s *cart.Store) error {
				c := s.Snapshot()
				fee := a.deliveryFee(f.variant)
				if a.jsonMode {
					return printJSON(out(cmd), map[string]float64{
						"subtotal":     c.Subtotal(),
						"delivery_fee": fee,
						"total":        c.Total(fee),
					})
				}
				fmt.Fprintf(out(cmd), "Subtotal: %s\nDelivery: %s\nTotal:    %s\n", money(c.Subtotal()), money(fee), money(c.Total(fee)))
				return nil
			})
		},
	}

	cmd.AddCommand(show, add, set, dec, remove, clearCmd, count, total)
	return cmd
}
