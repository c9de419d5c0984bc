package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/basket/internal/orders"
	"github.com/mesh-intelligence/basket/pkg/types"
)

func newCheckoutCmd(a *app) *cobra.Command {
	var f cartFlags
	cmd := &cobra.Command{
		Use:   "checkout",
		Short: "Place a mock order for the cart and empty it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStorage(func(storage types.Storage) error {
				store, err := a.openCart(storage, f.variant)
				if err != nil {
					return err
				}
				ledger := a.ledger(storage, f.variant)

				order, err := orders.Checkout(store, ledger, a.deliveryFee(f.variant))
				if errors.Is(err, types.ErrEmptyCart) {
					return userError("your cart is empty")
				}
				if err != nil {
					return sysError("%w", err)
				}

				if a.jsonMode {
					return printJSON(out(cmd), order)
				}
				fmt.Fprintf(out(cmd), "Order placed! Order ID: %s\nItems: %d  Total: %s\n",
					order.OrderID, order.ItemCount(), money(order.Total))
				return nil
			})
		},
	}
	f.bind(cmd)
	return cmd
}

// ledger returns the order log for variant.
func (a *app) ledger(storage types.Storage, variant string) *orders.Ledger {
	key := orders.DefaultKey
	if variant == variantFood {
		key = orders.FoodKey
	}
	return orders.NewLedger(storage, orders.WithKey(key), orders.WithLogger(a.logger.Named("orders")))
}

func newOrdersCmd(a *app) *cobra.Command {
	var f cartFlags
	cmd := &cobra.Command{
		Use:   "orders",
		Short: "Show placed orders",
	}
	f.bind(cmd)
	list := &cobra.Command{
		Use:   "list",
		Short: "List orders, oldest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStorage(func(storage types.Storage) error {
				all := a.ledger(storage, f.variant).List()
				if a.jsonMode {
					return printJSON(out(cmd), all)
				}
				if len(all) == 0 {
					fmt.Fprintln(out(cmd), "No orders yet.")
					return nil
				}
				t := newTable(out(cmd), "ORDER", "PLACED", "ITEMS", "TOTAL")
				for _, o := range all {
					t.row(o.OrderID, o.Timestamp.Local().Format("2006-01-02 15:04"), fmt.Sprint(o.ItemCount()), money(o.Total))
				}
				t.flush()
				return nil
			})
		},
	}
	cmd.AddCommand(list)
	return cmd
}
